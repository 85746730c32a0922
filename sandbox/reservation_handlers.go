package sandbox

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/yeremiapane/restaurant-console/normalizer"
	"github.com/yeremiapane/restaurant-console/utils"
	"gorm.io/gorm"
)

const (
	statusPending   = 1
	statusCancelled = 3
	statusCompleted = 4
	statusNoShow    = 5
)

type reservationRequest struct {
	TableID         interface{} `json:"tableId"`
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	ReservationTime string      `json:"reservationTime"`
	SpecialRequest  string      `json:"specialRequest"`
	StatusID        int         `json:"statusId"`
	CreatedBy       interface{} `json:"createdBy"`
}

func parseID(v interface{}, field string) (uint, error) {
	s := strings.TrimSpace(normalizer.StringOf(v))
	if s == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%s must be a positive number", field)
	}
	return uint(n), nil
}

// apply validates req and copies it onto r. On an existing record an absent statusId or
// createdBy keeps the stored value.
func (req reservationRequest) apply(r *Reservation) error {
	tableID, err := parseID(req.TableID, "tableId")
	if err != nil {
		return err
	}
	createdBy := r.CreatedBy
	if r.ID == 0 || normalizer.StringOf(req.CreatedBy) != "" {
		if createdBy, err = parseID(req.CreatedBy, "createdBy"); err != nil {
			return err
		}
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return errors.New("customerName is required")
	}
	if strings.TrimSpace(req.CustomerPhone) == "" {
		return errors.New("customerPhone is required")
	}
	when, ok := utils.ParseTimestamp(req.ReservationTime)
	if !ok {
		return errors.New("reservationTime must be YYYY-MM-DDTHH:MM:SS")
	}
	status := req.StatusID
	if status == 0 {
		status = lo.Ternary(r.ID == 0, statusPending, r.StatusID)
	}
	if status < statusPending || status > statusNoShow {
		return fmt.Errorf("unknown statusId %d", status)
	}

	r.TableID = tableID
	r.CustomerName = strings.TrimSpace(req.CustomerName)
	r.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	r.ReservationTime = when.UTC()
	r.SpecialRequests = req.SpecialRequest
	r.StatusID = status
	r.CreatedBy = createdBy
	return nil
}

func (s *server) reservations(where func(*gorm.DB) *gorm.DB) ([]Reservation, error) {
	var list []Reservation
	q := s.db.Order("reservation_time desc")
	if where != nil {
		q = where(q)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// listReservations answers with the {status, message, data} envelope.
func (s *server) listReservations(c *gin.Context) {
	list, err := s.reservations(nil)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservations retrieved", list)
}

func (s *server) getReservation(c *gin.Context) {
	if r, ok := s.findReservation(c); ok {
		utils.RespondJSON(c, http.StatusOK, "Reservation retrieved", r)
	}
}

// The narrower lookups answer with bare arrays.

func (s *server) reservationsByTable(c *gin.Context) {
	list, err := s.reservations(func(q *gorm.DB) *gorm.DB { return q.Where("table_id = ?", c.Param("tableId")) })
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *server) reservationsBySalon(c *gin.Context) {
	list, err := s.reservations(func(q *gorm.DB) *gorm.DB { return q.Where("salon = ?", c.Param("salonId")) })
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *server) reservationsByStatus(c *gin.Context) {
	status, err := strconv.Atoi(c.Param("statusId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "statusId must be a number"})
		return
	}
	list, err := s.reservations(func(q *gorm.DB) *gorm.DB { return q.Where("status_id = ?", status) })
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// reservationsBetween filters rows in Go so the comparison does not depend on how the driver stores times.
func (s *server) reservationsBetween(start, end time.Time) ([]Reservation, error) {
	list, err := s.reservations(nil)
	if err != nil {
		return nil, err
	}
	return lo.Filter(list, func(r Reservation, _ int) bool {
		t := r.ReservationTime.UTC()
		return !t.Before(start) && !t.After(end)
	}), nil
}

func (s *server) todayReservations(c *gin.Context) {
	now := s.opts.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	list, err := s.reservationsBetween(start, start.Add(24*time.Hour-time.Second))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *server) reservationsByDateRange(c *gin.Context) {
	start, end, ok := s.dateRange(c)
	if !ok {
		return
	}
	list, err := s.reservationsBetween(start, end)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ReservationTime.Before(list[j].ReservationTime) })
	c.JSON(http.StatusOK, list)
}

func (s *server) createReservation(c *gin.Context) {
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	r := Reservation{Salon: "main"}
	if err := req.apply(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := s.db.Create(&r).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	s.record(s.actor(c), "CREATE", "RESERVATION", fmt.Sprint(r.ID), fmt.Sprintf("Reservation for %s created", r.CustomerName))
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", r)
}

func (s *server) findReservation(c *gin.Context) (Reservation, bool) {
	var r Reservation
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid reservation id"})
		return r, false
	}
	if err := s.db.First(&r, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "reservation not found"})
		} else {
			utils.RespondError(c, http.StatusInternalServerError, err)
		}
		return r, false
	}
	return r, true
}

func (s *server) updateReservation(c *gin.Context) {
	r, ok := s.findReservation(c)
	if !ok {
		return
	}
	var req reservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.apply(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	if err := s.db.Save(&r).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	s.record(s.actor(c), "UPDATE", "RESERVATION", fmt.Sprint(r.ID), fmt.Sprintf("Reservation for %s updated", r.CustomerName))
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", r)
}

func (s *server) setStatus(c *gin.Context, status int) (Reservation, bool) {
	r, ok := s.findReservation(c)
	if !ok {
		return r, false
	}
	if r.StatusID == statusCancelled || r.StatusID == statusCompleted {
		c.JSON(http.StatusConflict, gin.H{"message": "reservation is already closed"})
		return r, false
	}
	r.StatusID = status
	if err := s.db.Model(&r).Update("status_id", status).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return r, false
	}
	s.record(s.actor(c), "STATUS_UPDATE", "RESERVATION", fmt.Sprint(r.ID), fmt.Sprintf("Reservation status set to %d", status))
	return r, true
}

// cancelReservation confirms in plain text without echoing the record.
func (s *server) cancelReservation(c *gin.Context) {
	if _, ok := s.setStatus(c, statusCancelled); ok {
		c.String(http.StatusOK, "Reservation cancelled")
	}
}

// completeReservation echoes the bare record.
func (s *server) completeReservation(c *gin.Context) {
	if r, ok := s.setStatus(c, statusCompleted); ok {
		c.JSON(http.StatusOK, r)
	}
}

// noShowReservation echoes the record inside the envelope.
func (s *server) noShowReservation(c *gin.Context) {
	if r, ok := s.setStatus(c, statusNoShow); ok {
		utils.RespondJSON(c, http.StatusOK, "Reservation marked as no-show", r)
	}
}

func (s *server) deleteReservation(c *gin.Context) {
	r, ok := s.findReservation(c)
	if !ok {
		return
	}
	if err := s.db.Delete(&r).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	s.record(s.actor(c), "DELETE", "RESERVATION", fmt.Sprint(r.ID), fmt.Sprintf("Reservation for %s deleted", r.CustomerName))
	c.String(http.StatusOK, "Reservation deleted")
}

// dateRange parses the startDate/endDate query. Plain dates cover whole days unless the strict
// option is on, in which case only "YYYY-MM-DD HH:MM:SS" is accepted and everything else gets a
// plain-text 400.
func (s *server) dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	rawStart, rawEnd := c.Query("startDate"), c.Query("endDate")
	if rawStart == "" || rawEnd == "" {
		c.String(http.StatusBadRequest, "startDate and endDate are required")
		return time.Time{}, time.Time{}, false
	}

	if s.opts.StrictDateRange {
		start, err1 := time.Parse("2006-01-02 15:04:05", rawStart)
		end, err2 := time.Parse("2006-01-02 15:04:05", rawEnd)
		if err1 != nil || err2 != nil {
			c.String(http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD HH:MM:SS")
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	}

	start, ok1 := utils.ParseTimestamp(rawStart)
	end, ok2 := utils.ParseTimestamp(rawEnd)
	if !ok1 || !ok2 {
		c.String(http.StatusBadRequest, "Invalid date format")
		return time.Time{}, time.Time{}, false
	}
	if len(strings.TrimSpace(rawEnd)) == len("2006-01-02") {
		end = end.Add(24*time.Hour - time.Second)
	}
	return start.UTC(), end.UTC(), true
}
