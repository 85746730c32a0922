package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/query"
	"github.com/yeremiapane/restaurant-console/services"
	"github.com/yeremiapane/restaurant-console/store"
	"github.com/yeremiapane/restaurant-console/utils"
)

type ReservationController struct {
	client   *services.Client
	registry *store.Registry
	pageSize int
}

func NewReservationController(client *services.Client, registry *store.Registry, pageSize int) *ReservationController {
	return &ReservationController{client: client, registry: registry, pageSize: pageSize}
}

func (rc *ReservationController) store(c *gin.Context) *store.ReservationStore {
	return sessionStore(c, rc.client, rc.registry)
}

// GetReservations loads the session's reservations once, then serves every search, filter,
// sort and page locally.
func (rc *ReservationController) GetReservations(c *gin.Context) {
	s := rc.store(c)
	if err := s.EnsureLoaded(c.Request.Context()); err != nil {
		respondErr(c, err)
		return
	}

	st := stateFrom(c, rc.pageSize, query.FilterTableID)
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, ok := models.ParseReservationStatus(raw)
		if !ok {
			utils.RespondJSON(c, http.StatusBadRequest, "unknown reservation status "+raw, gin.H{"field": "status"})
			return
		}
		st = st.WithFilter(query.FilterStatus, status.String())
	}

	page := query.Apply(s.Snapshot(), query.ReservationSchema, st)
	utils.RespondJSON(c, http.StatusOK, "List of reservations", page)
}

func (rc *ReservationController) Status(c *gin.Context) {
	s := rc.store(c)
	errMsg := ""
	if err := s.Err(); err != nil {
		errMsg = err.Error()
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation store status", gin.H{
		"busy":   s.Busy(),
		"loaded": s.Loaded(),
		"error":  errMsg,
		"count":  len(s.Snapshot()),
	})
}

// mutate runs fn unless the store is already busy, which the console reports as 409. The claim
// holds until fn returns so concurrent requests cannot both pass.
func (rc *ReservationController) mutate(c *gin.Context, fn func(ctx context.Context, s *store.ReservationStore) error) bool {
	s := rc.store(c)
	done, ok := s.TryBegin()
	if !ok {
		respondErr(c, errBusy)
		return false
	}
	defer done()
	if err := fn(c.Request.Context(), s); err != nil {
		respondErr(c, err)
		return false
	}
	return true
}

func (rc *ReservationController) Reload(c *gin.Context) {
	var count int
	ok := rc.mutate(c, func(ctx context.Context, s *store.ReservationStore) error {
		if err := s.Load(ctx); err != nil {
			return err
		}
		count = len(s.Snapshot())
		return nil
	})
	if ok {
		utils.RespondJSON(c, http.StatusOK, "Reservations reloaded", gin.H{"count": count})
	}
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var input models.ReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var created *models.Reservation
	ok := rc.mutate(c, func(ctx context.Context, s *store.ReservationStore) (err error) {
		created, err = s.Create(ctx, input)
		return err
	})
	if ok {
		utils.RespondJSON(c, http.StatusCreated, "Reservation created", created)
	}
}

func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	var input models.ReservationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	id := c.Param("id")
	var updated *models.Reservation
	ok := rc.mutate(c, func(ctx context.Context, s *store.ReservationStore) (err error) {
		updated, err = s.Update(ctx, id, input)
		return err
	})
	if ok {
		utils.RespondJSON(c, http.StatusOK, "Reservation updated", updated)
	}
}

func (rc *ReservationController) statusAction(message string, action func(*store.ReservationStore, context.Context, string) (*models.Reservation, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var changed *models.Reservation
		ok := rc.mutate(c, func(ctx context.Context, s *store.ReservationStore) (err error) {
			changed, err = action(s, ctx, id)
			return err
		})
		if ok {
			utils.RespondJSON(c, http.StatusOK, message, changed)
		}
	}
}

func (rc *ReservationController) CancelReservation() gin.HandlerFunc {
	return rc.statusAction("Reservation cancelled", (*store.ReservationStore).Cancel)
}

func (rc *ReservationController) CompleteReservation() gin.HandlerFunc {
	return rc.statusAction("Reservation completed", (*store.ReservationStore).Complete)
}

func (rc *ReservationController) MarkNoShow() gin.HandlerFunc {
	return rc.statusAction("Reservation marked as no-show", (*store.ReservationStore).MarkNoShow)
}

func (rc *ReservationController) DeleteReservation(c *gin.Context) {
	id := c.Param("id")
	ok := rc.mutate(c, func(ctx context.Context, s *store.ReservationStore) error {
		return s.Delete(ctx, id)
	})
	if ok {
		utils.RespondJSON(c, http.StatusOK, "Reservation deleted", gin.H{"id": id})
	}
}
