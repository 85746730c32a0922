package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/yeremiapane/restaurant-console/utils"
)

// ReservationStatus is the numeric status id used by the reservations API.
type ReservationStatus int

const (
	StatusUnknown   ReservationStatus = 0
	StatusPending   ReservationStatus = 1
	StatusConfirmed ReservationStatus = 2
	StatusCancelled ReservationStatus = 3
	StatusCompleted ReservationStatus = 4
	StatusNoShow    ReservationStatus = 5
)

var statusNames = map[ReservationStatus]string{
	StatusPending:   "pending",
	StatusConfirmed: "confirmed",
	StatusCancelled: "cancelled",
	StatusCompleted: "completed",
	StatusNoShow:    "no-show",
}

func (s ReservationStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseReservationStatus accepts a numeric id ("3") or a name in any case and separator style
// ("Cancelled", "no_show", "NO-SHOW", "canceled").
func ParseReservationStatus(s string) (ReservationStatus, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		st := ReservationStatus(n)
		_, ok := statusNames[st]
		return st, ok
	}

	key := strings.NewReplacer("_", "", "-", "", " ", "").Replace(strings.ToLower(s))
	switch key {
	case "pending":
		return StatusPending, true
	case "confirmed":
		return StatusConfirmed, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	case "completed", "complete":
		return StatusCompleted, true
	case "noshow":
		return StatusNoShow, true
	}
	return StatusUnknown, false
}

type Reservation struct {
	ID              string            `json:"id"`
	TableID         string            `json:"tableId"`
	CustomerName    string            `json:"customerName"`
	CustomerPhone   string            `json:"customerPhone"`
	ReservationTime time.Time         `json:"-"`
	SpecialRequest  string            `json:"specialRequest,omitempty"`
	StatusID        ReservationStatus `json:"statusId"`
	CreatedBy       string            `json:"createdBy"`
}

// MarshalJSON writes ReservationTime as a wall-clock value without offset.
func (r Reservation) MarshalJSON() ([]byte, error) {
	type alias Reservation
	return json.Marshal(struct {
		alias
		ReservationTime string `json:"reservationTime"`
		Status          string `json:"status"`
	}{
		alias:           alias(r),
		ReservationTime: r.ReservationTime.Format(utils.WallClockLayout),
		Status:          r.StatusID.String(),
	})
}

// ReservationInput is the canonical create/update payload. Both paths send the same field set.
type ReservationInput struct {
	TableID        string `json:"tableId"`
	CustomerName   string `json:"customerName"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	CustomerPhone  string `json:"customerPhone"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	SpecialRequest string `json:"specialRequest"`
	StatusID       int    `json:"statusId"`
	CreatedBy      string `json:"createdBy"`
}
