package services

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/normalizer"
	"github.com/yeremiapane/restaurant-console/utils"
)

type ReservationService struct {
	client *Client
}

func NewReservationService(client *Client) *ReservationService {
	return &ReservationService{client: client}
}

// PrepareReservation coerces input into the canonical reservation it describes. It fails with a
// KClientValidation error naming the first missing or malformed field. createdBy falls back to
// the session's staff id; status falls back to pending.
func PrepareReservation(op apierrors.Op, in models.ReservationInput, session Session) (models.Reservation, error) {
	return prepare(op, in, session, true)
}

// PrepareUpdate is PrepareReservation without the create defaults: an absent status or creator
// stays empty and is left out of the request.
func PrepareUpdate(op apierrors.Op, in models.ReservationInput) (models.Reservation, error) {
	return prepare(op, in, Session{}, false)
}

func prepare(op apierrors.Op, in models.ReservationInput, session Session, defaults bool) (models.Reservation, error) {
	r := models.Reservation{
		TableID:        strings.TrimSpace(in.TableID),
		CustomerName:   strings.TrimSpace(in.CustomerName),
		CustomerPhone:  strings.TrimSpace(in.CustomerPhone),
		SpecialRequest: strings.TrimSpace(in.SpecialRequest),
		StatusID:       models.ReservationStatus(in.StatusID),
		CreatedBy:      strings.TrimSpace(in.CreatedBy),
	}
	if r.CustomerName == "" {
		r.CustomerName = strings.TrimSpace(strings.TrimSpace(in.FirstName) + " " + strings.TrimSpace(in.LastName))
	}
	if defaults && r.CreatedBy == "" {
		r.CreatedBy = session.UserID
	}
	if defaults && r.StatusID == models.StatusUnknown {
		r.StatusID = models.StatusPending
	}

	date := strings.TrimSpace(in.Date)
	clock := strings.TrimSpace(in.Time)

	switch {
	case r.TableID == "":
		return r, apierrors.Validation(op, normalizer.FieldTableID, "table is required")
	case r.CustomerName == "":
		return r, apierrors.Validation(op, normalizer.FieldCustomerName, "customer name is required")
	case r.CustomerPhone == "":
		return r, apierrors.Validation(op, normalizer.FieldCustomerPhone, "customer phone is required")
	case date == "":
		return r, apierrors.Validation(op, normalizer.FieldDate, "reservation date is required")
	case clock == "":
		return r, apierrors.Validation(op, normalizer.FieldTime, "reservation time is required")
	case defaults && r.CreatedBy == "":
		return r, apierrors.Validation(op, normalizer.FieldCreatedBy, "creator is unknown; sign in again")
	case in.StatusID != 0 && r.StatusID.String() == "unknown":
		return r, apierrors.Validation(op, normalizer.FieldStatusID, "status "+strconv.Itoa(in.StatusID)+" is not a reservation status")
	}

	day, err := time.Parse("2006-01-02", datePart(date))
	if err != nil {
		return r, apierrors.Validation(op, normalizer.FieldDate, "reservation date must look like 2024-06-01")
	}
	hm, err := parseClock(clock)
	if err != nil {
		return r, apierrors.Validation(op, normalizer.FieldTime, "reservation time must look like 19:30")
	}
	r.ReservationTime = day.Add(hm)
	return r, nil
}

func parseClock(s string) (time.Duration, error) {
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second, nil
		}
	}
	_, err := time.Parse("15:04", s)
	return 0, err
}

// payload is the single wire schema used for both create and update. Status and creator are
// omitted when unset so an update leaves them as the server holds them.
func payload(r models.Reservation) map[string]interface{} {
	body := map[string]interface{}{
		"tableId":         r.TableID,
		"customerName":    r.CustomerName,
		"customerPhone":   r.CustomerPhone,
		"reservationTime": r.ReservationTime.Format(utils.WallClockLayout),
		"specialRequest":  r.SpecialRequest,
	}
	if r.StatusID != models.StatusUnknown {
		body["statusId"] = int(r.StatusID)
	}
	if r.CreatedBy != "" {
		body["createdBy"] = r.CreatedBy
	}
	return body
}

// echoed normalizes the record a mutation responded with. nil means the server did not send a
// usable record back, e.g. a plain-text confirmation.
func echoed(v interface{}) *models.Reservation {
	obj, ok := normalizer.Object(v, "reservation")
	if !ok {
		return nil
	}
	r, err := normalizer.ToReservation(obj)
	if err != nil || r.ID == "" {
		return nil
	}
	return &r
}

func (s *ReservationService) list(ctx context.Context, op apierrors.Op, path string, query url.Values) ([]models.Reservation, error) {
	v, err := s.client.call(ctx, op, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return normalizer.Reservations(v), nil
}

// Create validates input locally before any request is sent. The returned record is nil when the
// server confirmed without echoing it.
func (s *ReservationService) Create(ctx context.Context, in models.ReservationInput) (*models.Reservation, error) {
	const op apierrors.Op = "reservations.create"
	r, err := PrepareReservation(op, in, s.client.Session())
	if err != nil {
		return nil, err
	}
	v, err := s.client.call(ctx, op, http.MethodPost, "/reservations", nil, payload(r))
	if err != nil {
		return nil, err
	}
	return echoed(v), nil
}

func (s *ReservationService) FetchAll(ctx context.Context) ([]models.Reservation, error) {
	return s.list(ctx, "reservations.list", "/reservations", nil)
}

func (s *ReservationService) FetchByID(ctx context.Context, id string) (models.Reservation, error) {
	const op apierrors.Op = "reservations.get"
	if strings.TrimSpace(id) == "" {
		return models.Reservation{}, apierrors.Validation(op, normalizer.FieldID, "reservation id is required")
	}
	v, err := s.client.call(ctx, op, http.MethodGet, "/reservations/"+url.PathEscape(id), nil, nil)
	if err != nil {
		return models.Reservation{}, err
	}
	obj, ok := normalizer.Object(v, "reservation")
	if !ok {
		return models.Reservation{}, apierrors.ES(op, apierrors.KDecode, "reservation %s: response is not a record", id)
	}
	return normalizer.ToReservation(obj)
}

func (s *ReservationService) FetchByTable(ctx context.Context, tableID string) ([]models.Reservation, error) {
	const op apierrors.Op = "reservations.byTable"
	if strings.TrimSpace(tableID) == "" {
		return nil, apierrors.Validation(op, normalizer.FieldTableID, "table id is required")
	}
	return s.list(ctx, op, "/reservations/table/"+url.PathEscape(tableID), nil)
}

func (s *ReservationService) FetchBySalon(ctx context.Context, salonID string) ([]models.Reservation, error) {
	const op apierrors.Op = "reservations.bySalon"
	if strings.TrimSpace(salonID) == "" {
		return nil, apierrors.Validation(op, "salonId", "salon id is required")
	}
	return s.list(ctx, op, "/reservations/salon/"+url.PathEscape(salonID), nil)
}

func (s *ReservationService) FetchToday(ctx context.Context) ([]models.Reservation, error) {
	return s.list(ctx, "reservations.today", "/reservations/today", nil)
}

func (s *ReservationService) FetchByStatus(ctx context.Context, status models.ReservationStatus) ([]models.Reservation, error) {
	const op apierrors.Op = "reservations.byStatus"
	if status.String() == "unknown" {
		return nil, apierrors.Validation(op, normalizer.FieldStatusID, "unknown reservation status")
	}
	return s.list(ctx, op, "/reservations/status/"+strconv.Itoa(int(status)), nil)
}

func (s *ReservationService) FetchByDateRange(ctx context.Context, r DateRange) ([]models.Reservation, error) {
	v, err := s.client.probeDateRange(ctx, "reservations.byDateRange", "/reservations/date-range", r)
	if err != nil {
		return nil, err
	}
	return normalizer.Reservations(v), nil
}

func (s *ReservationService) Update(ctx context.Context, id string, in models.ReservationInput) (*models.Reservation, error) {
	const op apierrors.Op = "reservations.update"
	if strings.TrimSpace(id) == "" {
		return nil, apierrors.Validation(op, normalizer.FieldID, "reservation id is required")
	}
	r, err := PrepareUpdate(op, in)
	if err != nil {
		return nil, err
	}
	v, err := s.client.call(ctx, op, http.MethodPut, "/reservations/"+url.PathEscape(id), nil, payload(r))
	if err != nil {
		return nil, err
	}
	return echoed(v), nil
}

func (s *ReservationService) action(ctx context.Context, op apierrors.Op, id, action string) (*models.Reservation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apierrors.Validation(op, normalizer.FieldID, "reservation id is required")
	}
	v, err := s.client.call(ctx, op, http.MethodPut, "/reservations/"+url.PathEscape(id)+"/"+action, nil, nil)
	if err != nil {
		return nil, err
	}
	return echoed(v), nil
}

func (s *ReservationService) Cancel(ctx context.Context, id string) (*models.Reservation, error) {
	return s.action(ctx, "reservations.cancel", id, "cancel")
}

func (s *ReservationService) Complete(ctx context.Context, id string) (*models.Reservation, error) {
	return s.action(ctx, "reservations.complete", id, "complete")
}

func (s *ReservationService) MarkNoShow(ctx context.Context, id string) (*models.Reservation, error) {
	return s.action(ctx, "reservations.noShow", id, "no-show")
}

func (s *ReservationService) Delete(ctx context.Context, id string) error {
	const op apierrors.Op = "reservations.delete"
	if strings.TrimSpace(id) == "" {
		return apierrors.Validation(op, normalizer.FieldID, "reservation id is required")
	}
	_, err := s.client.call(ctx, op, http.MethodDelete, "/reservations/"+url.PathEscape(id), nil, nil)
	return err
}
