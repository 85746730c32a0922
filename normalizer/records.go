package normalizer

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-console/apierrors"
	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/utils"
)

const opReservation apierrors.Op = "normalize.reservation"

// ToReservation builds a canonical reservation. A record missing tableId, customerName,
// customerPhone, reservationTime or createdBy is a KClientValidation error naming the field, and
// so is a status that is not one of the known ids or names. A missing status reads as pending.
func ToReservation(raw map[string]interface{}) (models.Reservation, error) {
	f := ReservationFields
	r := models.Reservation{
		ID:             f.String(raw, FieldID, ""),
		TableID:        f.String(raw, FieldTableID, ""),
		CustomerName:   f.String(raw, FieldCustomerName, ""),
		CustomerPhone:  f.String(raw, FieldCustomerPhone, ""),
		SpecialRequest: f.String(raw, FieldSpecialRequest, ""),
		CreatedBy:      f.String(raw, FieldCreatedBy, ""),
		StatusID:       models.StatusPending,
	}

	if r.CustomerName == "" {
		r.CustomerName = strings.TrimSpace(f.String(raw, FieldFirstName, "") + " " + f.String(raw, FieldLastName, ""))
	}

	rawStatus := ""
	if v, ok := f.Lookup(raw, FieldStatusID); ok {
		rawStatus = StringOf(v)
	}
	statusOK := true
	if rawStatus != "" {
		r.StatusID, statusOK = models.ParseReservationStatus(rawStatus)
	}

	when := f.String(raw, FieldReservationTime, "")
	if when == "" {
		if date := f.String(raw, FieldDate, ""); date != "" {
			when = strings.TrimSpace(date + "T" + f.String(raw, FieldTime, "00:00"))
		}
	}
	if t, ok := utils.ParseTimestamp(when); ok {
		r.ReservationTime = t
	}

	switch {
	case r.TableID == "":
		return r, apierrors.Validation(opReservation, FieldTableID, "reservation is missing tableId")
	case r.CustomerName == "":
		return r, apierrors.Validation(opReservation, FieldCustomerName, "reservation is missing customerName")
	case r.CustomerPhone == "":
		return r, apierrors.Validation(opReservation, FieldCustomerPhone, "reservation is missing customerPhone")
	case r.ReservationTime.IsZero():
		return r, apierrors.Validation(opReservation, FieldReservationTime, "reservation is missing or has an unreadable reservationTime")
	case r.CreatedBy == "":
		return r, apierrors.Validation(opReservation, FieldCreatedBy, "reservation is missing createdBy")
	case !statusOK:
		return r, apierrors.Validation(opReservation, FieldStatusID, "reservation has unknown status "+rawStatus)
	}
	return r, nil
}

// Reservations normalizes a list response. Records failing validation are dropped and logged.
func Reservations(v interface{}) []models.Reservation {
	out := make([]models.Reservation, 0)
	for _, raw := range Objects(v, "reservations") {
		r, err := ToReservation(raw)
		if err != nil {
			utils.ErrorLogger.WithField("id", r.ID).Warnf("dropping reservation: %v", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// ToActivityLog never fails: display fields the server left out become models.Placeholder.
func ToActivityLog(raw map[string]interface{}) models.ActivityLog {
	f := ActivityLogFields
	details, _ := f.Lookup(raw, FieldDetails)

	entityType := f.String(raw, FieldEntityType, "")
	if entityType != "" {
		entityType = NormalizeToken(entityType)
	} else {
		entityType = models.Placeholder
	}
	actionType := f.String(raw, FieldActionType, "")
	if actionType != "" {
		actionType = NormalizeToken(actionType)
	} else {
		actionType = models.Placeholder
	}

	return models.ActivityLog{
		ID:         f.String(raw, FieldID, ""),
		UserID:     f.String(raw, FieldUserID, models.Placeholder),
		UserEmail:  f.String(raw, FieldUserEmail, models.Placeholder),
		ActionType: actionType,
		EntityType: entityType,
		EntityID:   f.String(raw, FieldEntityID, models.Placeholder),
		Details:    details,
		Message:    ExtractMessage(details),
		CreatedAt:  f.String(raw, FieldCreatedAt, models.Placeholder),
	}
}

func ActivityLogs(v interface{}) []models.ActivityLog {
	return lo.Map(Objects(v, "logs", "activityLogs", "activity_logs"), func(raw map[string]interface{}, _ int) models.ActivityLog {
		return ToActivityLog(raw)
	})
}

func ToOrder(raw map[string]interface{}) models.Order {
	f := OrderFields
	o := models.Order{
		ID:             f.String(raw, FieldID, ""),
		TableID:        f.String(raw, FieldTableID, models.Placeholder),
		Status:         f.String(raw, FieldStatus, models.Placeholder),
		AssignedUserID: f.String(raw, FieldAssignedUserID, ""),
		AssignedStaff:  f.String(raw, FieldAssignedStaff, models.Placeholder),
		CreatedAt:      f.String(raw, FieldCreatedAt, models.Placeholder),
		Items:          []models.OrderItem{},
	}

	if total, err := decimal.NewFromString(f.String(raw, FieldTotalAmount, "0")); err == nil {
		o.TotalAmount = total
	}

	if v, ok := f.Lookup(raw, FieldItems); ok {
		for _, item := range Objects(v) {
			qtyRaw, _ := OrderItemFields.Lookup(item, FieldQuantity)
			qty, _ := IntOf(qtyRaw)
			o.Items = append(o.Items, models.OrderItem{
				MenuName: OrderItemFields.String(item, FieldMenuName, models.Placeholder),
				Quantity: qty,
				Notes:    OrderItemFields.String(item, FieldNotes, ""),
			})
		}
	}
	return o
}

func Orders(v interface{}) []models.Order {
	return lo.Map(Objects(v, "orders"), func(raw map[string]interface{}, _ int) models.Order {
		return ToOrder(raw)
	})
}

// UserCount reads the user-count response, which may be a bare number, a numeric string,
// {"userCount": n} or {"count": n}.
func UserCount(v interface{}) (int, bool) {
	if n, ok := IntOf(v); ok {
		return n, true
	}
	obj, ok := Object(v)
	if !ok {
		return 0, false
	}
	if raw, ok := AuthFields.Lookup(obj, FieldUserCount); ok {
		return IntOf(raw)
	}
	return 0, false
}
