package query

import (
	"strings"

	"github.com/yeremiapane/restaurant-console/models"
	"github.com/yeremiapane/restaurant-console/normalizer"
	"github.com/yeremiapane/restaurant-console/utils"
)

// Filter keys understood by the schemas below.
const (
	FilterActionType     = "actionType"
	FilterEntityType     = "entityType"
	FilterEntityID       = "entityId"
	FilterUserID         = "userId"
	FilterAssignedUserID = "assignedUserId"
	FilterStatus         = "status"
	FilterTableID        = "tableId"
)

// searchable turns a display placeholder into the empty string so "—" never matches a search.
func searchable(s string) string {
	if s == models.Placeholder {
		return ""
	}
	return s
}

var ActivityLogSchema = Schema[models.ActivityLog]{
	SearchFields: func(l models.ActivityLog) []string {
		return []string{searchable(l.Message), searchable(l.ActionType), searchable(l.EntityType), searchable(l.UserEmail)}
	},
	Filters: map[string]func(models.ActivityLog) string{
		FilterActionType: func(l models.ActivityLog) string { return searchable(l.ActionType) },
		FilterEntityType: func(l models.ActivityLog) string { return searchable(l.EntityType) },
		FilterEntityID:   func(l models.ActivityLog) string { return searchable(l.EntityID) },
		FilterUserID:     func(l models.ActivityLog) string { return searchable(l.UserID) },
	},
	Timestamp: func(l models.ActivityLog) string { return l.CreatedAt },
}

var OrderSchema = Schema[models.Order]{
	SearchFields: func(o models.Order) []string {
		return append(o.Contents(), o.AssignedStaff, o.TableID)
	},
	Filters: map[string]func(models.Order) string{
		FilterAssignedUserID: func(o models.Order) string { return o.AssignedUserID },
		FilterStatus:         func(o models.Order) string { return o.Status },
		FilterTableID:        func(o models.Order) string { return o.TableID },
	},
	Timestamp: func(o models.Order) string { return o.CreatedAt },
}

var ReservationSchema = Schema[models.Reservation]{
	SearchFields: func(r models.Reservation) []string {
		return []string{r.CustomerName, r.CustomerPhone, r.TableID, r.SpecialRequest}
	},
	Filters: map[string]func(models.Reservation) string{
		FilterStatus:  func(r models.Reservation) string { return r.StatusID.String() },
		FilterTableID: func(r models.Reservation) string { return r.TableID },
	},
	Timestamp: func(r models.Reservation) string {
		if r.ReservationTime.IsZero() {
			return ""
		}
		return r.ReservationTime.Format(utils.WallClockLayout)
	},
}

// MatchEntity reports whether a log targets the given entity. A blank coordinate matches any
// value, so it also serves lookups where only the type or only the id is known.
func MatchEntity(entityType, entityID string) func(models.ActivityLog) bool {
	wantType := normalizer.NormalizeToken(entityType)
	wantID := strings.TrimSpace(entityID)
	return func(l models.ActivityLog) bool {
		if wantType != "" && normalizer.NormalizeToken(searchable(l.EntityType)) != wantType {
			return false
		}
		if wantID != "" && strings.TrimSpace(searchable(l.EntityID)) != wantID {
			return false
		}
		return true
	}
}
