package normalizer

import (
	"strings"
)

// FieldTable maps a canonical field name to the keys it has been observed under, in the order
// they are tried. A key containing dots walks nested objects ("table.id").
type FieldTable map[string][]string

// Lookup returns the first candidate value that is present and not null.
func (t FieldTable) Lookup(raw map[string]interface{}, field string) (interface{}, bool) {
	candidates, ok := t[field]
	if !ok {
		candidates = []string{field}
	}
	for _, key := range candidates {
		if v, ok := lookupPath(raw, key); ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String resolves field as text, falling back when every candidate is absent or blank.
func (t FieldTable) String(raw map[string]interface{}, field, fallback string) string {
	v, ok := t.Lookup(raw, field)
	if !ok {
		return fallback
	}
	if s := StringOf(v); s != "" {
		return s
	}
	return fallback
}

func lookupPath(raw map[string]interface{}, key string) (interface{}, bool) {
	if !strings.Contains(key, ".") {
		v, ok := raw[key]
		return v, ok
	}

	var cur interface{} = raw
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Canonical field names shared by the tables below.
const (
	FieldID              = "id"
	FieldTableID         = "tableId"
	FieldCustomerName    = "customerName"
	FieldFirstName       = "firstName"
	FieldLastName        = "lastName"
	FieldCustomerPhone   = "customerPhone"
	FieldReservationTime = "reservationTime"
	FieldDate            = "date"
	FieldTime            = "time"
	FieldSpecialRequest  = "specialRequest"
	FieldStatusID        = "statusId"
	FieldCreatedBy       = "createdBy"

	FieldUserID     = "userId"
	FieldUserEmail  = "userEmail"
	FieldActionType = "actionType"
	FieldEntityType = "entityType"
	FieldEntityID   = "entityId"
	FieldDetails    = "details"
	FieldCreatedAt  = "createdAt"

	FieldStatus         = "status"
	FieldAssignedUserID = "assignedUserId"
	FieldAssignedStaff  = "assignedStaff"
	FieldTotalAmount    = "totalAmount"
	FieldItems          = "items"
	FieldMenuName       = "menuName"
	FieldQuantity       = "quantity"
	FieldNotes          = "notes"

	FieldUserCount = "userCount"
	FieldToken     = "token"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldRole      = "role"
)

var ReservationFields = FieldTable{
	FieldID:              {"id", "reservationId", "reservation_id", "ID"},
	FieldTableID:         {"tableId", "table_id", "table.id", "TableID"},
	FieldCustomerName:    {"customerName", "customer_name"},
	FieldFirstName:       {"firstName", "first_name", "customerFirstName", "customer_first_name"},
	FieldLastName:        {"lastName", "last_name", "customerLastName", "customer_last_name"},
	FieldCustomerPhone:   {"customerPhone", "customer_phone", "phone", "phoneNumber", "phone_number"},
	FieldReservationTime: {"reservationTime", "reservation_time", "reservationDateTime", "reservation_date_time"},
	FieldDate:            {"date", "reservationDate", "reservation_date"},
	FieldTime:            {"time", "reservationHour", "reservation_hour"},
	FieldSpecialRequest:  {"specialRequest", "special_request", "specialRequests", "special_requests"},
	FieldStatusID:        {"statusId", "status_id", "status"},
	FieldCreatedBy:       {"createdBy", "created_by", "createdById", "created_by_id", "userId", "user_id"},
}

var ActivityLogFields = FieldTable{
	FieldID:         {"id", "logId", "log_id", "ID"},
	FieldUserID:     {"userId", "user_id", "user.id"},
	FieldUserEmail:  {"userEmail", "user_email", "email", "user.email"},
	FieldActionType: {"actionType", "action_type", "action"},
	FieldEntityType: {"entityType", "entity_type"},
	FieldEntityID:   {"entityId", "entity_id"},
	FieldDetails:    {"details", "detail", "message"},
	FieldCreatedAt:  {"createdAt", "created_at", "timestamp"},
}

var OrderFields = FieldTable{
	FieldID:             {"id", "orderId", "order_id", "ID"},
	FieldTableID:        {"tableId", "table_id", "tableNumber", "table_number", "table.id"},
	FieldStatus:         {"status", "orderStatus", "order_status"},
	FieldAssignedUserID: {"assignedUserId", "assigned_user_id", "staffId", "staff_id", "chefId", "chef_id", "assignedTo.id", "chef.id"},
	FieldAssignedStaff:  {"assignedStaffName", "assigned_staff_name", "staffName", "staff_name", "assignedTo.name", "chef.name"},
	FieldTotalAmount:    {"totalAmount", "total_amount", "total"},
	FieldItems:          {"items", "orderItems", "order_items"},
	FieldCreatedAt:      {"createdAt", "created_at"},
}

var OrderItemFields = FieldTable{
	FieldMenuName: {"menuName", "menu_name", "name", "menu.name"},
	FieldQuantity: {"quantity", "qty"},
	FieldNotes:    {"notes", "note"},
}

var AuthFields = FieldTable{
	FieldToken:     {"token", "accessToken", "access_token", "data.token"},
	FieldUserCount: {"userCount", "user_count", "count"},
	FieldID:        {"user.id", "userId", "user_id", "data.user.id"},
	FieldName:      {"user.name", "name", "data.user.name"},
	FieldEmail:     {"user.email", "email", "data.user.email"},
	FieldRole:      {"user.role", "role", "user_role", "data.user_role", "data.user.role"},
}
