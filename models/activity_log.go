package models

// Action types the API is known to emit. Staff can also record free-form actions, so any other
// uppercase token is valid too.
const (
	ActionLogin        = "LOGIN"
	ActionLogout       = "LOGOUT"
	ActionCreate       = "CREATE"
	ActionUpdate       = "UPDATE"
	ActionStatusUpdate = "STATUS_UPDATE"
	ActionDelete       = "DELETE"
)

// Placeholder shown for display fields the server did not send.
const Placeholder = "—"

type ActivityLog struct {
	ID         string      `json:"id"`
	UserID     string      `json:"userId"`
	UserEmail  string      `json:"userEmail"`
	ActionType string      `json:"actionType"`
	EntityType string      `json:"entityType"`
	EntityID   string      `json:"entityId"`
	Details    interface{} `json:"details,omitempty"`
	Message    string      `json:"message"`
	CreatedAt  string      `json:"createdAt"`
}
