package sandbox

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/restaurant-console/utils"
)

// Layout the sandbox uses for activity-log timestamps: space separated, microseconds, no zone.
const logTimeLayout = "2006-01-02 15:04:05.000000"

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255); not null" json:"name"`
	Email     string    `gorm:"type:varchar(255); unique;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255); not null" json:"-"`
	Role      string    `gorm:"type:varchar(255); not null" json:"role"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

type Table struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TableNumber string    `gorm:"type:varchar(50);not null" json:"table_number"`
	Status      string    `gorm:"type:varchar(50);not null;default:'available'" json:"status"`
	CreatedAt   time.Time `gorm:"not null" json:"-"`
	UpdatedAt   time.Time `gorm:"not null" json:"-"`
}

type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TableID         uint      `gorm:"not null;index" json:"table_id"`
	Salon           string    `gorm:"type:varchar(50);not null;default:'main'" json:"salon"`
	CustomerName    string    `gorm:"type:varchar(255);not null" json:"customer_name"`
	CustomerPhone   string    `gorm:"type:varchar(50);not null" json:"customer_phone"`
	ReservationTime time.Time `gorm:"not null;index" json:"-"`
	SpecialRequests string    `gorm:"type:text" json:"special_requests"`
	StatusID        int       `gorm:"not null;default:1" json:"status_id"`
	CreatedBy       uint      `gorm:"not null" json:"created_by"`
	CreatedAt       time.Time `json:"-"`
	UpdatedAt       time.Time `json:"-"`
}

// MarshalJSON writes reservation_time as a zone-less wall-clock value.
func (r Reservation) MarshalJSON() ([]byte, error) {
	type alias Reservation
	return json.Marshal(struct {
		alias
		ReservationTime string `json:"reservation_time"`
	}{
		alias:           alias(r),
		ReservationTime: r.ReservationTime.UTC().Format(utils.WallClockLayout),
	})
}

type ActivityLog struct {
	ID         uint   `gorm:"primaryKey"`
	UserID     *uint  `gorm:"index"`
	UserEmail  string `gorm:"type:varchar(255)"`
	ActionType string `gorm:"type:varchar(50);not null;index"`
	EntityType string `gorm:"type:varchar(50);not null"`
	EntityID   string `gorm:"type:varchar(50)"`
	// Details holds a JSON document such as {"message": "..."} as text.
	Details   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// MarshalJSON uses snake_case keys and a microsecond timestamp without zone.
func (l ActivityLog) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"id":          l.ID,
		"user_id":     l.UserID,
		"user_email":  l.UserEmail,
		"action_type": l.ActionType,
		"entity_type": l.EntityType,
		"entity_id":   l.EntityID,
		"details":     l.Details,
		"created_at":  l.CreatedAt.UTC().Format(logTimeLayout),
	})
}

type Menu struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Name      string          `gorm:"type:varchar(255); not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2); not null" json:"price"`
	CreatedAt time.Time       `json:"-"`
	UpdatedAt time.Time       `json:"-"`
}

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	TableID     uint            `json:"table_id"`
	Table       Table           `gorm:"foreignKey:TableID" json:"table"`
	Status      string          `gorm:"type:varchar(20);not null;default:'pending_payment'" json:"status"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	ChefID      *uint           `gorm:"index" json:"chef_id,omitempty"`
	Chef        *User           `gorm:"foreignKey:ChefID" json:"chef,omitempty"`
	OrderItems  []OrderItem     `gorm:"foreignKey:OrderID" json:"order_items"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

type OrderItem struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	OrderID  uint            `gorm:"not null;index" json:"order_id"`
	MenuID   uint            `gorm:"not null" json:"menu_id"`
	Menu     Menu            `gorm:"foreignKey:MenuID" json:"menu"`
	Quantity int             `gorm:"not null" json:"quantity"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Notes    string          `gorm:"type:text" json:"notes"`
}
