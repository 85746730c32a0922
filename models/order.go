package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID             string          `json:"id"`
	TableID        string          `json:"tableId"`
	Status         string          `json:"status"`
	AssignedUserID string          `json:"assignedUserId"`
	AssignedStaff  string          `json:"assignedStaff"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	Items          []OrderItem     `json:"items"`
	CreatedAt      string          `json:"createdAt"`
}

type OrderItem struct {
	MenuName string `json:"menuName"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// Contents lists item names the way the order screen shows them, e.g. "2x Nasi Goreng".
func (o Order) Contents() []string {
	out := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		line := strconv.Itoa(item.Quantity) + "x " + item.MenuName
		if item.Notes != "" {
			line += " (" + item.Notes + ")"
		}
		out = append(out, line)
	}
	return out
}
