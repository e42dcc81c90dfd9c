package models

import "time"

// OrderStatusHistory is the append-only audit trail of order status changes.
// The first row for an order has PreviousStatus nil.
type OrderStatusHistory struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID        string    `gorm:"type:char(36);not null;index" json:"order_id"`
	Status         string    `gorm:"size:20;not null" json:"status"`
	PreviousStatus *string   `gorm:"size:20" json:"previous_status"`
	Note           string    `gorm:"size:255" json:"note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func (OrderStatusHistory) TableName() string {
	return "order_status_history"
}
