package models

import "time"

// OrderItem is a line item under an Order. ItemType is mandatory; ItemID is an
// optional catalog reference and degrades to null when the caller sends a
// malformed id.
type OrderItem struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID    string    `gorm:"type:char(36);not null;index" json:"order_id"`
	ItemType   string    `gorm:"size:30;not null" json:"item_type"`
	ItemID     *string   `gorm:"type:char(36)" json:"item_id"`
	Name       string    `gorm:"size:255" json:"name"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitPrice  string    `gorm:"size:20;not null" json:"unit_price"`
	TotalPrice string    `gorm:"size:20;not null" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
