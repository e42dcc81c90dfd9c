package models

import "time"

// Order is the downstream commerce order. Created at most once per
// PaymentOrder by the materializer; the PaymentOrder.OrderID claim enforces
// that. Money columns hold exact decimal strings, never floats.
type Order struct {
	ID            string     `gorm:"type:char(36);primaryKey" json:"id"`
	OrderNumber   string     `gorm:"size:32;not null;uniqueIndex" json:"order_number"`
	UserID        string     `gorm:"type:char(36);not null;index" json:"user_id"`
	TempleID      *string    `gorm:"type:char(36)" json:"temple_id"`
	AddressID     *string    `gorm:"type:char(36)" json:"address_id"`
	OrderType     string     `gorm:"size:20;not null" json:"order_type"` // product, puja, prasad, darshan, event
	Status        string     `gorm:"size:20;not null;index" json:"status"`
	PaymentStatus string     `gorm:"size:20;not null" json:"payment_status"`
	PaymentMethod string     `gorm:"size:30" json:"payment_method"`
	Subtotal      string     `gorm:"size:20;not null" json:"subtotal"`
	Discount      string     `gorm:"size:20" json:"discount"`
	Tax           string     `gorm:"size:20" json:"tax"`
	Total         string     `gorm:"size:20;not null" json:"total"`
	ContactName   string     `gorm:"size:120" json:"contact_name"`
	ContactEmail  string     `gorm:"size:255" json:"contact_email"`
	ContactPhone  string     `gorm:"size:20" json:"contact_phone"`
	ShippingAddr  string     `gorm:"size:500" json:"shipping_address"`
	DeliveryNotes string     `gorm:"size:500" json:"delivery_notes"`
	PaidAt        *time.Time `json:"paid_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Items   []OrderItem          `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	History []OrderStatusHistory `gorm:"foreignKey:OrderID" json:"history,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}
