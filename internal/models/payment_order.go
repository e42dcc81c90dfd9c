package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// PaymentOrder mirrors a gateway order and its payment lifecycle. OrderID is
// the idempotency pointer: once set it proves an Order has been materialized
// for this payment, and it is only ever written through the conditional claim
// update in the repository.
type PaymentOrder struct {
	ID               string         `gorm:"type:char(36);primaryKey" json:"id"`
	UserID           string         `gorm:"type:char(36);not null;index" json:"user_id"`
	GatewayOrderID   string         `gorm:"size:64;not null;uniqueIndex" json:"gateway_order_id"`
	GatewayPaymentID *string        `gorm:"size:64;uniqueIndex" json:"gateway_payment_id"`
	Signature        string         `gorm:"size:128" json:"-"`
	Status           string         `gorm:"size:20;not null;index" json:"status"` // created, authorized, paid, captured, failed, refunded
	Amount           int64          `gorm:"not null" json:"amount"`               // minor units
	Currency         string         `gorm:"size:3;not null" json:"currency"`
	Receipt          string         `gorm:"size:64" json:"receipt"`
	ContactName      string         `gorm:"size:120" json:"contact_name"`
	ContactEmail     string         `gorm:"size:255" json:"contact_email"`
	ContactPhone     string         `gorm:"size:20" json:"contact_phone"`
	OrderID          *string        `gorm:"type:char(36);uniqueIndex" json:"order_id"`
	Metadata         datatypes.JSON `gorm:"type:json" json:"-"`
	FailureReason    string         `gorm:"size:255" json:"failure_reason,omitempty"`
	CapturedAt       *time.Time     `json:"captured_at"`
	ExpiresAt        *time.Time     `json:"expires_at"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

func (PaymentOrder) TableName() string {
	return "payment_orders"
}

// PaymentOrderMetadata is the reconciliation scratch space serialized into the
// Metadata column. Each concern gets a named optional field instead of sharing
// one untyped bag.
type PaymentOrderMetadata struct {
	StagedPendingOrder *PendingOrderData `json:"staged_pending_order,omitempty"`
	GatewaySnapshot    json.RawMessage   `json:"gateway_snapshot,omitempty"`
	PaidAt             *time.Time        `json:"paid_at,omitempty"`
	FailedAt           *time.Time        `json:"failed_at,omitempty"`
}

// DecodeMetadata returns the parsed metadata record, empty when the column is
// null or blank.
func (p *PaymentOrder) DecodeMetadata() (PaymentOrderMetadata, error) {
	var m PaymentOrderMetadata
	if len(p.Metadata) == 0 {
		return m, nil
	}
	err := json.Unmarshal(p.Metadata, &m)
	return m, err
}

// EncodeMetadata serializes m back into the Metadata column value.
func EncodeMetadata(m PaymentOrderMetadata) (datatypes.JSON, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// PendingOrderData is the full snapshot of the order-to-be-created, staged by
// the verify path so the webhook path can finish materialization without the
// caller's payload. Monetary fields are decimal strings.
type PendingOrderData struct {
	UserID    string `json:"user_id"`
	OrderType string `json:"order_type"`
	Status    string `json:"status,omitempty"`

	TempleID  *string `json:"temple_id,omitempty"`
	AddressID *string `json:"address_id,omitempty"`

	Subtotal string `json:"subtotal"`
	Discount string `json:"discount,omitempty"`
	Tax      string `json:"tax,omitempty"`
	Total    string `json:"total"`

	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`

	ShippingAddress string `json:"shipping_address,omitempty"`
	DeliveryNotes   string `json:"delivery_notes,omitempty"`

	Items []PendingOrderItem `json:"items"`

	// Event bookings only. The date/slot fields arrive in three historical
	// shapes (single string, parallel arrays, per-date map) and are kept raw
	// until booking.NormalizeSlots flattens them.
	PreferredDate     json.RawMessage `json:"preferred_date,omitempty"`
	PreferredTimeSlot json.RawMessage `json:"preferred_time_slot,omitempty"`
	NumberOfPeople    int             `json:"number_of_people,omitempty"`
	Members           []BookingMember `json:"members,omitempty"`
}

type PendingOrderItem struct {
	ItemType   string  `json:"item_type"`
	ItemID     *string `json:"item_id,omitempty"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	UnitPrice  string  `json:"unit_price"`
	TotalPrice string  `json:"total_price"`
}

type BookingMember struct {
	Name   string `json:"name"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}
