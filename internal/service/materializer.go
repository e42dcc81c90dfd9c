package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/internal/domain"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/booking"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/identifier"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrValidation means the pending order data cannot produce a valid order.
	// No state is mutated.
	ErrValidation = errors.New("materializer: invalid pending order data")

	// ErrDuplicateBooking means the user already holds a booking for the same
	// date and timeslot. No order is created.
	ErrDuplicateBooking = errors.New("materializer: duplicate event booking")
)

// PaymentOrderStore is the slice of the payment-order repository the
// materializer and the handlers depend on. The gorm repository satisfies it in
// production; tests plug in an in-memory fake.
type PaymentOrderStore interface {
	Create(p *models.PaymentOrder) error
	GetByID(id string) (*models.PaymentOrder, error)
	GetByGatewayOrderID(gatewayOrderID string) (*models.PaymentOrder, error)
	GetByGatewayPaymentID(gatewayPaymentID string) (*models.PaymentOrder, error)
	UpdateFields(id string, fields map[string]interface{}) error
	ClaimOrderPointer(id, orderID string) (bool, error)
}

// OrderStore is the slice of the order repository the materializer needs.
type OrderStore interface {
	Create(o *models.Order) error
	GetByID(id string) (*models.Order, error)
	CreateItems(items []models.OrderItem) error
	HasItems(orderID string) (bool, error)
	CreateStatusHistory(h *models.OrderStatusHistory) error
	HasStatusHistory(orderID string) (bool, error)
}

// Materializer turns a staged pending-order snapshot into exactly one Order
// per PaymentOrder. Both the verify path and the webhook path call it, in any
// order and any number of times; the conditional order-pointer claim on the
// PaymentOrder row makes repeated and concurrent invocation safe.
type Materializer struct {
	payments    PaymentOrderStore
	orders      OrderStore
	bookings    booking.Service
	gatewayName string
}

func NewMaterializer(payments PaymentOrderStore, orders OrderStore, bookings booking.Service, gatewayName string) *Materializer {
	return &Materializer{payments: payments, orders: orders, bookings: bookings, gatewayName: gatewayName}
}

// Materialize creates the Order for po from pending, or returns the one that
// already exists. accessToken carries the end user's credentials for the
// booking side-calls; the webhook path passes "".
//
// Failure semantics: anything after the pointer claim is non-fatal. Once the
// claim lands the Order is authoritative, and gaps in items, history or the
// event booking are repaired by a later retry or out of band, never by rolling
// the Order back.
func (m *Materializer) Materialize(ctx context.Context, po *models.PaymentOrder, pending *models.PendingOrderData, accessToken string) (*models.Order, error) {
	if pending == nil || pending.OrderType == "" {
		return nil, fmt.Errorf("%w: order type required", ErrValidation)
	}
	userID := identifier.Sanitize(pending.UserID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id missing or malformed", ErrValidation)
	}
	for i, it := range pending.Items {
		if it.ItemType == "" {
			return nil, fmt.Errorf("%w: item %d has no item type", ErrValidation, i)
		}
	}

	// Idempotency check: the pointer is the single source of truth for "this
	// payment already produced an order".
	if po.OrderID != nil {
		return m.repairExisting(ctx, *po.OrderID, pending, accessToken)
	}

	requested := booking.NormalizeSlots(pending.PreferredDate, pending.PreferredTimeSlot)
	if pending.OrderType == domain.OrderTypeEvent && len(requested) > 0 {
		existing, err := m.bookings.ListUserBookings(ctx, userID, accessToken)
		if err != nil {
			// Availability check is best-effort: an unreachable booking
			// service must not block a paid order.
			log.Printf("[MATERIALIZER] booking availability check failed for payment_order=%s: %v", po.ID, err)
		} else {
			for _, b := range existing {
				if booking.HasOverlap(requested, b.Slots()) {
					return nil, ErrDuplicateBooking
				}
			}
		}
	}

	// Claim the pointer before any order row exists. Only the winner of this
	// conditional write creates the Order and its children.
	orderID := uuid.NewString()
	won, err := m.payments.ClaimOrderPointer(po.ID, orderID)
	if err != nil {
		return nil, err
	}
	if !won {
		fresh, err := m.payments.GetByID(po.ID)
		if err != nil {
			return nil, err
		}
		if fresh.OrderID == nil {
			return nil, fmt.Errorf("materializer: lost claim but pointer unset for payment_order=%s", po.ID)
		}
		return m.loadExisting(*fresh.OrderID)
	}
	po.OrderID = &orderID

	now := time.Now()
	order := &models.Order{
		ID:            orderID,
		OrderNumber:   newOrderNumber(now),
		UserID:        userID,
		TempleID:      sanitizeRef(pending.TempleID),
		AddressID:     sanitizeRef(pending.AddressID),
		OrderType:     pending.OrderType,
		Status:        orderStatus(pending.Status),
		PaymentStatus: domain.PaymentStatusPaid,
		PaymentMethod: m.gatewayName,
		Subtotal:      normalizeAmount(pending.Subtotal),
		Discount:      normalizeAmount(pending.Discount),
		Tax:           normalizeAmount(pending.Tax),
		Total:         normalizeAmount(pending.Total),
		ContactName:   pending.ContactName,
		ContactEmail:  pending.ContactEmail,
		ContactPhone:  pending.ContactPhone,
		ShippingAddr:  pending.ShippingAddress,
		DeliveryNotes: pending.DeliveryNotes,
		PaidAt:        &now,
	}
	if err := m.orders.Create(order); err != nil {
		// The pointer now names an order row that failed to insert. Surface
		// the error; the next invocation will fail the idempotency load and
		// flag the payment for reconciliation.
		log.Printf("[MATERIALIZER] order insert failed after claim payment_order=%s order=%s: %v", po.ID, orderID, err)
		return nil, err
	}

	m.createItems(order, pending)
	m.createInitialHistory(order)

	if pending.OrderType == domain.OrderTypeEvent && len(requested) > 0 {
		m.createBooking(ctx, order, pending, requested, accessToken)
	}
	return order, nil
}

// repairExisting returns the already-materialized order and, when the caller
// still holds the pending snapshot, re-runs the guarded child-row creation so
// a retry after a partial failure fills in missing items, history or the
// event booking. The guards make this a no-op on a fully materialized order.
func (m *Materializer) repairExisting(ctx context.Context, orderID string, pending *models.PendingOrderData, accessToken string) (*models.Order, error) {
	order, err := m.loadExisting(orderID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		m.createItems(order, pending)
		m.createInitialHistory(order)
	}
	return order, nil
}

// loadExisting fetches the already-materialized order behind the pointer,
// tolerating the small window where the claim winner has not inserted the
// order row yet.
func (m *Materializer) loadExisting(orderID string) (*models.Order, error) {
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		o, err := m.orders.GetByID(orderID)
		if err == nil {
			return o, nil
		}
		lastErr = err
		time.Sleep(100 * time.Millisecond)
	}
	return nil, fmt.Errorf("materializer: order %s claimed but not readable: %w", orderID, lastErr)
}

func (m *Materializer) createItems(order *models.Order, pending *models.PendingOrderData) {
	if len(pending.Items) == 0 {
		return
	}
	has, err := m.orders.HasItems(order.ID)
	if err != nil || has {
		if err != nil {
			log.Printf("[MATERIALIZER] item existence check failed order=%s: %v", order.ID, err)
		}
		return
	}
	items := make([]models.OrderItem, 0, len(pending.Items))
	for _, it := range pending.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			ID:         uuid.NewString(),
			OrderID:    order.ID,
			ItemType:   it.ItemType,
			ItemID:     sanitizeRef(it.ItemID),
			Name:       it.Name,
			Quantity:   qty,
			UnitPrice:  normalizeAmount(it.UnitPrice),
			TotalPrice: normalizeAmount(it.TotalPrice),
		})
	}
	if err := m.orders.CreateItems(items); err != nil {
		log.Printf("[MATERIALIZER] item insert failed order=%s: %v", order.ID, err)
	}
}

func (m *Materializer) createInitialHistory(order *models.Order) {
	has, err := m.orders.HasStatusHistory(order.ID)
	if err != nil || has {
		if err != nil {
			log.Printf("[MATERIALIZER] history existence check failed order=%s: %v", order.ID, err)
		}
		return
	}
	h := &models.OrderStatusHistory{
		ID:             uuid.NewString(),
		OrderID:        order.ID,
		Status:         order.Status,
		PreviousStatus: nil,
		Note:           "order created from confirmed payment",
	}
	if err := m.orders.CreateStatusHistory(h); err != nil {
		log.Printf("[MATERIALIZER] history insert failed order=%s: %v", order.ID, err)
	}
}

func (m *Materializer) createBooking(ctx context.Context, order *models.Order, pending *models.PendingOrderData, slots []booking.DateSlot, accessToken string) {
	req := booking.CreateRequest{
		UserID:            order.UserID,
		OrderID:           order.ID,
		PreferredTimeSlot: make(map[string]string, len(slots)),
		NumberOfPeople:    pending.NumberOfPeople,
	}
	for _, ds := range slots {
		req.PreferredDate = append(req.PreferredDate, ds.Date)
		req.PreferredTimeSlot[ds.Date] = ds.Slot
	}
	for _, mem := range pending.Members {
		req.Members = append(req.Members, booking.Member{Name: mem.Name, Age: mem.Age, Gender: mem.Gender})
	}
	if err := m.bookings.CreateBooking(ctx, req, accessToken); err != nil {
		// Never undo the committed order over a booking side-call.
		log.Printf("[MATERIALIZER] booking creation failed order=%s: %v", order.ID, err)
	}
}

func sanitizeRef(ref *string) *string {
	if ref == nil {
		return nil
	}
	if clean := identifier.Sanitize(*ref); clean != "" {
		return &clean
	}
	return nil
}

func normalizeAmount(s string) string {
	if s == "" {
		return "0.00"
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}

func orderStatus(requested string) string {
	if requested == "" {
		return domain.OrderStatusPending
	}
	return requested
}

func newOrderNumber(t time.Time) string {
	return fmt.Sprintf("ORD-%s-%s", t.Format("20060102"), uuid.NewString()[:8])
}
