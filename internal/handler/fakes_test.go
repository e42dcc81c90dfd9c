package handler

import (
	"context"
	"sync"
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/booking"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/gateway"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakePayments struct {
	mu   sync.Mutex
	byID map[string]*models.PaymentOrder
}

func newFakePayments(pos ...*models.PaymentOrder) *fakePayments {
	f := &fakePayments{byID: make(map[string]*models.PaymentOrder)}
	for _, p := range pos {
		cp := *p
		f.byID[p.ID] = &cp
	}
	return f
}

func (f *fakePayments) Create(p *models.PaymentOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePayments) GetByID(id string) (*models.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) GetByGatewayOrderID(gid string) (*models.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.GatewayOrderID == gid {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayments) GetByGatewayPaymentID(pid string) (*models.PaymentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.byID {
		if p.GatewayPaymentID != nil && *p.GatewayPaymentID == pid {
			cp := *p
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayments) UpdateFields(id string, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "status":
			p.Status = v.(string)
		case "gateway_payment_id":
			s := v.(string)
			p.GatewayPaymentID = &s
		case "signature":
			p.Signature = v.(string)
		case "failure_reason":
			p.FailureReason = v.(string)
		case "amount":
			p.Amount = v.(int64)
		case "captured_at":
			t := v.(time.Time)
			p.CapturedAt = &t
		case "metadata":
			if j, ok := v.(datatypes.JSON); ok {
				p.Metadata = j
			}
		}
	}
	return nil
}

func (f *fakePayments) ClaimOrderPointer(id, orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byID[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if p.OrderID != nil {
		return false, nil
	}
	p.OrderID = &orderID
	return true, nil
}

type fakeOrders struct {
	mu          sync.Mutex
	orders      map[string]*models.Order
	items       map[string][]models.OrderItem
	history     map[string][]models.OrderStatusHistory
	createCalls int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{
		orders:  make(map[string]*models.Order),
		items:   make(map[string][]models.OrderItem),
		history: make(map[string][]models.OrderStatusHistory),
	}
}

func (f *fakeOrders) Create(o *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	cp := *o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeOrders) GetByID(id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) CreateItems(items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		f.items[it.OrderID] = append(f.items[it.OrderID], it)
	}
	return nil
}

func (f *fakeOrders) HasItems(orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items[orderID]) > 0, nil
}

func (f *fakeOrders) CreateStatusHistory(h *models.OrderStatusHistory) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history[h.OrderID] = append(f.history[h.OrderID], *h)
	return nil
}

func (f *fakeOrders) HasStatusHistory(orderID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.history[orderID]) > 0, nil
}

type fakeBookings struct {
	existing  []booking.Booking
	created   []booking.CreateRequest
	createErr error
}

func (f *fakeBookings) ListUserBookings(ctx context.Context, userID, token string) ([]booking.Booking, error) {
	return f.existing, nil
}

func (f *fakeBookings) CreateBooking(ctx context.Context, req booking.CreateRequest, token string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, req)
	return nil
}

type fakeGateway struct {
	captureCalls int
	captureErr   error
}

func (f *fakeGateway) CreateOrder(ctx context.Context, r gateway.CreateOrderRequest) (*gateway.Order, error) {
	return &gateway.Order{ID: "order_gw", Amount: r.Amount, Currency: r.Currency, Status: "created"}, nil
}

func (f *fakeGateway) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*gateway.Payment, error) {
	f.captureCalls++
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	return &gateway.Payment{ID: paymentID, Amount: amount, Currency: currency, Status: "captured", Captured: true}, nil
}
