package gateway

import (
	"context"
	"fmt"
	"time"
)

// Stub is a no-op gateway for development and tests.
type Stub struct{}

func (s *Stub) CreateOrder(ctx context.Context, r CreateOrderRequest) (*Order, error) {
	return &Order{
		ID:        fmt.Sprintf("order_stub_%d", time.Now().UnixNano()),
		Amount:    r.Amount,
		Currency:  r.Currency,
		Receipt:   r.Receipt,
		Status:    "created",
		CreatedAt: time.Now().Unix(),
	}, nil
}

func (s *Stub) CapturePayment(ctx context.Context, paymentID string, amount int64, currency string) (*Payment, error) {
	return &Payment{
		ID:        paymentID,
		Amount:    amount,
		Currency:  currency,
		Status:    "captured",
		Captured:  true,
		CreatedAt: time.Now().Unix(),
	}, nil
}
