package domain

// PaymentOrder statuses. Transitions move forward only, with one exception:
// a FAILED payment may go back to PAID when the gateway accepts a retry with
// a new payment id.
const (
	PaymentStatusCreated    = "created"
	PaymentStatusAuthorized = "authorized"
	PaymentStatusPaid       = "paid"
	PaymentStatusCaptured   = "captured"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"
)

const (
	OrderTypeProduct = "product"
	OrderTypePuja    = "puja"
	OrderTypePrasad  = "prasad"
	OrderTypeDarshan = "darshan"
	OrderTypeEvent   = "event"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Gateway webhook event names.
const (
	EventPaymentAuthorized = "payment.authorized"
	EventPaymentCaptured   = "payment.captured"
	EventPaymentFailed     = "payment.failed"
	EventOrderPaid         = "order.paid"
	EventRefundCreated     = "refund.created"
	EventRefundProcessed   = "refund.processed"
)

// IsSuccessfulPayment reports whether a payment status is a successful
// terminal state. A differing payment id on such an order is a conflict,
// not a retry.
func IsSuccessfulPayment(status string) bool {
	return status == PaymentStatusPaid || status == PaymentStatusCaptured
}
