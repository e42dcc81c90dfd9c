package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GWC-Data/omg-order-and-payment-service/config"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/domain"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/service"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/signature"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func webhookRouter(cfg *config.Config, payments *fakePayments, orders *fakeOrders, bookings *fakeBookings) *gin.Engine {
	gin.SetMode(gin.TestMode)
	mat := service.NewMaterializer(payments, orders, bookings, cfg.Gateway.Name)
	h := NewWebhookHandler(cfg, payments, mat)
	r := gin.New()
	r.POST("/webhooks/payment", h.Handle)
	return r
}

func postWebhook(t *testing.T, r *gin.Engine, secret string, event map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(event)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Signature", signature.Sign(body, secret))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func capturedEvent(gatewayOrderID, paymentID string) map[string]interface{} {
	return map[string]interface{}{
		"event": "payment.captured",
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":       paymentID,
					"order_id": gatewayOrderID,
					"amount":   50000,
					"currency": "INR",
					"status":   "captured",
				},
			},
		},
		"created_at": 1756400000,
	}
}

func stagedMetadata(t *testing.T, pending *models.PendingOrderData) []byte {
	t.Helper()
	encoded, err := models.EncodeMetadata(models.PaymentOrderMetadata{StagedPendingOrder: pending})
	require.NoError(t, err)
	return encoded
}

func TestWebhook_InvalidSignature(t *testing.T) {
	po := createdPaymentOrder()
	payments := newFakePayments(po)
	r := webhookRouter(testConfig(), payments, newFakeOrders(), &fakeBookings{})

	w := postWebhook(t, r, "wrong-secret", capturedEvent(po.GatewayOrderID, "pay_1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, _ := payments.GetByID(po.ID)
	assert.Equal(t, domain.PaymentStatusCreated, stored.Status)
}

func TestWebhook_FailsClosedWithoutConfiguredSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Gateway.WebhookSecret = ""
	po := createdPaymentOrder()
	r := webhookRouter(cfg, newFakePayments(po), newFakeOrders(), &fakeBookings{})

	w := postWebhook(t, r, "", capturedEvent(po.GatewayOrderID, "pay_1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_CapturedMaterializesStagedOrder(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	po.Status = domain.PaymentStatusPaid
	pending := &models.PendingOrderData{
		UserID:    po.UserID,
		OrderType: domain.OrderTypeProduct,
		Subtotal:  "500.00",
		Total:     "500.00",
		Items: []models.PendingOrderItem{
			{ItemType: "product", Name: "Incense", Quantity: 1, UnitPrice: "500.00", TotalPrice: "500.00"},
		},
	}
	po.Metadata = stagedMetadata(t, pending)
	payments := newFakePayments(po)
	orders := newFakeOrders()
	r := webhookRouter(cfg, payments, orders, &fakeBookings{})

	w := postWebhook(t, r, cfg.Gateway.WebhookSecret, capturedEvent(po.GatewayOrderID, "pay_1"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.OrderID)
	assert.Equal(t, 1, orders.createCalls)
	assert.Len(t, orders.items[resp.OrderID], 1)

	stored, _ := payments.GetByID(po.ID)
	assert.Equal(t, domain.PaymentStatusCaptured, stored.Status)
	assert.NotNil(t, stored.CapturedAt)
}

func TestWebhook_CapturedWithoutStagedDataSkipsMaterialization(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	payments := newFakePayments(po)
	orders := newFakeOrders()
	r := webhookRouter(cfg, payments, orders, &fakeBookings{})

	w := postWebhook(t, r, cfg.Gateway.WebhookSecret, capturedEvent(po.GatewayOrderID, "pay_1"))
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := payments.GetByID(po.ID)
	assert.Equal(t, domain.PaymentStatusCaptured, stored.Status)
	assert.Nil(t, stored.OrderID)
	assert.Equal(t, 0, orders.createCalls)
}

// Webhook-only delivery records the capture; a later verify call with the
// full payload still produces exactly one order.
func TestWebhook_ThenVerifyCreatesSingleOrder(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	payments := newFakePayments(po)
	orders := newFakeOrders()
	bookings := &fakeBookings{}

	wr := webhookRouter(cfg, payments, orders, bookings)
	w := postWebhook(t, wr, cfg.Gateway.WebhookSecret, capturedEvent(po.GatewayOrderID, "pay_1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, orders.createCalls)

	vr := verifyRouter(cfg, payments, orders, bookings)
	vw := postJSON(t, vr, "/verify", verifyBody(po, "pay_1"))
	require.Equal(t, http.StatusOK, vw.Code, vw.Body.String())
	assert.Equal(t, 1, orders.createCalls)
}

func TestWebhook_RedeliveryCreatesNoDuplicate(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	po.Metadata = stagedMetadata(t, &models.PendingOrderData{
		UserID:    po.UserID,
		OrderType: domain.OrderTypeProduct,
		Total:     "100.00",
		Items:     []models.PendingOrderItem{{ItemType: "product", Name: "Flowers", Quantity: 1, UnitPrice: "100.00", TotalPrice: "100.00"}},
	})
	payments := newFakePayments(po)
	orders := newFakeOrders()
	r := webhookRouter(cfg, payments, orders, &fakeBookings{})

	for i := 0; i < 3; i++ {
		w := postWebhook(t, r, cfg.Gateway.WebhookSecret, capturedEvent(po.GatewayOrderID, "pay_1"))
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 1, orders.createCalls)
}

func TestWebhook_AuthorizedUpdatesStatusOnly(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	payments := newFakePayments(po)
	orders := newFakeOrders()
	r := webhookRouter(cfg, payments, orders, &fakeBookings{})

	ev := capturedEvent(po.GatewayOrderID, "pay_1")
	ev["event"] = "payment.authorized"
	w := postWebhook(t, r, cfg.Gateway.WebhookSecret, ev)
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := payments.GetByID(po.ID)
	assert.Equal(t, domain.PaymentStatusAuthorized, stored.Status)
	assert.Equal(t, 0, orders.createCalls)
}

func TestWebhook_FailedRecordsReason(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	payments := newFakePayments(po)
	r := webhookRouter(cfg, payments, newFakeOrders(), &fakeBookings{})

	ev := map[string]interface{}{
		"event": "payment.failed",
		"payload": map[string]interface{}{
			"payment": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":                "pay_1",
					"order_id":          po.GatewayOrderID,
					"status":            "failed",
					"error_description": "card declined",
				},
			},
		},
	}
	w := postWebhook(t, r, cfg.Gateway.WebhookSecret, ev)
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := payments.GetByID(po.ID)
	assert.Equal(t, domain.PaymentStatusFailed, stored.Status)
	assert.Equal(t, "card declined", stored.FailureReason)
}

func TestWebhook_FailedDoesNotRegressSuccess(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	po.Status = domain.PaymentStatusCaptured
	payments := newFakePayments(po)
	r := webhookRouter(cfg, payments, newFakeOrders(), &fakeBookings{})

	ev := capturedEvent(po.GatewayOrderID, "pay_1")
	ev["event"] = "payment.failed"
	w := postWebhook(t, r, cfg.Gateway.WebhookSecret, ev)
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := payments.GetByID(po.ID)
	assert.Equal(t, domain.PaymentStatusCaptured, stored.Status)
}

func TestWebhook_UnsupportedEventAcknowledged(t *testing.T) {
	cfg := testConfig()
	r := webhookRouter(cfg, newFakePayments(), newFakeOrders(), &fakeBookings{})

	w := postWebhook(t, r, cfg.Gateway.WebhookSecret, map[string]interface{}{"event": "payment.downtime.started"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unsupported", resp.Status)
}

func TestWebhook_RefundEventsLoggedOnly(t *testing.T) {
	cfg := testConfig()
	po := createdPaymentOrder()
	po.Status = domain.PaymentStatusCaptured
	payments := newFakePayments(po)
	orders := newFakeOrders()
	r := webhookRouter(cfg, payments, orders, &fakeBookings{})

	ev := map[string]interface{}{
		"event": "refund.processed",
		"payload": map[string]interface{}{
			"refund": map[string]interface{}{
				"entity": map[string]interface{}{
					"id":         "rfnd_1",
					"payment_id": "pay_1",
					"amount":     50000,
					"status":     "processed",
				},
			},
		},
	}
	w := postWebhook(t, r, cfg.Gateway.WebhookSecret, ev)
	require.Equal(t, http.StatusOK, w.Code)

	stored, _ := payments.GetByID(po.ID)
	assert.Equal(t, domain.PaymentStatusCaptured, stored.Status)
	assert.Equal(t, 0, orders.createCalls)
}
