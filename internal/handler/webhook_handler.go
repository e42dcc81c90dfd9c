package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/config"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/domain"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/repository"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/service"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/signature"

	"github.com/gin-gonic/gin"
)

// webhookEnvelope is the gateway's delivery shape. Signature verification runs
// over the raw bytes before this is decoded.
type webhookEnvelope struct {
	Event   string `json:"event"`
	Payload struct {
		Payment *struct {
			Entity webhookPaymentEntity `json:"entity"`
		} `json:"payment"`
		Order *struct {
			Entity webhookOrderEntity `json:"entity"`
		} `json:"order"`
		Refund *struct {
			Entity webhookRefundEntity `json:"entity"`
		} `json:"refund"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

type webhookPaymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	Status           string `json:"status"`
	ErrorCode        string `json:"error_code"`
	ErrorDescription string `json:"error_description"`
}

type webhookOrderEntity struct {
	ID     string `json:"id"`
	Amount int64  `json:"amount"`
	Status string `json:"status"`
}

type webhookRefundEntity struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

// WebhookHandler is the asynchronous gateway-confirmation path. Delivery is
// at-least-once: every status write is an overwrite-with-guard and
// materialization is idempotent, so redelivery is safe.
type WebhookHandler struct {
	cfg      *config.Config
	payments service.PaymentOrderStore
	mat      *service.Materializer
}

func NewWebhookHandler(cfg *config.Config, payments service.PaymentOrderStore, mat *service.Materializer) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, payments: payments, mat: mat}
}

func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sig := c.GetHeader("X-Webhook-Signature")
	if !signature.VerifyWebhookSignature(body, sig, h.cfg.Gateway.WebhookSecret) {
		log.Printf("[WEBHOOK] signature verification failed, event dropped")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid webhook signature"})
		return
	}

	var env webhookEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	switch env.Event {
	case domain.EventPaymentAuthorized:
		h.handleAuthorized(c, env)
	case domain.EventPaymentCaptured, domain.EventOrderPaid:
		h.handleCaptured(c, env, body)
	case domain.EventPaymentFailed:
		h.handleFailed(c, env)
	case domain.EventRefundCreated, domain.EventRefundProcessed:
		h.handleRefund(c, env)
	default:
		// Unknown events must not be error-retried by the gateway.
		log.Printf("[WEBHOOK] unsupported event %q acknowledged", env.Event)
		c.JSON(http.StatusOK, gin.H{"status": "unsupported"})
	}
}

func (h *WebhookHandler) handleAuthorized(c *gin.Context, env webhookEnvelope) {
	pay := paymentEntity(env)
	if pay == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment entity missing"})
		return
	}
	po, ok := h.lookup(c, pay.OrderID)
	if !ok {
		return
	}
	// Authorization never moves a payment backwards.
	if po.Status != domain.PaymentStatusCreated {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	fields := map[string]interface{}{
		"status":             domain.PaymentStatusAuthorized,
		"gateway_payment_id": pay.ID,
	}
	if err := h.payments.UpdateFields(po.ID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) handleCaptured(c *gin.Context, env webhookEnvelope, raw []byte) {
	gatewayOrderID := ""
	var paymentID string
	if pay := paymentEntity(env); pay != nil {
		gatewayOrderID = pay.OrderID
		paymentID = pay.ID
	} else if env.Payload.Order != nil {
		gatewayOrderID = env.Payload.Order.Entity.ID
	}
	po, ok := h.lookup(c, gatewayOrderID)
	if !ok {
		return
	}

	meta, err := po.DecodeMetadata()
	if err != nil {
		log.Printf("[WEBHOOK] corrupt metadata for payment_order=%s: %v", po.ID, err)
		meta = models.PaymentOrderMetadata{}
	}
	now := time.Now()
	meta.PaidAt = &now
	meta.GatewaySnapshot = json.RawMessage(raw)
	encoded, err := models.EncodeMetadata(meta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "metadata encode failed"})
		return
	}
	fields := map[string]interface{}{
		"status":      domain.PaymentStatusCaptured,
		"captured_at": now,
		"metadata":    encoded,
	}
	if paymentID != "" {
		fields["gateway_payment_id"] = paymentID
	}
	if err := h.payments.UpdateFields(po.ID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	po.Status = domain.PaymentStatusCaptured

	if meta.StagedPendingOrder == nil {
		// Verify never ran, so there is nothing to materialize from. The
		// order stays pending until a verify call stages the payload.
		log.Printf("[WEBHOOK] no staged order data for payment_order=%s, capture recorded only", po.ID)
		c.JSON(http.StatusOK, gin.H{"status": "ok", "order_created": false})
		return
	}
	if po.OrderID != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "order_id": *po.OrderID})
		return
	}

	// No end-user credentials in webhook context; booking side-calls run
	// unauthenticated.
	order, err := h.mat.Materialize(c.Request.Context(), po, meta.StagedPendingOrder, "")
	if err != nil {
		if errors.Is(err, service.ErrDuplicateBooking) || errors.Is(err, service.ErrValidation) {
			// Redelivery cannot fix these; acknowledge so the gateway stops
			// retrying.
			log.Printf("[WEBHOOK] materialization declined for payment_order=%s: %v", po.ID, err)
			c.JSON(http.StatusOK, gin.H{"status": "ok", "order_created": false})
			return
		}
		// Transient: let the gateway redeliver.
		log.Printf("[WEBHOOK] materialization failed for payment_order=%s: %v", po.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "materialization failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "order_id": order.ID})
}

func (h *WebhookHandler) handleFailed(c *gin.Context, env webhookEnvelope) {
	pay := paymentEntity(env)
	if pay == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment entity missing"})
		return
	}
	po, ok := h.lookup(c, pay.OrderID)
	if !ok {
		return
	}
	// A late failure event must not claw back a success.
	if domain.IsSuccessfulPayment(po.Status) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	reason := pay.ErrorDescription
	if reason == "" {
		reason = pay.ErrorCode
	}
	fields := map[string]interface{}{
		"status":         domain.PaymentStatusFailed,
		"failure_reason": reason,
	}
	if err := h.payments.UpdateFields(po.ID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) handleRefund(c *gin.Context, env webhookEnvelope) {
	if env.Payload.Refund != nil {
		r := env.Payload.Refund.Entity
		log.Printf("[WEBHOOK] refund event %s refund=%s payment=%s amount=%d status=%s", env.Event, r.ID, r.PaymentID, r.Amount, r.Status)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) lookup(c *gin.Context, gatewayOrderID string) (*models.PaymentOrder, bool) {
	if gatewayOrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gateway order id missing"})
		return nil, false
	}
	po, err := h.payments.GetByGatewayOrderID(gatewayOrderID)
	if err != nil {
		if repository.IsNotFound(err) {
			// Unknown order: acknowledge, nothing to reconcile here.
			log.Printf("[WEBHOOK] no payment order for gateway_order_id=%s", gatewayOrderID)
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, false
	}
	return po, true
}

func paymentEntity(env webhookEnvelope) *webhookPaymentEntity {
	if env.Payload.Payment == nil {
		return nil
	}
	return &env.Payload.Payment.Entity
}
