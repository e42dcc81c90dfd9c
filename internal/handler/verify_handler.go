package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/config"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/domain"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/middleware"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/repository"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/service"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/identifier"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/signature"

	"github.com/gin-gonic/gin"
)

// VerifyHandler is the synchronous client-confirmation path. The client calls
// it right after gateway checkout so the response can carry the new order id;
// the webhook path is the durability backstop when this call never lands.
type VerifyHandler struct {
	cfg      *config.Config
	payments service.PaymentOrderStore
	mat      *service.Materializer
}

func NewVerifyHandler(cfg *config.Config, payments service.PaymentOrderStore, mat *service.Materializer) *VerifyHandler {
	return &VerifyHandler{cfg: cfg, payments: payments, mat: mat}
}

type verifyRequest struct {
	GatewayOrderID   string                  `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string                  `json:"gateway_payment_id" binding:"required"`
	Signature        string                  `json:"signature" binding:"required"`
	Order            models.PendingOrderData `json:"order"`
}

func (h *VerifyHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, err := signature.VerifyPaymentSignature(req.GatewayOrderID, req.GatewayPaymentID, req.Signature, h.cfg.Gateway.KeySecret)
	if err != nil {
		log.Printf("[VERIFY] signature check misconfigured: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment verification unavailable"})
		return
	}
	if !ok {
		log.Printf("[VERIFY] invalid signature for gateway_order_id=%s", req.GatewayOrderID)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment signature"})
		return
	}

	if req.Order.UserID == "" || req.Order.OrderType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order.user_id and order.order_type are required"})
		return
	}
	if identifier.Sanitize(req.Order.UserID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order.user_id is not a valid id"})
		return
	}

	po, err := h.payments.GetByGatewayOrderID(req.GatewayOrderID)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	// A differing stored payment id is a conflict only when the stored status
	// already succeeded. A failed attempt may legitimately retry with a new
	// payment id.
	if po.GatewayPaymentID != nil && *po.GatewayPaymentID != req.GatewayPaymentID && domain.IsSuccessfulPayment(po.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "payment order already confirmed with a different payment id"})
		return
	}

	// Idempotent short-circuit: already paid and materialized, nothing to write.
	if domain.IsSuccessfulPayment(po.Status) && po.OrderID != nil {
		c.JSON(http.StatusOK, gin.H{
			"order_id":       *po.OrderID,
			"payment_status": po.Status,
			"order_created":  true,
		})
		return
	}

	meta, err := po.DecodeMetadata()
	if err != nil {
		log.Printf("[VERIFY] corrupt metadata for payment_order=%s: %v", po.ID, err)
		meta = models.PaymentOrderMetadata{}
	}
	// Stage the pending snapshot exactly once so a verify retry cannot
	// clobber what the webhook path may already be consuming.
	if meta.StagedPendingOrder == nil {
		meta.StagedPendingOrder = &req.Order
	}
	now := time.Now()
	meta.PaidAt = &now
	encoded, err := models.EncodeMetadata(meta)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage order data"})
		return
	}
	// Captured (set by an earlier webhook) already implies paid; never move
	// the status backwards.
	nextStatus := domain.PaymentStatusPaid
	if domain.IsSuccessfulPayment(po.Status) {
		nextStatus = po.Status
	}
	fields := map[string]interface{}{
		"gateway_payment_id": req.GatewayPaymentID,
		"signature":          req.Signature,
		"status":             nextStatus,
		"metadata":           encoded,
		"failure_reason":     "",
	}
	if err := h.payments.UpdateFields(po.ID, fields); err != nil {
		// Nothing local advanced; the caller can safely retry.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment", "state": "unchanged"})
		return
	}
	po.Status = nextStatus
	po.GatewayPaymentID = &req.GatewayPaymentID

	order, err := h.mat.Materialize(c.Request.Context(), po, meta.StagedPendingOrder, middleware.GetAccessToken(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateBooking):
			c.JSON(http.StatusConflict, gin.H{
				"error":         "an identical booking already exists for this date and timeslot",
				"order_created": false,
				"note":          "payment is recorded; if eligible, the order may still be created via webhook",
			})
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// The paid transition is already committed: the order can still
			// arrive through the webhook path, so tell the caller to poll
			// rather than retry checkout.
			log.Printf("[VERIFY] materialization failed for payment_order=%s: %v", po.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "order creation pending",
				"state": "payment recorded, order may complete asynchronously",
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id":       order.ID,
		"order_number":   order.OrderNumber,
		"payment_status": nextStatus,
		"order_created":  true,
	})
}
