package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/internal/domain"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/repository"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/service"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/gateway"

	"github.com/gin-gonic/gin"
)

// CaptureHandler drives manual capture of an authorized payment. Capture
// never materializes an order; only the verify and webhook paths do that.
type CaptureHandler struct {
	payments service.PaymentOrderStore
	gateway  gateway.Client
}

func NewCaptureHandler(payments service.PaymentOrderStore, gw gateway.Client) *CaptureHandler {
	return &CaptureHandler{payments: payments, gateway: gw}
}

type captureRequest struct {
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

func (h *CaptureHandler) Capture(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	po, err := h.payments.GetByGatewayPaymentID(req.GatewayPaymentID)
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if po.Status == domain.PaymentStatusCaptured {
		// Already captured: succeed without re-calling the gateway.
		c.JSON(http.StatusOK, gin.H{
			"status":      po.Status,
			"captured_at": po.CapturedAt,
			"amount":      po.Amount,
		})
		return
	}
	amount := req.Amount
	if amount <= 0 {
		amount = po.Amount
	}
	currency := req.Currency
	if currency == "" {
		currency = po.Currency
	}
	pay, err := h.gateway.CapturePayment(c.Request.Context(), req.GatewayPaymentID, amount, currency)
	if err != nil {
		log.Printf("[CAPTURE] gateway capture failed payment=%s: %v", req.GatewayPaymentID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway capture failed", "state": "unchanged"})
		return
	}
	now := time.Now()
	fields := map[string]interface{}{
		"status":         domain.PaymentStatusCaptured,
		"captured_at":    now,
		"amount":         pay.Amount,
		"failure_reason": "",
	}
	if err := h.payments.UpdateFields(po.ID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "capture recorded at gateway but not locally"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      domain.PaymentStatusCaptured,
		"captured_at": now,
		"amount":      pay.Amount,
	})
}
