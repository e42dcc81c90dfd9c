package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/config"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/domain"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/middleware"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/models"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/service"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/gateway"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InitiateHandler opens a checkout: it creates the order on the gateway and
// mirrors it locally as a PaymentOrder in status created.
type InitiateHandler struct {
	cfg      *config.Config
	payments service.PaymentOrderStore
	gateway  gateway.Client
}

func NewInitiateHandler(cfg *config.Config, payments service.PaymentOrderStore, gw gateway.Client) *InitiateHandler {
	return &InitiateHandler{cfg: cfg, payments: payments, gateway: gw}
}

type initiateRequest struct {
	Amount       int64  `json:"amount" binding:"required,min=100"` // minor units
	Currency     string `json:"currency" binding:"required,len=3"`
	Receipt      string `json:"receipt"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
}

func (h *InitiateHandler) Initiate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req initiateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gwOrder, err := h.gateway.CreateOrder(c.Request.Context(), gateway.CreateOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	})
	if err != nil {
		log.Printf("[INITIATE] gateway order creation failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "gateway unavailable", "state": "unchanged"})
		return
	}
	expires := time.Now().Add(h.cfg.Gateway.PaymentExpiry)
	po := &models.PaymentOrder{
		ID:             uuid.NewString(),
		UserID:         userID,
		GatewayOrderID: gwOrder.ID,
		Status:         domain.PaymentStatusCreated,
		Amount:         gwOrder.Amount,
		Currency:       gwOrder.Currency,
		Receipt:        req.Receipt,
		ContactName:    req.ContactName,
		ContactEmail:   req.ContactEmail,
		ContactPhone:   req.ContactPhone,
		ExpiresAt:      &expires,
	}
	if err := h.payments.Create(po); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment order"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"gateway_order_id": gwOrder.ID,
		"amount":           gwOrder.Amount,
		"currency":         gwOrder.Currency,
		"key_id":           h.cfg.Gateway.KeyID,
		"expires_at":       expires,
	})
}
