package handler

import (
	"net/http"

	"github.com/GWC-Data/omg-order-and-payment-service/internal/repository"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/service"

	"github.com/gin-gonic/gin"
)

// QueryHandler serves the read side: payment status polling (for clients told
// the order may arrive via webhook) and materialized order lookup.
type QueryHandler struct {
	payments service.PaymentOrderStore
	orders   *repository.OrderRepository
}

func NewQueryHandler(payments service.PaymentOrderStore, orders *repository.OrderRepository) *QueryHandler {
	return &QueryHandler{payments: payments, orders: orders}
}

func (h *QueryHandler) GetPaymentOrder(c *gin.Context) {
	po, err := h.payments.GetByGatewayOrderID(c.Param("gatewayOrderId"))
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "payment order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, po)
}

func (h *QueryHandler) GetOrder(c *gin.Context) {
	o, err := h.orders.GetByIDWithChildren(c.Param("id"))
	if err != nil {
		if repository.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, o)
}
