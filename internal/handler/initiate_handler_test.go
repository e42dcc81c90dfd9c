package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/GWC-Data/omg-order-and-payment-service/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initiateRouter(payments *fakePayments, gw *fakeGateway, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewInitiateHandler(testConfig(), payments, gw)
	r := gin.New()
	r.POST("/initiate", func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}, h.Initiate)
	return r
}

func TestInitiate_CreatesPaymentOrder(t *testing.T) {
	payments := newFakePayments()
	userID := uuid.NewString()
	r := initiateRouter(payments, &fakeGateway{}, userID)

	w := postJSON(t, r, "/initiate", map[string]interface{}{
		"amount":   50000,
		"currency": "INR",
		"receipt":  "rcpt_1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		GatewayOrderID string `json:"gateway_order_id"`
		Amount         int64  `json:"amount"`
		Currency       string `json:"currency"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_gw", resp.GatewayOrderID)
	assert.Equal(t, int64(50000), resp.Amount)

	po, err := payments.GetByGatewayOrderID(resp.GatewayOrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCreated, po.Status)
	assert.Equal(t, userID, po.UserID)
	assert.NotNil(t, po.ExpiresAt)
}

func TestInitiate_RejectsBadAmount(t *testing.T) {
	r := initiateRouter(newFakePayments(), &fakeGateway{}, uuid.NewString())
	w := postJSON(t, r, "/initiate", map[string]interface{}{"amount": 0, "currency": "INR"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
