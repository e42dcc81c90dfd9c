package router

import (
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/config"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/handler"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/middleware"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/repository"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/service"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/booking"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/gateway"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, gw gateway.Client, bookings booking.Service) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	paymentRepo := repository.NewPaymentOrderRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	mat := service.NewMaterializer(paymentRepo, orderRepo, bookings, cfg.Gateway.Name)

	initiateHandler := handler.NewInitiateHandler(cfg, paymentRepo, gw)
	verifyHandler := handler.NewVerifyHandler(cfg, paymentRepo, mat)
	webhookHandler := handler.NewWebhookHandler(cfg, paymentRepo, mat)
	captureHandler := handler.NewCaptureHandler(paymentRepo, gw)
	queryHandler := handler.NewQueryHandler(paymentRepo, orderRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)
	limiter := middleware.NewInMemoryRateLimiter(100, 60*time.Second)

	api := r.Group("/api/v1")
	{
		payments := api.Group("/payments")
		payments.Use(authMw, middleware.RateLimit(limiter))
		{
			payments.POST("/initiate", initiateHandler.Initiate)
			payments.POST("/verify", verifyHandler.Verify)
			payments.POST("/capture", captureHandler.Capture)
			payments.GET("/:gatewayOrderId", queryHandler.GetPaymentOrder)
		}
		api.GET("/orders/:id", authMw, middleware.RateLimit(limiter), queryHandler.GetOrder)

		// Webhooks authenticate by HMAC, not bearer token, and are not rate
		// limited: the gateway retries on 429 and the handlers are idempotent.
		api.POST("/webhooks/payment", webhookHandler.Handle)
	}
	return r
}
