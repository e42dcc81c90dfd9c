package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GWC-Data/omg-order-and-payment-service/config"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/database"
	"github.com/GWC-Data/omg-order-and-payment-service/internal/router"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/booking"
	"github.com/GWC-Data/omg-order-and-payment-service/pkg/gateway"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	var gw gateway.Client
	if cfg.Gateway.KeyID == "" {
		log.Printf("[GATEWAY] no key configured, using stub gateway")
		gw = &gateway.Stub{}
	} else {
		gw = gateway.NewHTTPClient(cfg.Gateway.BaseURL, cfg.Gateway.KeyID, cfg.Gateway.KeySecret, cfg.Gateway.Timeout)
	}
	if cfg.Gateway.WebhookSecret == "" {
		log.Printf("[GATEWAY] webhook secret not set, webhook verification will reject all deliveries")
	}
	bookings := booking.NewClient(cfg.Booking.BaseURL, cfg.Booking.Timeout)

	engine := router.Setup(cfg, db, gw, bookings)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	log.Println("server stopped")
}
