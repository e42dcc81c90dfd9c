package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Gateway  GatewayConfig
	Booking  BookingConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

// GatewayConfig holds the payment gateway credentials. KeySecret signs the
// checkout verification digest; WebhookSecret signs webhook bodies. Both are
// loaded once at startup — webhook verification fails closed when
// WebhookSecret is empty.
type GatewayConfig struct {
	Name          string
	BaseURL       string
	KeyID         string
	KeySecret     string
	WebhookSecret string
	Timeout       time.Duration
	PaymentExpiry time.Duration
}

type BookingConfig struct {
	BaseURL string
	Timeout time.Duration
}

func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8086")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")

	v.SetDefault("DATABASE_DSN", "omg:omg@tcp(localhost:3306)/omg_orders?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("DATABASE_MAX_IDLE_CONNS", 10)
	v.SetDefault("DATABASE_MAX_OPEN_CONNS", 100)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "1h")

	v.SetDefault("JWT_ACCESS_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ACCESS_EXPIRY", "15m")
	v.SetDefault("JWT_ISSUER", "omg")

	v.SetDefault("GATEWAY_NAME", "razorpay")
	v.SetDefault("GATEWAY_BASE_URL", "https://api.razorpay.com")
	v.SetDefault("GATEWAY_KEY_ID", "")
	v.SetDefault("GATEWAY_KEY_SECRET", "")
	v.SetDefault("GATEWAY_WEBHOOK_SECRET", "")
	v.SetDefault("GATEWAY_TIMEOUT", "10s")
	v.SetDefault("GATEWAY_PAYMENT_EXPIRY", "30m")

	v.SetDefault("BOOKING_BASE_URL", "http://localhost:8087")
	v.SetDefault("BOOKING_TIMEOUT", "10s")

	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Env:          v.GetString("SERVER_ENV"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			DSN:             v.GetString("DATABASE_DSN"),
			MaxIdleConns:    v.GetInt("DATABASE_MAX_IDLE_CONNS"),
			MaxOpenConns:    v.GetInt("DATABASE_MAX_OPEN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
		},
		JWT: JWTConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
			AccessExpiry: v.GetDuration("JWT_ACCESS_EXPIRY"),
			Issuer:       v.GetString("JWT_ISSUER"),
		},
		Gateway: GatewayConfig{
			Name:          v.GetString("GATEWAY_NAME"),
			BaseURL:       v.GetString("GATEWAY_BASE_URL"),
			KeyID:         v.GetString("GATEWAY_KEY_ID"),
			KeySecret:     v.GetString("GATEWAY_KEY_SECRET"),
			WebhookSecret: v.GetString("GATEWAY_WEBHOOK_SECRET"),
			Timeout:       v.GetDuration("GATEWAY_TIMEOUT"),
			PaymentExpiry: v.GetDuration("GATEWAY_PAYMENT_EXPIRY"),
		},
		Booking: BookingConfig{
			BaseURL: v.GetString("BOOKING_BASE_URL"),
			Timeout: v.GetDuration("BOOKING_TIMEOUT"),
		},
	}
}
