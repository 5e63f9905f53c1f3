package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"shop-backend/pkg/logger"
)

// Config chứa toàn bộ application configuration
// Struct này được populate từ environment variables
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Frontend FrontendConfig
	Stripe   StripeConfig
	VNPay    VNPayConfig
	Order    OrderConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	PublicURL   string // URL public của API, dùng cho redirect từ gateway
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type FrontendConfig struct {
	URL string // e.g. http://localhost:5173
}

// =====================================================
// PAYMENT GATEWAYS
// =====================================================

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string // "usd"
}

type VNPayConfig struct {
	TmnCode    string // Merchant Code (e.g., "DEMOV01")
	HashSecret string // Secret key for HMAC-SHA512
	APIURL     string // VNPay API base URL
	ReturnURL  string // Backend return URL (GET /order/vnpay-return)
}

// =====================================================
// ORDER / WORKER
// =====================================================

type OrderConfig struct {
	// DeliveryCharge là shipping fee mặc định khi chưa có settings nào active
	DeliveryCharge decimal.Decimal
	DefaultTaxRate decimal.Decimal
	// PendingPaymentTTL: đơn online chưa thanh toán sau khoảng này sẽ bị huỷ
	PendingPaymentTTL time.Duration
	SweepCron         string
	SweepLimit        int
}

type WorkerConfig struct {
	Concurrency int
}

// Load đọc config từ environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Shop API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			PublicURL:   getEnv("APP_PUBLIC_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "shop"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 15),
		},
		Frontend: FrontendConfig{
			URL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("STRIPE_CURRENCY", "usd"),
		},
		VNPay: VNPayConfig{
			TmnCode:    getEnv("VNPAY_TMN_CODE", ""),
			HashSecret: getEnv("VNPAY_HASH_SECRET", ""),
			APIURL:     getEnv("VNPAY_URL", "https://sandbox.vnpayment.vn/paymentv2"),
			ReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:8080/api/v1/order/vnpay-return"),
		},
		Order: OrderConfig{
			DeliveryCharge:    getEnvDecimal("DELIVERY_CHARGES", decimal.NewFromInt(10)),
			DefaultTaxRate:    getEnvDecimal("DEFAULT_TAX_RATE", decimal.RequireFromString("0.02")),
			PendingPaymentTTL: getEnvDuration("PENDING_PAYMENT_TTL", 30*time.Minute),
			SweepCron:         getEnv("PENDING_SWEEP_CRON", "*/10 * * * *"),
			SweepLimit:        getEnvInt("PENDING_SWEEP_LIMIT", 200),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate kiểm tra config có hợp lệ không
func (c *Config) Validate() error {
	if c.Order.PendingPaymentTTL <= 0 {
		return fmt.Errorf("PENDING_PAYMENT_TTL must be positive")
	}
	if c.Order.DeliveryCharge.IsNegative() {
		return fmt.Errorf("DELIVERY_CHARGES must be non-negative")
	}

	// Production environment phải có secrets thật
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}

		// Gateway chưa cấu hình thì chỉ warn, method đó sẽ bị tắt
		if c.VNPay.TmnCode == "" || c.VNPay.HashSecret == "" {
			logger.Warn("VNPay credentials not set - VNPay checkout disabled", map[string]interface{}{})
		}
		if c.Stripe.SecretKey == "" {
			logger.Warn("Stripe secret key not set - card checkout disabled", map[string]interface{}{})
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
