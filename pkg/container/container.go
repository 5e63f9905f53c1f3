package container

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	infraCache "shop-backend/internal/infrastructure/cache"
	"shop-backend/internal/infrastructure/database"
	"shop-backend/internal/infrastructure/queue"
	"shop-backend/pkg/cache"
	pkgdb "shop-backend/pkg/database"
	"shop-backend/pkg/jwt"
	"shop-backend/pkg/logger"

	cartRepo "shop-backend/internal/domains/cart/repository"
	inventoryRepo "shop-backend/internal/domains/inventory/repository"
	inventoryService "shop-backend/internal/domains/inventory/service"
	orderHandler "shop-backend/internal/domains/order/handler"
	orderRepo "shop-backend/internal/domains/order/repository"
	orderService "shop-backend/internal/domains/order/service"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/gateway/cod"
	stripeGateway "shop-backend/internal/domains/payment/gateway/stripe"
	"shop-backend/internal/domains/payment/gateway/vnpay"
	paymentHandler "shop-backend/internal/domains/payment/handler"
	paymentRepo "shop-backend/internal/domains/payment/repository"
	paymentService "shop-backend/internal/domains/payment/service"
	settingsHandler "shop-backend/internal/domains/settings/handler"
	settingsRepo "shop-backend/internal/domains/settings/repository"
	settingsService "shop-backend/internal/domains/settings/service"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependencies của API và worker.
// Thứ tự init: config -> infra -> repositories -> services -> handlers.
type Container struct {
	// ========================================
	// INFRASTRUCTURE
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisCache
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	RedisOpt    asynq.RedisClientOpt
	Transactor  pkgdb.Transactor

	// ========================================
	// REPOSITORIES
	// ========================================
	ProductRepo     inventoryRepo.ProductRepository
	OrderRepo       orderRepo.OrderRepository
	CartRepo        cartRepo.Repository
	SettingsRepo    settingsRepo.Repository
	CallbackLogRepo paymentRepo.CallbackLogRepository

	// ========================================
	// SERVICES
	// ========================================
	Ledger            inventoryService.LedgerService
	SettingsService   settingsService.Service
	Gateways          *gateway.Registry
	StripeClient      *stripeGateway.Client // nil khi chưa cấu hình
	TaskClient        *queue.TaskClient
	OrderService      orderService.OrderService
	SettlementService paymentService.SettlementService

	// ========================================
	// HANDLERS
	// ========================================
	OrderHandler    *orderHandler.OrderHandler
	PaymentHandler  *paymentHandler.PaymentHandler
	SettingsHandler *settingsHandler.SettingsHandler
}

// NewContainer build toàn bộ dependency graph. DB lỗi thì không start;
// Redis lỗi chỉ warn vì settings cache và expiry task đều có đường lui.
func NewContainer() (*Container, error) {
	logger.Info("🔧 Initializing DI Container...", map[string]interface{}{})

	c := &Container{}

	// ========================================
	// STEP 1: CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// ========================================
	// STEP 2: INFRASTRUCTURE
	// ========================================
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// ========================================
	// STEP 3: REPOSITORIES
	// ========================================
	c.initRepositories()

	// ========================================
	// STEP 4: SERVICES
	// ========================================
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	// ========================================
	// STEP 5: HANDLERS
	// ========================================
	c.initHandlers()

	logger.Info("🎉 DI Container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
		"gateways":    c.Gateways.Methods(),
	})
	return c, nil
}

func (c *Container) initInfrastructure() error {
	cfg := c.Config

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	c.Transactor = pkgdb.NewTransactor(db.Pool)

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(ctx); err != nil {
		logger.Warn("⚠️  Redis connection failed (non-critical)", map[string]interface{}{
			"error": err.Error(),
		})
	}
	c.Redis = redisCache
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	c.RedisOpt = asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	c.AsynqClient = asynq.NewClient(c.RedisOpt)

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.ProductRepo = inventoryRepo.NewPostgresProductRepository(pool)
	c.OrderRepo = orderRepo.NewPostgresOrderRepository(pool)
	c.CartRepo = cartRepo.NewPostgresRepository(pool)
	c.SettingsRepo = settingsRepo.NewPostgresRepository(pool)
	c.CallbackLogRepo = paymentRepo.NewCallbackLogRepository(pool)
}

func (c *Container) initServices() error {
	cfg := c.Config

	c.Ledger = inventoryService.NewLedgerService(c.ProductRepo)

	c.SettingsService = settingsService.NewService(c.SettingsRepo, c.Cache, settingsService.Defaults{
		ShippingFee: cfg.Order.DeliveryCharge,
		TaxRate:     cfg.Order.DefaultTaxRate,
	})

	gateways, err := c.buildGateways()
	if err != nil {
		return err
	}
	c.Gateways = gateway.NewRegistry(gateways...)

	c.TaskClient = queue.NewTaskClient(c.AsynqClient)

	c.OrderService = orderService.NewOrderService(
		c.OrderRepo,
		c.ProductRepo,
		c.Ledger,
		c.CartRepo,
		c.SettingsService,
		c.Gateways,
		c.TaskClient,
		c.Transactor,
		cfg.Order.PendingPaymentTTL,
	)

	c.SettlementService = paymentService.NewSettlementService(
		c.Gateways,
		c.OrderRepo,
		c.Ledger,
		c.CartRepo,
		c.CallbackLogRepo,
		c.Transactor,
	)

	return nil
}

// buildGateways: COD luôn bật; VNPay/Stripe chỉ bật khi có credentials
func (c *Container) buildGateways() ([]gateway.Gateway, error) {
	cfg := c.Config
	gateways := []gateway.Gateway{cod.New()}

	if cfg.VNPay.TmnCode != "" && cfg.VNPay.HashSecret != "" {
		vnpayClient, err := vnpay.NewClient(vnpay.NewConfig(
			cfg.VNPay.TmnCode,
			cfg.VNPay.HashSecret,
			cfg.VNPay.APIURL,
			cfg.VNPay.ReturnURL,
			cfg.Order.PendingPaymentTTL,
		))
		if err != nil {
			return nil, err
		}
		gateways = append(gateways, vnpayClient)
	}

	if cfg.Stripe.SecretKey != "" {
		stripeClient, err := stripeGateway.NewClient(stripeGateway.NewConfig(
			cfg.Stripe.SecretKey,
			cfg.Stripe.WebhookSecret,
			cfg.Stripe.Currency,
			cfg.App.PublicURL,
			cfg.Frontend.URL,
		), nil)
		if err != nil {
			return nil, err
		}
		c.StripeClient = stripeClient
		gateways = append(gateways, stripeClient)
	}

	return gateways, nil
}

func (c *Container) initHandlers() {
	// interface nil thật khi Stripe tắt, tránh typed-nil
	var webhooks paymentHandler.WebhookParser
	if c.StripeClient != nil {
		webhooks = c.StripeClient
	}

	c.OrderHandler = orderHandler.NewOrderHandler(c.OrderService)
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.SettlementService, webhooks, c.Config.Frontend.URL)
	c.SettingsHandler = settingsHandler.NewSettingsHandler(c.SettingsService)
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	logger.Info("🧹 Cleaning up container resources...", map[string]interface{}{})

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			logger.Error("Failed to close asynq client", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Error("Failed to close Redis", err)
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}
}
