package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shop-backend/pkg/cache"
	"shop-backend/pkg/logger"
)

// HealthChecker performs startup health checks
type HealthChecker struct {
	redis cache.Cache
	db    interface {
		HealthCheck(ctx context.Context) error
	}
}

// startServices performs health checks and starts the probe endpoint
func startServices(checker *HealthChecker, cfg *Config) error {
	logger.Info("🚀 Shop Worker Starting...", map[string]interface{}{})

	if err := checker.checkAll(); err != nil {
		return err
	}

	go startHealthCheckServer(cfg.HealthAddr)

	return nil
}

// checkAll runs all health checks
func (h *HealthChecker) checkAll() error {
	checks := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"Redis Connection", h.redis.Ping},
		{"Database Connection", h.db.HealthCheck},
	}

	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := check.fn(ctx)
		cancel()
		if err != nil {
			logger.Error("❌ "+check.name, err)
			return fmt.Errorf("%s failed: %w", check.name, err)
		}
		logger.Info("✓ "+check.name+": OK", map[string]interface{}{})
	}

	return nil
}

// startHealthCheckServer: /health và /ready cho probe
func startHealthCheckServer(addr string) {
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "service": "shop-worker"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	logger.Info("[Health] Starting health check server", map[string]interface{}{"addr": addr})
	if err := router.Run(addr); err != nil {
		logger.Error("[Health] Failed to start", err)
	}
}
