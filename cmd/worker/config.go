package main

import (
	"github.com/hibiken/asynq"

	"shop-backend/internal/config"
	"shop-backend/internal/shared"
	"shop-backend/pkg/logger"
)

// Config holds worker-only settings derived from the app config
type Config struct {
	RedisOpt    asynq.RedisClientOpt
	Concurrency int
	Queues      map[string]int
	Order       config.OrderConfig
	HealthAddr  string
}

// loadConfig: expiry nằm ở critical để đơn quá hạn được huỷ đúng giờ
func loadConfig(app *config.Config, redisOpt asynq.RedisClientOpt) *Config {
	cfg := &Config{
		RedisOpt:    redisOpt,
		Concurrency: app.Worker.Concurrency,
		Queues: map[string]int{
			shared.QueueCritical: 6,
			shared.QueueDefault:  3,
			shared.QueueLow:      1,
		},
		Order:      app.Order,
		HealthAddr: ":9999",
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 10
	}

	logger.Info("[Config] Worker", map[string]interface{}{
		"redis":       redisOpt.Addr,
		"concurrency": cfg.Concurrency,
		"sweep_cron":  cfg.Order.SweepCron,
		"pending_ttl": cfg.Order.PendingPaymentTTL.String(),
	})

	return cfg
}
