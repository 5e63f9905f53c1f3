package main

import (
	"os"

	"shop-backend/internal/infrastructure/queue"
	"shop-backend/pkg/logger"
)

// asynqScheduler wraps queue.Scheduler with additional functionality
type asynqScheduler struct {
	*queue.Scheduler
}

// setupScheduler creates and configures the scheduler
func setupScheduler(cfg *Config) *asynqScheduler {
	scheduler := queue.NewScheduler(cfg.RedisOpt, cfg.Order)

	// Register cron jobs
	if err := scheduler.RegisterJobs(); err != nil {
		logger.Error("[Scheduler] Failed to register", err)
		os.Exit(1)
	}

	go func() {
		logger.Info("[Scheduler] Starting...", map[string]interface{}{})
		if err := scheduler.Start(); err != nil {
			logger.Error("[Scheduler] Failed", err)
			os.Exit(1)
		}
	}()

	return &asynqScheduler{Scheduler: scheduler}
}

// Shutdown gracefully shuts down the scheduler
func (s *asynqScheduler) Shutdown() {
	logger.Info("[Scheduler] Shutting down...", map[string]interface{}{})
	s.Scheduler.Shutdown()
	logger.Info("[Scheduler] ✓ Stopped", map[string]interface{}{})
}
