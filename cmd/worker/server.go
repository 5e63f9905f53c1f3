package main

import (
	"context"
	"os"

	"github.com/hibiken/asynq"

	"shop-backend/pkg/logger"
)

// asynqServer wraps asynq.Server with additional functionality
type asynqServer struct {
	*asynq.Server
}

// setupAsynqServer creates and configures the Asynq server
func setupAsynqServer(cfg *Config, handlers *HandlerRegistry) *asynqServer {
	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	srv := asynq.NewServer(
		cfg.RedisOpt,
		asynq.Config{
			Queues:      cfg.Queues,
			Concurrency: cfg.Concurrency,
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.ErrorWithFields("[Asynq] ❌ Task failed", err, map[string]interface{}{
					"type": task.Type(),
				})
			}),
		},
	)

	go func() {
		logger.Info("[Worker] Starting...", map[string]interface{}{})
		if err := srv.Run(mux); err != nil {
			logger.Error("[Worker] Failed", err)
			os.Exit(1)
		}
	}()

	return &asynqServer{Server: srv}
}

// Shutdown chờ task đang chạy xong (asynq tự giới hạn bằng ShutdownTimeout)
func (s *asynqServer) Shutdown() {
	logger.Info("[Worker] Shutting down...", map[string]interface{}{})
	s.Server.Shutdown()
	logger.Info("[Worker] ✓ Gracefully stopped", map[string]interface{}{})
}
