package main

import (
	"github.com/hibiken/asynq"

	orderJob "shop-backend/internal/domains/order/job"
	"shop-backend/internal/shared"
	"shop-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	expirePending *orderJob.ExpirePendingHandler
	sweepPending  *orderJob.SweepPendingHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container, cfg *Config) *HandlerRegistry {
	return &HandlerRegistry{
		expirePending: orderJob.NewExpirePendingHandler(c.OrderService),
		sweepPending:  orderJob.NewSweepPendingHandler(c.OrderService, cfg.Order.SweepLimit),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	// Order expiry
	mux.HandleFunc(shared.TypeExpirePendingOrder, h.expirePending.ProcessTask)
	mux.HandleFunc(shared.TypeSweepPendingOrders, h.sweepPending.ProcessTask)
}
