package job

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"shop-backend/internal/domains/order/service"
	"shop-backend/internal/shared"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

// Expirer là phần của OrderService mà worker cần
type Expirer interface {
	ExpirePending(ctx context.Context, orderID uuid.UUID) error
	SweepStalePending(ctx context.Context, limit int) (int, error)
}

var _ Expirer = (service.OrderService)(nil)

// =====================================================
// EXPIRE ONE PENDING ORDER (delayed task per order)
// =====================================================
type ExpirePendingHandler struct {
	orders Expirer
}

func NewExpirePendingHandler(orders Expirer) *ExpirePendingHandler {
	return &ExpirePendingHandler{orders: orders}
}

func (h *ExpirePendingHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.ExpirePendingOrderPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		logger.Error("Unmarshal expire payload failed", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		return fmt.Errorf("%w: invalid order id %q", asynq.SkipRetry, payload.OrderID)
	}

	if err := h.orders.ExpirePending(ctx, orderID); err != nil {
		logger.ErrorWithFields("Expire pending order failed", err, map[string]interface{}{
			"order_id": payload.OrderID,
		})
		return err
	}

	log.Debug().Str("order_id", payload.OrderID).Msg("Pending order expiry processed")
	return nil
}

// =====================================================
// SWEEP STALE PENDING ORDERS (periodic)
// =====================================================
type SweepPendingHandler struct {
	orders       Expirer
	defaultLimit int
}

func NewSweepPendingHandler(orders Expirer, defaultLimit int) *SweepPendingHandler {
	return &SweepPendingHandler{orders: orders, defaultLimit: defaultLimit}
}

func (h *SweepPendingHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.SweepPendingOrdersPayload
	if err := utils.UnmarshalTask(task, &payload); err != nil {
		logger.Error("Unmarshal sweep payload failed", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	limit := payload.Limit
	if limit <= 0 {
		limit = h.defaultLimit
	}

	cancelled, err := h.orders.SweepStalePending(ctx, limit)
	if err != nil {
		logger.Error("Sweep pending orders failed", err)
		return err
	}

	log.Info().
		Int("cancelled", cancelled).
		Int("limit", limit).
		Msg("Swept stale pending payment orders")
	return nil
}
