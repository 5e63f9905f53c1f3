package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"shop-backend/internal/domains/order/model"
	"shop-backend/pkg/logger"
)

// =====================================================
// PENDING PAYMENT EXPIRY
// =====================================================

func (s *orderService) ExpirePending(ctx context.Context, orderID uuid.UUID) error {
	_, err := s.expire(ctx, orderID)
	return err
}

func (s *orderService) SweepStalePending(ctx context.Context, limit int) (int, error) {
	if s.pendingTTL <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.pendingTTL)

	ids, err := s.orders.ListStalePending(ctx, cutoff, limit)
	if err != nil {
		return 0, err
	}

	cancelled := 0
	for _, id := range ids {
		ok, err := s.expire(ctx, id)
		if err != nil {
			logger.ErrorWithFields("Failed to expire pending order", err, map[string]interface{}{
				"order_id": id.String(),
			})
			continue
		}
		if ok {
			cancelled++
		}
	}
	return cancelled, nil
}

// expire: Pending Payment -> Cancelled nếu chưa thanh toán. Đơn online chưa
// trừ kho nên không có gì để hoàn.
func (s *orderService) expire(ctx context.Context, orderID uuid.UUID) (bool, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, model.ErrOrderNotFound) {
		// Đơn đã bị xoá (compensation hoặc admin)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if order.IsPaid || order.Status != model.StatusPendingPayment {
		return false, nil
	}

	ok, err := s.orders.CancelPending(ctx, orderID)
	if err != nil {
		return false, err
	}
	if ok {
		logger.Info("Pending payment order expired", map[string]interface{}{
			"order_id": orderID.String(),
			"gateway":  string(order.PaymentMethod),
		})
	}
	return ok, nil
}
