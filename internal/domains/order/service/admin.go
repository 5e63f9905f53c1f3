package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"shop-backend/internal/domains/order/model"
	"shop-backend/pkg/logger"
)

// =====================================================
// ADMIN: STATUS / UPDATE / DELETE
// =====================================================
// Mọi thay đổi đều đọc trạng thái trong tx rồi update có điều kiện trên
// trạng thái đã đọc. Thua race thì trả ConcurrentUpdate.

func (s *orderService) UpdateStatus(ctx context.Context, req model.UpdateStatusRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidRequest, err.Error(), err)
	}
	to, err := model.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var updated *model.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.transition(ctx, uuid.MustParse(req.OrderID), to)
		updated = order
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, req model.UpdateOrderRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidRequest, err.Error(), err)
	}
	if req.Status == nil && req.Address == nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidRequest, "Không có thay đổi nào", nil)
	}

	var to model.Status
	if req.Status != nil {
		st, err := model.ParseStatus(*req.Status)
		if err != nil {
			return nil, err
		}
		to = st
	}

	id := uuid.MustParse(req.OrderID)
	var updated *model.Order
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if req.Status != nil {
			if updated, err = s.transition(ctx, id, to); err != nil {
				return err
			}
		}
		if req.Address != nil {
			if err := s.orders.UpdateAddress(ctx, id, *req.Address); err != nil {
				return mapNotFound(err)
			}
		}
		updated, err = s.orders.FindByID(ctx, id)
		return mapNotFound(err)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// transition chạy trong tx của caller
func (s *orderService) transition(ctx context.Context, id uuid.UUID, to model.Status) (*model.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if err := model.CheckAdminTransition(order.Status, to); err != nil {
		return nil, err
	}
	if order.Status == to {
		// Cancelled -> Cancelled: idempotent, không hoàn kho lần hai
		return order, nil
	}

	restore := to == model.StatusCancelled && model.RestoresOnCancel(order.Status) && order.StockCommitted
	committed := order.StockCommitted && !restore

	ok, err := s.orders.UpdateStatus(ctx, id, order.Status, to, committed)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.NewConcurrentUpdateError()
	}

	if restore {
		if err := s.ledger.Restore(ctx, order.StockLines()); err != nil {
			return nil, err
		}
	}

	logger.Info("Order status changed", map[string]interface{}{
		"order_id": id.String(),
		"from":     string(order.Status),
		"to":       string(to),
		"restored": restore,
	})

	order.Status = to
	order.StockCommitted = committed
	return order, nil
}

func (s *orderService) DeleteOrder(ctx context.Context, req model.DeleteOrderRequest) error {
	if err := req.Validate(); err != nil {
		return model.NewOrderError(model.ErrCodeInvalidRequest, err.Error(), err)
	}
	id := uuid.MustParse(req.OrderID)

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err)
		}
		if err := model.CheckAdminDelete(order.Status); err != nil {
			return err
		}

		ok, err := s.orders.Delete(ctx, id, order.Status)
		if err != nil {
			return err
		}
		if !ok {
			return model.NewConcurrentUpdateError()
		}

		restore := model.RestoresOnDelete(order.Status) && order.StockCommitted
		if restore {
			if err := s.ledger.Restore(ctx, order.StockLines()); err != nil {
				return err
			}
		}

		logger.Info("Order deleted", map[string]interface{}{
			"order_id": id.String(),
			"status":   string(order.Status),
			"restored": restore,
		})
		return nil
	})
}

func mapNotFound(err error) error {
	if errors.Is(err, model.ErrOrderNotFound) {
		var orderErr *model.OrderError
		if errors.As(err, &orderErr) {
			return err
		}
		return model.NewOrderNotFoundError()
	}
	return err
}
