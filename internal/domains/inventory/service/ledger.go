package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"shop-backend/internal/domains/inventory/model"
	"shop-backend/internal/domains/inventory/repository"
	"shop-backend/pkg/logger"
)

type ledger struct {
	products repository.ProductRepository
}

func NewLedgerService(products repository.ProductRepository) LedgerService {
	return &ledger{products: products}
}

func (l *ledger) Adjust(ctx context.Context, productID uuid.UUID, delta int) (*model.Product, error) {
	if delta == 0 {
		return nil, model.ErrInvalidQuantity
	}

	product, ok, err := l.products.AdjustQuantity(ctx, productID, delta)
	if err != nil {
		return nil, err
	}
	if ok {
		return product, nil
	}

	// Không có row nào khớp: phân biệt NotFound và hết hàng
	current, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	return nil, &model.InsufficientStockError{
		ProductID:   productID,
		ProductName: current.Name,
		Requested:   -delta,
		Remaining:   current.Quantity,
	}
}

func (l *ledger) Consume(ctx context.Context, lines []model.Line) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			return fmt.Errorf("%w: %d for product %s", model.ErrInvalidQuantity, line.Quantity, line.ProductID)
		}

		if _, err := l.Adjust(ctx, line.ProductID, -line.Quantity); err != nil {
			var stockErr *model.InsufficientStockError
			if errors.As(err, &stockErr) && stockErr.ProductName == "" {
				stockErr.ProductName = line.ProductName
			}
			return err
		}
	}
	return nil
}

func (l *ledger) Restore(ctx context.Context, lines []model.Line) error {
	for _, line := range lines {
		if line.Quantity <= 0 {
			continue
		}

		_, err := l.Adjust(ctx, line.ProductID, line.Quantity)
		if model.IsNotFoundError(err) {
			logger.Warn("Restock skipped: product no longer exists", map[string]interface{}{
				"product_id": line.ProductID.String(),
				"quantity":   line.Quantity,
			})
			continue
		}
		if err != nil {
			return fmt.Errorf("restore stock for %s: %w", line.ProductID, err)
		}
	}
	return nil
}
