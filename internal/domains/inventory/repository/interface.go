package repository

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/inventory/model"
)

// ProductRepository là cửa vào bảng products của order core.
type ProductRepository interface {
	// FindByID đọc product, trả model.ErrProductNotFound nếu không có
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// AdjustQuantity applies quantity += delta in one conditional statement.
	// ok=false means no row matched: either the product is missing or the
	// result would be negative.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (product *model.Product, ok bool, err error)
}
