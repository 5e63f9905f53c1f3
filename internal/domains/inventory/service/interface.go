package service

import (
	"context"

	"github.com/google/uuid"

	"shop-backend/internal/domains/inventory/model"
)

// LedgerService là primitive điều chỉnh tồn kho duy nhất của hệ thống
type LedgerService interface {
	// Adjust cộng delta vào quantity của product một cách atomic.
	// Delta âm không bao giờ đưa quantity xuống dưới 0: khi đó trả
	// *model.InsufficientStockError với số lượng còn lại.
	Adjust(ctx context.Context, productID uuid.UUID, delta int) (*model.Product, error)

	// Consume trừ kho cho từng line; dừng ở lỗi đầu tiên.
	// Gọi trong transaction để các line đã trừ được rollback.
	Consume(ctx context.Context, lines []model.Line) error

	// Restore cộng lại kho cho từng line. Product đã bị xoá khỏi catalog
	// được bỏ qua (log warn) thay vì làm hỏng cả thao tác huỷ đơn.
	Restore(ctx context.Context, lines []model.Line) error
}
