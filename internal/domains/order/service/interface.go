package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	"shop-backend/internal/domains/order/model"
	settingsmodel "shop-backend/internal/domains/settings/model"
)

// =====================================================
// ORDER SERVICE INTERFACE
// =====================================================
type OrderService interface {
	// PlaceOrder builds and persists an order. COD trừ kho ngay trong cùng
	// transaction; Stripe/VNPay trả về RedirectURL và trừ kho lúc settlement.
	PlaceOrder(ctx context.Context, userID uuid.UUID, method model.PaymentMethod, req model.PlaceOrderRequest) (*model.PlaceOrderResponse, error)

	// ListUserOrders trả về đơn của user, mới nhất trước
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)

	// Admin: List all orders
	ListOrders(ctx context.Context, req model.ListOrdersRequest) (*model.ListOrdersResponse, error)

	// Admin: đổi trạng thái theo state machine
	UpdateStatus(ctx context.Context, req model.UpdateStatusRequest) (*model.Order, error)

	// Admin: đổi trạng thái và/hoặc địa chỉ
	UpdateOrder(ctx context.Context, req model.UpdateOrderRequest) (*model.Order, error)

	// Admin: xoá đơn, hoàn kho nếu cần
	DeleteOrder(ctx context.Context, req model.DeleteOrderRequest) error

	// ExpirePending huỷ đơn online chưa thanh toán. Đơn đã paid hoặc đã đổi
	// trạng thái thì bỏ qua.
	ExpirePending(ctx context.Context, orderID uuid.UUID) error

	// SweepStalePending huỷ các đơn Pending Payment cũ hơn TTL, trả về số đơn đã huỷ
	SweepStalePending(ctx context.Context, limit int) (int, error)
}

// =====================================================
// COLLABORATORS
// =====================================================

// ProductReader: builder chỉ đọc product, không giữ chỗ
type ProductReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*inventorymodel.Product, error)
}

type StockLedger interface {
	Consume(ctx context.Context, lines []inventorymodel.Line) error
	Restore(ctx context.Context, lines []inventorymodel.Line) error
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID uuid.UUID) (int, error)
}

// FeeProvider trả về settings đang áp dụng
type FeeProvider interface {
	Current(ctx context.Context) (*settingsmodel.Settings, error)
}

// ExpiryScheduler hẹn giờ huỷ đơn online chưa thanh toán
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, orderID uuid.UUID, after time.Duration) error
}
