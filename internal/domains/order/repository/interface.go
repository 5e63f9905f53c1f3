package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"shop-backend/internal/domains/order/model"
)

// ListFilter cho admin list
type ListFilter struct {
	Status *model.Status
	Limit  int
	Offset int
}

// =====================================================
// ORDER REPOSITORY INTERFACE
// =====================================================
// Mọi method đều chạy trong tx của ctx nếu có (database.Conn).
// Các update trạng thái đều có điều kiện trên trạng thái đã quan sát;
// bool trả về false nghĩa là có request khác đã đổi đơn trước.
type OrderRepository interface {
	// Create inserts the order and its items
	Create(ctx context.Context, order *model.Order) error

	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Order, error)
	List(ctx context.Context, filter ListFilter) ([]*model.Order, int, error)

	SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error

	// MarkPaid is the settlement test-and-set. Only one caller per order
	// gets true.
	MarkPaid(ctx context.Context, id uuid.UUID, txnNo string, stockCommitted bool) (bool, error)

	// CancelPending: Pending Payment -> Cancelled khi chưa thanh toán
	CancelPending(ctx context.Context, id uuid.UUID) (bool, error)

	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, stockCommitted bool) (bool, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, address model.Address) error

	// Delete xoá đơn nếu vẫn còn ở trạng thái expected
	Delete(ctx context.Context, id uuid.UUID, expected model.Status) (bool, error)

	// DeletePending is the compensating delete after a gateway failure.
	DeletePending(ctx context.Context, id uuid.UUID) error

	// ListStalePending trả id các đơn Pending Payment tạo trước cutoff
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error)
}
