package repository

import (
	"context"

	"shop-backend/internal/domains/payment/model"
)

// CallbackLogRepository ghi audit trail cho mọi callback từ gateway
type CallbackLogRepository interface {
	Create(ctx context.Context, log *model.CallbackLog) error
	ListByOrderRef(ctx context.Context, orderRef string) ([]*model.CallbackLog, error)
}
