package service

import (
	"context"

	"github.com/google/uuid"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/model"
)

// SettlementService is the single entry point that finalizes a payment.
// VNPay return, Stripe return, verify-stripe and the Stripe webhook all call it.
type SettlementService interface {
	Settle(ctx context.Context, method ordermodel.PaymentMethod, params map[string]string) model.Outcome
	CallbackLogs(ctx context.Context, orderRef string) ([]*model.CallbackLog, error)
}

// =====================================================
// COLLABORATORS
// =====================================================

// OrderStore là phần của order repository settlement cần
type OrderStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ordermodel.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, txnNo string, stockCommitted bool) (bool, error)
	CancelPending(ctx context.Context, id uuid.UUID) (bool, error)
}

type StockLedger interface {
	Consume(ctx context.Context, lines []inventorymodel.Line) error
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID uuid.UUID) (int, error)
}
