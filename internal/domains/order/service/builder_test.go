package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	"shop-backend/internal/domains/order/model"
)

func fees(shipping, tax string) model.FeeSnapshot {
	return model.FeeSnapshot{
		ShippingFee: decimal.RequireFromString(shipping),
		TaxRate:     decimal.RequireFromString(tax),
		Year:        2026,
	}
}

func assertOrderErr(t *testing.T, err error, code string) *model.OrderError {
	t.Helper()
	require.Error(t, err)
	var orderErr *model.OrderError
	require.True(t, errors.As(err, &orderErr), "expected OrderError, got %v", err)
	assert.Equal(t, code, orderErr.Code)
	return orderErr
}

func TestBuilder_Pricing(t *testing.T) {
	w := newWorld()
	shirt := w.addProduct("Shirt", 100, 10, "S", "M")
	hat := w.addProduct("Cap", 50, 10, "Free")
	b := NewBuilder(productTable{w})
	userID := uuid.New()

	items := []model.CartItem{
		{Product: shirt.ID.String(), Quantity: 2, Size: "M"},
		{Product: hat.ID.String(), Quantity: 1, Size: "Free"},
	}

	tests := []struct {
		name   string
		method model.PaymentMethod
		want   string
		status model.Status
	}{
		{"cod has no tax", model.PaymentMethodCOD, "260", model.StatusOrderPlaced},
		{"stripe has no tax", model.PaymentMethodStripe, "260", model.StatusPendingPayment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := b.Build(context.Background(), userID, items, model.Address{}, fees("10", "0.02"), tt.method)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(order.Amount), "amount %s", order.Amount)
			assert.Equal(t, tt.status, order.Status)
			assert.Equal(t, userID, order.UserID)
			require.Len(t, order.Items, 2)
			assert.True(t, decimal.NewFromInt(100).Equal(order.Items[0].UnitPrice))
			assert.Equal(t, "Shirt", order.Items[0].Name)
			assert.Equal(t, "M", order.Items[0].Size)
		})
	}

	t.Run("vnpay taxes subtotal plus shipping", func(t *testing.T) {
		jacket := w.addProduct("Jacket", 100000, 5, "L")
		order, err := b.Build(context.Background(), userID,
			[]model.CartItem{{Product: jacket.ID.String(), Quantity: 2, Size: "L"}},
			model.Address{}, fees("10", "0.02"), model.PaymentMethodVNPay)
		require.NoError(t, err)
		// (200000 + 10) * 1.02
		assert.True(t, decimal.RequireFromString("204010.2").Equal(order.Amount), "amount %s", order.Amount)
	})

	t.Run("builder never touches stock", func(t *testing.T) {
		assert.Equal(t, 10, w.quantity(shirt.ID))
		assert.Equal(t, 10, w.quantity(hat.ID))
	})
}

func TestBuilder_Rejections(t *testing.T) {
	w := newWorld()
	shirt := w.addProduct("Shirt", 100, 2, "S", "M")
	retired := w.addProduct("Retired", 100, 5, "M")
	retired.IsActive = false
	cheap := w.addProduct("Sticker", 3000, 50, "Free")
	b := NewBuilder(productTable{w})
	ctx := context.Background()

	tests := []struct {
		name   string
		items  []model.CartItem
		method model.PaymentMethod
		code   string
	}{
		{"empty cart", nil, model.PaymentMethodCOD, model.ErrCodeCartEmpty},
		{"malformed product id", []model.CartItem{{Product: "nope", Quantity: 1, Size: "M"}}, model.PaymentMethodCOD, model.ErrCodeProductNotFound},
		{"unknown product", []model.CartItem{{Product: uuid.NewString(), Quantity: 1, Size: "M"}}, model.PaymentMethodCOD, model.ErrCodeProductNotFound},
		{"inactive product", []model.CartItem{{Product: retired.ID.String(), Quantity: 1, Size: "M"}}, model.PaymentMethodCOD, model.ErrCodeProductNotFound},
		{"unknown size", []model.CartItem{{Product: shirt.ID.String(), Quantity: 1, Size: "XXL"}}, model.PaymentMethodCOD, model.ErrCodeInvalidSize},
		{"more than stock", []model.CartItem{{Product: shirt.ID.String(), Quantity: 3, Size: "M"}}, model.PaymentMethodCOD, model.ErrCodeInsufficientStock},
		{"sizes share stock", []model.CartItem{
			{Product: shirt.ID.String(), Quantity: 2, Size: "M"},
			{Product: shirt.ID.String(), Quantity: 1, Size: "S"},
		}, model.PaymentMethodCOD, model.ErrCodeInsufficientStock},
		{"vnpay under minimum", []model.CartItem{{Product: cheap.ID.String(), Quantity: 1, Size: "Free"}}, model.PaymentMethodVNPay, model.ErrCodeAmountTooSmall},
		{"unknown method", []model.CartItem{{Product: shirt.ID.String(), Quantity: 1, Size: "M"}}, model.PaymentMethod("Cash"), model.ErrCodeInvalidPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.Build(ctx, uuid.New(), tt.items, model.Address{}, fees("10", "0.02"), tt.method)
			assertOrderErr(t, err, tt.code)
		})
	}
}

func TestBuilder_InsufficientStockNamesRemaining(t *testing.T) {
	w := newWorld()
	shirt := w.addProduct("Linen Shirt", 100, 2, "M")
	b := NewBuilder(productTable{w})

	_, err := b.Build(context.Background(), uuid.New(),
		[]model.CartItem{{Product: shirt.ID.String(), Quantity: 3, Size: "M"}},
		model.Address{}, fees("10", "0"), model.PaymentMethodCOD)

	orderErr := assertOrderErr(t, err, model.ErrCodeInsufficientStock)
	assert.Equal(t, "Sản phẩm 'Linen Shirt' chỉ còn 2 sản phẩm trong kho", orderErr.Message)

	var stockErr *inventorymodel.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 2, stockErr.Remaining)
	assert.Equal(t, 3, stockErr.Requested)
}

func TestBuilder_VNPayMinimumBoundary(t *testing.T) {
	w := newWorld()
	// (4892 + 10) * 1.02 = 5000.04
	p := w.addProduct("Socks", 4892, 5, "Free")
	b := NewBuilder(productTable{w})

	order, err := b.Build(context.Background(), uuid.New(),
		[]model.CartItem{{Product: p.ID.String(), Quantity: 1, Size: "Free"}},
		model.Address{}, fees("10", "0.02"), model.PaymentMethodVNPay)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), order.Amount.IntPart())
}
