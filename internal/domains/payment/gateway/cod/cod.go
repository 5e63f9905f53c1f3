package cod

import (
	"context"

	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
)

// Gateway: COD không có bước thanh toán online
type Gateway struct{}

func New() *Gateway {
	return &Gateway{}
}

func (g *Gateway) Method() ordermodel.PaymentMethod {
	return ordermodel.PaymentMethodCOD
}

func (g *Gateway) Initiate(_ context.Context, _ *ordermodel.Order) (*gateway.Initiation, error) {
	return &gateway.Initiation{}, nil
}

func (g *Gateway) VerifyCallback(_ context.Context, _ map[string]string) (*model.Callback, error) {
	return nil, model.NewPaymentError(model.ErrCodeCallbackUnsupported, "COD has no gateway callback", model.ErrCallbackUnsupported)
}
