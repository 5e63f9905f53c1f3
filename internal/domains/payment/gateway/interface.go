package gateway

import (
	"context"
	"sort"

	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/model"
)

// =====================================================
// GATEWAY INTERFACE
// =====================================================

// Initiation là kết quả khởi tạo thanh toán
type Initiation struct {
	// RedirectURL rỗng với COD
	RedirectURL string
	// Reference: correlation id phía gateway (Stripe session id)
	Reference string
}

// Gateway is one payment method adapter. Config (keys, secrets) is
// injected at construction.
type Gateway interface {
	Method() ordermodel.PaymentMethod

	// Initiate không ghi DB; caller lưu Reference và xử lý compensation
	Initiate(ctx context.Context, order *ordermodel.Order) (*Initiation, error)

	// VerifyCallback returns model.ErrInvalidSignature (or ErrMissingParam)
	// when the callback cannot be trusted.
	VerifyCallback(ctx context.Context, params map[string]string) (*model.Callback, error)
}

// =====================================================
// REGISTRY
// =====================================================

type Registry struct {
	gateways map[ordermodel.PaymentMethod]Gateway
}

func NewRegistry(gateways ...Gateway) *Registry {
	r := &Registry{gateways: make(map[ordermodel.PaymentMethod]Gateway, len(gateways))}
	for _, g := range gateways {
		r.gateways[g.Method()] = g
	}
	return r
}

func (r *Registry) Get(method ordermodel.PaymentMethod) (Gateway, error) {
	g, ok := r.gateways[method]
	if !ok {
		return nil, model.NewPaymentError(model.ErrCodeInvalidGateway,
			"payment gateway not configured: "+string(method), model.ErrInvalidGateway)
	}
	return g, nil
}

// Methods trả về các method đang bật, sort để log ổn định
func (r *Registry) Methods() []string {
	methods := make([]string, 0, len(r.gateways))
	for m := range r.gateways {
		methods = append(methods, string(m))
	}
	sort.Strings(methods)
	return methods
}
