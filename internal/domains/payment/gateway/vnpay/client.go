package vnpay

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/logger"
)

// =====================================================
// VNPAY CLIENT
// =====================================================

// Client builds signed payment URLs. No network call is made: only the
// browser talks to VNPay.
type Client struct {
	config *Config
	now    func() time.Time
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid VNPay config: %w", err)
	}

	return &Client{
		config: config,
		now:    time.Now,
	}, nil
}

var _ gateway.Gateway = (*Client)(nil)

func (c *Client) Method() ordermodel.PaymentMethod {
	return ordermodel.PaymentMethodVNPay
}

// =====================================================
// CREATE PAYMENT URL
// =====================================================

func (c *Client) Initiate(ctx context.Context, order *ordermodel.Order) (*gateway.Initiation, error) {
	amount := order.Amount.IntPart()
	if amount < MinAmount {
		return nil, fmt.Errorf("vnpay amount %d below minimum %d", amount, MinAmount)
	}

	// vnp_IpAddr phải là IPv4 thật của khách, lấy từ ClientIPMiddleware
	clientIP := utils.ClientIPFromContext(ctx)
	if clientIP == "" || clientIP == "::1" {
		clientIP = "127.0.0.1"
	}

	orderID := order.ID.String()
	now := c.now()
	params := map[string]string{
		"vnp_Version":    c.config.Version,
		"vnp_Command":    c.config.Command,
		"vnp_TmnCode":    c.config.TmnCode,
		"vnp_Amount":     formatAmount(amount),
		"vnp_CurrCode":   c.config.CurrCode,
		"vnp_TxnRef":     orderID,
		"vnp_OrderInfo":  "Thanh toan don hang #" + orderID,
		"vnp_OrderType":  "other",
		"vnp_Locale":     c.config.Locale,
		"vnp_ReturnUrl":  c.config.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format(dateLayout),
	}
	if c.config.ExpireIn > 0 {
		params["vnp_ExpireDate"] = now.Add(c.config.ExpireIn).Format(dateLayout)
	}

	logger.Debug(fmt.Sprintf("VNPay payment URL created for order %s, amount %d VND", orderID, amount))

	return &gateway.Initiation{
		RedirectURL: BuildPaymentURL(c.config.GetPaymentURL(), params, c.config.HashSecret),
		Reference:   orderID,
	}, nil
}

// formatAmount: VNPay yêu cầu amount * 100, không có phần thập phân
func formatAmount(vnd int64) string {
	return decimal.NewFromInt(vnd).Mul(decimal.NewFromInt(100)).StringFixed(0)
}

// =====================================================
// VERIFY CALLBACK
// =====================================================

func (c *Client) VerifyCallback(_ context.Context, params map[string]string) (*model.Callback, error) {
	if !Verify(params, c.config.HashSecret) {
		return nil, model.NewPaymentError(model.ErrCodeInvalidSignature, "VNPay signature mismatch", model.ErrInvalidSignature)
	}

	txnRef := params["vnp_TxnRef"]
	code := params["vnp_ResponseCode"]
	if txnRef == "" || code == "" {
		return nil, model.NewPaymentError(model.ErrCodeMissingParam, "vnp_TxnRef and vnp_ResponseCode are required", model.ErrMissingParam)
	}

	result := model.ResultFailed
	if code == ResponseCodeSuccess {
		result = model.ResultPaid
	}

	return &model.Callback{
		Gateway:       ordermodel.PaymentMethodVNPay,
		OrderRef:      txnRef,
		Result:        result,
		Code:          code,
		Message:       GetResponseMessage(code),
		TransactionNo: params["vnp_TransactionNo"],
		Raw:           params,
	}, nil
}
