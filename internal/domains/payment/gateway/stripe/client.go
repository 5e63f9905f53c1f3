package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
	"shop-backend/pkg/logger"
)

const (
	metadataOrderID = "orderId"
	metadataUserID  = "userId"

	// ParamSessionID là query param stripe-return nhận được
	ParamSessionID = "session_id"
)

var hundred = decimal.NewFromInt(100)

// SessionAPI is the part of the Stripe checkout session client the adapter uses.
type SessionAPI interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Get(id string, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// =====================================================
// STRIPE CLIENT
// =====================================================
type Client struct {
	config   *Config
	sessions SessionAPI
}

// NewClient dùng SDK thật; sessions != nil để inject fake trong test
func NewClient(config *Config, sessions SessionAPI) (*Client, error) {
	if sessions == nil {
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid Stripe config: %w", err)
		}
		sc := client.New(config.SecretKey, nil)
		sessions = sc.CheckoutSessions
	}

	return &Client{config: config, sessions: sessions}, nil
}

var _ gateway.Gateway = (*Client)(nil)

func (c *Client) Method() ordermodel.PaymentMethod {
	return ordermodel.PaymentMethodStripe
}

// =====================================================
// CREATE CHECKOUT SESSION
// =====================================================

func (c *Client) Initiate(ctx context.Context, order *ordermodel.Order) (*gateway.Initiation, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lineItems = append(lineItems, c.lineItem(item.Name, item.UnitPrice, item.Quantity))
	}
	lineItems = append(lineItems, c.lineItem("Delivery Charges", order.Fees.ShippingFee, 1))

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(c.config.SuccessURL),
		CancelURL:          stripe.String(c.config.CancelURL),
		Metadata: map[string]string{
			metadataOrderID: order.ID.String(),
			metadataUserID:  order.UserID.String(),
		},
	}
	params.Context = ctx
	// retry của cùng order không tạo session thứ hai
	params.SetIdempotencyKey("checkout-" + order.ID.String())

	session, err := c.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create checkout session: %w", err)
	}

	logger.Info("Stripe checkout session created", map[string]interface{}{
		"order_id":   order.ID.String(),
		"session_id": session.ID,
	})

	return &gateway.Initiation{
		RedirectURL: session.URL,
		Reference:   session.ID,
	}, nil
}

func (c *Client) lineItem(name string, unitPrice decimal.Decimal, quantity int) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(int64(quantity)),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(c.config.Currency),
			UnitAmount: stripe.Int64(unitPrice.Mul(hundred).IntPart()),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

// =====================================================
// VERIFY CALLBACK
// =====================================================

// VerifyCallback trusts nothing from the query except the session id: the
// session is retrieved server-side and its state decides the result.
func (c *Client) VerifyCallback(ctx context.Context, params map[string]string) (*model.Callback, error) {
	sessionID := strings.TrimSpace(params[ParamSessionID])
	if sessionID == "" {
		return nil, model.NewPaymentError(model.ErrCodeMissingParam, "session_id is required", model.ErrMissingParam)
	}

	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	session, err := c.sessions.Get(sessionID, getParams)
	if err != nil {
		return nil, model.NewPaymentError(model.ErrCodeGatewayUnavailable, "stripe: retrieve checkout session", fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, err))
	}

	orderRef := session.Metadata[metadataOrderID]
	if orderRef == "" {
		return nil, model.NewPaymentError(model.ErrCodeMissingParam, "checkout session has no orderId metadata", model.ErrMissingParam)
	}

	result := model.ResultPending
	switch {
	case session.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid:
		result = model.ResultPaid
	case session.Status == stripe.CheckoutSessionStatusExpired:
		result = model.ResultFailed
	}

	txnNo := session.ID
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		txnNo = session.PaymentIntent.ID
	}

	return &model.Callback{
		Gateway:       ordermodel.PaymentMethodStripe,
		OrderRef:      orderRef,
		Result:        result,
		Code:          string(session.Status),
		TransactionNo: txnNo,
		Raw: map[string]string{
			ParamSessionID:   session.ID,
			"payment_status": string(session.PaymentStatus),
			"status":         string(session.Status),
		},
	}, nil
}

// =====================================================
// WEBHOOK
// =====================================================

// ParseWebhook verifies the Stripe-Signature header and returns callback
// params for checkout session events. ok=false means the event is valid but
// not one settlement cares about.
func (c *Client) ParseWebhook(payload []byte, signature string) (params map[string]string, ok bool, err error) {
	if c.config.WebhookSecret == "" {
		return nil, false, model.NewPaymentError(model.ErrCodeInvalidSignature, "stripe webhook secret not configured", model.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEvent(payload, signature, c.config.WebhookSecret)
	if err != nil {
		return nil, false, model.NewPaymentError(model.ErrCodeInvalidSignature, "stripe webhook signature", fmt.Errorf("%w: %v", model.ErrInvalidSignature, err))
	}

	switch event.Type {
	case "checkout.session.completed",
		"checkout.session.async_payment_succeeded",
		"checkout.session.async_payment_failed",
		"checkout.session.expired":
	default:
		return nil, false, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, false, fmt.Errorf("stripe: decode checkout session: %w", err)
	}
	if session.ID == "" {
		return nil, false, nil
	}

	return map[string]string{ParamSessionID: session.ID}, true, nil
}
