package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/model"
	"shop-backend/internal/domains/payment/service"
	"shop-backend/internal/shared/response"
	"shop-backend/pkg/logger"
)

const (
	paramSessionID        = "session_id"
	stripeSignatureHeader = "Stripe-Signature"
	maxWebhookBody        = 64 << 10
)

// WebhookParser verifies a Stripe webhook and returns the params Settle needs.
// ok=false means the event type is not one we settle on.
type WebhookParser interface {
	ParseWebhook(payload []byte, signature string) (params map[string]string, ok bool, err error)
}

type PaymentHandler struct {
	settlement  service.SettlementService
	webhooks    WebhookParser // nil khi Stripe chưa cấu hình
	frontendURL string
}

// NewPaymentHandler creates new payment handler
func NewPaymentHandler(settlement service.SettlementService, webhooks WebhookParser, frontendURL string) *PaymentHandler {
	return &PaymentHandler{
		settlement:  settlement,
		webhooks:    webhooks,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterPublicRoutes: gateway redirect + webhook, không cần auth
func (h *PaymentHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	orders := router.Group("/order")
	{
		orders.GET("/vnpay-return", h.VNPayReturn)
		orders.GET("/stripe-return", h.StripeReturn)
		orders.POST("/stripe-webhook", h.StripeWebhook)
	}
}

func (h *PaymentHandler) RegisterUserRoutes(router *gin.RouterGroup) {
	router.POST("/order/verify-stripe", h.VerifyStripe)
}

func (h *PaymentHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/order/callback-logs/:ref", h.CallbackLogs)
}

// =====================================================
// GATEWAY RETURNS (browser redirect)
// =====================================================

// VNPayReturn: GET /order/vnpay-return?vnp_...
func (h *PaymentHandler) VNPayReturn(c *gin.Context) {
	params := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	outcome := h.settlement.Settle(c.Request.Context(), ordermodel.PaymentMethodVNPay, params)
	c.Redirect(http.StatusSeeOther, h.redirectURL(outcome))
}

// StripeReturn: GET /order/stripe-return?session_id=cs_...
// Chỉ lấy session_id; trạng thái thanh toán đọc lại từ Stripe.
func (h *PaymentHandler) StripeReturn(c *gin.Context) {
	params := map[string]string{paramSessionID: c.Query(paramSessionID)}

	outcome := h.settlement.Settle(c.Request.Context(), ordermodel.PaymentMethodStripe, params)
	c.Redirect(http.StatusSeeOther, h.redirectURL(outcome))
}

func (h *PaymentHandler) redirectURL(o model.Outcome) string {
	switch o.Kind {
	case model.OutcomePaid, model.OutcomeAlreadyPaid:
		return h.frontendURL + "/my-orders?success=true&orderId=" + o.OrderID.String()
	case model.OutcomePending:
		return h.frontendURL + "/my-orders?pending=true&orderId=" + o.OrderID.String()
	case model.OutcomeCancelled:
		return h.frontendURL + "/cart?cancelled=true&code=" + url.QueryEscape(o.Code)
	case model.OutcomeInvalidSignature:
		return h.frontendURL + "/cart?error=invalid_signature"
	case model.OutcomeOrderNotFound:
		return h.frontendURL + "/cart?error=order_not_found"
	default:
		return h.frontendURL + "/cart?error=processing_failed"
	}
}

// =====================================================
// VERIFY STRIPE (SPA gọi sau khi quay về)
// =====================================================

// VerifyStripe: POST /order/verify-stripe {sessionId}
func (h *PaymentHandler) VerifyStripe(c *gin.Context) {
	var req model.VerifyStripeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeMissingParam, "Invalid request body", err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, err)
		return
	}

	outcome := h.settlement.Settle(c.Request.Context(), ordermodel.PaymentMethodStripe,
		map[string]string{paramSessionID: req.SessionID})

	switch outcome.Kind {
	case model.OutcomePaid, model.OutcomeAlreadyPaid:
		response.Success(c, http.StatusOK, "Thanh toán thành công", model.VerifyStripeResponse{
			OrderID: outcome.OrderID.String(),
			IsPaid:  true,
			Status:  string(ordermodel.StatusPaid),
		})
	case model.OutcomePending:
		response.Success(c, http.StatusOK, "Thanh toán đang xử lý", model.VerifyStripeResponse{
			OrderID: outcome.OrderID.String(),
			Status:  string(ordermodel.StatusPendingPayment),
		})
	case model.OutcomeCancelled:
		response.Success(c, http.StatusOK, "Thanh toán đã bị huỷ", model.VerifyStripeResponse{
			OrderID: outcome.OrderID.String(),
			Status:  string(ordermodel.StatusCancelled),
		})
	case model.OutcomeInvalidSignature:
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSignature, "Không xác thực được phiên thanh toán")
	case model.OutcomeOrderNotFound:
		response.ErrorResponse(c, http.StatusNotFound, ordermodel.ErrCodeOrderNotFound, "Không tìm thấy đơn hàng")
	default:
		response.InternalServerError(c, "Không thể xử lý thanh toán")
	}
}

// =====================================================
// STRIPE WEBHOOK
// =====================================================

// StripeWebhook: POST /order/stripe-webhook, xác thực bằng header Stripe-Signature
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	if h.webhooks == nil {
		response.ErrorResponse(c, http.StatusServiceUnavailable, model.ErrCodeGatewayUnavailable, "Stripe is not configured")
		return
	}

	payload, err := readBody(c, maxWebhookBody)
	if err != nil {
		response.BadRequest(c, "Cannot read request body")
		return
	}

	params, ok, err := h.webhooks.ParseWebhook(payload, c.GetHeader(stripeSignatureHeader))
	if err != nil {
		logger.Warn("Rejected Stripe webhook", map[string]interface{}{
			"error": err.Error(),
			"ip":    c.ClientIP(),
		})
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSignature, "Invalid webhook signature")
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	outcome := h.settlement.Settle(c.Request.Context(), ordermodel.PaymentMethodStripe, params)
	if outcome.Kind == model.OutcomeProcessingFailed {
		// non-2xx để Stripe gửi lại
		response.InternalServerError(c, "Settlement failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "outcome": outcome.Kind})
}

// =====================================================
// ADMIN
// =====================================================

// CallbackLogs: GET /order/callback-logs/:ref
func (h *PaymentHandler) CallbackLogs(c *gin.Context) {
	logs, err := h.settlement.CallbackLogs(c.Request.Context(), c.Param("ref"))
	if err != nil {
		logger.Error("List callback logs failed", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	if logs == nil {
		logs = []*model.CallbackLog{}
	}
	response.Success(c, http.StatusOK, "OK", logs)
}
