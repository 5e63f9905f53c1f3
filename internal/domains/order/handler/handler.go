package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/service"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/response"
	"shop-backend/pkg/logger"
)

// =====================================================
// ORDER HANDLER
// =====================================================
type OrderHandler struct {
	orderService service.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

// =====================================================
// ROUTES REGISTRATION
// =====================================================

// RegisterUserRoutes: group đã gắn auth middleware
func (h *OrderHandler) RegisterUserRoutes(router *gin.RouterGroup) {
	orders := router.Group("/order")
	{
		orders.POST("/cod", h.PlaceCOD)         // POST /api/v1/order/cod
		orders.POST("/stripe", h.PlaceStripe)   // POST /api/v1/order/stripe
		orders.POST("/vnpay", h.PlaceVNPay)     // POST /api/v1/order/vnpay
		orders.GET("/userorders", h.UserOrders) // GET /api/v1/order/userorders
	}
}

// RegisterAdminRoutes: group đã gắn auth + admin middleware
func (h *OrderHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	orders := router.Group("/order")
	{
		orders.GET("/list", h.ListOrders)      // GET /api/v1/order/list?page=1&limit=20
		orders.POST("/status", h.UpdateStatus) // POST /api/v1/order/status
		orders.POST("/update", h.UpdateOrder)  // POST /api/v1/order/update
		orders.POST("/delete", h.DeleteOrder)  // POST /api/v1/order/delete
	}
}

// =====================================================
// PLACE ORDER
// =====================================================

func (h *OrderHandler) PlaceCOD(c *gin.Context) {
	h.place(c, model.PaymentMethodCOD, "Đặt hàng thành công")
}

func (h *OrderHandler) PlaceStripe(c *gin.Context) {
	h.place(c, model.PaymentMethodStripe, "Chuyển đến trang thanh toán Stripe")
}

func (h *OrderHandler) PlaceVNPay(c *gin.Context) {
	h.place(c, model.PaymentMethodVNPay, "Chuyển đến trang thanh toán VNPay")
}

func (h *OrderHandler) place(c *gin.Context, method model.PaymentMethod, message string) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeUnauthorized, "Unauthorized")
		return
	}

	var req model.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid request body", err.Error())
		return
	}

	result, err := h.orderService.PlaceOrder(c.Request.Context(), userID, method, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, message, result)
}

// =====================================================
// LIST
// =====================================================

func (h *OrderHandler) UserOrders(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.ErrorResponse(c, http.StatusUnauthorized, model.ErrCodeUnauthorized, "Unauthorized")
		return
	}

	orders, err := h.orderService.ListUserOrders(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if orders == nil {
		orders = []*model.Order{}
	}

	response.Success(c, http.StatusOK, "OK", orders)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req model.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid query parameters", err.Error())
		return
	}

	result, err := h.orderService.ListOrders(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if result.Orders == nil {
		result.Orders = []*model.Order{}
	}

	response.SuccessWithMeta(c, http.StatusOK, "OK", result.Orders, &response.Meta{
		Page:  result.Page,
		Limit: result.Limit,
		Total: result.Total,
	})
}

// =====================================================
// ADMIN MUTATIONS
// =====================================================

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Cập nhật trạng thái thành công", order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req model.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid request body", err.Error())
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Cập nhật đơn hàng thành công", order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	var req model.DeleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, model.ErrCodeInvalidRequest, "Invalid request body", err.Error())
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Xoá đơn hàng thành công", nil)
}

// =====================================================
// HELPER METHODS
// =====================================================

// handleServiceError handles service layer errors and maps to HTTP responses
func (h *OrderHandler) handleServiceError(c *gin.Context, err error) {
	var orderErr *model.OrderError
	if errors.As(err, &orderErr) {
		status := statusForCode(orderErr.Code)
		if status >= http.StatusInternalServerError {
			logger.ErrorWithFields("Order request failed", err, map[string]interface{}{
				"code": orderErr.Code,
				"path": c.FullPath(),
			})
		}
		response.ErrorResponse(c, status, orderErr.Code, orderErr.Message)
		return
	}

	if errors.Is(err, model.ErrOrderNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeOrderNotFound, "Không tìm thấy đơn hàng")
		return
	}

	logger.ErrorWithFields("Unexpected order error", err, map[string]interface{}{
		"path": c.FullPath(),
	})
	response.InternalServerError(c, "Internal server error")
}

var statusByCode = map[string]int{
	model.ErrCodeOrderNotFound:        http.StatusNotFound,
	model.ErrCodeProductNotFound:      http.StatusNotFound,
	model.ErrCodeCartEmpty:            http.StatusBadRequest,
	model.ErrCodeInvalidSize:          http.StatusBadRequest,
	model.ErrCodeInsufficientStock:    http.StatusBadRequest,
	model.ErrCodeAmountTooSmall:       http.StatusBadRequest,
	model.ErrCodeInvalidStatus:        http.StatusBadRequest,
	model.ErrCodeInvalidTransition:    http.StatusBadRequest,
	model.ErrCodeOrderInFlight:        http.StatusBadRequest,
	model.ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
	model.ErrCodeInvalidRequest:       http.StatusBadRequest,
	model.ErrCodeUnauthorized:         http.StatusForbidden,
	model.ErrCodeConcurrentUpdate:     http.StatusConflict,
	model.ErrCodeGatewayFailure:       http.StatusInternalServerError,
}

// statusForCode maps business error codes to HTTP status codes
func statusForCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
