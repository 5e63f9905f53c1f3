package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/shared/middleware"
	"shop-backend/internal/shared/response"
)

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, method model.PaymentMethod, req model.PlaceOrderRequest) (*model.PlaceOrderResponse, error) {
	args := m.Called(ctx, userID, method, req)
	resp, _ := args.Get(0).(*model.PlaceOrderResponse)
	return resp, args.Error(1)
}

func (m *mockOrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]*model.Order)
	return orders, args.Error(1)
}

func (m *mockOrderService) ListOrders(ctx context.Context, req model.ListOrdersRequest) (*model.ListOrdersResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*model.ListOrdersResponse)
	return resp, args.Error(1)
}

func (m *mockOrderService) UpdateStatus(ctx context.Context, req model.UpdateStatusRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) UpdateOrder(ctx context.Context, req model.UpdateOrderRequest) (*model.Order, error) {
	args := m.Called(ctx, req)
	order, _ := args.Get(0).(*model.Order)
	return order, args.Error(1)
}

func (m *mockOrderService) DeleteOrder(ctx context.Context, req model.DeleteOrderRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockOrderService) ExpirePending(ctx context.Context, orderID uuid.UUID) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *mockOrderService) SweepStalePending(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func newRouter(svc *mockOrderService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewOrderHandler(svc)

	api := r.Group("/api/v1")
	authed := api.Group("", func(c *gin.Context) {
		if userID != uuid.Nil {
			c.Set(middleware.UserIDKey, userID)
		}
		c.Next()
	})
	h.RegisterUserRoutes(authed)
	h.RegisterAdminRoutes(authed)
	return r
}

func do(r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, response.Response) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestPlaceOrder_Envelope(t *testing.T) {
	svc := &mockOrderService{}
	userID := uuid.New()
	r := newRouter(svc, userID)

	svc.On("PlaceOrder", mock.Anything, userID, model.PaymentMethodVNPay, mock.AnythingOfType("model.PlaceOrderRequest")).
		Return(&model.PlaceOrderResponse{OrderID: "abc", RedirectURL: "https://pay"}, nil)

	w, env := do(r, http.MethodPost, "/api/v1/order/vnpay", map[string]interface{}{"items": []interface{}{}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "abc", data["orderId"])
	assert.Equal(t, "https://pay", data["redirectUrl"])
	svc.AssertExpectations(t)
}

func TestPlaceOrder_RequiresUser(t *testing.T) {
	svc := &mockOrderService{}
	r := newRouter(svc, uuid.Nil)

	w, env := do(r, http.MethodPost, "/api/v1/order/cod", map[string]interface{}{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, env.Success)
	svc.AssertNotCalled(t, "PlaceOrder", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceOrder_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"empty cart", model.NewOrderError(model.ErrCodeCartEmpty, "Giỏ hàng trống! Không thể đặt hàng.", model.ErrCartEmpty), http.StatusBadRequest},
		{"invalid size", model.NewOrderError(model.ErrCodeInvalidSize, "size", model.ErrInvalidSize), http.StatusBadRequest},
		{"insufficient stock", model.NewOrderError(model.ErrCodeInsufficientStock, "stock", model.ErrInsufficientStock), http.StatusBadRequest},
		{"amount too small", model.NewOrderError(model.ErrCodeAmountTooSmall, "min", model.ErrAmountTooSmall), http.StatusBadRequest},
		{"product not found", model.NewOrderError(model.ErrCodeProductNotFound, "missing", model.ErrProductNotFound), http.StatusNotFound},
		{"gateway failure", model.NewOrderError(model.ErrCodeGatewayFailure, "gateway", errors.New("timeout")), http.StatusInternalServerError},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockOrderService{}
			r := newRouter(svc, uuid.New())
			svc.On("PlaceOrder", mock.Anything, mock.Anything, model.PaymentMethodCOD, mock.Anything).Return(nil, tt.err)

			w, env := do(r, http.MethodPost, "/api/v1/order/cod", map[string]interface{}{})
			assert.Equal(t, tt.status, w.Code)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)

			var orderErr *model.OrderError
			if errors.As(tt.err, &orderErr) {
				assert.Equal(t, orderErr.Code, env.Error.Code)
				assert.Equal(t, orderErr.Message, env.Message)
			}
		})
	}
}

func TestAdminMutations_ErrorMapping(t *testing.T) {
	svc := &mockOrderService{}
	r := newRouter(svc, uuid.New())
	id := uuid.NewString()

	svc.On("UpdateStatus", mock.Anything, model.UpdateStatusRequest{OrderID: id, Status: "Shipped"}).
		Return(nil, model.NewTransitionError(model.StatusDelivered, model.StatusShipped))
	svc.On("DeleteOrder", mock.Anything, model.DeleteOrderRequest{OrderID: id}).
		Return(model.NewOrderError(model.ErrCodeOrderInFlight, "in flight", model.ErrOrderInFlight))
	svc.On("UpdateOrder", mock.Anything, mock.Anything).Return(nil, model.NewConcurrentUpdateError())

	w, env := do(r, http.MethodPost, "/api/v1/order/status", model.UpdateStatusRequest{OrderID: id, Status: "Shipped"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeInvalidTransition, env.Error.Code)

	w, env = do(r, http.MethodPost, "/api/v1/order/delete", model.DeleteOrderRequest{OrderID: id})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, model.ErrCodeOrderInFlight, env.Error.Code)

	w, env = do(r, http.MethodPost, "/api/v1/order/update", map[string]string{"orderId": id})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, model.ErrCodeConcurrentUpdate, env.Error.Code)
}

func TestListOrders_Meta(t *testing.T) {
	svc := &mockOrderService{}
	r := newRouter(svc, uuid.New())

	svc.On("ListOrders", mock.Anything, model.ListOrdersRequest{Page: 2, Limit: 5}).
		Return(&model.ListOrdersResponse{Total: 7, Page: 2, Limit: 5}, nil)

	w, env := do(r, http.MethodGet, "/api/v1/order/list?page=2&limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 7, env.Meta.Total)
	assert.Equal(t, []interface{}{}, env.Data)
}

func TestUserOrders_EmptyList(t *testing.T) {
	svc := &mockOrderService{}
	userID := uuid.New()
	r := newRouter(svc, userID)
	svc.On("ListUserOrders", mock.Anything, userID).Return(nil, nil)

	w, env := do(r, http.MethodGet, "/api/v1/order/userorders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, env.Data)
}
