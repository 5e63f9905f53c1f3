package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/settings/model"
	"shop-backend/internal/shared/response"
)

type mockSettingsService struct {
	mock.Mock
}

func (m *mockSettingsService) Current(ctx context.Context) (*model.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(*model.Settings)
	return s, args.Error(1)
}

func (m *mockSettingsService) GetByYear(ctx context.Context, year int) (*model.Settings, error) {
	args := m.Called(ctx, year)
	s, _ := args.Get(0).(*model.Settings)
	return s, args.Error(1)
}

func (m *mockSettingsService) List(ctx context.Context) ([]*model.Settings, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*model.Settings)
	return list, args.Error(1)
}

func (m *mockSettingsService) Create(ctx context.Context, req model.CreateSettingsRequest) (*model.Settings, error) {
	args := m.Called(ctx, req)
	s, _ := args.Get(0).(*model.Settings)
	return s, args.Error(1)
}

func (m *mockSettingsService) Update(ctx context.Context, year int, req model.UpdateSettingsRequest) (*model.Settings, error) {
	args := m.Called(ctx, year, req)
	s, _ := args.Get(0).(*model.Settings)
	return s, args.Error(1)
}

func (m *mockSettingsService) Delete(ctx context.Context, year int) error {
	return m.Called(ctx, year).Error(0)
}

func newRouter(svc *mockSettingsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewSettingsHandler(svc)
	h.RegisterPublicRoutes(r.Group("/api/v1"))
	h.RegisterAdminRoutes(r.Group("/api/v1/admin"))
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

func TestSettingsHandler_Current(t *testing.T) {
	svc := new(mockSettingsService)
	svc.On("Current", mock.Anything).Return(&model.Settings{
		Year:        2026,
		ShippingFee: decimal.NewFromInt(10),
		TaxRate:     decimal.RequireFromString("0.02"),
		IsActive:    true,
	}, nil)

	w, env := do(newRouter(svc), http.MethodGet, "/api/v1/settings/current", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, w.Body.String(), `"taxRate":"0.02"`)
}

func TestSettingsHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", model.ErrSettingsNotFound, http.StatusNotFound, model.ErrCodeSettingsNotFound},
		{"invalid", model.NewSettingsError(model.ErrCodeInvalidSettings, "year out of range", model.ErrInvalidSettings), http.StatusBadRequest, model.ErrCodeInvalidSettings},
		{"unexpected", fmt.Errorf("db down"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockSettingsService)
			svc.On("GetByYear", mock.Anything, 1999).Return(nil, tt.err)

			w, env := do(newRouter(svc), http.MethodGet, "/api/v1/settings/1999", nil)
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
		})
	}
}

func TestSettingsHandler_Create(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		svc := new(mockSettingsService)
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, model.ErrSettingsExists)

		w, env := do(newRouter(svc), http.MethodPost, "/api/v1/admin/settings", map[string]interface{}{"year": 2026})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, model.ErrCodeSettingsExists, env.Error.Code)
	})

	t.Run("tax rate above one never reaches the service", func(t *testing.T) {
		svc := new(mockSettingsService)

		w, _ := do(newRouter(svc), http.MethodPost, "/api/v1/admin/settings", map[string]interface{}{
			"year":    2026,
			"taxRate": "1.5",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		svc := new(mockSettingsService)
		svc.On("Create", mock.Anything, mock.MatchedBy(func(req model.CreateSettingsRequest) bool {
			return req.Year == 2027
		})).Return(&model.Settings{Year: 2027}, nil)

		w, env := do(newRouter(svc), http.MethodPost, "/api/v1/admin/settings", map[string]interface{}{"year": 2027})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)
	})
}

func TestSettingsHandler_BadYear(t *testing.T) {
	svc := new(mockSettingsService)

	w, _ := do(newRouter(svc), http.MethodDelete, "/api/v1/admin/settings/next", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
