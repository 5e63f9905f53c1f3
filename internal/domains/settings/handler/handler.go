package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shop-backend/internal/domains/settings/model"
	"shop-backend/internal/domains/settings/service"
	"shop-backend/internal/shared/response"
	"shop-backend/pkg/logger"
)

// =====================================================
// SETTINGS HANDLER
// =====================================================
type SettingsHandler struct {
	service service.Service
}

func NewSettingsHandler(s service.Service) *SettingsHandler {
	return &SettingsHandler{service: s}
}

// RegisterPublicRoutes: GET /settings/current, GET /settings/:year
func (h *SettingsHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("/current", h.GetCurrent)
		settings.GET("/:year", h.GetByYear)
	}
}

// RegisterAdminRoutes expects router to already carry auth + admin middleware
func (h *SettingsHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	settings := router.Group("/settings")
	{
		settings.GET("", h.List)
		settings.POST("", h.Create)
		settings.PUT("/:year", h.Update)
		settings.DELETE("/:year", h.Delete)
	}
}

func (h *SettingsHandler) GetCurrent(c *gin.Context) {
	s, err := h.service.Current(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OK", s)
}

func (h *SettingsHandler) GetByYear(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}

	s, err := h.service.GetByYear(c.Request.Context(), year)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "OK", s)
}

func (h *SettingsHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if list == nil {
		list = []*model.Settings{}
	}
	response.Success(c, http.StatusOK, "OK", list)
}

func (h *SettingsHandler) Create(c *gin.Context) {
	var req model.CreateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, err)
		return
	}

	s, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "Settings created", s)
}

func (h *SettingsHandler) Update(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}

	var req model.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.ValidationError(c, err)
		return
	}

	s, err := h.service.Update(c.Request.Context(), year, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Settings updated", s)
}

func (h *SettingsHandler) Delete(c *gin.Context) {
	year, ok := parseYear(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), year); err != nil {
		h.handleServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "Settings deleted", nil)
}

// =====================================================
// HELPERS
// =====================================================

func parseYear(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.BadRequest(c, "Year must be a number")
		return 0, false
	}
	return year, true
}

func (h *SettingsHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrSettingsNotFound):
		response.ErrorResponse(c, http.StatusNotFound, model.ErrCodeSettingsNotFound, "Settings not found")
	case errors.Is(err, model.ErrSettingsExists):
		response.ErrorResponse(c, http.StatusConflict, model.ErrCodeSettingsExists, "Settings for this year already exist")
	case errors.Is(err, model.ErrInvalidSettings):
		msg := "Invalid settings"
		var setErr *model.SettingsError
		if errors.As(err, &setErr) {
			msg = setErr.Message
		}
		response.ErrorResponse(c, http.StatusBadRequest, model.ErrCodeInvalidSettings, msg)
	default:
		logger.Error("Settings request failed", err)
		response.InternalServerError(c, "Internal server error")
	}
}
