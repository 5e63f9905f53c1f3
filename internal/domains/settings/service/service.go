package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shop-backend/internal/domains/settings/model"
	"shop-backend/internal/domains/settings/repository"
	"shop-backend/pkg/cache"
	"shop-backend/pkg/logger"
)

const (
	currentCacheKey = "settings:current:%d"
	cachePattern    = "settings:*"
	cacheTTL        = 10 * time.Minute
)

// Service quản lý bảng settings và resolve fee snapshot cho order mới.
type Service interface {
	// Current trả về cấu hình đang áp dụng: active của năm hiện tại,
	// rồi active mới nhất, cuối cùng là defaults. Không bao giờ trả lỗi
	// NotFound.
	Current(ctx context.Context) (*model.Settings, error)

	GetByYear(ctx context.Context, year int) (*model.Settings, error)
	List(ctx context.Context) ([]*model.Settings, error)
	Create(ctx context.Context, req model.CreateSettingsRequest) (*model.Settings, error)
	Update(ctx context.Context, year int, req model.UpdateSettingsRequest) (*model.Settings, error)
	Delete(ctx context.Context, year int) error
}

// Defaults dùng khi DB chưa có dòng active nào
type Defaults struct {
	ShippingFee decimal.Decimal
	TaxRate     decimal.Decimal
}

type service struct {
	repo     repository.Repository
	cache    cache.Cache
	defaults Defaults
	now      func() time.Time
}

func NewService(repo repository.Repository, c cache.Cache, defaults Defaults) Service {
	return &service{
		repo:     repo,
		cache:    c,
		defaults: defaults,
		now:      time.Now,
	}
}

func (s *service) Current(ctx context.Context) (*model.Settings, error) {
	year := s.now().Year()
	key := fmt.Sprintf(currentCacheKey, year)

	if s.cache != nil {
		var cached model.Settings
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			// cache lỗi thì đọc DB, không fail request
			logger.Warn("Settings cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
		} else if found {
			return &cached, nil
		}
	}

	current, err := s.resolve(ctx, year)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, current, cacheTTL); err != nil {
			logger.Warn("Settings cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return current, nil
}

func (s *service) resolve(ctx context.Context, year int) (*model.Settings, error) {
	current, err := s.repo.GetActiveByYear(ctx, year)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, model.ErrSettingsNotFound) {
		return nil, err
	}

	current, err = s.repo.GetLatestActive(ctx)
	if err == nil {
		return current, nil
	}
	if !errors.Is(err, model.ErrSettingsNotFound) {
		return nil, err
	}

	logger.Debug(fmt.Sprintf("No active settings, using defaults for %d", year))
	return &model.Settings{
		Year:        year,
		ShippingFee: s.defaults.ShippingFee,
		TaxRate:     s.defaults.TaxRate,
		IsActive:    true,
	}, nil
}

func (s *service) GetByYear(ctx context.Context, year int) (*model.Settings, error) {
	if year < model.MinYear || year > model.MaxYear {
		return nil, model.NewSettingsError(model.ErrCodeInvalidSettings,
			fmt.Sprintf("year must be between %d and %d", model.MinYear, model.MaxYear), model.ErrInvalidSettings)
	}
	return s.repo.GetByYear(ctx, year)
}

func (s *service) List(ctx context.Context) ([]*model.Settings, error) {
	return s.repo.List(ctx)
}

func (s *service) Create(ctx context.Context, req model.CreateSettingsRequest) (*model.Settings, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewSettingsError(model.ErrCodeInvalidSettings, err.Error(), model.ErrInvalidSettings)
	}

	settings := req.ToSettings()
	if err := s.repo.Create(ctx, settings); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info("Settings created", map[string]interface{}{"year": settings.Year})
	return settings, nil
}

func (s *service) Update(ctx context.Context, year int, req model.UpdateSettingsRequest) (*model.Settings, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewSettingsError(model.ErrCodeInvalidSettings, err.Error(), model.ErrInvalidSettings)
	}

	settings, err := s.repo.GetByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return settings, nil
	}

	req.Apply(settings)
	if err := s.repo.Update(ctx, settings); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info("Settings updated", map[string]interface{}{"year": year})
	return settings, nil
}

func (s *service) Delete(ctx context.Context, year int) error {
	if err := s.repo.Delete(ctx, year); err != nil {
		return err
	}
	s.invalidate(ctx)
	logger.Info("Settings deleted", map[string]interface{}{"year": year})
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, cachePattern); err != nil {
		logger.Warn("Settings cache invalidation failed", map[string]interface{}{"error": err.Error()})
	}
}
