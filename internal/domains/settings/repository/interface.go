package repository

import (
	"context"

	"shop-backend/internal/domains/settings/model"
)

// Repository defines data access methods for settings
type Repository interface {
	// GetByYear trả model.ErrSettingsNotFound nếu năm đó chưa có cấu hình
	GetByYear(ctx context.Context, year int) (*model.Settings, error)
	GetActiveByYear(ctx context.Context, year int) (*model.Settings, error)
	// GetLatestActive trả dòng active có year lớn nhất
	GetLatestActive(ctx context.Context) (*model.Settings, error)
	List(ctx context.Context) ([]*model.Settings, error)

	Create(ctx context.Context, s *model.Settings) error
	Update(ctx context.Context, s *model.Settings) error
	Delete(ctx context.Context, year int) error
}
