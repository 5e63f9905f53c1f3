package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/settings/model"
	"shop-backend/pkg/database"
)

// unique_violation
const pgUniqueViolation = "23505"

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const settingsColumns = `year, shipping_fee, tax_rate, is_active, created_at, updated_at`

func scanSettings(row pgx.Row) (*model.Settings, error) {
	var s model.Settings
	if err := row.Scan(&s.Year, &s.ShippingFee, &s.TaxRate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *postgresRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*model.Settings, error) {
	s, err := scanSettings(database.Conn(ctx, r.pool).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query settings: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) GetByYear(ctx context.Context, year int) (*model.Settings, error) {
	return r.queryOne(ctx, `SELECT `+settingsColumns+` FROM settings WHERE year = $1`, year)
}

func (r *postgresRepository) GetActiveByYear(ctx context.Context, year int) (*model.Settings, error) {
	return r.queryOne(ctx, `SELECT `+settingsColumns+` FROM settings WHERE year = $1 AND is_active = true`, year)
}

func (r *postgresRepository) GetLatestActive(ctx context.Context) (*model.Settings, error) {
	return r.queryOne(ctx, `
		SELECT `+settingsColumns+`
		FROM settings
		WHERE is_active = true
		ORDER BY year DESC
		LIMIT 1`)
}

func (r *postgresRepository) List(ctx context.Context) ([]*model.Settings, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, `SELECT `+settingsColumns+` FROM settings ORDER BY year DESC`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var result []*model.Settings
	for rows.Next() {
		s, err := scanSettings(rows)
		if err != nil {
			return nil, fmt.Errorf("scan settings: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *postgresRepository) Create(ctx context.Context, s *model.Settings) error {
	query := `
		INSERT INTO settings (year, shipping_fee, tax_rate, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := database.Conn(ctx, r.pool).
		QueryRow(ctx, query, s.Year, s.ShippingFee, s.TaxRate, s.IsActive).
		Scan(&s.CreatedAt, &s.UpdatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return model.ErrSettingsExists
	}
	if err != nil {
		return fmt.Errorf("create settings: %w", err)
	}
	return nil
}

func (r *postgresRepository) Update(ctx context.Context, s *model.Settings) error {
	query := `
		UPDATE settings
		SET shipping_fee = $2, tax_rate = $3, is_active = $4, updated_at = NOW()
		WHERE year = $1
		RETURNING updated_at`

	err := database.Conn(ctx, r.pool).
		QueryRow(ctx, query, s.Year, s.ShippingFee, s.TaxRate, s.IsActive).
		Scan(&s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrSettingsNotFound
	}
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, year int) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM settings WHERE year = $1`, year)
	if err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrSettingsNotFound
	}
	return nil
}
