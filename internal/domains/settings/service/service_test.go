package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-backend/internal/domains/settings/model"
	"shop-backend/pkg/cache"
)

type memRepo struct {
	rows  map[int]*model.Settings
	reads int
}

func newMemRepo(rows ...model.Settings) *memRepo {
	r := &memRepo{rows: map[int]*model.Settings{}}
	for i := range rows {
		s := rows[i]
		r.rows[s.Year] = &s
	}
	return r
}

func (r *memRepo) GetByYear(_ context.Context, year int) (*model.Settings, error) {
	r.reads++
	s, ok := r.rows[year]
	if !ok {
		return nil, model.ErrSettingsNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memRepo) GetActiveByYear(ctx context.Context, year int) (*model.Settings, error) {
	s, err := r.GetByYear(ctx, year)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, model.ErrSettingsNotFound
	}
	return s, nil
}

func (r *memRepo) GetLatestActive(_ context.Context) (*model.Settings, error) {
	r.reads++
	var best *model.Settings
	for _, s := range r.rows {
		if s.IsActive && (best == nil || s.Year > best.Year) {
			best = s
		}
	}
	if best == nil {
		return nil, model.ErrSettingsNotFound
	}
	cp := *best
	return &cp, nil
}

func (r *memRepo) List(_ context.Context) ([]*model.Settings, error) {
	var out []*model.Settings
	for _, s := range r.rows {
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year > out[j].Year })
	return out, nil
}

func (r *memRepo) Create(_ context.Context, s *model.Settings) error {
	if _, ok := r.rows[s.Year]; ok {
		return model.ErrSettingsExists
	}
	cp := *s
	r.rows[s.Year] = &cp
	return nil
}

func (r *memRepo) Update(_ context.Context, s *model.Settings) error {
	if _, ok := r.rows[s.Year]; !ok {
		return model.ErrSettingsNotFound
	}
	cp := *s
	r.rows[s.Year] = &cp
	return nil
}

func (r *memRepo) Delete(_ context.Context, year int) error {
	if _, ok := r.rows[year]; !ok {
		return model.ErrSettingsNotFound
	}
	delete(r.rows, year)
	return nil
}

// memCache stores JSON like the Redis implementation does.
type memCache struct {
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) DeletePattern(_ context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

func (c *memCache) Ping(context.Context) error { return nil }

var defaults = Defaults{
	ShippingFee: decimal.NewFromInt(10),
	TaxRate:     decimal.RequireFromString("0.02"),
}

func newTestService(repo *memRepo, c cache.Cache, year int) *service {
	svc := NewService(repo, c, defaults).(*service)
	svc.now = func() time.Time { return time.Date(year, 3, 1, 0, 0, 0, 0, time.UTC) }
	return svc
}

func TestCurrent_FallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("active row for current year", func(t *testing.T) {
		repo := newMemRepo(
			model.Settings{Year: 2025, ShippingFee: decimal.NewFromInt(15), TaxRate: decimal.RequireFromString("0.1"), IsActive: true},
			model.Settings{Year: 2024, ShippingFee: decimal.NewFromInt(12), TaxRate: decimal.RequireFromString("0.05"), IsActive: true},
		)
		s, err := newTestService(repo, nil, 2025).Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2025, s.Year)
		assert.True(t, s.ShippingFee.Equal(decimal.NewFromInt(15)))
	})

	t.Run("inactive current year falls back to newest active", func(t *testing.T) {
		repo := newMemRepo(
			model.Settings{Year: 2025, ShippingFee: decimal.NewFromInt(15), IsActive: false},
			model.Settings{Year: 2023, ShippingFee: decimal.NewFromInt(9), IsActive: true},
			model.Settings{Year: 2024, ShippingFee: decimal.NewFromInt(12), IsActive: true},
		)
		s, err := newTestService(repo, nil, 2025).Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2024, s.Year)
	})

	t.Run("empty table uses defaults", func(t *testing.T) {
		s, err := newTestService(newMemRepo(), nil, 2025).Current(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2025, s.Year)
		assert.True(t, s.ShippingFee.Equal(defaults.ShippingFee))
		assert.True(t, s.TaxRate.Equal(defaults.TaxRate))
	})
}

func TestCurrent_CachedAndInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	repo := newMemRepo(model.Settings{Year: 2025, ShippingFee: decimal.NewFromInt(15), TaxRate: decimal.Zero, IsActive: true})
	c := newMemCache()
	svc := newTestService(repo, c, 2025)

	_, err := svc.Current(ctx)
	require.NoError(t, err)
	reads := repo.reads

	cached, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, reads, repo.reads, "second read should hit the cache")
	assert.True(t, cached.ShippingFee.Equal(decimal.NewFromInt(15)))

	fee := decimal.NewFromInt(20)
	_, err = svc.Update(ctx, 2025, model.UpdateSettingsRequest{ShippingFee: &fee})
	require.NoError(t, err)

	fresh, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.True(t, fresh.ShippingFee.Equal(fee))
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemRepo(), nil, 2025)

	negative := decimal.NewFromInt(-1)
	tooHigh := decimal.RequireFromString("1.5")

	cases := []struct {
		name string
		req  model.CreateSettingsRequest
	}{
		{"year below range", model.CreateSettingsRequest{Year: 1999}},
		{"year above range", model.CreateSettingsRequest{Year: 2101}},
		{"negative shipping", model.CreateSettingsRequest{Year: 2025, ShippingFee: &negative}},
		{"tax above one", model.CreateSettingsRequest{Year: 2025, TaxRate: &tooHigh}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.req)
			assert.ErrorIs(t, err, model.ErrInvalidSettings)
		})
	}

	t.Run("defaults and duplicate year", func(t *testing.T) {
		s, err := svc.Create(ctx, model.CreateSettingsRequest{Year: 2026})
		require.NoError(t, err)
		assert.True(t, s.IsActive)
		assert.True(t, s.ShippingFee.Equal(decimal.NewFromInt(10)))
		assert.True(t, s.TaxRate.Equal(decimal.RequireFromString("0.02")))

		_, err = svc.Create(ctx, model.CreateSettingsRequest{Year: 2026})
		assert.ErrorIs(t, err, model.ErrSettingsExists)
	})
}

func TestDelete_Missing(t *testing.T) {
	svc := newTestService(newMemRepo(), newMemCache(), 2025)
	assert.ErrorIs(t, svc.Delete(context.Background(), 2030), model.ErrSettingsNotFound)
}
