package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var (
	zero = decimal.Zero
	one  = decimal.NewFromInt(1)
)

// =====================================================
// CREATE SETTINGS REQUEST
// =====================================================
type CreateSettingsRequest struct {
	Year        int              `json:"year"`
	ShippingFee *decimal.Decimal `json:"shippingFee"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
	IsActive    *bool            `json:"isActive"`
}

func (req CreateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.Year, validation.Required, validation.Min(MinYear), validation.Max(MaxYear)),
		validation.Field(&req.ShippingFee, validation.By(nonNegative)),
		validation.Field(&req.TaxRate, validation.By(fraction)),
	)
}

// ToSettings áp dụng defaults giống catalog cũ: ship 10, thuế 2%, active
func (req CreateSettingsRequest) ToSettings() *Settings {
	s := &Settings{
		Year:        req.Year,
		ShippingFee: decimal.NewFromInt(10),
		TaxRate:     decimal.RequireFromString("0.02"),
		IsActive:    true,
	}
	if req.ShippingFee != nil {
		s.ShippingFee = *req.ShippingFee
	}
	if req.TaxRate != nil {
		s.TaxRate = *req.TaxRate
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	return s
}

// =====================================================
// UPDATE SETTINGS REQUEST
// =====================================================
type UpdateSettingsRequest struct {
	ShippingFee *decimal.Decimal `json:"shippingFee"`
	TaxRate     *decimal.Decimal `json:"taxRate"`
	IsActive    *bool            `json:"isActive"`
}

func (req UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&req,
		validation.Field(&req.ShippingFee, validation.By(nonNegative)),
		validation.Field(&req.TaxRate, validation.By(fraction)),
	)
}

func (req UpdateSettingsRequest) IsEmpty() bool {
	return req.ShippingFee == nil && req.TaxRate == nil && req.IsActive == nil
}

// Apply ghi các field được gửi lên vào s
func (req UpdateSettingsRequest) Apply(s *Settings) {
	if req.ShippingFee != nil {
		s.ShippingFee = *req.ShippingFee
	}
	if req.TaxRate != nil {
		s.TaxRate = *req.TaxRate
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
}

func nonNegative(value interface{}) error {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	if d.LessThan(zero) {
		return validation.NewError("validation_non_negative", "must be non-negative")
	}
	return nil
}

func fraction(value interface{}) error {
	d, ok := value.(*decimal.Decimal)
	if !ok || d == nil {
		return nil
	}
	if d.LessThan(zero) || d.GreaterThan(one) {
		return validation.NewError("validation_fraction", "must be between 0 and 1")
	}
	return nil
}
