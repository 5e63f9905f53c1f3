package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Settings là cấu hình phí theo năm. Mỗi năm tối đa một dòng.
type Settings struct {
	Year        int             `json:"year"`
	ShippingFee decimal.Decimal `json:"shippingFee"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

const (
	MinYear = 2000
	MaxYear = 2100
)

// =====================================================
// ERRORS
// =====================================================
const (
	ErrCodeSettingsNotFound = "SET001"
	ErrCodeSettingsExists   = "SET002"
	ErrCodeInvalidSettings  = "SET003"
)

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrSettingsExists   = errors.New("settings for this year already exist")
	ErrInvalidSettings  = errors.New("invalid settings")
)

type SettingsError struct {
	Code    string
	Message string
	Err     error
}

func (e *SettingsError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *SettingsError) Unwrap() error {
	return e.Err
}

func NewSettingsError(code, message string, err error) *SettingsError {
	return &SettingsError{Code: code, Message: message, Err: err}
}
