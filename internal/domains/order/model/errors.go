package model

import (
	"errors"
	"fmt"
)

// =====================================================
// CUSTOM ERROR CODES
// =====================================================
const (
	ErrCodeOrderNotFound        = "ORD001"
	ErrCodeCartEmpty            = "ORD002"
	ErrCodeProductNotFound      = "ORD003"
	ErrCodeInvalidSize          = "ORD004"
	ErrCodeInsufficientStock    = "ORD005"
	ErrCodeAmountTooSmall       = "ORD006"
	ErrCodeInvalidStatus        = "ORD007"
	ErrCodeInvalidTransition    = "ORD008"
	ErrCodeOrderInFlight        = "ORD009"
	ErrCodeGatewayFailure       = "ORD010"
	ErrCodeConcurrentUpdate     = "ORD011"
	ErrCodeInvalidPaymentMethod = "ORD012"
	ErrCodeUnauthorized         = "ORD013"
	ErrCodeInvalidRequest       = "ORD014"
)

// =====================================================
// ERROR DEFINITIONS
// =====================================================
var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrProductNotFound      = errors.New("product not found")
	ErrInvalidSize          = errors.New("invalid size")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrAmountTooSmall       = errors.New("amount below gateway minimum")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrOrderInFlight        = errors.New("order is awaiting payment")
	ErrGatewayFailure       = errors.New("payment gateway failure")
	ErrConcurrentUpdate     = errors.New("concurrent modification detected")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrUnauthorized         = errors.New("unauthorized access")
)

// =====================================================
// CUSTOM ERROR TYPE
// =====================================================
type OrderError struct {
	Code    string
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

// NewOrderError creates a new OrderError
func NewOrderError(code, message string, err error) *OrderError {
	return &OrderError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewTransitionError(from, to Status) *OrderError {
	return NewOrderError(ErrCodeInvalidTransition,
		fmt.Sprintf("Không thể chuyển đơn hàng từ '%s' sang '%s'", from, to), ErrInvalidTransition)
}

// NewSystemStatusError: Order Placed / Pending Payment / Paid chỉ do checkout
// và settlement set, admin không set tay được
func NewSystemStatusError(from, to Status) *OrderError {
	return NewOrderError(ErrCodeInvalidTransition,
		fmt.Sprintf("Không thể chuyển đơn hàng từ '%s' sang '%s': trạng thái '%s' chỉ do checkout hoặc thanh toán set", from, to, to),
		ErrInvalidTransition)
}

func NewOrderNotFoundError() *OrderError {
	return NewOrderError(ErrCodeOrderNotFound, "Không tìm thấy đơn hàng", ErrOrderNotFound)
}

func NewConcurrentUpdateError() *OrderError {
	return NewOrderError(ErrCodeConcurrentUpdate, "Đơn hàng vừa được cập nhật, vui lòng tải lại", ErrConcurrentUpdate)
}
