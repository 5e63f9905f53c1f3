package model

import (
	"errors"
)

// =====================================================
// ERROR CODES
// =====================================================
const (
	ErrCodeInvalidSignature    = "PAY001"
	ErrCodeCallbackUnsupported = "PAY002"
	ErrCodeMissingParam        = "PAY003"
	ErrCodeGatewayUnavailable  = "PAY004"
	ErrCodeInvalidGateway      = "PAY005"
)

// =====================================================
// PREDEFINED ERRORS
// =====================================================

var (
	ErrInvalidSignature    = errors.New("invalid callback signature")
	ErrCallbackUnsupported = errors.New("gateway has no callback")
	ErrMissingParam        = errors.New("missing callback parameter")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrInvalidGateway      = errors.New("invalid payment gateway")
)

// =====================================================
// CUSTOM PAYMENT ERROR
// =====================================================

type PaymentError struct {
	Code    string
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

func NewPaymentError(code, message string, err error) *PaymentError {
	return &PaymentError{Code: code, Message: message, Err: err}
}

// IsSignatureError: callback bị từ chối vì chữ ký hoặc tham số
func IsSignatureError(err error) bool {
	return errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrMissingParam)
}
