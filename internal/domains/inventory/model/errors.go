package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ===================================
// DOMAIN ERRORS
// ===================================

var (
	// ErrProductNotFound is returned when the product row does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrInsufficientStock is the sentinel wrapped by InsufficientStockError
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidQuantity is returned for a zero delta or a non-positive line quantity
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// InsufficientStockError carries the remaining quantity so callers can report it.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Remaining   int
}

func (e *InsufficientStockError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID.String()
	}
	return fmt.Sprintf("product '%s' only has %d left in stock (requested %d)", name, e.Remaining, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// NewProductNotFoundError creates a detailed not found error
func NewProductNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: id=%s", ErrProductNotFound, id)
}

// IsInsufficientStockError checks if error is insufficient stock error
func IsInsufficientStockError(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}
