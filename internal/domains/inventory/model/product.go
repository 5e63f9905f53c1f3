package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product là phần của catalog mà order core cần đọc.
// Quantity chỉ được sửa qua Ledger.Adjust.
type Product struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Price      decimal.Decimal `json:"price"`
	OfferPrice decimal.Decimal `json:"offerPrice"`
	Quantity   int             `json:"quantity"`
	Sizes      []string        `json:"sizes"`
	IsActive   bool            `json:"isActive"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// HasSize reports whether size is one of the product's sizes.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// Line is one stock movement request: delta is applied as -Quantity on consume
// and +Quantity on restore.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
}
