package model

import (
	"bytes"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventorymodel "shop-backend/internal/domains/inventory/model"
)

// =====================================================
// PAYMENT METHOD
// =====================================================
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodStripe PaymentMethod = "Stripe"
	PaymentMethodVNPay  PaymentMethod = "VNPay"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodStripe, PaymentMethodVNPay:
		return true
	}
	return false
}

// IsOnline: thanh toán qua gateway, trừ kho khi settlement
func (m PaymentMethod) IsOnline() bool {
	return m == PaymentMethodStripe || m == PaymentMethodVNPay
}

// TaxBearing: chỉ luồng VNPay cộng thuế vào tổng tiền
func (m PaymentMethod) TaxBearing() bool {
	return m == PaymentMethodVNPay
}

func (m PaymentMethod) InitialStatus() Status {
	if m.IsOnline() {
		return StatusPendingPayment
	}
	return StatusOrderPlaced
}

// =====================================================
// VALUE OBJECTS
// =====================================================
type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zipcode   string `json:"zipcode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// FeeSnapshot is frozen on the order when it is placed.
type FeeSnapshot struct {
	ShippingFee decimal.Decimal `json:"shippingFee"`
	TaxRate     decimal.Decimal `json:"taxRate"`
	Year        int             `json:"year"`
}

// OrderItem là snapshot sản phẩm tại thời điểm đặt hàng
type OrderItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
}

func (i OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// =====================================================
// ORDER
// =====================================================
type Order struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Items         []OrderItem     `json:"items"`
	Amount        decimal.Decimal `json:"amount"`
	Address       Address         `json:"address"`
	Fees          FeeSnapshot     `json:"fees"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	Status        Status          `json:"status"`
	IsPaid        bool            `json:"isPaid"`
	PaidAt        *time.Time      `json:"paidAt"`

	// GatewayRef: Stripe session id; VNPay dùng chính order id làm vnp_TxnRef
	GatewayRef     *string `json:"gatewayRef,omitempty"`
	GatewayTxnNo   *string `json:"gatewayTxnNo,omitempty"`
	StockCommitted bool    `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

// StockLines gộp quantity theo product: cùng product khác size là một dòng ledger.
// Sắp theo ProductID để mọi transaction lock row products cùng thứ tự.
func (o *Order) StockLines() []inventorymodel.Line {
	index := make(map[uuid.UUID]int, len(o.Items))
	lines := make([]inventorymodel.Line, 0, len(o.Items))
	for _, item := range o.Items {
		if i, ok := index[item.ProductID]; ok {
			lines[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, inventorymodel.Line{
			ProductID:   item.ProductID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].ProductID[:], lines[j].ProductID[:]) < 0
	})
	return lines
}
