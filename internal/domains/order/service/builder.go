package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway/vnpay"
)

// =====================================================
// ORDER BUILDER
// =====================================================
// Builder validate giỏ hàng với trạng thái product hiện tại và tính tổng
// tiền. Không ghi DB, không giữ chỗ tồn kho.
type Builder struct {
	products ProductReader
}

func NewBuilder(products ProductReader) *Builder {
	return &Builder{products: products}
}

func (b *Builder) Build(
	ctx context.Context,
	userID uuid.UUID,
	items []model.CartItem,
	address model.Address,
	fees model.FeeSnapshot,
	method model.PaymentMethod,
) (*model.Order, error) {
	if !method.IsValid() {
		return nil, model.NewOrderError(model.ErrCodeInvalidPaymentMethod, "Phương thức thanh toán không hợp lệ", model.ErrInvalidPaymentMethod)
	}
	if len(items) == 0 {
		return nil, model.NewOrderError(model.ErrCodeCartEmpty, "Giỏ hàng trống! Không thể đặt hàng.", model.ErrCartEmpty)
	}

	var (
		products  = make(map[uuid.UUID]*inventorymodel.Product, len(items))
		requested = make(map[uuid.UUID]int, len(items))
		lines     = make([]model.OrderItem, 0, len(items))
		subtotal  = decimal.Zero
	)

	for _, item := range items {
		product, err := b.loadProduct(ctx, products, item.Product)
		if err != nil {
			return nil, err
		}

		if !product.HasSize(item.Size) {
			return nil, model.NewOrderError(model.ErrCodeInvalidSize,
				fmt.Sprintf("Size '%s' không có cho sản phẩm '%s'", item.Size, product.Name), model.ErrInvalidSize)
		}
		if item.Quantity <= 0 {
			return nil, model.NewOrderError(model.ErrCodeInvalidRequest, "Số lượng phải lớn hơn 0", nil)
		}

		// Cùng product khác size dùng chung một tồn kho
		requested[product.ID] += item.Quantity
		if requested[product.ID] > product.Quantity {
			stockErr := &inventorymodel.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   requested[product.ID],
				Remaining:   product.Quantity,
			}
			return nil, model.NewOrderError(model.ErrCodeInsufficientStock, insufficientMessage(stockErr), stockErr)
		}

		line := model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.Image,
			UnitPrice: unitPrice(product),
			Quantity:  item.Quantity,
			Size:      item.Size,
		}
		subtotal = subtotal.Add(line.Total())
		lines = append(lines, line)
	}

	amount := Total(subtotal, fees, method)

	if method == model.PaymentMethodVNPay && amount.IntPart() < vnpay.MinAmount {
		return nil, model.NewOrderError(model.ErrCodeAmountTooSmall,
			fmt.Sprintf("Số tiền thanh toán tối thiểu qua VNPay là %d VND", vnpay.MinAmount), model.ErrAmountTooSmall)
	}

	return &model.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Items:         lines,
		Amount:        amount,
		Address:       address,
		Fees:          fees,
		PaymentMethod: method,
		Status:        method.InitialStatus(),
	}, nil
}

// Total = subtotal + ship, cộng thuế trên cả hai với phương thức chịu thuế
func Total(subtotal decimal.Decimal, fees model.FeeSnapshot, method model.PaymentMethod) decimal.Decimal {
	amount := subtotal.Add(fees.ShippingFee)
	if method.TaxBearing() {
		amount = amount.Add(amount.Mul(fees.TaxRate))
	}
	return amount.Round(2)
}

func (b *Builder) loadProduct(ctx context.Context, cache map[uuid.UUID]*inventorymodel.Product, raw string) (*inventorymodel.Product, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, model.NewOrderError(model.ErrCodeProductNotFound, "Không tìm thấy sản phẩm", model.ErrProductNotFound)
	}
	if p, ok := cache[id]; ok {
		return p, nil
	}

	product, err := b.products.FindByID(ctx, id)
	if inventorymodel.IsNotFoundError(err) {
		return nil, model.NewOrderError(model.ErrCodeProductNotFound,
			fmt.Sprintf("Không tìm thấy sản phẩm %s", id), model.ErrProductNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", id, err)
	}
	if !product.IsActive {
		return nil, model.NewOrderError(model.ErrCodeProductNotFound,
			fmt.Sprintf("Sản phẩm '%s' đã ngừng kinh doanh", product.Name), model.ErrProductNotFound)
	}

	cache[id] = product
	return product, nil
}

// unitPrice: giá bán là offerPrice; product chưa set offer thì dùng price
func unitPrice(p *inventorymodel.Product) decimal.Decimal {
	if p.OfferPrice.IsPositive() {
		return p.OfferPrice
	}
	return p.Price
}

func insufficientMessage(e *inventorymodel.InsufficientStockError) string {
	return fmt.Sprintf("Sản phẩm '%s' chỉ còn %d sản phẩm trong kho", e.ProductName, e.Remaining)
}
