package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/repository"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/pkg/database"
	"shop-backend/pkg/logger"
)

// =====================================================
// ORDER SERVICE IMPLEMENTATION
// =====================================================
type orderService struct {
	orders     repository.OrderRepository
	builder    *Builder
	ledger     StockLedger
	carts      CartClearer
	fees       FeeProvider
	gateways   *gateway.Registry
	expiry     ExpiryScheduler // nil: chỉ dựa vào sweep định kỳ
	tx         database.Transactor
	pendingTTL time.Duration
	now        func() time.Time
}

// NewOrderService creates a new order service
func NewOrderService(
	orders repository.OrderRepository,
	products ProductReader,
	ledger StockLedger,
	carts CartClearer,
	fees FeeProvider,
	gateways *gateway.Registry,
	expiry ExpiryScheduler,
	tx database.Transactor,
	pendingTTL time.Duration,
) OrderService {
	return &orderService{
		orders:     orders,
		builder:    NewBuilder(products),
		ledger:     ledger,
		carts:      carts,
		fees:       fees,
		gateways:   gateways,
		expiry:     expiry,
		tx:         tx,
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

// =====================================================
// PLACE ORDER
// =====================================================
func (s *orderService) PlaceOrder(ctx context.Context, userID uuid.UUID, method model.PaymentMethod, req model.PlaceOrderRequest) (*model.PlaceOrderResponse, error) {
	// Step 1: Validate request cơ bản (format)
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidRequest, err.Error(), err)
	}

	// Step 2: fee snapshot lấy từ settings phía server, không tin client
	fees, err := s.currentFees(ctx)
	if err != nil {
		return nil, err
	}
	if req.Fees != nil && (!req.Fees.ShippingFee.Equal(fees.ShippingFee) || !req.Fees.TaxRate.Equal(fees.TaxRate)) {
		logger.Warn("Client fee snapshot differs from current settings", map[string]interface{}{
			"user_id":             userID.String(),
			"client_shipping_fee": req.Fees.ShippingFee.String(),
			"client_tax_rate":     req.Fees.TaxRate.String(),
			"shipping_fee":        fees.ShippingFee.String(),
			"tax_rate":            fees.TaxRate.String(),
		})
	}

	// Step 3: build order từ trạng thái product hiện tại
	order, err := s.builder.Build(ctx, userID, req.Items, req.Address, fees, method)
	if err != nil {
		return nil, err
	}

	if method.IsOnline() {
		return s.placeOnline(ctx, order)
	}
	return s.placeCOD(ctx, order)
}

// placeCOD: insert + trừ kho + xoá giỏ trong một transaction
func (s *orderService) placeCOD(ctx context.Context, order *model.Order) (*model.PlaceOrderResponse, error) {
	order.StockCommitted = true

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		if err := s.ledger.Consume(ctx, order.StockLines()); err != nil {
			return err
		}
		_, err := s.carts.ClearCart(ctx, order.UserID)
		return err
	})
	if err != nil {
		var stockErr *inventorymodel.InsufficientStockError
		if errors.As(err, &stockErr) {
			// Có request khác lấy mất hàng giữa lúc build và commit
			return nil, model.NewOrderError(model.ErrCodeInsufficientStock, insufficientMessage(stockErr), err)
		}
		logger.ErrorWithFields("Failed to place COD order", err, map[string]interface{}{
			"order_id": order.ID.String(),
			"user_id":  order.UserID.String(),
		})
		return nil, err
	}

	logger.Info("Order placed", map[string]interface{}{
		"order_id":       order.ID.String(),
		"user_id":        order.UserID.String(),
		"payment_method": string(order.PaymentMethod),
		"amount":         order.Amount.String(),
	})
	return &model.PlaceOrderResponse{OrderID: order.ID.String()}, nil
}

// placeOnline: lưu đơn Pending Payment rồi mới gọi gateway. Gateway lỗi thì
// xoá đơn vừa tạo (fail-open) và trả lỗi gateway gốc.
func (s *orderService) placeOnline(ctx context.Context, order *model.Order) (*model.PlaceOrderResponse, error) {
	g, err := s.gateways.Get(order.PaymentMethod)
	if err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidPaymentMethod, "Phương thức thanh toán chưa được cấu hình", err)
	}

	if err := s.orders.Create(ctx, order); err != nil {
		logger.ErrorWithFields("Failed to create pending order", err, map[string]interface{}{
			"order_id": order.ID.String(),
		})
		return nil, err
	}

	init, err := g.Initiate(ctx, order)
	if err != nil {
		logger.ErrorWithFields("Payment initiation failed", err, map[string]interface{}{
			"order_id": order.ID.String(),
			"gateway":  string(order.PaymentMethod),
		})
		if delErr := s.orders.DeletePending(ctx, order.ID); delErr != nil {
			logger.ErrorWithFields("Compensating delete failed", delErr, map[string]interface{}{
				"order_id": order.ID.String(),
			})
		}
		return nil, model.NewOrderError(model.ErrCodeGatewayFailure, "Không thể khởi tạo thanh toán", err)
	}

	if init.Reference != "" {
		if err := s.orders.SetGatewayRef(ctx, order.ID, init.Reference); err != nil {
			// Settlement tìm đơn qua metadata nên chỉ log
			logger.ErrorWithFields("Failed to store gateway reference", err, map[string]interface{}{
				"order_id":  order.ID.String(),
				"reference": init.Reference,
			})
		}
	}

	s.scheduleExpiry(ctx, order.ID)

	logger.Info("Pending payment order created", map[string]interface{}{
		"order_id":       order.ID.String(),
		"user_id":        order.UserID.String(),
		"payment_method": string(order.PaymentMethod),
		"amount":         order.Amount.String(),
	})
	return &model.PlaceOrderResponse{OrderID: order.ID.String(), RedirectURL: init.RedirectURL}, nil
}

func (s *orderService) scheduleExpiry(ctx context.Context, orderID uuid.UUID) {
	if s.expiry == nil || s.pendingTTL <= 0 {
		return
	}
	if err := s.expiry.ScheduleExpiry(ctx, orderID, s.pendingTTL); err != nil {
		// sweep định kỳ sẽ bắt lại đơn này
		logger.Warn("Failed to schedule pending order expiry", map[string]interface{}{
			"order_id": orderID.String(),
			"error":    err.Error(),
		})
	}
}

func (s *orderService) currentFees(ctx context.Context) (model.FeeSnapshot, error) {
	current, err := s.fees.Current(ctx)
	if err != nil {
		return model.FeeSnapshot{}, err
	}
	return model.FeeSnapshot{
		ShippingFee: current.ShippingFee,
		TaxRate:     current.TaxRate,
		Year:        current.Year,
	}, nil
}

// =====================================================
// LIST
// =====================================================
func (s *orderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

func (s *orderService) ListOrders(ctx context.Context, req model.ListOrdersRequest) (*model.ListOrdersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, model.NewOrderError(model.ErrCodeInvalidRequest, err.Error(), err)
	}

	filter := repository.ListFilter{Limit: req.Limit, Offset: req.Offset()}
	if req.Status != "" {
		st, err := model.ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &st
	}

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &model.ListOrdersResponse{Orders: orders, Total: total, Page: req.Page, Limit: req.Limit}, nil
}
