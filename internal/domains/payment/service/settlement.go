package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/gateway"
	"shop-backend/internal/domains/payment/model"
	"shop-backend/internal/domains/payment/repository"
	"shop-backend/pkg/database"
	"shop-backend/pkg/logger"
)

type settlementService struct {
	gateways *gateway.Registry
	orders   OrderStore
	ledger   StockLedger
	carts    CartClearer
	logs     repository.CallbackLogRepository
	tx       database.Transactor
}

func NewSettlementService(
	gateways *gateway.Registry,
	orders OrderStore,
	ledger StockLedger,
	carts CartClearer,
	logs repository.CallbackLogRepository,
	tx database.Transactor,
) SettlementService {
	return &settlementService{
		gateways: gateways,
		orders:   orders,
		ledger:   ledger,
		carts:    carts,
		logs:     logs,
		tx:       tx,
	}
}

// Settle flow:
//  1. verify callback qua adapter; sai chữ ký thì không đụng DB
//  2. tìm order theo correlation ref
//  3. đã paid thì trả AlreadyPaid, không side effect
//  4. success: mark-paid có điều kiện, chỉ bên thắng trừ kho + xoá giỏ
//  5. failure: Pending Payment -> Cancelled có điều kiện
func (s *settlementService) Settle(ctx context.Context, method ordermodel.PaymentMethod, params map[string]string) model.Outcome {
	g, err := s.gateways.Get(method)
	if err != nil {
		logger.Error("Settlement for unknown gateway", err)
		return model.Outcome{Kind: model.OutcomeProcessingFailed}
	}

	cb, err := g.VerifyCallback(ctx, params)
	if err != nil {
		if model.IsSignatureError(err) {
			logger.Warn("Rejected payment callback", map[string]interface{}{
				"gateway":   string(method),
				"reference": callbackRef(params),
				"error":     err.Error(),
			})
			s.audit(ctx, method, callbackRef(params), params, false, model.OutcomeInvalidSignature)
			return model.Outcome{Kind: model.OutcomeInvalidSignature}
		}
		logger.ErrorWithFields("Payment callback verification failed", err, map[string]interface{}{
			"gateway": string(method),
		})
		return model.Outcome{Kind: model.OutcomeProcessingFailed}
	}

	outcome := s.apply(ctx, cb)
	s.audit(ctx, method, cb.OrderRef, cb.Raw, true, outcome.Kind)
	return outcome
}

func (s *settlementService) apply(ctx context.Context, cb *model.Callback) model.Outcome {
	orderID, err := uuid.Parse(cb.OrderRef)
	if err != nil {
		return model.Outcome{Kind: model.OutcomeOrderNotFound}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, ordermodel.ErrOrderNotFound) {
		return model.Outcome{Kind: model.OutcomeOrderNotFound, OrderID: orderID}
	}
	if err != nil {
		logger.ErrorWithFields("Settlement order lookup failed", err, map[string]interface{}{"order_id": orderID.String()})
		return model.Outcome{Kind: model.OutcomeProcessingFailed, OrderID: orderID}
	}
	if order.PaymentMethod != cb.Gateway {
		logger.Warn("Callback gateway does not match order payment method", map[string]interface{}{
			"order_id": orderID.String(),
			"gateway":  string(cb.Gateway),
			"method":   string(order.PaymentMethod),
		})
		return model.Outcome{Kind: model.OutcomeOrderNotFound, OrderID: orderID}
	}

	// Idempotency: callback lặp lại chỉ redirect
	if order.IsPaid {
		return model.Outcome{Kind: model.OutcomeAlreadyPaid, OrderID: orderID}
	}

	switch cb.Result {
	case model.ResultPaid:
		return s.settlePaid(ctx, order, cb)
	case model.ResultFailed:
		return s.settleFailed(ctx, order, cb)
	default:
		return model.Outcome{Kind: model.OutcomePending, OrderID: orderID, Code: cb.Code}
	}
}

func (s *settlementService) settlePaid(ctx context.Context, order *ordermodel.Order, cb *model.Callback) model.Outcome {
	var won bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		won = false
		ok, err := s.orders.MarkPaid(ctx, order.ID, cb.TransactionNo, true)
		if err != nil {
			return err
		}
		if !ok {
			// request khác đã thắng test-and-set
			return nil
		}
		if err := s.ledger.Consume(ctx, order.StockLines()); err != nil {
			return err
		}
		if _, err := s.carts.ClearCart(ctx, order.UserID); err != nil {
			return err
		}
		won = true
		return nil
	})

	switch {
	case err == nil && won:
		logger.Info("Order paid", map[string]interface{}{
			"order_id": order.ID.String(),
			"gateway":  string(cb.Gateway),
			"txn_no":   cb.TransactionNo,
		})
		return model.Outcome{Kind: model.OutcomePaid, OrderID: order.ID}
	case err == nil:
		return model.Outcome{Kind: model.OutcomeAlreadyPaid, OrderID: order.ID}
	case inventorymodel.IsInsufficientStockError(err), inventorymodel.IsNotFoundError(err):
		// product bị xoá sau checkout cũng không được làm mất thanh toán
		return s.settleOversold(ctx, order, cb, err)
	default:
		logger.ErrorWithFields("Settlement failed", err, map[string]interface{}{"order_id": order.ID.String()})
		return model.Outcome{Kind: model.OutcomeProcessingFailed, OrderID: order.ID}
	}
}

// settleOversold: khách đã trả tiền nhưng kho không đủ hoặc product đã bị xoá.
// Không để kho âm và không làm mất thanh toán: đánh dấu Paid với
// stock_committed=false để xử lý tay.
func (s *settlementService) settleOversold(ctx context.Context, order *ordermodel.Order, cb *model.Callback, stockErr error) model.Outcome {
	var won bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		won = false
		ok, err := s.orders.MarkPaid(ctx, order.ID, cb.TransactionNo, false)
		if err != nil || !ok {
			return err
		}
		if _, err := s.carts.ClearCart(ctx, order.UserID); err != nil {
			return err
		}
		won = true
		return nil
	})
	if err != nil {
		logger.ErrorWithFields("Settlement failed after oversell", err, map[string]interface{}{"order_id": order.ID.String()})
		return model.Outcome{Kind: model.OutcomeProcessingFailed, OrderID: order.ID}
	}
	if !won {
		return model.Outcome{Kind: model.OutcomeAlreadyPaid, OrderID: order.ID}
	}

	logger.ErrorWithFields("Order paid but stock could not be committed, manual fulfilment required", stockErr, map[string]interface{}{
		"order_id": order.ID.String(),
		"gateway":  string(cb.Gateway),
		"txn_no":   cb.TransactionNo,
	})
	return model.Outcome{Kind: model.OutcomePaid, OrderID: order.ID}
}

func (s *settlementService) settleFailed(ctx context.Context, order *ordermodel.Order, cb *model.Callback) model.Outcome {
	cancelled, err := s.orders.CancelPending(ctx, order.ID)
	if err != nil {
		logger.ErrorWithFields("Failed to cancel unpaid order", err, map[string]interface{}{"order_id": order.ID.String()})
		return model.Outcome{Kind: model.OutcomeProcessingFailed, OrderID: order.ID}
	}
	if cancelled {
		logger.Info("Order cancelled by gateway", map[string]interface{}{
			"order_id": order.ID.String(),
			"gateway":  string(cb.Gateway),
			"code":     cb.Code,
			"message":  cb.Message,
		})
	}
	return model.Outcome{Kind: model.OutcomeCancelled, OrderID: order.ID, Code: cb.Code}
}

// audit không được làm hỏng settlement
func (s *settlementService) audit(ctx context.Context, method ordermodel.PaymentMethod, ref string, params map[string]string, valid bool, outcome model.OutcomeKind) {
	if s.logs == nil {
		return
	}
	entry := &model.CallbackLog{
		Gateway:        string(method),
		OrderRef:       ref,
		Params:         params,
		SignatureValid: valid,
		Outcome:        outcome,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		logger.ErrorWithFields("Failed to write callback log", err, map[string]interface{}{
			"gateway":   string(method),
			"reference": ref,
		})
	}
}

func (s *settlementService) CallbackLogs(ctx context.Context, orderRef string) ([]*model.CallbackLog, error) {
	if s.logs == nil {
		return nil, fmt.Errorf("callback log store not configured")
	}
	return s.logs.ListByOrderRef(ctx, orderRef)
}

// callbackRef lấy reference thô từ params chưa verify, chỉ để log
func callbackRef(params map[string]string) string {
	for _, k := range []string{"vnp_TxnRef", "session_id"} {
		if v := params[k]; v != "" {
			return v
		}
	}
	return ""
}
