package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/shared/utils"
	"shop-backend/pkg/database"
	"shop-backend/pkg/logger"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{
		pool: pool,
	}
}

const orderColumns = `
	id, user_id, amount, address,
	shipping_fee, tax_rate, fee_year,
	payment_method, status, is_paid, paid_at,
	gateway_ref, gateway_txn_no, stock_committed,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&o.Amount,
		&o.Address,
		&o.Fees.ShippingFee,
		&o.Fees.TaxRate,
		&o.Fees.Year,
		&o.PaymentMethod,
		&o.Status,
		&o.IsPaid,
		&o.PaidAt,
		&o.GatewayRef,
		&o.GatewayTxnNo,
		&o.StockCommitted,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// =====================================================
// CREATE ORDER
// =====================================================

func (r *postgresOrderRepository) Create(ctx context.Context, order *model.Order) error {
	conn := database.Conn(ctx, r.pool)

	query := `
		INSERT INTO orders (
			id, user_id, amount, address,
			shipping_fee, tax_rate, fee_year,
			payment_method, status, is_paid, stock_committed
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7,
			$8, $9, false, $10
		)
		RETURNING created_at, updated_at
	`

	err := conn.QueryRow(ctx, query,
		order.ID,
		order.UserID,
		order.Amount,
		order.Address,
		order.Fees.ShippingFee,
		order.Fees.TaxRate,
		order.Fees.Year,
		order.PaymentMethod,
		order.Status,
		order.StockCommitted,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return r.createItems(ctx, conn, order.ID, order.Items)
}

func (r *postgresOrderRepository) createItems(ctx context.Context, conn database.Querier, orderID uuid.UUID, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (order_id, product_id, name, image, unit_price, quantity, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, orderID, item.ProductID, item.Name, item.Image, item.UnitPrice, item.Quantity, item.Size)
	}

	results := conn.SendBatch(ctx, batch)
	defer results.Close()

	for i := range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert order item %d: %w", i, err)
		}
	}
	return nil
}

// =====================================================
// READ
// =====================================================

func (r *postgresOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if err := r.attachItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *postgresOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryOrders(ctx, query, userID)
}

func (r *postgresOrderRepository) List(ctx context.Context, filter ListFilter) ([]*model.Order, int, error) {
	var where utils.WhereBuilder
	if filter.Status != nil {
		where.Add("status = ?", *filter.Status)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM orders` + where.SQL()
	if err := database.Conn(ctx, r.pool).QueryRow(ctx, countQuery, where.Args()...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	next := where.Next()
	query := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where.SQL(), next, next+1)
	args := append(where.Args(), filter.Limit, filter.Offset)

	orders, err := r.queryOrders(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *postgresOrderRepository) queryOrders(ctx context.Context, query string, args ...interface{}) ([]*model.Order, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []*model.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads items for all orders in one query
func (r *postgresOrderRepository) attachItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[uuid.UUID]*model.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		byID[o.ID] = o
		o.Items = []model.OrderItem{}
	}

	query := `
		SELECT order_id, product_id, name, image, unit_price, quantity, size
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY id
	`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			item    model.OrderItem
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Name, &item.Image, &item.UnitPrice, &item.Quantity, &item.Size); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	return rows.Err()
}

// =====================================================
// GATEWAY / SETTLEMENT
// =====================================================

func (r *postgresOrderRepository) SetGatewayRef(ctx context.Context, id uuid.UUID, ref string) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET gateway_ref = $2, updated_at = NOW() WHERE id = $1`, id, ref)
	if err != nil {
		return fmt.Errorf("failed to set gateway ref: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// MarkPaid: test-and-set trên is_paid. Đơn đã bị huỷ do hết hạn vẫn được
// đánh dấu Paid nếu gateway báo thành công muộn: tiền đã bị trừ.
func (r *postgresOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, txnNo string, stockCommitted bool) (bool, error) {
	query := `
		UPDATE orders
		SET is_paid = true,
		    paid_at = NOW(),
		    status = $3,
		    gateway_txn_no = NULLIF($2, ''),
		    stock_committed = $4,
		    updated_at = NOW()
		WHERE id = $1
		  AND is_paid = false
		  AND payment_method <> $5
		  AND status IN ($6, $7)
	`

	result, err := database.Conn(ctx, r.pool).Exec(ctx, query,
		id, txnNo, model.StatusPaid, stockCommitted,
		model.PaymentMethodCOD, model.StatusPendingPayment, model.StatusCancelled,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark order paid: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *postgresOrderRepository) CancelPending(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND is_paid = false AND status = $3
	`

	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, id, model.StatusCancelled, model.StatusPendingPayment)
	if err != nil {
		return false, fmt.Errorf("failed to cancel pending order: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// =====================================================
// ADMIN UPDATES
// =====================================================

func (r *postgresOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, stockCommitted bool) (bool, error) {
	query := `
		UPDATE orders
		SET status = $3, stock_committed = $4, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	result, err := database.Conn(ctx, r.pool).Exec(ctx, query, id, from, to, stockCommitted)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *postgresOrderRepository) UpdateAddress(ctx context.Context, id uuid.UUID, address model.Address) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET address = $2, updated_at = NOW() WHERE id = $1`, id, address)
	if err != nil {
		return fmt.Errorf("failed to update order address: %w", err)
	}
	if result.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func (r *postgresOrderRepository) Delete(ctx context.Context, id uuid.UUID, expected model.Status) (bool, error) {
	// order_items xoá theo ON DELETE CASCADE
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM orders WHERE id = $1 AND status = $2`, id, expected)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

func (r *postgresOrderRepository) DeletePending(ctx context.Context, id uuid.UUID) error {
	result, err := database.Conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM orders WHERE id = $1 AND status = $2 AND is_paid = false`, id, model.StatusPendingPayment)
	if err != nil {
		return fmt.Errorf("failed to delete pending order: %w", err)
	}
	if result.RowsAffected() == 0 {
		logger.Warn("Compensating delete matched no pending order", map[string]interface{}{
			"order_id": id.String(),
		})
	}
	return nil
}

// =====================================================
// EXPIRY
// =====================================================

func (r *postgresOrderRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	query := `
		SELECT id FROM orders
		WHERE status = $1 AND is_paid = false AND created_at < $2
		ORDER BY created_at
		LIMIT $3
	`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, model.StatusPendingPayment, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending orders: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
