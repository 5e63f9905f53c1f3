package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/pkg/database"
)

// Repository là phần của user store mà order core dùng: xoá giỏ hàng
// sau khi đơn được xác nhận.
type Repository interface {
	// ClearCart xoá mọi cart item của user, trả về số dòng đã xoá.
	// User chưa có cart không phải là lỗi.
	ClearCart(ctx context.Context, userID uuid.UUID) (int, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) ClearCart(ctx context.Context, userID uuid.UUID) (int, error) {
	conn := database.Conn(ctx, r.pool)

	result, err := conn.Exec(ctx, `
		DELETE FROM cart_items
		WHERE cart_id IN (SELECT id FROM carts WHERE user_id = $1)`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}

	if _, err := conn.Exec(ctx, `UPDATE carts SET updated_at = NOW() WHERE user_id = $1`, userID); err != nil {
		return 0, fmt.Errorf("failed to touch cart: %w", err)
	}

	return int(result.RowsAffected()), nil
}
