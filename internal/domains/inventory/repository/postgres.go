package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"shop-backend/internal/domains/inventory/model"
	"shop-backend/pkg/database"
)

type postgresProductRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &postgresProductRepository{pool: pool}
}

const productColumns = `id, name, image, price, offer_price, quantity, sizes, is_active, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Image,
		&p.Price,
		&p.OfferPrice,
		&p.Quantity,
		pq.Array(&p.Sizes),
		&p.IsActive,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(database.Conn(ctx, r.pool).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.NewProductNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

// AdjustQuantity: một câu UPDATE có điều kiện, không read-then-write.
// Điều kiện quantity + delta >= 0 là floor guard chống oversell khi nhiều
// request cùng trừ kho.
func (r *postgresProductRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*model.Product, bool, error) {
	query := `
		UPDATE products
		SET quantity = quantity + $2,
		    updated_at = NOW()
		WHERE id = $1
		  AND quantity + $2 >= 0
		RETURNING ` + productColumns

	p, err := scanProduct(database.Conn(ctx, r.pool).QueryRow(ctx, query, id, delta))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("adjust product quantity: %w", err)
	}
	return p, true, nil
}
