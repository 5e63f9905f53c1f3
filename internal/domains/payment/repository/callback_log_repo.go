package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/domains/payment/model"
	"shop-backend/pkg/database"
)

// =====================================================
// CALLBACK LOG REPOSITORY IMPLEMENTATION
// =====================================================
type callbackLogRepository struct {
	pool *pgxpool.Pool
}

func NewCallbackLogRepository(pool *pgxpool.Pool) CallbackLogRepository {
	return &callbackLogRepository{pool: pool}
}

// Create ghi log ngoài transaction settlement: callback bị từ chối vẫn phải có dấu vết
func (r *callbackLogRepository) Create(ctx context.Context, log *model.CallbackLog) error {
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.ReceivedAt.IsZero() {
		log.ReceivedAt = time.Now()
	}

	// Serialize params to JSONB
	paramsJSON, err := json.Marshal(log.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal params: %w", err)
	}

	query := `
		INSERT INTO payment_callback_logs (
			id, gateway, order_ref, params, signature_valid, outcome, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = database.Conn(ctx, r.pool).Exec(ctx, query,
		log.ID,
		log.Gateway,
		log.OrderRef,
		paramsJSON,
		log.SignatureValid,
		log.Outcome,
		log.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create callback log: %w", err)
	}
	return nil
}

func (r *callbackLogRepository) ListByOrderRef(ctx context.Context, orderRef string) ([]*model.CallbackLog, error) {
	query := `
		SELECT id, gateway, order_ref, params, signature_valid, outcome, received_at
		FROM payment_callback_logs
		WHERE order_ref = $1
		ORDER BY received_at DESC
	`

	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, orderRef)
	if err != nil {
		return nil, fmt.Errorf("failed to list callback logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.CallbackLog
	for rows.Next() {
		var (
			l          model.CallbackLog
			paramsJSON []byte
		)
		if err := rows.Scan(&l.ID, &l.Gateway, &l.OrderRef, &paramsJSON, &l.SignatureValid, &l.Outcome, &l.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan callback log: %w", err)
		}
		if err := json.Unmarshal(paramsJSON, &l.Params); err != nil {
			return nil, fmt.Errorf("failed to unmarshal params: %w", err)
		}
		logs = append(logs, &l)
	}
	return logs, rows.Err()
}
