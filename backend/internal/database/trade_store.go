package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/user/investrack/backend/internal/models"
)

// InsertTrade appends a trade record inside a transaction. Records are
// append-only; nothing here updates an existing row.
func InsertTrade(ctx context.Context, tx pgx.Tx, t *models.TradeRecord) error {
	query := `INSERT INTO trades (id, user_id, symbol, action, quantity, price, total_amount, status, payment_method)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING created_at`

	err := Querier(tx).QueryRow(ctx, query,
		t.ID, t.UserID, t.Symbol, t.Action,
		t.Quantity, t.Price, t.TotalAmount, t.Status, t.PaymentMethod,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting trade for user %s: %w", t.UserID, err)
	}
	return nil
}

// UpdateTradeStatus performs the only mutation a trade record permits: the
// terminal transition from pending to completed or failed.
func UpdateTradeStatus(ctx context.Context, tradeID uuid.UUID, status string) error {
	if status != models.StatusCompleted && status != models.StatusFailed {
		return fmt.Errorf("invalid terminal status %q for trade %s", status, tradeID)
	}

	query := `UPDATE trades SET status = $1 WHERE id = $2 AND status = 'pending'`

	cmdTag, err := DB.Exec(ctx, query, status, tradeID)
	if err != nil {
		return fmt.Errorf("error updating trade %s status: %w", tradeID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("trade %s not found or not pending", tradeID)
	}
	return nil
}

// GetUserTrades retrieves a user's trade history, newest first.
func GetUserTrades(ctx context.Context, userID uuid.UUID, limit int) ([]*models.TradeRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	trades := make([]*models.TradeRecord, 0)
	query := `SELECT id, user_id, symbol, action, quantity, price, total_amount, status, payment_method, created_at
			  FROM trades WHERE user_id = $1
			  ORDER BY created_at DESC
			  LIMIT $2`

	rows, err := DB.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying trades for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		t := &models.TradeRecord{}
		err := rows.Scan(&t.ID, &t.UserID, &t.Symbol, &t.Action,
			&t.Quantity, &t.Price, &t.TotalAmount, &t.Status, &t.PaymentMethod, &t.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning trade row for user %s: %w", userID, err)
		}
		trades = append(trades, t)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating trade rows for user %s: %w", userID, rows.Err())
	}

	return trades, nil
}
