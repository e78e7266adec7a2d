package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/user/investrack/backend/internal/models"
)

// GetUserHoldings retrieves all open positions for a user.
func GetUserHoldings(ctx context.Context, userID uuid.UUID) ([]*models.Holding, error) {
	holdings := make([]*models.Holding, 0)
	query := `SELECT user_id, symbol, quantity, average_cost, created_at, updated_at
			  FROM holdings WHERE user_id = $1 ORDER BY symbol`

	rows, err := DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying holdings for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		h := &models.Holding{}
		err := rows.Scan(&h.UserID, &h.Symbol, &h.Quantity, &h.AverageCost, &h.CreatedAt, &h.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("error scanning holding row for user %s: %w", userID, err)
		}
		holdings = append(holdings, h)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating holding rows for user %s: %w", userID, rows.Err())
	}

	return holdings, nil
}

// GetHoldingForUpdate retrieves one position under a row lock.
// Returns nil, nil when no position exists.
func GetHoldingForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID, symbol string) (*models.Holding, error) {
	h := &models.Holding{}
	query := `SELECT user_id, symbol, quantity, average_cost, created_at, updated_at
			  FROM holdings WHERE user_id = $1 AND symbol = $2 FOR UPDATE`

	err := tx.QueryRow(ctx, query, userID, symbol).
		Scan(&h.UserID, &h.Symbol, &h.Quantity, &h.AverageCost, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("tx error getting holding %s for user %s: %w", symbol, userID, err)
	}
	return h, nil
}

// UpsertHolding writes a position's quantity and average cost inside a
// transaction, creating the row on first buy.
func UpsertHolding(ctx context.Context, tx pgx.Tx, h *models.Holding) error {
	query := `INSERT INTO holdings (user_id, symbol, quantity, average_cost)
			  VALUES ($1, $2, $3, $4)
			  ON CONFLICT (user_id, symbol)
			  DO UPDATE SET quantity = EXCLUDED.quantity,
			                average_cost = EXCLUDED.average_cost,
			                updated_at = now()
			  RETURNING created_at, updated_at`

	err := tx.QueryRow(ctx, query, h.UserID, h.Symbol, h.Quantity, h.AverageCost).
		Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting holding %s for user %s: %w", h.Symbol, h.UserID, err)
	}
	return nil
}

// DeleteHolding removes a fully liquidated position. A sell that closes the
// whole position deletes the row; a zero-quantity holding is never stored.
func DeleteHolding(ctx context.Context, tx pgx.Tx, userID uuid.UUID, symbol string) error {
	query := `DELETE FROM holdings WHERE user_id = $1 AND symbol = $2`

	cmdTag, err := tx.Exec(ctx, query, userID, symbol)
	if err != nil {
		return fmt.Errorf("error deleting holding %s for user %s: %w", symbol, userID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("holding %s not found for user %s", symbol, userID)
	}
	return nil
}
