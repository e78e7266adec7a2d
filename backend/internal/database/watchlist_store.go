package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// AddWatchlistItem pins a symbol to a user's watchlist. Adding a symbol that
// is already pinned is a no-op; an unlisted symbol is rejected by the
// foreign key and reported as such.
func AddWatchlistItem(ctx context.Context, userID uuid.UUID, symbol string) error {
	query := `INSERT INTO watchlist_items (user_id, symbol)
			  VALUES ($1, $2)
			  ON CONFLICT (user_id, symbol) DO NOTHING`

	_, err := DB.Exec(ctx, query, userID, symbol)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return fmt.Errorf("symbol %s is not listed", symbol)
		}
		return fmt.Errorf("error adding %s to watchlist for user %s: %w", symbol, userID, err)
	}
	return nil
}

// RemoveWatchlistItem unpins a symbol from a user's watchlist.
func RemoveWatchlistItem(ctx context.Context, userID uuid.UUID, symbol string) error {
	query := `DELETE FROM watchlist_items WHERE user_id = $1 AND symbol = $2`

	cmdTag, err := DB.Exec(ctx, query, userID, symbol)
	if err != nil {
		return fmt.Errorf("error removing %s from watchlist for user %s: %w", symbol, userID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("symbol %s is not on the watchlist", symbol)
	}
	return nil
}

// GetWatchlistSymbols retrieves the symbols a user has pinned, oldest first.
func GetWatchlistSymbols(ctx context.Context, userID uuid.UUID) ([]string, error) {
	symbols := make([]string, 0)
	query := `SELECT symbol FROM watchlist_items WHERE user_id = $1 ORDER BY created_at`

	rows, err := DB.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("error querying watchlist for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("error scanning watchlist row for user %s: %w", userID, err)
		}
		symbols = append(symbols, s)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating watchlist rows for user %s: %w", userID, rows.Err())
	}

	return symbols, nil
}
