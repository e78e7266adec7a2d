package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/models"
)

const quoteColumns = `symbol, name, type, price, change_percent,
		COALESCE(risk_level, ''), minimum_investment, description, updated_at`

// GetQuote retrieves the current quote for a symbol.
// Returns nil, nil when the symbol is not listed.
func GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM market_data WHERE symbol = $1`

	q, err := scanQuote(DB.QueryRow(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting quote for %s: %w", symbol, err)
	}
	return q, nil
}

// ListQuotes retrieves all listings, optionally filtered by asset type.
func ListQuotes(ctx context.Context, assetType string) ([]*models.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM market_data`
	args := []interface{}{}
	if assetType != "" {
		query += ` WHERE type = $1`
		args = append(args, assetType)
	}
	query += ` ORDER BY symbol`

	rows, err := DB.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying market data: %w", err)
	}
	defer rows.Close()

	quotes := make([]*models.Quote, 0)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning market data row: %w", err)
		}
		quotes = append(quotes, q)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating market data rows: %w", rows.Err())
	}

	return quotes, nil
}

// GetQuotesBySymbols retrieves quotes for a set of symbols, keyed by symbol.
// Symbols without a listing are simply absent from the map.
func GetQuotesBySymbols(ctx context.Context, symbols []string) (map[string]*models.Quote, error) {
	quotes := make(map[string]*models.Quote, len(symbols))
	if len(symbols) == 0 {
		return quotes, nil
	}

	query := `SELECT ` + quoteColumns + ` FROM market_data WHERE symbol = ANY($1)`
	rows, err := DB.Query(ctx, query, symbols)
	if err != nil {
		return nil, fmt.Errorf("error querying quotes by symbols: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning quote row: %w", err)
		}
		quotes[q.Symbol] = q
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("error iterating quote rows: %w", rows.Err())
	}

	return quotes, nil
}

// UpsertQuote writes a listing. Asset type is validated here, at the write
// boundary; it is never inferred from the symbol.
func UpsertQuote(ctx context.Context, q *models.Quote) error {
	if !models.ValidAssetType(q.Type) {
		return fmt.Errorf("invalid asset type %q for symbol %s", q.Type, q.Symbol)
	}
	if q.Price.Sign() <= 0 {
		return fmt.Errorf("quote price must be positive for symbol %s, got %s", q.Symbol, q.Price)
	}

	query := `INSERT INTO market_data (symbol, name, type, price, change_percent, risk_level, minimum_investment, description, updated_at)
			  VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, now())
			  ON CONFLICT (symbol)
			  DO UPDATE SET name = EXCLUDED.name,
			                type = EXCLUDED.type,
			                price = EXCLUDED.price,
			                change_percent = EXCLUDED.change_percent,
			                risk_level = EXCLUDED.risk_level,
			                minimum_investment = EXCLUDED.minimum_investment,
			                description = EXCLUDED.description,
			                updated_at = now()
			  RETURNING updated_at`

	err := DB.QueryRow(ctx, query,
		q.Symbol, q.Name, q.Type, q.Price, q.ChangePercent,
		q.RiskLevel, q.MinimumInvestment, q.Description,
	).Scan(&q.AsOf)
	if err != nil {
		return fmt.Errorf("error upserting quote for %s: %w", q.Symbol, err)
	}
	return nil
}

// UpdateQuotePrice refreshes only the moving fields of a listing.
func UpdateQuotePrice(ctx context.Context, symbol string, price, changePercent decimal.Decimal) error {
	query := `UPDATE market_data
			  SET price = $1, change_percent = $2, updated_at = now()
			  WHERE symbol = $3`

	cmdTag, err := DB.Exec(ctx, query, price, changePercent, symbol)
	if err != nil {
		return fmt.Errorf("error updating price for %s: %w", symbol, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("symbol %s not found", symbol)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanQuote(row rowScanner) (*models.Quote, error) {
	q := &models.Quote{}
	err := row.Scan(&q.Symbol, &q.Name, &q.Type, &q.Price, &q.ChangePercent,
		&q.RiskLevel, &q.MinimumInvestment, &q.Description, &q.AsOf)
	if err != nil {
		return nil, err
	}
	return q, nil
}
