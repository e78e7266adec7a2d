package reconciler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/models"
)

// Ledger is the reconciler's persistence boundary. The pgx implementation
// lives in the database package; tests use an in-memory one.
type Ledger interface {
	// Quote resolves a symbol to its current quote. It runs outside the
	// atomic unit; the price it returns is captured once and passed into
	// the transaction, never re-fetched mid-flight. Returns
	// ErrSymbolNotFound when no quote exists.
	Quote(ctx context.Context, symbol string) (*models.Quote, error)

	// InAccountTx runs fn as a single atomic unit serialized on the user's
	// account: two operations against the same account never interleave
	// their read-modify-write sequences. All writes made through the
	// AccountTx commit together or not at all. Implementations map
	// conflicting concurrent mutations to ErrConcurrentModification.
	InAccountTx(ctx context.Context, userID uuid.UUID, fn func(AccountTx) error) error
}

// AccountTx exposes the mutations available inside one atomic unit. Every
// method operates on the account the transaction was opened for.
type AccountTx interface {
	// Balance returns the current cash balance, read under the account lock.
	Balance(ctx context.Context) (decimal.Decimal, error)

	// Debit decreases the balance. The implementation must refuse to drive
	// the balance negative even if the caller's check raced.
	Debit(ctx context.Context, amount decimal.Decimal) error

	// Credit increases the balance. Amount must be positive.
	Credit(ctx context.Context, amount decimal.Decimal) error

	// Holding returns the user's position in symbol, or nil when none exists.
	Holding(ctx context.Context, symbol string) (*models.Holding, error)

	// SaveHolding inserts or updates a holding row.
	SaveHolding(ctx context.Context, h *models.Holding) error

	// DeleteHolding removes a fully liquidated position.
	DeleteHolding(ctx context.Context, symbol string) error

	// RecordTrade appends the audit record for this unit.
	RecordTrade(ctx context.Context, t *models.TradeRecord) error
}
