package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/models"
	"github.com/user/investrack/backend/internal/reconciler"
)

// Ledger is the pgx-backed implementation of reconciler.Ledger. Per-account
// serialization comes from the FOR UPDATE lock on the account row, taken by
// the first Balance read inside every transaction; the guarded balance
// update is the backstop.
type Ledger struct {
	pool *pgxpool.Pool
}

// NewLedger returns a Ledger on the global connection pool. InitDB must have
// run first.
func NewLedger() *Ledger {
	return &Ledger{pool: DB}
}

// Quote resolves a symbol outside any transaction.
func (l *Ledger) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	q, err := GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, fmt.Errorf("%w: %s", reconciler.ErrSymbolNotFound, symbol)
	}
	return q, nil
}

// InAccountTx runs fn inside one database transaction. Serialization
// failures and deadlocks surface as ErrConcurrentModification so the
// reconciler can apply its single bounded retry.
func (l *Ledger) InAccountTx(ctx context.Context, userID uuid.UUID, fn func(reconciler.AccountTx) error) error {
	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("error starting transaction for user %s: %w", userID, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&accountTx{tx: tx, userID: userID}); err != nil {
		return mapConflict(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return mapConflict(fmt.Errorf("error committing transaction for user %s: %w", userID, err))
	}
	return nil
}

// accountTx adapts the store functions to reconciler.AccountTx for one user
// within one transaction.
type accountTx struct {
	tx     pgx.Tx
	userID uuid.UUID
}

func (a *accountTx) Balance(ctx context.Context) (decimal.Decimal, error) {
	return GetBalanceForUpdate(ctx, a.tx, a.userID)
}

func (a *accountTx) Debit(ctx context.Context, amount decimal.Decimal) error {
	return DebitAccount(ctx, a.tx, a.userID, amount)
}

func (a *accountTx) Credit(ctx context.Context, amount decimal.Decimal) error {
	return CreditAccount(ctx, a.tx, a.userID, amount)
}

func (a *accountTx) Holding(ctx context.Context, symbol string) (*models.Holding, error) {
	return GetHoldingForUpdate(ctx, a.tx, a.userID, symbol)
}

func (a *accountTx) SaveHolding(ctx context.Context, h *models.Holding) error {
	return UpsertHolding(ctx, a.tx, h)
}

func (a *accountTx) DeleteHolding(ctx context.Context, symbol string) error {
	return DeleteHolding(ctx, a.tx, a.userID, symbol)
}

func (a *accountTx) RecordTrade(ctx context.Context, t *models.TradeRecord) error {
	return InsertTrade(ctx, a.tx, t)
}

// SQLSTATEs that mean the transaction lost a race, not that it was wrong.
const (
	sqlstateSerializationFailure = "40001"
	sqlstateDeadlockDetected     = "40P01"
)

func mapConflict(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == sqlstateSerializationFailure || pgErr.Code == sqlstateDeadlockDetected {
			return fmt.Errorf("%w: %v", reconciler.ErrConcurrentModification, err)
		}
	}
	return err
}
