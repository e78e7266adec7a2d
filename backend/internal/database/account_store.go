package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/models"
)

// CreateAccount inserts a zero-balance cash account for a new user. Called
// from the signup transaction; accounts are never deleted afterwards.
func CreateAccount(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*models.Account, error) {
	account := &models.Account{UserID: userID, Balance: decimal.Zero}

	query := `INSERT INTO accounts (user_id, balance)
			  VALUES ($1, 0)
			  ON CONFLICT (user_id) DO NOTHING
			  RETURNING updated_at`

	err := Querier(tx).QueryRow(ctx, query, userID).Scan(&account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflict: the account already exists, re-fetch it.
			return getAccount(ctx, Querier(tx), userID)
		}
		return nil, fmt.Errorf("error creating account for user %s: %w", userID, err)
	}
	return account, nil
}

// GetAccount retrieves a user's cash account.
// Returns nil, nil when no account exists.
func GetAccount(ctx context.Context, userID uuid.UUID) (*models.Account, error) {
	return getAccount(ctx, DB, userID)
}

func getAccount(ctx context.Context, q PgxQuerier, userID uuid.UUID) (*models.Account, error) {
	account := &models.Account{}
	query := `SELECT user_id, balance, updated_at FROM accounts WHERE user_id = $1`

	err := q.QueryRow(ctx, query, userID).
		Scan(&account.UserID, &account.Balance, &account.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error getting account for user %s: %w", userID, err)
	}
	return account, nil
}

// GetBalanceForUpdate reads the balance under the account row lock. Taking
// this lock as the first statement of a reconciler transaction is what
// serializes concurrent operations on the same account.
func GetBalanceForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT balance FROM accounts WHERE user_id = $1 FOR UPDATE`

	err := tx.QueryRow(ctx, query, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Decimal{}, fmt.Errorf("account not found for user %s", userID)
		}
		return decimal.Decimal{}, fmt.Errorf("tx error reading balance for user %s: %w", userID, err)
	}
	return balance, nil
}

// DebitAccount decreases the balance inside a transaction. The guard in the
// WHERE clause refuses to drive the balance negative even if the caller's
// check raced; the affected-rows check turns that refusal into an error.
func DebitAccount(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("debit amount must be positive, got %s", amount)
	}

	query := `UPDATE accounts
			  SET balance = balance - $1, updated_at = now()
			  WHERE user_id = $2 AND balance >= $1`

	cmdTag, err := tx.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("error debiting %s from user %s: %w", amount, userID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("insufficient balance to debit %s for user %s", amount, userID)
	}
	return nil
}

// CreditAccount increases the balance inside a transaction.
func CreditAccount(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return fmt.Errorf("credit amount must be positive, got %s", amount)
	}

	query := `UPDATE accounts
			  SET balance = balance + $1, updated_at = now()
			  WHERE user_id = $2`

	cmdTag, err := tx.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("error crediting %s to user %s: %w", amount, userID, err)
	}
	if cmdTag.RowsAffected() != 1 {
		return fmt.Errorf("account not found for user %s", userID)
	}
	return nil
}
