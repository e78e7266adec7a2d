// Package reconciler applies buy, sell and deposit actions to a user's cash
// account, holdings and trade history as one atomic unit per action.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/models"
)

var one = decimal.NewFromInt(1)

// Result is the outcome of a completed reconciler operation: the committed
// trade record plus the post-commit balance and holding snapshot.
type Result struct {
	Trade   *models.TradeRecord `json:"trade"`
	Balance decimal.Decimal     `json:"balance"`
	Holding *models.Holding     `json:"holding,omitempty"` // nil for deposits and full liquidations
}

// Reconciler orchestrates quote lookup, cash movement, holding updates and
// trade recording for every balance-affecting action.
type Reconciler struct {
	ledger Ledger
	log    zerolog.Logger
}

// New creates a Reconciler on top of the given ledger.
func New(ledger Ledger, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		ledger: ledger,
		log:    log.With().Str("component", "reconciler").Logger(),
	}
}

// Buy purchases quantity units of symbol at the current quote price.
// Validation and the quote lookup happen before the atomic unit; the debit,
// holding update and trade record commit together or not at all.
func (r *Reconciler) Buy(ctx context.Context, userID uuid.UUID, symbol string, quantity decimal.Decimal) (*Result, error) {
	symbol = NormalizeSymbol(symbol)
	if err := validateUnits(quantity); err != nil {
		return nil, err
	}

	quote, err := r.ledger.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	// Price captured here, before the transaction begins.
	price := quote.Price
	total := price.Mul(quantity)

	if total.LessThan(quote.MinimumInvestment) {
		return nil, fmt.Errorf("%w: %s requires at least %s, order total is %s",
			ErrBelowMinimumInvestment, symbol, quote.MinimumInvestment, total)
	}

	res := &Result{}
	err = r.inAccountTxWithRetry(ctx, userID, func(tx AccountTx) error {
		balance, err := tx.Balance(ctx)
		if err != nil {
			return err
		}
		if balance.LessThan(total) {
			return fmt.Errorf("%w: order total %s exceeds balance %s", ErrInsufficientFunds, total, balance)
		}
		if err := tx.Debit(ctx, total); err != nil {
			return err
		}

		holding, err := tx.Holding(ctx, symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			holding = &models.Holding{
				UserID:      userID,
				Symbol:      symbol,
				Quantity:    quantity,
				AverageCost: price,
			}
		} else {
			holding.AverageCost = WeightedAverageCost(holding.Quantity, holding.AverageCost, quantity, price)
			holding.Quantity = holding.Quantity.Add(quantity)
		}
		if err := tx.SaveHolding(ctx, holding); err != nil {
			return err
		}

		trade := newTrade(userID, symbol, models.ActionBuy, quantity, price, total)
		if err := tx.RecordTrade(ctx, trade); err != nil {
			return fmt.Errorf("%w: %v", ErrRecordingFailed, err)
		}

		res.Trade = trade
		res.Balance = balance.Sub(total)
		res.Holding = holding
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Stringer("user_id", userID).
		Str("symbol", symbol).
		Stringer("quantity", quantity).
		Stringer("price", price).
		Stringer("total", total).
		Msg("Buy completed")
	return res, nil
}

// Sell liquidates quantity units of symbol at the current quote price. A
// sell of the full position deletes the holding row; a partial sell reduces
// the quantity and leaves the average cost untouched.
func (r *Reconciler) Sell(ctx context.Context, userID uuid.UUID, symbol string, quantity decimal.Decimal) (*Result, error) {
	symbol = NormalizeSymbol(symbol)
	if err := validateUnits(quantity); err != nil {
		return nil, err
	}

	quote, err := r.ledger.Quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	price := quote.Price
	proceeds := price.Mul(quantity)

	res := &Result{}
	err = r.inAccountTxWithRetry(ctx, userID, func(tx AccountTx) error {
		// Balance read first: it takes the account lock that serializes
		// concurrent operations on this user.
		balance, err := tx.Balance(ctx)
		if err != nil {
			return err
		}

		holding, err := tx.Holding(ctx, symbol)
		if err != nil {
			return err
		}
		if holding == nil {
			return fmt.Errorf("%w: no position in %s", ErrInsufficientHoldings, symbol)
		}
		if holding.Quantity.LessThan(quantity) {
			return fmt.Errorf("%w: have %s units of %s, tried to sell %s",
				ErrInsufficientHoldings, holding.Quantity, symbol, quantity)
		}

		if holding.Quantity.Equal(quantity) {
			// Full liquidation: the row goes away, never a zero-quantity row.
			if err := tx.DeleteHolding(ctx, symbol); err != nil {
				return err
			}
			res.Holding = nil
		} else {
			holding.Quantity = holding.Quantity.Sub(quantity)
			if err := tx.SaveHolding(ctx, holding); err != nil {
				return err
			}
			res.Holding = holding
		}

		if err := tx.Credit(ctx, proceeds); err != nil {
			return err
		}

		trade := newTrade(userID, symbol, models.ActionSell, quantity, price, proceeds)
		if err := tx.RecordTrade(ctx, trade); err != nil {
			return fmt.Errorf("%w: %v", ErrRecordingFailed, err)
		}

		res.Trade = trade
		res.Balance = balance.Add(proceeds)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Stringer("user_id", userID).
		Str("symbol", symbol).
		Stringer("quantity", quantity).
		Stringer("price", price).
		Stringer("proceeds", proceeds).
		Msg("Sell completed")
	return res, nil
}

// Deposit credits simulated funds to the user's cash account. No quote step.
// The trade record uses the CASH sentinel with quantity 1 and price = amount.
func (r *Reconciler) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, paymentMethod string) (*Result, error) {
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: deposit amount must be positive, got %s", ErrInvalidAmount, amount)
	}

	res := &Result{}
	err := r.inAccountTxWithRetry(ctx, userID, func(tx AccountTx) error {
		balance, err := tx.Balance(ctx)
		if err != nil {
			return err
		}
		if err := tx.Credit(ctx, amount); err != nil {
			return err
		}

		trade := newTrade(userID, models.CashSymbol, models.ActionDeposit, one, amount, amount)
		trade.PaymentMethod = paymentMethod
		if err := tx.RecordTrade(ctx, trade); err != nil {
			return fmt.Errorf("%w: %v", ErrRecordingFailed, err)
		}

		res.Trade = trade
		res.Balance = balance.Add(amount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info().
		Stringer("user_id", userID).
		Stringer("amount", amount).
		Msg("Deposit completed")
	return res, nil
}

// inAccountTxWithRetry runs the atomic unit, retrying exactly once when it
// aborts on a conflicting concurrent mutation. Financial mutations are never
// blindly retried for any other failure.
func (r *Reconciler) inAccountTxWithRetry(ctx context.Context, userID uuid.UUID, fn func(AccountTx) error) error {
	err := r.ledger.InAccountTx(ctx, userID, fn)
	if err == nil || !errors.Is(err, ErrConcurrentModification) {
		return err
	}
	r.log.Warn().
		Stringer("user_id", userID).
		Err(err).
		Msg("Atomic apply aborted on conflict, retrying once")
	return r.ledger.InAccountTx(ctx, userID, fn)
}

// NormalizeSymbol trims and uppercases a ticker for lookup.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// WeightedAverageCost folds a new purchase into an existing cost basis:
// (oldQty*oldAvg + qty*price) / (oldQty + qty).
func WeightedAverageCost(oldQty, oldAvg, qty, price decimal.Decimal) decimal.Decimal {
	totalQty := oldQty.Add(qty)
	if totalQty.Sign() == 0 {
		return price
	}
	return oldQty.Mul(oldAvg).Add(qty.Mul(price)).DivRound(totalQty, 16)
}

// validateUnits rejects quantities that are not a positive whole number of
// units, before any balance check runs.
func validateUnits(quantity decimal.Decimal) error {
	if quantity.Sign() <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidQuantity, quantity)
	}
	if !quantity.IsInteger() {
		return fmt.Errorf("%w: quantity must be a whole number of units, got %s", ErrInvalidQuantity, quantity)
	}
	return nil
}

func newTrade(userID uuid.UUID, symbol, action string, quantity, price, total decimal.Decimal) *models.TradeRecord {
	return &models.TradeRecord{
		ID:          uuid.New(),
		UserID:      userID,
		Symbol:      symbol,
		Action:      action,
		Quantity:    quantity,
		Price:       price,
		TotalAmount: total,
		Status:      models.StatusCompleted,
	}
}
