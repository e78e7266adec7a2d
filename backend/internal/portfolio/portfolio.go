// Package portfolio values holdings against current quotes and assembles the
// portfolio snapshot returned to the UI.
package portfolio

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/models"
)

// ErrZeroCostBasis signals that profit/loss percent is undefined because
// quantity * average_cost is zero. Callers must handle it; the division is
// never performed silently.
var ErrZeroCostBasis = errors.New("zero cost basis")

var hundred = decimal.NewFromInt(100)

// Valuation returns the current value of a holding: quantity * quote price.
// When no quote is available it falls back to valuing the position at its
// average cost. The fallback is a deliberate policy, not an error: a listing
// dropped from market data still shows at what was paid for it.
func Valuation(h *models.Holding, q *models.Quote) decimal.Decimal {
	if q == nil {
		return h.Quantity.Mul(h.AverageCost)
	}
	return h.Quantity.Mul(q.Price)
}

// ProfitLossPercent returns (currentValue - costBasis) / costBasis * 100.
// Returns ErrZeroCostBasis when the cost basis is zero.
func ProfitLossPercent(h *models.Holding, q *models.Quote) (decimal.Decimal, error) {
	basis := h.CostBasis()
	if basis.Sign() == 0 {
		return decimal.Decimal{}, ErrZeroCostBasis
	}
	return Valuation(h, q).Sub(basis).DivRound(basis, 16).Mul(hundred), nil
}

// Position is one valued holding inside a snapshot.
type Position struct {
	Symbol            string           `json:"symbol"`
	Name              string           `json:"name,omitempty"`
	Type              string           `json:"type,omitempty"`
	Quantity          decimal.Decimal  `json:"quantity"`
	AverageCost       decimal.Decimal  `json:"average_cost"`
	CurrentPrice      *decimal.Decimal `json:"current_price,omitempty"` // nil when no quote
	CurrentValue      decimal.Decimal  `json:"current_value"`
	CostBasis         decimal.Decimal  `json:"cost_basis"`
	ProfitLoss        decimal.Decimal  `json:"profit_loss"`
	ProfitLossPercent *decimal.Decimal `json:"profit_loss_percent,omitempty"` // nil when undefined
}

// Snapshot is the user's full portfolio: cash plus valued positions.
type Snapshot struct {
	CashBalance     decimal.Decimal `json:"cash_balance"`
	Positions       []Position      `json:"positions"`
	InvestedValue   decimal.Decimal `json:"invested_value"`
	TotalCostBasis  decimal.Decimal `json:"total_cost_basis"`
	TotalProfitLoss decimal.Decimal `json:"total_profit_loss"`
	TotalValue      decimal.Decimal `json:"total_value"` // cash + invested
}

// BuildSnapshot values every holding against the quote map and totals the
// portfolio. Holdings without a quote are valued at cost (see Valuation).
func BuildSnapshot(cash decimal.Decimal, holdings []*models.Holding, quotes map[string]*models.Quote) *Snapshot {
	snap := &Snapshot{
		CashBalance: cash,
		Positions:   make([]Position, 0, len(holdings)),
	}

	for _, h := range holdings {
		q := quotes[h.Symbol]
		value := Valuation(h, q)
		basis := h.CostBasis()

		pos := Position{
			Symbol:       h.Symbol,
			Quantity:     h.Quantity,
			AverageCost:  h.AverageCost,
			CurrentValue: value,
			CostBasis:    basis,
			ProfitLoss:   value.Sub(basis),
		}
		if q != nil {
			price := q.Price
			pos.CurrentPrice = &price
			pos.Name = q.Name
			pos.Type = q.Type
		}
		if pct, err := ProfitLossPercent(h, q); err == nil {
			pos.ProfitLossPercent = &pct
		}

		snap.Positions = append(snap.Positions, pos)
		snap.InvestedValue = snap.InvestedValue.Add(value)
		snap.TotalCostBasis = snap.TotalCostBasis.Add(basis)
	}

	snap.TotalProfitLoss = snap.InvestedValue.Sub(snap.TotalCostBasis)
	snap.TotalValue = snap.CashBalance.Add(snap.InvestedValue)
	return snap
}
