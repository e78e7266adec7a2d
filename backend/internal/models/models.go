package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Trade actions.
const (
	ActionBuy     = "buy"
	ActionSell    = "sell"
	ActionDeposit = "deposit"
)

// Trade statuses. A record only ever moves pending -> completed or pending -> failed.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Asset types accepted by the market data store.
const (
	TypeStock      = "stock"
	TypeMutualFund = "mutual_fund"
	TypeBond       = "bond"
)

// CashSymbol is the sentinel symbol used on deposit trade records.
const CashSymbol = "CASH"

// ValidAssetType reports whether t is one of the accepted asset types.
// Asset type is always an explicit field validated at write time; it is
// never inferred from the symbol.
func ValidAssetType(t string) bool {
	return t == TypeStock || t == TypeMutualFund || t == TypeBond
}

// User represents a user account
type User struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	FullName  string    `json:"full_name,omitempty"`
	Password  string    `json:"-"` // Store hash, exclude from JSON responses
	CreatedAt time.Time `json:"created_at"`
}

// Account is a user's cash ledger. One account per user, created with a zero
// balance at signup and never deleted. Only the reconciler mutates it.
type Account struct {
	UserID    uuid.UUID       `json:"user_id"`
	Balance   decimal.Decimal `json:"balance"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Holding is a user's open position in one symbol. The row only exists while
// quantity > 0; a full liquidation deletes it rather than zeroing it.
type Holding struct {
	UserID      uuid.UUID       `json:"user_id"`
	Symbol      string          `json:"symbol"`
	Quantity    decimal.Decimal `json:"quantity"`
	AverageCost decimal.Decimal `json:"average_cost"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CostBasis returns quantity * average cost.
func (h *Holding) CostBasis() decimal.Decimal {
	return h.Quantity.Mul(h.AverageCost)
}

// Quote is one market instrument with its current price. Owned by the market
// data refresher; read-only for everything else.
type Quote struct {
	Symbol            string          `json:"symbol"`
	Name              string          `json:"name"`
	Type              string          `json:"type"` // stock, mutual_fund, bond
	Price             decimal.Decimal `json:"price"`
	ChangePercent     decimal.Decimal `json:"change_percent"`
	RiskLevel         string          `json:"risk_level,omitempty"` // LOW, MEDIUM, HIGH
	MinimumInvestment decimal.Decimal `json:"minimum_investment"`
	Description       string          `json:"description,omitempty"`
	AsOf              time.Time       `json:"as_of"`
}

// TradeRecord is an immutable audit entry for a balance-affecting action.
// Deposits use the CASH sentinel symbol with quantity 1 and price = amount.
type TradeRecord struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	Symbol        string          `json:"symbol"`
	Action        string          `json:"action"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method,omitempty"` // deposits only
	CreatedAt     time.Time       `json:"created_at"`
}

// WatchlistItem pins a market symbol to a user's watchlist.
type WatchlistItem struct {
	UserID    uuid.UUID `json:"user_id"`
	Symbol    string    `json:"symbol"`
	CreatedAt time.Time `json:"created_at"`
}
