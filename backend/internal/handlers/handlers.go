// Package handlers contains the Fiber HTTP endpoints.
package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/reconciler"
	ws "github.com/user/investrack/backend/internal/websocket"
)

// TradeService is what the trade endpoints need from the reconciler.
type TradeService interface {
	Buy(ctx context.Context, userID uuid.UUID, symbol string, quantity decimal.Decimal) (*reconciler.Result, error)
	Sell(ctx context.Context, userID uuid.UUID, symbol string, quantity decimal.Decimal) (*reconciler.Result, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, paymentMethod string) (*reconciler.Result, error)
}

var (
	trades TradeService
	hub    *ws.Hub
	log    zerolog.Logger
)

// Init wires the handler package's collaborators. Must run before routes are
// served.
func Init(svc TradeService, wsHub *ws.Hub, logger zerolog.Logger) {
	trades = svc
	hub = wsHub
	log = logger.With().Str("component", "handlers").Logger()
}
