// Package marketdata keeps the market_data listings fresh. Prices come from
// an external quote API when a key is configured, with a bounded random-walk
// simulation as the fallback so the app stays usable offline.
package marketdata

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/models"
	"github.com/user/investrack/backend/internal/websocket"
)

// Maximum simulated move per refresh, percent, by asset type.
var driftCaps = map[string]float64{
	models.TypeStock:      0.5,
	models.TypeMutualFund: 0.3,
	models.TypeBond:       0.1,
}

// PriceUpdate is the message broadcast to websocket clients on every refresh.
type PriceUpdate struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	ChangePercent decimal.Decimal `json:"change_percent"`
	Ts            int64           `json:"ts"` // Unix timestamp milliseconds
}

// Refresher walks every listing, refreshes its price and broadcasts the
// result. It runs on a cron schedule, outside the reconciler's concurrency
// domain; trades always read prices through the quote store.
type Refresher struct {
	source QuoteSource // nil: simulate only
	hub    *websocket.Hub
	rng    *rand.Rand
	log    zerolog.Logger
}

// NewRefresher builds a refresher. source may be nil to run purely on the
// simulation.
func NewRefresher(source QuoteSource, hub *websocket.Hub, log zerolog.Logger) *Refresher {
	return &Refresher{
		source: source,
		hub:    hub,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		log:    log.With().Str("component", "market_refresher").Logger(),
	}
}

// Name identifies the job in scheduler logs.
func (r *Refresher) Name() string { return "market_data_refresh" }

// Run refreshes all listings once.
func (r *Refresher) Run() error {
	return r.RefreshAll(context.Background())
}

// RefreshAll updates every listing. A failure on one symbol does not stop
// the rest; the first error is returned after the sweep.
func (r *Refresher) RefreshAll(ctx context.Context) error {
	quotes, err := database.ListQuotes(ctx, "")
	if err != nil {
		return err
	}

	var firstErr error
	updated := 0
	for _, q := range quotes {
		price, change := r.nextPrice(ctx, q)

		if err := database.UpdateQuotePrice(ctx, q.Symbol, price, change); err != nil {
			r.log.Error().Err(err).Str("symbol", q.Symbol).Msg("Failed to persist refreshed price")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		updated++

		if r.hub != nil {
			r.hub.BroadcastJSON(PriceUpdate{
				Symbol:        q.Symbol,
				Price:         price,
				ChangePercent: change,
				Ts:            time.Now().UnixMilli(),
			})
		}
	}

	r.log.Info().Int("updated", updated).Int("total", len(quotes)).Msg("Market data refresh finished")
	return firstErr
}

// nextPrice asks the external source first and falls back to the simulation
// on any failure. The fallback is explicit policy, not an error path worth
// failing the sweep for.
func (r *Refresher) nextPrice(ctx context.Context, q *models.Quote) (decimal.Decimal, decimal.Decimal) {
	if r.source != nil {
		price, change, err := r.source.Fetch(ctx, q.Symbol)
		if err == nil && price.Sign() > 0 {
			return price, change
		}
		r.log.Warn().Err(err).Str("symbol", q.Symbol).Msg("Quote fetch failed, simulating step")
	}
	return r.simulateStep(q)
}

// simulateStep applies one bounded random-walk step to the last known price.
// The move never exceeds the per-type drift cap and the price stays positive.
func (r *Refresher) simulateStep(q *models.Quote) (decimal.Decimal, decimal.Decimal) {
	maxPct, ok := driftCaps[q.Type]
	if !ok {
		maxPct = driftCaps[models.TypeStock]
	}

	movePct := (r.rng.Float64()*2 - 1) * maxPct
	change := decimal.NewFromFloat(movePct).Round(6)
	factor := decimal.NewFromInt(1).Add(change.Div(decimal.NewFromInt(100)))

	price := q.Price.Mul(factor).Round(8)
	if price.Sign() <= 0 {
		price = q.Price
		change = decimal.Zero
	}
	return price, change
}
