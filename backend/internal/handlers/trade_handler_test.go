package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/investrack/backend/internal/reconciler"
)

// fakeTradeService returns canned errors and records the arguments it was
// called with.
type fakeTradeService struct {
	err       error
	gotSymbol string
	gotQty    decimal.Decimal
	gotAmount decimal.Decimal
}

func (f *fakeTradeService) Buy(ctx context.Context, userID uuid.UUID, symbol string, quantity decimal.Decimal) (*reconciler.Result, error) {
	f.gotSymbol, f.gotQty = symbol, quantity
	return nil, f.err
}

func (f *fakeTradeService) Sell(ctx context.Context, userID uuid.UUID, symbol string, quantity decimal.Decimal) (*reconciler.Result, error) {
	f.gotSymbol, f.gotQty = symbol, quantity
	return nil, f.err
}

func (f *fakeTradeService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, paymentMethod string) (*reconciler.Result, error) {
	f.gotAmount = amount
	return nil, f.err
}

// newTradeApp wires a fiber app with a stub auth layer that injects userID.
func newTradeApp(svc TradeService, userID uuid.UUID) *fiber.App {
	Init(svc, nil, zerolog.Nop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	})
	app.Post("/trades/buy", Buy)
	app.Post("/trades/sell", Sell)
	app.Post("/trades/deposit", Deposit)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))
	return resp.StatusCode, payload
}

func TestTradeErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid quantity", reconciler.ErrInvalidQuantity, fiber.StatusBadRequest},
		{"invalid amount", reconciler.ErrInvalidAmount, fiber.StatusBadRequest},
		{"below minimum investment", reconciler.ErrBelowMinimumInvestment, fiber.StatusBadRequest},
		{"insufficient funds", reconciler.ErrInsufficientFunds, fiber.StatusBadRequest},
		{"insufficient holdings", reconciler.ErrInsufficientHoldings, fiber.StatusBadRequest},
		{"symbol not found", reconciler.ErrSymbolNotFound, fiber.StatusNotFound},
		{"concurrent modification", reconciler.ErrConcurrentModification, fiber.StatusConflict},
		{"recording failed", reconciler.ErrRecordingFailed, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTradeApp(&fakeTradeService{err: tc.err}, uuid.New())
			status, payload := postJSON(t, app, "/trades/buy", `{"symbol":"XYZ","quantity":"5"}`)

			assert.Equal(t, tc.wantStatus, status)
			assert.NotEmpty(t, payload["error"])
		})
	}
}

func TestBuyPassesSymbolAndQuantityThrough(t *testing.T) {
	svc := &fakeTradeService{err: reconciler.ErrSymbolNotFound}
	app := newTradeApp(svc, uuid.New())

	status, _ := postJSON(t, app, "/trades/buy", `{"symbol":"xyz","quantity":"5"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "xyz", svc.gotSymbol, "normalization belongs to the service, not the handler")
	assert.True(t, svc.gotQty.Equal(decimal.NewFromInt(5)))
}

func TestSellErrorMapping(t *testing.T) {
	app := newTradeApp(&fakeTradeService{err: reconciler.ErrInsufficientHoldings}, uuid.New())
	status, payload := postJSON(t, app, "/trades/sell", `{"symbol":"XYZ","quantity":"5"}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Contains(t, payload["error"], "insufficient holdings")
}

func TestDepositErrorMapping(t *testing.T) {
	svc := &fakeTradeService{err: reconciler.ErrInvalidAmount}
	app := newTradeApp(svc, uuid.New())
	status, _ := postJSON(t, app, "/trades/deposit", `{"amount":"-5","payment_method":"card"}`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.True(t, svc.gotAmount.Equal(decimal.NewFromInt(-5)))
}

func TestTradeRejectsMalformedBody(t *testing.T) {
	app := newTradeApp(&fakeTradeService{}, uuid.New())
	status, payload := postJSON(t, app, "/trades/buy", `{"symbol":`)

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Cannot parse request body", payload["error"])
}

func TestTradeRequiresUserID(t *testing.T) {
	Init(&fakeTradeService{}, nil, zerolog.Nop())

	// No middleware setting the userID local.
	app := fiber.New()
	app.Post("/trades/buy", Buy)

	status, payload := postJSON(t, app, "/trades/buy", `{"symbol":"XYZ","quantity":"5"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid user ID in token", payload["error"])
}
