package portfolio

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/investrack/backend/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func holding(symbol, qty, avgCost string) *models.Holding {
	return &models.Holding{
		UserID:      uuid.New(),
		Symbol:      symbol,
		Quantity:    dec(qty),
		AverageCost: dec(avgCost),
	}
}

func quote(symbol, price string) *models.Quote {
	return &models.Quote{Symbol: symbol, Name: symbol + " Inc", Type: models.TypeStock, Price: dec(price)}
}

func TestValuation(t *testing.T) {
	h := holding("XYZ", "5", "100")

	v := Valuation(h, quote("XYZ", "120"))
	assert.True(t, v.Equal(dec("600")), "got %s", v)

	// No quote: value at cost.
	v = Valuation(h, nil)
	assert.True(t, v.Equal(dec("500")), "got %s", v)
}

func TestProfitLossPercent(t *testing.T) {
	h := holding("XYZ", "10", "100")

	pct, err := ProfitLossPercent(h, quote("XYZ", "125"))
	require.NoError(t, err)
	assert.True(t, pct.Equal(dec("25")), "got %s", pct)

	pct, err = ProfitLossPercent(h, quote("XYZ", "80"))
	require.NoError(t, err)
	assert.True(t, pct.Equal(dec("-20")), "got %s", pct)

	// Without a quote the position is valued at cost, so P/L is zero.
	pct, err = ProfitLossPercent(h, nil)
	require.NoError(t, err)
	assert.True(t, pct.IsZero(), "got %s", pct)
}

func TestProfitLossPercentZeroCostBasis(t *testing.T) {
	h := holding("FREEBIE", "5", "0")
	_, err := ProfitLossPercent(h, quote("FREEBIE", "10"))
	assert.ErrorIs(t, err, ErrZeroCostBasis)
}

func TestBuildSnapshot(t *testing.T) {
	holdings := []*models.Holding{
		holding("XYZ", "5", "100"),  // basis 500
		holding("ABC", "10", "20"),  // basis 200
		holding("GONE", "2", "300"), // basis 600, no quote
	}
	quotes := map[string]*models.Quote{
		"XYZ": quote("XYZ", "120"), // value 600
		"ABC": quote("ABC", "15"),  // value 150
	}

	snap := BuildSnapshot(dec("250"), holdings, quotes)

	require.Len(t, snap.Positions, 3)
	assert.True(t, snap.CashBalance.Equal(dec("250")))
	assert.True(t, snap.InvestedValue.Equal(dec("1350")), "got %s", snap.InvestedValue)
	assert.True(t, snap.TotalCostBasis.Equal(dec("1300")))
	assert.True(t, snap.TotalProfitLoss.Equal(dec("50")))
	assert.True(t, snap.TotalValue.Equal(dec("1600")))

	xyz := snap.Positions[0]
	assert.Equal(t, "XYZ", xyz.Symbol)
	assert.Equal(t, "XYZ Inc", xyz.Name)
	require.NotNil(t, xyz.CurrentPrice)
	assert.True(t, xyz.CurrentPrice.Equal(dec("120")))
	assert.True(t, xyz.ProfitLoss.Equal(dec("100")))
	require.NotNil(t, xyz.ProfitLossPercent)
	assert.True(t, xyz.ProfitLossPercent.Equal(dec("20")))

	// Position without a quote: valued at cost, no price, zero P/L.
	gone := snap.Positions[2]
	assert.Nil(t, gone.CurrentPrice)
	assert.Empty(t, gone.Name)
	assert.True(t, gone.CurrentValue.Equal(dec("600")))
	assert.True(t, gone.ProfitLoss.IsZero())
}

func TestBuildSnapshotEmptyPortfolio(t *testing.T) {
	snap := BuildSnapshot(dec("1000"), nil, nil)

	assert.Empty(t, snap.Positions)
	assert.True(t, snap.InvestedValue.IsZero())
	assert.True(t, snap.TotalValue.Equal(dec("1000")))
}
