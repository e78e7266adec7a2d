package marketdata

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/investrack/backend/internal/models"
)

func TestSimulateStepStaysWithinDriftCap(t *testing.T) {
	r := NewRefresher(nil, nil, zerolog.Nop())

	cases := []struct {
		assetType string
		maxPct    string
	}{
		{models.TypeStock, "0.5"},
		{models.TypeMutualFund, "0.3"},
		{models.TypeBond, "0.1"},
	}

	for _, tc := range cases {
		maxPct := decimal.RequireFromString(tc.maxPct)
		q := &models.Quote{Symbol: "SIM", Type: tc.assetType, Price: decimal.RequireFromString("100")}

		for i := 0; i < 200; i++ {
			price, change := r.simulateStep(q)

			require.True(t, price.Sign() > 0, "%s: price must stay positive, got %s", tc.assetType, price)
			assert.True(t, change.Abs().LessThanOrEqual(maxPct),
				"%s: change %s exceeds cap %s", tc.assetType, change, maxPct)

			// The new price must match the reported move.
			expected := q.Price.Mul(decimal.NewFromInt(1).Add(change.Div(decimal.NewFromInt(100)))).Round(8)
			assert.True(t, price.Equal(expected), "%s: price %s, expected %s", tc.assetType, price, expected)

			q.Price = price
		}
	}
}

func TestSimulateStepUnknownTypeUsesStockCap(t *testing.T) {
	r := NewRefresher(nil, nil, zerolog.Nop())
	q := &models.Quote{Symbol: "ODD", Type: "crypto", Price: decimal.RequireFromString("100")}

	stockCap := decimal.RequireFromString("0.5")
	for i := 0; i < 100; i++ {
		_, change := r.simulateStep(q)
		assert.True(t, change.Abs().LessThanOrEqual(stockCap), "change %s", change)
	}
}
