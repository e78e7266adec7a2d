package marketdata

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/user/investrack/backend/internal/database"
	"github.com/user/investrack/backend/internal/models"
)

// SeedListings populates market_data with a starter set of instruments when
// the table is empty, so a fresh install has something to browse and the
// refresher has prices to walk.
func SeedListings(ctx context.Context, log zerolog.Logger) error {
	existing, err := database.ListQuotes(ctx, "")
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, q := range defaultListings() {
		if err := database.UpsertQuote(ctx, q); err != nil {
			return err
		}
	}
	log.Info().Int("listings", len(defaultListings())).Msg("Seeded market data")
	return nil
}

func defaultListings() []*models.Quote {
	price := func(v string) decimal.Decimal { return decimal.RequireFromString(v) }

	return []*models.Quote{
		{Symbol: "AAPL", Name: "Apple Inc.", Type: models.TypeStock, Price: price("178.50"), RiskLevel: "MEDIUM", MinimumInvestment: price("100"), Description: "Consumer electronics and services."},
		{Symbol: "MSFT", Name: "Microsoft Corporation", Type: models.TypeStock, Price: price("415.20"), RiskLevel: "MEDIUM", MinimumInvestment: price("100"), Description: "Software, cloud and productivity."},
		{Symbol: "TSLA", Name: "Tesla, Inc.", Type: models.TypeStock, Price: price("242.80"), RiskLevel: "HIGH", MinimumInvestment: price("100"), Description: "Electric vehicles and energy storage."},
		{Symbol: "VFIAX", Name: "Vanguard 500 Index Fund", Type: models.TypeMutualFund, Price: price("452.30"), RiskLevel: "MEDIUM", MinimumInvestment: price("3000"), Description: "S&P 500 index tracker."},
		{Symbol: "FXNAX", Name: "Fidelity U.S. Bond Index Fund", Type: models.TypeMutualFund, Price: price("10.45"), RiskLevel: "LOW", MinimumInvestment: price("500"), Description: "Broad U.S. investment-grade bonds."},
		{Symbol: "UST10Y", Name: "U.S. Treasury 10-Year Note", Type: models.TypeBond, Price: price("1000"), RiskLevel: "LOW", MinimumInvestment: price("1000"), Description: "Benchmark government debt."},
		{Symbol: "CORPAA", Name: "AA Corporate Bond Basket", Type: models.TypeBond, Price: price("985.50"), RiskLevel: "LOW", MinimumInvestment: price("1000"), Description: "High-grade corporate credit."},
	}
}
