package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// QuoteSource fetches the current price and day change for a symbol from an
// external provider.
type QuoteSource interface {
	Fetch(ctx context.Context, symbol string) (price, changePercent decimal.Decimal, err error)
}

// AlphaVantageClient pulls GLOBAL_QUOTE data from the Alpha Vantage API.
type AlphaVantageClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewAlphaVantageClient builds a client with a per-request timeout. Quote
// requests are read-only, so a timed-out request is simply dropped, never
// retried.
func NewAlphaVantageClient(baseURL, apiKey string, timeout time.Duration) *AlphaVantageClient {
	return &AlphaVantageClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// globalQuoteResponse mirrors the Alpha Vantage GLOBAL_QUOTE payload.
type globalQuoteResponse struct {
	GlobalQuote struct {
		Price         string `json:"05. price"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// Fetch retrieves the current quote for one symbol.
func (c *AlphaVantageClient) Fetch(ctx context.Context, symbol string) (decimal.Decimal, decimal.Decimal, error) {
	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", c.apiKey)
	reqURL := c.baseURL + "/query?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("quote request for %s failed: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("quote API returned status %d for %s", resp.StatusCode, symbol)
	}

	var payload globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("error decoding quote for %s: %w", symbol, err)
	}
	if payload.GlobalQuote.Price == "" {
		// Alpha Vantage answers 200 with an empty object for unknown
		// symbols and rate-limited keys.
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("no quote data returned for %s", symbol)
	}

	price, err := decimal.NewFromString(payload.GlobalQuote.Price)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("bad price %q for %s: %w", payload.GlobalQuote.Price, symbol, err)
	}

	changeStr := strings.TrimSuffix(payload.GlobalQuote.ChangePercent, "%")
	change, err := decimal.NewFromString(changeStr)
	if err != nil {
		change = decimal.Zero
	}

	return price, change, nil
}
