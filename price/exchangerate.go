package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vietlabs/cryptotax/config"
)

// ExchangeRateClient fetches the USD/VND rate from a free exchange rate API
// that returns {"rates": {"VND": 25432.1, ...}}. When the API is unreachable
// it falls back to the configured rate rather than failing an import.
type ExchangeRateClient struct {
	url        string
	fallback   decimal.Decimal
	httpClient *http.Client
}

func NewExchangeRateClient(url string, fallback decimal.Decimal) *ExchangeRateClient {
	return &ExchangeRateClient{
		url:        url,
		fallback:   fallback,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *ExchangeRateClient) UsdVndRate(ctx context.Context) (decimal.Decimal, error) {
	rate, err := c.fetch(ctx)
	if err != nil {
		config.Log.Warn("Falling back to the configured USD/VND rate", err)
		return c.fallback, nil
	}
	return rate, nil
}

func (c *ExchangeRateClient) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("exchange rate API returned status %d", resp.StatusCode)
	}

	var payload struct {
		Rates map[string]json.Number `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, err
	}

	raw, ok := payload.Rates["VND"]
	if !ok {
		return decimal.Zero, fmt.Errorf("exchange rate API response has no VND rate")
	}

	return decimal.NewFromString(raw.String())
}

// StaticRate is a RateSource pinned to one rate. Useful for tests and for
// users who want a specific declared rate on their filing.
type StaticRate struct {
	Rate decimal.Decimal
}

func (s StaticRate) UsdVndRate(_ context.Context) (decimal.Decimal, error) {
	return s.Rate, nil
}
