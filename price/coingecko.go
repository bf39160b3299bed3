package price

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vietlabs/cryptotax/config"
)

// symbol -> CoinGecko coin id for the assets the importers commonly see.
// Anything not listed falls back to the lowercased symbol, which matches for
// many smaller coins.
var coingeckoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"BNB":   "binancecoin",
	"SOL":   "solana",
	"USDT":  "tether",
	"USDC":  "usd-coin",
	"MATIC": "matic-network",
	"ADA":   "cardano",
	"XRP":   "ripple",
	"DOGE":  "dogecoin",
}

// CoinGecko resolves token prices through the CoinGecko simple price API and
// converts them to VND through a rate source.
type CoinGecko struct {
	baseURL    string
	apiKey     string
	rateSource RateSource
	httpClient *http.Client
}

// RateSource supplies the USD to VND conversion rate.
type RateSource interface {
	UsdVndRate(ctx context.Context) (decimal.Decimal, error)
}

func NewCoinGecko(baseURL, apiKey string, rateSource RateSource) *CoinGecko {
	return &CoinGecko{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		rateSource: rateSource,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func coinID(token string) string {
	if id, ok := coingeckoIDs[strings.ToUpper(token)]; ok {
		return id
	}
	return strings.ToLower(token)
}

func (c *CoinGecko) TokenPriceVND(ctx context.Context, token string) (decimal.Decimal, error) {
	usd, err := c.tokenPriceUSD(ctx, token)
	if err != nil {
		return decimal.Zero, err
	}

	rate, err := c.rateSource.UsdVndRate(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return usd.Mul(rate), nil
}

func (c *CoinGecko) UsdVndRate(ctx context.Context) (decimal.Decimal, error) {
	return c.rateSource.UsdVndRate(ctx)
}

func (c *CoinGecko) tokenPriceUSD(ctx context.Context, token string) (decimal.Decimal, error) {
	id := coinID(token)

	query := url.Values{}
	query.Set("ids", id)
	query.Set("vs_currencies", "usd")
	endpoint := fmt.Sprintf("%s/simple/price?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, err
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		config.Log.Error("Error calling CoinGecko.", err)
		return decimal.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("coingecko returned status %d for %s", resp.StatusCode, id)
	}

	// {"bitcoin": {"usd": 64000.12}}
	var payload map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, err
	}

	raw, ok := payload[id]["usd"]
	if !ok {
		return decimal.Zero, fmt.Errorf("coingecko has no USD price for %s", id)
	}

	return decimal.NewFromString(raw.String())
}
