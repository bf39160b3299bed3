package price

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPriceVND(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/simple/price", r.URL.Path)
		require.Equal(t, "bitcoin", r.URL.Query().Get("ids"))
		require.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		fmt.Fprint(w, `{"bitcoin": {"usd": 64000}}`)
	}))
	defer server.Close()

	client := NewCoinGecko(server.URL, "", StaticRate{Rate: decimal.NewFromInt(25000)})

	vnd, err := client.TokenPriceVND(context.Background(), "BTC")
	require.NoError(t, err)
	assert.True(t, vnd.Equal(decimal.NewFromInt(1600000000)), "64000 USD at 25000 VND/USD, got %s", vnd)
}

func TestTokenPriceVNDUnknownToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	client := NewCoinGecko(server.URL, "", StaticRate{Rate: decimal.NewFromInt(25000)})

	_, err := client.TokenPriceVND(context.Background(), "NOSUCH")
	assert.Error(t, err)
}

func TestTokenPriceVNDUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCoinGecko(server.URL, "", StaticRate{Rate: decimal.NewFromInt(25000)})

	_, err := client.TokenPriceVND(context.Background(), "BTC")
	assert.Error(t, err)
}
