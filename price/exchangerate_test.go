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

func TestUsdVndRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates": {"VND": 25432.1, "EUR": 0.92}}`)
	}))
	defer server.Close()

	client := NewExchangeRateClient(server.URL, decimal.NewFromInt(25000))

	rate, err := client.UsdVndRate(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(25432.1)))
}

func TestUsdVndRateFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewExchangeRateClient(server.URL, decimal.NewFromInt(25000))

	rate, err := client.UsdVndRate(context.Background())
	require.NoError(t, err, "an unreachable API falls back instead of failing")
	assert.True(t, rate.Equal(decimal.NewFromInt(25000)))
}

func TestUsdVndRateMissingCurrency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"rates": {"EUR": 0.92}}`)
	}))
	defer server.Close()

	client := NewExchangeRateClient(server.URL, decimal.NewFromFloat(24850.5))

	rate, err := client.UsdVndRate(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(24850.5)), "missing VND entry uses the fallback")
}
