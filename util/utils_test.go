package util

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("1,234,567.89")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(1234567.89)))

	d, err = ParseDecimal("  0.5 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromFloat(0.5)))

	_, err = ParseDecimal("")
	assert.Error(t, err)

	_, err = ParseDecimal("abc")
	assert.Error(t, err)
}

func TestSplitAmountAsset(t *testing.T) {
	tests := []struct {
		in     string
		amount string
		asset  string
	}{
		{"0.5BTC", "0.5", "BTC"},
		{"32000USDT", "32000", "USDT"},
		{"1500", "1500", ""},
		{"", "", ""},
	}

	for _, tc := range tests {
		amount, asset := SplitAmountAsset(tc.in)
		assert.Equal(t, tc.amount, amount, tc.in)
		assert.Equal(t, tc.asset, asset, tc.in)
	}
}
