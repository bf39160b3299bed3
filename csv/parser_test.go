package csv

import (
	"sort"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietlabs/cryptotax/csv/parsers"
	"github.com/vietlabs/cryptotax/tax"
)

const binanceSample = `Date(UTC),Pair,Side,Price,Executed,Amount,Fee
2024-03-15 10:30:00,BTCUSDT,BUY,64000,0.5BTC,32000USDT,32USDT
2024-03-20 09:00:00,BTCUSDT,SELL,70000,0.25BTC,17500USDT,0.001BNB
`

const customSample = `date,type,token,amount,price,value,source,chain,wallet_address,exchange_name,tx_hash
2024-03-15 10:30:00,buy,BTC,0.5,800000000,400000000,exchange,,,binance,order-1
2024-04-01,staking_reward,ETH,0.1,75000000,7500000,wallet,ethereum,0xabc,,0xhash1
`

func TestParseBinance(t *testing.T) {
	opts := parsers.Options{UsdVndRate: decimal.NewFromInt(25000)}

	transactions, err := Parse(strings.NewReader(binanceSample), "binance", opts)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	buy := transactions[0]
	assert.Equal(t, tax.KindBuy, buy.Kind)
	assert.Equal(t, "BTC", buy.Token)
	assert.Equal(t, tax.OriginExchange, buy.Origin)
	assert.Equal(t, "binance", buy.ExchangeName)
	assert.True(t, buy.Amount.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, buy.TotalValueFiat.Equal(decimal.NewFromInt(800000000)), "32000 USDT at 25000, got %s", buy.TotalValueFiat)
	assert.True(t, buy.FeeFiat.Equal(decimal.NewFromInt(800000)), "32 USDT fee at 25000")

	sell := transactions[1]
	assert.Equal(t, tax.KindSell, sell.Kind)
	assert.True(t, sell.FeeFiat.IsZero(), "BNB denominated fees are not convertible")
}

func TestParseBinanceRequiresRate(t *testing.T) {
	_, err := Parse(strings.NewReader(binanceSample), "binance", parsers.Options{})
	assert.Error(t, err)
}

func TestParseCustom(t *testing.T) {
	transactions, err := Parse(strings.NewReader(customSample), "custom", parsers.Options{})
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	buy := transactions[0]
	assert.Equal(t, tax.KindBuy, buy.Kind)
	assert.Equal(t, tax.OriginExchange, buy.Origin)
	assert.True(t, buy.TotalValueFiat.Equal(decimal.NewFromInt(400000000)))
	assert.Equal(t, "order-1", buy.ExternalRef)

	reward := transactions[1]
	assert.Equal(t, tax.KindStakingReward, reward.Kind)
	assert.Equal(t, tax.OriginWallet, reward.Origin)
	assert.Equal(t, "0xabc", reward.WalletAddress)
	assert.True(t, reward.TotalValueFiat.Equal(decimal.NewFromInt(7500000)))
}

func TestParseCustomDerivesMissingValue(t *testing.T) {
	sample := `date,type,token,amount,price,source,exchange_name
2024-03-15,buy,BTC,2,1000,exchange,binance
`
	transactions, err := Parse(strings.NewReader(sample), "custom", parsers.Options{})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.True(t, transactions[0].TotalValueFiat.Equal(decimal.NewFromInt(2000)), "value falls back to amount*price")
}

func TestGetParserKeysIsStable(t *testing.T) {
	first := parsers.GetParserKeys()
	require.NotEmpty(t, first)
	assert.True(t, sort.StringsAreSorted(first))

	// map iteration order must never leak into the key list, anything derived
	// from it (defaults, help text) has to be identical on every call
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, parsers.GetParserKeys())
	}
}

func TestParseAutoDetectsFormat(t *testing.T) {
	opts := parsers.Options{UsdVndRate: decimal.NewFromInt(25000)}

	transactions, err := Parse(strings.NewReader(binanceSample), "", opts)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
	assert.Equal(t, "BTC", transactions[0].Token)

	transactions, err = Parse(strings.NewReader(customSample), "", parsers.Options{})
	require.NoError(t, err)
	assert.Len(t, transactions, 2)
}

func TestParseRejectsUnknownHeader(t *testing.T) {
	sample := "foo,bar\n1,2\n"

	_, err := Parse(strings.NewReader(sample), "", parsers.Options{})
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(sample), "custom", parsers.Options{})
	assert.Error(t, err)

	_, err = Parse(strings.NewReader(sample), "no-such-parser", parsers.Options{})
	assert.Error(t, err)
}

func TestParseAbortsOnInvalidRow(t *testing.T) {
	sample := `date,type,token,amount,price,value,source,exchange_name
2024-03-15,buy,BTC,-1,1000,1000,exchange,binance
`
	_, err := Parse(strings.NewReader(sample), "custom", parsers.Options{})
	require.Error(t, err, "a negative amount must fail validation")
}

func TestParseProvenanceDefaults(t *testing.T) {
	sample := `date,type,token,amount,price,value,source
2024-03-15,buy,BTC,1,1000,1000,wallet
`
	_, err := Parse(strings.NewReader(sample), "custom", parsers.Options{})
	require.Error(t, err, "wallet rows without an address anywhere must fail")

	transactions, err := Parse(strings.NewReader(sample), "custom", parsers.Options{WalletAddress: "0xdef"})
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "0xdef", transactions[0].WalletAddress)
}
