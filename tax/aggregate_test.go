package tax

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodKey(t *testing.T) {
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	month, err := PeriodKey(at, GranularityMonth)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", month)

	quarter, err := PeriodKey(at, GranularityQuarter)
	require.NoError(t, err)
	assert.Equal(t, "2024-Q1", quarter)

	year, err := PeriodKey(at, GranularityYear)
	require.NoError(t, err)
	assert.Equal(t, "2024", year)

	_, err = PeriodKey(at, Granularity("week"))
	assert.Error(t, err)
}

func TestPeriodKeyQuarterBoundaries(t *testing.T) {
	tests := []struct {
		month    time.Month
		expected string
	}{
		{time.January, "2024-Q1"},
		{time.March, "2024-Q1"},
		{time.April, "2024-Q2"},
		{time.June, "2024-Q2"},
		{time.July, "2024-Q3"},
		{time.October, "2024-Q4"},
		{time.December, "2024-Q4"},
	}

	for _, tc := range tests {
		key, err := PeriodKey(time.Date(2024, tc.month, 1, 0, 0, 0, 0, time.UTC), GranularityQuarter)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, key, "month %s", tc.month)
	}
}

func TestSummarizeTotals(t *testing.T) {
	engine := NewEngine(DefaultRates())
	rows := engine.Calculate([]Transaction{
		mkTx(t, KindBuy, "BTC", 1, "1", "500", "500"),
		mkTx(t, KindSell, "BTC", 3, "0.5", "600", "300"),
		mkTx(t, KindStakingReward, "ETH", 5, "0.1", "500", "50"),
		mkTx(t, KindAirdrop, "ETH", 6, "10", "2", "20"),
	})

	summary := Summarize(rows)

	assert.Equal(t, 4, summary.TransactionCount)
	assert.True(t, summary.TransferTaxFiat.Equal(dec("0.3")))
	assert.True(t, summary.OtherIncomeTaxFiat.Equal(dec("7")))
	assert.True(t, summary.TotalTaxFiat.Equal(summary.TransferTaxFiat.Add(summary.OtherIncomeTaxFiat)),
		"the grand total must always equal the sum of the two regimes")
	assert.True(t, summary.TotalProfitLossFiat.Equal(dec("120")))

	require.Len(t, summary.TaxByToken, 2)
	assert.True(t, summary.TaxByToken["BTC"].Equal(dec("0.3")))
	assert.True(t, summary.TaxByToken["ETH"].Equal(dec("7")))
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.TransactionCount)
	assert.True(t, summary.TransferTaxFiat.IsZero())
	assert.True(t, summary.OtherIncomeTaxFiat.IsZero())
	assert.True(t, summary.TotalTaxFiat.IsZero())
	assert.True(t, summary.TotalProfitLossFiat.IsZero())
	assert.NotNil(t, summary.TaxByToken)
	assert.Empty(t, summary.TaxByToken)
}

func TestByPeriodGroupsAndOrders(t *testing.T) {
	engine := NewEngine(DefaultRates())

	buyJan := mkTxOn(t, KindBuy, "BTC", 2023, time.December, "1", "400", "400")
	sellMar := mkTx(t, KindSell, "BTC", 15, "0.5", "600", "300")
	rewardMar := mkTx(t, KindStakingReward, "ETH", 20, "0.1", "500", "50")

	rows := engine.Calculate([]Transaction{sellMar, rewardMar, buyJan})

	byMonth, err := ByPeriod(rows, GranularityMonth)
	require.NoError(t, err)
	require.Len(t, byMonth, 2)
	assert.Equal(t, "2023-12", byMonth[0].PeriodKey)
	assert.Equal(t, "2024-03", byMonth[1].PeriodKey)
	assert.True(t, byMonth[1].TaxAmountFiat.Equal(dec("5.3")))
	assert.True(t, byMonth[1].ProfitLossFiat.Equal(dec("150")), "100 sell gain plus 50 reward")

	byYear, err := ByPeriod(rows, GranularityYear)
	require.NoError(t, err)
	require.Len(t, byYear, 2)
	assert.Equal(t, "2023", byYear[0].PeriodKey)
	assert.Equal(t, "2024", byYear[1].PeriodKey)
}

func TestByPeriodEmpty(t *testing.T) {
	summaries, err := ByPeriod(nil, GranularityMonth)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func mkTxOn(t *testing.T, kind Kind, token string, year int, month time.Month, amount, unitPrice, totalValue string) Transaction {
	t.Helper()
	tx, err := NewTransaction(Transaction{
		Timestamp:      time.Date(year, month, 10, 0, 0, 0, 0, time.UTC),
		Kind:           kind,
		Token:          token,
		Amount:         dec(amount),
		UnitPriceFiat:  dec(unitPrice),
		TotalValueFiat: dec(totalValue),
		Origin:         OriginExchange,
		ExchangeName:   "binance",
	})
	require.NoError(t, err)
	return tx
}
