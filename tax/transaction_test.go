package tax

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validWalletTx() Transaction {
	return Transaction{
		Timestamp:      time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Kind:           KindBuy,
		Token:          "BTC",
		Amount:         decimal.NewFromInt(1),
		UnitPriceFiat:  decimal.NewFromInt(500),
		TotalValueFiat: decimal.NewFromInt(500),
		Origin:         OriginWallet,
		WalletAddress:  "0xdeadbeef",
		Chain:          "ethereum",
	}
}

func TestNewTransactionValid(t *testing.T) {
	tx, err := NewTransaction(validWalletTx())
	require.NoError(t, err)
	assert.Equal(t, "BTC", tx.Token)
}

func TestNewTransactionRejectsNonPositiveAmount(t *testing.T) {
	tx := validWalletTx()
	tx.Amount = decimal.Zero
	_, err := NewTransaction(tx)
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "amount", vErr.Field)

	tx.Amount = decimal.NewFromInt(-1)
	_, err = NewTransaction(tx)
	assert.Error(t, err)
}

func TestNewTransactionRequiresProvenance(t *testing.T) {
	tx := validWalletTx()
	tx.WalletAddress = ""
	_, err := NewTransaction(tx)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "wallet_address", vErr.Field)

	tx = validWalletTx()
	tx.Origin = OriginExchange
	tx.WalletAddress = ""
	_, err = NewTransaction(tx)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "exchange_name", vErr.Field)

	tx.ExchangeName = "binance"
	_, err = NewTransaction(tx)
	assert.NoError(t, err)
}

func TestNewTransactionRejectsUnknownKindAndOrigin(t *testing.T) {
	tx := validWalletTx()
	tx.Kind = Kind("margin_call")
	_, err := NewTransaction(tx)
	assert.Error(t, err)

	tx = validWalletTx()
	tx.Origin = Origin("cold_storage")
	_, err = NewTransaction(tx)
	assert.Error(t, err)
}

func TestNewTransactionRejectsZeroTimestamp(t *testing.T) {
	tx := validWalletTx()
	tx.Timestamp = time.Time{}
	_, err := NewTransaction(tx)
	assert.Error(t, err)
}
