package tax

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies the economic nature of a transaction.
type Kind string

const (
	KindBuy           Kind = "buy"
	KindSell          Kind = "sell"
	KindSwap          Kind = "swap"
	KindTransferIn    Kind = "transfer_in"
	KindTransferOut   Kind = "transfer_out"
	KindStakingReward Kind = "staking_reward"
	KindAirdrop       Kind = "airdrop"
	KindFarming       Kind = "farming"
	KindDeposit       Kind = "deposit"
	KindWithdrawal    Kind = "withdrawal"
)

var validKinds = map[Kind]bool{
	KindBuy:           true,
	KindSell:          true,
	KindSwap:          true,
	KindTransferIn:    true,
	KindTransferOut:   true,
	KindStakingReward: true,
	KindAirdrop:       true,
	KindFarming:       true,
	KindDeposit:       true,
	KindWithdrawal:    true,
}

// Origin identifies where a transaction was observed.
type Origin string

const (
	OriginWallet   Origin = "wallet"
	OriginExchange Origin = "exchange"
)

// ValidationError is returned when a transaction violates a construction
// invariant. The engine never sees transactions that fail validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid transaction: %s %s", e.Field, e.Reason)
}

// Transaction is one normalized economic event. All fiat fields are
// denominated in the reporting currency. TotalValueFiat is the authoritative
// value for tax math; it need not equal Amount*UnitPriceFiat exactly for
// swaps and partial fills.
type Transaction struct {
	Timestamp      time.Time
	Kind           Kind
	Token          string
	Amount         decimal.Decimal
	UnitPriceFiat  decimal.Decimal
	TotalValueFiat decimal.Decimal
	Origin         Origin
	WalletAddress  string
	ExchangeName   string
	Chain          string
	FeeFiat        decimal.Decimal
	ExternalRef    string
}

// NewTransaction validates and builds a Transaction. Callers that already
// hold a Transaction literal can run the same checks through Validate.
func NewTransaction(tx Transaction) (Transaction, error) {
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// Validate checks the construction invariants: a known kind, a positive
// amount, and the provenance string matching the origin.
func (tx Transaction) Validate() error {
	if !validKinds[tx.Kind] {
		return &ValidationError{Field: "kind", Reason: fmt.Sprintf("%q is not a known transaction kind", tx.Kind)}
	}
	if tx.Token == "" {
		return &ValidationError{Field: "token", Reason: "must be set"}
	}
	if !tx.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if tx.Timestamp.IsZero() {
		return &ValidationError{Field: "timestamp", Reason: "must be set"}
	}
	switch tx.Origin {
	case OriginWallet:
		if tx.WalletAddress == "" {
			return &ValidationError{Field: "wallet_address", Reason: "is required for wallet transactions"}
		}
	case OriginExchange:
		if tx.ExchangeName == "" {
			return &ValidationError{Field: "exchange_name", Reason: "is required for exchange transactions"}
		}
	default:
		return &ValidationError{Field: "origin", Reason: fmt.Sprintf("%q is not a known origin", tx.Origin)}
	}
	return nil
}
