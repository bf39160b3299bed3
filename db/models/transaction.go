package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is the persisted form of a normalized transaction.
// Monetary columns use wide decimals so token quantities with many fractional
// digits survive a round trip.
type TransactionRecord struct {
	ID             uint            `gorm:"primaryKey"`
	Timestamp      time.Time       `gorm:"index:idx_token_timestamp,priority:2;not null"`
	Kind           string          `gorm:"index;not null"`
	Token          string          `gorm:"index:idx_token_timestamp,priority:1;not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(38,18);not null"`
	UnitPriceFiat  decimal.Decimal `gorm:"type:decimal(38,18)"`
	TotalValueFiat decimal.Decimal `gorm:"type:decimal(38,18)"`
	Origin         string
	WalletAddress  string `gorm:"index"`
	ExchangeName   string
	Chain          string
	FeeFiat        decimal.Decimal `gorm:"type:decimal(38,18)"`
	ExternalRef    string          `gorm:"uniqueIndex:idx_external_ref,where:external_ref <> ''"`
	CreatedAt      time.Time
}
