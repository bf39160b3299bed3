package price

import (
	"context"

	"github.com/shopspring/decimal"
)

// Service answers price questions for the ingestion collaborators. The tax
// engine itself never looks prices up; values are resolved to the reporting
// currency strictly before a calculation runs.
type Service interface {
	// TokenPriceVND returns the current price of one unit of token in VND.
	TokenPriceVND(ctx context.Context, token string) (decimal.Decimal, error)
	// UsdVndRate returns the USD to VND conversion rate.
	UsdVndRate(ctx context.Context) (decimal.Decimal, error)
}
