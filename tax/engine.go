package tax

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vietlabs/cryptotax/config"
)

// Rates holds the regime rates the engine applies, as fractions of the taxed
// value. Rates are injected at construction so jurisdictions can be swapped
// without touching the engine.
type Rates struct {
	Transfer    decimal.Decimal
	OtherIncome decimal.Decimal
}

// DefaultRates returns the current Vietnamese rates: 0.1% on transfer value
// and 10% on other income.
func DefaultRates() Rates {
	return Rates{
		Transfer:    decimal.NewFromFloat(0.001),
		OtherIncome: decimal.NewFromFloat(0.10),
	}
}

// ResultRow is the engine's output for one processed transaction. The source
// transaction is carried by value; the engine never mutates its input.
type ResultRow struct {
	Transaction    Transaction
	CostBasisFiat  decimal.Decimal
	ProfitLossFiat decimal.Decimal
	TaxAmountFiat  decimal.Decimal
	Regime         Regime

	// UnmatchedAmount is the portion of a disposal that could not be matched
	// against recorded inventory. Reporting surfaces it as an informational
	// note, never a failure.
	UnmatchedAmount decimal.Decimal
}

// Engine orchestrates classification and FIFO lot matching over a
// transaction batch. An Engine is cheap to construct and safe to reuse:
// every Calculate call builds its own ledger, so concurrent calculations
// over independent batches do not share state.
type Engine struct {
	rates Rates
}

func NewEngine(rates Rates) *Engine {
	return &Engine{rates: rates}
}

// Calculate runs the full batch: filter to taxable kinds, sort
// chronologically, replay acquisitions and disposals through a fresh ledger,
// and emit one result row per transaction in processing order.
//
// The engine raises no domain errors. Malformed transactions are rejected at
// construction time, arithmetic is always well-defined for valid inputs, and
// an empty batch yields an empty result set.
func (e *Engine) Calculate(transactions []Transaction) []ResultRow {
	taxable := make([]Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if Taxable(tx.Kind) {
			taxable = append(taxable, tx)
		}
	}

	// The sort must be stable: transactions sharing a timestamp keep their
	// input order, which is what makes FIFO matching deterministic.
	sort.SliceStable(taxable, func(i, j int) bool {
		return taxable[i].Timestamp.Before(taxable[j].Timestamp)
	})

	ledger := NewLotLedger()
	rows := make([]ResultRow, 0, len(taxable))
	for _, tx := range taxable {
		rows = append(rows, e.process(ledger, tx))
	}
	return rows
}

func (e *Engine) process(ledger *LotLedger, tx Transaction) ResultRow {
	switch tx.Kind {
	case KindBuy:
		// A purchase establishes basis for a later disposal and generates
		// no immediate liability.
		ledger.RecordAcquisition(tx.Token, tx.Amount, tx.UnitPriceFiat, tx.Timestamp)
		return ResultRow{
			Transaction:     tx,
			CostBasisFiat:   tx.TotalValueFiat,
			ProfitLossFiat:  decimal.Zero,
			TaxAmountFiat:   decimal.Zero,
			Regime:          RegimeTransfer,
			UnmatchedAmount: decimal.Zero,
		}

	case KindSell:
		costBasis, unmatched := ledger.Consume(tx.Token, tx.Amount)
		value := tx.TotalValueFiat
		if unmatched.IsPositive() {
			// Recognize value only for the matched fraction. The returned
			// cost basis already covers just the matched units, so it is
			// not scaled again.
			matched := tx.Amount.Sub(unmatched)
			value = tx.TotalValueFiat.Mul(matched).Div(tx.Amount)
			config.Log.Warnf("sell of %s %s exceeds tracked inventory by %s, recognizing matched portion only",
				tx.Amount, tx.Token, unmatched)
		}
		return ResultRow{
			Transaction:     tx,
			CostBasisFiat:   costBasis,
			ProfitLossFiat:  value.Sub(costBasis),
			TaxAmountFiat:   value.Mul(e.rates.Transfer),
			Regime:          RegimeTransfer,
			UnmatchedAmount: unmatched,
		}

	case KindSwap:
		// Swaps are treated as a single-leg disposal with zero basis and
		// zero recognized profit. Decomposing a swap into a disposal of the
		// source token plus an acquisition of the target token would change
		// tax output and is deliberately not done here.
		return ResultRow{
			Transaction:     tx,
			CostBasisFiat:   decimal.Zero,
			ProfitLossFiat:  decimal.Zero,
			TaxAmountFiat:   tx.TotalValueFiat.Mul(e.rates.Transfer),
			Regime:          RegimeTransfer,
			UnmatchedAmount: decimal.Zero,
		}

	default:
		// staking rewards, airdrops, farming: the entire receipt is taxable
		// gain with no cost basis and no ledger interaction
		return ResultRow{
			Transaction:     tx,
			CostBasisFiat:   decimal.Zero,
			ProfitLossFiat:  tx.TotalValueFiat,
			TaxAmountFiat:   tx.TotalValueFiat.Mul(e.rates.OtherIncome),
			Regime:          RegimeOtherIncome,
			UnmatchedAmount: decimal.Zero,
		}
	}
}
