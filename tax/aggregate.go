package tax

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Granularity selects the period bucketing for ByPeriod.
type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// Summary is the roll-up of a full result set.
type Summary struct {
	TransactionCount    int
	TransferTaxFiat     decimal.Decimal
	OtherIncomeTaxFiat  decimal.Decimal
	TotalTaxFiat        decimal.Decimal
	TotalProfitLossFiat decimal.Decimal
	TaxByToken          map[string]decimal.Decimal
}

// PeriodSummary is the tax and profit/loss total for one calendar period.
type PeriodSummary struct {
	PeriodKey      string
	TaxAmountFiat  decimal.Decimal
	ProfitLossFiat decimal.Decimal
}

// Summarize rolls a completed result set into totals. It is read-only over
// its input; an empty result set yields a zeroed summary with an empty token
// map.
func Summarize(rows []ResultRow) Summary {
	s := Summary{
		TransactionCount:    len(rows),
		TransferTaxFiat:     decimal.Zero,
		OtherIncomeTaxFiat:  decimal.Zero,
		TotalTaxFiat:        decimal.Zero,
		TotalProfitLossFiat: decimal.Zero,
		TaxByToken:          make(map[string]decimal.Decimal),
	}

	for _, row := range rows {
		switch row.Regime {
		case RegimeOtherIncome:
			s.OtherIncomeTaxFiat = s.OtherIncomeTaxFiat.Add(row.TaxAmountFiat)
		default:
			s.TransferTaxFiat = s.TransferTaxFiat.Add(row.TaxAmountFiat)
		}
		s.TotalProfitLossFiat = s.TotalProfitLossFiat.Add(row.ProfitLossFiat)

		token := row.Transaction.Token
		if existing, ok := s.TaxByToken[token]; ok {
			s.TaxByToken[token] = existing.Add(row.TaxAmountFiat)
		} else {
			s.TaxByToken[token] = row.TaxAmountFiat
		}
	}
	s.TotalTaxFiat = s.TransferTaxFiat.Add(s.OtherIncomeTaxFiat)

	return s
}

// PeriodKey derives the bucket key for a timestamp: "2006-01" for months,
// "2006-Q1" for quarters and "2006" for years. Keys are zero padded so
// lexicographic order equals chronological order.
func PeriodKey(t time.Time, granularity Granularity) (string, error) {
	switch granularity {
	case GranularityMonth:
		return t.Format("2006-01"), nil
	case GranularityQuarter:
		quarter := (int(t.Month())-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", t.Year(), quarter), nil
	case GranularityYear:
		return t.Format("2006"), nil
	default:
		return "", fmt.Errorf("unknown granularity %q", granularity)
	}
}

// ByPeriod groups a result set by calendar period and sums tax and
// profit/loss per group, ordered ascending by period key.
func ByPeriod(rows []ResultRow, granularity Granularity) ([]PeriodSummary, error) {
	buckets := make(map[string]*PeriodSummary)
	for _, row := range rows {
		key, err := PeriodKey(row.Transaction.Timestamp, granularity)
		if err != nil {
			return nil, err
		}
		bucket, ok := buckets[key]
		if !ok {
			bucket = &PeriodSummary{
				PeriodKey:      key,
				TaxAmountFiat:  decimal.Zero,
				ProfitLossFiat: decimal.Zero,
			}
			buckets[key] = bucket
		}
		bucket.TaxAmountFiat = bucket.TaxAmountFiat.Add(row.TaxAmountFiat)
		bucket.ProfitLossFiat = bucket.ProfitLossFiat.Add(row.ProfitLossFiat)
	}

	summaries := make([]PeriodSummary, 0, len(buckets))
	for _, bucket := range buckets {
		summaries = append(summaries, *bucket)
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].PeriodKey < summaries[j].PeriodKey
	})

	return summaries, nil
}
