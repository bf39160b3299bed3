package csv

import (
	"sort"

	"github.com/vietlabs/cryptotax/tax"
)

// ReportTimeLayout is the timestamp format used in generated reports.
const ReportTimeLayout = "2006-01-02 15:04:05"

// TaxReportHeaders are the columns of the per-transaction report consumed by
// the reporting collaborators.
var TaxReportHeaders = []string{
	"date", "type", "token", "amount", "value", "cost_basis",
	"profit_loss", "tax_amount", "tax_regime", "unmatched_amount", "note",
}

// TaxReportRow renders one engine result row.
type TaxReportRow struct {
	Result tax.ResultRow
}

func (r TaxReportRow) GetRowForCsv() []string {
	tx := r.Result.Transaction

	// an unmatched disposal is surfaced as an informational note, not an error
	note := ""
	if r.Result.UnmatchedAmount.IsPositive() {
		note = "disposal exceeded tracked inventory, recognized on the matched portion only"
	}

	return []string{
		tx.Timestamp.Format(ReportTimeLayout),
		string(tx.Kind),
		tx.Token,
		tx.Amount.String(),
		tx.TotalValueFiat.String(),
		r.Result.CostBasisFiat.String(),
		r.Result.ProfitLossFiat.String(),
		r.Result.TaxAmountFiat.String(),
		string(r.Result.Regime),
		r.Result.UnmatchedAmount.String(),
		note,
	}
}

// TaxReportRows wraps a full result set for rendering.
func TaxReportRows(results []tax.ResultRow) []CsvRow {
	rows := make([]CsvRow, 0, len(results))
	for _, result := range results {
		rows = append(rows, TaxReportRow{Result: result})
	}
	return rows
}

// PeriodReportHeaders are the columns of the per-period report.
var PeriodReportHeaders = []string{"period", "tax_amount", "profit_loss"}

type PeriodReportRow struct {
	Summary tax.PeriodSummary
}

func (r PeriodReportRow) GetRowForCsv() []string {
	return []string{
		r.Summary.PeriodKey,
		r.Summary.TaxAmountFiat.String(),
		r.Summary.ProfitLossFiat.String(),
	}
}

func PeriodReportRows(summaries []tax.PeriodSummary) []CsvRow {
	rows := make([]CsvRow, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, PeriodReportRow{Summary: summary})
	}
	return rows
}

// TokenReportHeaders are the columns of the per-token tax report.
var TokenReportHeaders = []string{"token", "tax_amount"}

type TokenReportRow struct {
	Token     string
	TaxAmount string
}

func (r TokenReportRow) GetRowForCsv() []string {
	return []string{r.Token, r.TaxAmount}
}

// TokenReportRows flattens the summary's token map into rows ordered by
// token so report output is reproducible.
func TokenReportRows(summary tax.Summary) []CsvRow {
	tokens := make([]string, 0, len(summary.TaxByToken))
	for token := range summary.TaxByToken {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	rows := make([]CsvRow, 0, len(tokens))
	for _, token := range tokens {
		rows = append(rows, TokenReportRow{
			Token:     token,
			TaxAmount: summary.TaxByToken[token].String(),
		})
	}
	return rows
}
