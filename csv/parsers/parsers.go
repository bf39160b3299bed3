package parsers

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/vietlabs/cryptotax/tax"
)

// Parsers should be used to check in your parsers.
var Parsers map[string]bool

func init() {
	Parsers = make(map[string]bool)
}

func RegisterParsers(keys []string) {
	for _, key := range keys {
		Parsers[key] = true
	}
}

// GetParserKeys returns the registered parser keys in sorted order, so help
// text and defaults derived from the list are stable across invocations.
func GetParserKeys() []string {
	var parserKeys []string

	for i := range Parsers {
		parserKeys = append(parserKeys, i)
	}
	sort.Strings(parserKeys)

	return parserKeys
}

// Options carry per-import defaults the file itself cannot know: the
// provenance to stamp on rows without their own, and the USD/VND rate for
// formats whose values are quoted in dollars.
type Options struct {
	WalletAddress string
	ExchangeName  string
	UsdVndRate    decimal.Decimal
}

// Parser turns the rows of one known CSV export format into normalized
// transactions ready for validation and storage.
type Parser interface {
	Key() string
	// Matches reports whether a header row looks like this format, used for
	// format auto-detection.
	Matches(header []string) bool
	// Parse converts all data rows. A row that fails validation aborts the
	// import; partial imports silently skew tax output.
	Parse(header []string, rows [][]string, opts Options) ([]tax.Transaction, error)
}

// HeaderIndex maps lowercased header names to their column positions.
func HeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	return idx
}

// Field pulls a named column out of a row, tolerating short rows.
func Field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func normalizeHeader(h string) string {
	out := make([]rune, 0, len(h))
	for _, r := range h {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		if r == ' ' || r == '\t' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
