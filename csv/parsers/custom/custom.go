package custom

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vietlabs/cryptotax/csv/parsers"
	"github.com/vietlabs/cryptotax/tax"
	"github.com/vietlabs/cryptotax/util"
)

const (
	// ParserKey is the key used to identify this parser
	ParserKey = "custom"
)

// timestamps in hand-maintained files come with or without a time part
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Parser reads the documented custom format, one row per normalized
// transaction with values already denominated in VND:
// date, type, token, amount, price, value, source, chain, wallet_address,
// exchange_name, tx_hash, fee. Only the first six are mandatory.
type Parser struct{}

func (p *Parser) Key() string {
	return ParserKey
}

func (p *Parser) Matches(header []string) bool {
	idx := parsers.HeaderIndex(header)
	for _, required := range []string{"date", "type", "token", "amount"} {
		if _, ok := idx[required]; !ok {
			return false
		}
	}
	return true
}

func (p *Parser) Parse(header []string, rows [][]string, opts parsers.Options) ([]tax.Transaction, error) {
	idx := parsers.HeaderIndex(header)

	transactions := make([]tax.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := p.parseRow(row, idx, opts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func (p *Parser) parseRow(row []string, idx map[string]int, opts parsers.Options) (tax.Transaction, error) {
	timestamp, err := parseTime(parsers.Field(row, idx, "date"))
	if err != nil {
		return tax.Transaction{}, err
	}

	amount, err := util.ParseDecimal(parsers.Field(row, idx, "amount"))
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("amount column: %w", err)
	}

	price := decimal.Zero
	if s := strings.TrimSpace(parsers.Field(row, idx, "price")); s != "" {
		if price, err = util.ParseDecimal(s); err != nil {
			return tax.Transaction{}, fmt.Errorf("price column: %w", err)
		}
	}

	value := decimal.Zero
	if s := strings.TrimSpace(parsers.Field(row, idx, "value")); s != "" {
		if value, err = util.ParseDecimal(s); err != nil {
			return tax.Transaction{}, fmt.Errorf("value column: %w", err)
		}
	} else {
		value = amount.Mul(price)
	}

	fee := decimal.Zero
	if s := strings.TrimSpace(parsers.Field(row, idx, "fee")); s != "" {
		if fee, err = util.ParseDecimal(s); err != nil {
			return tax.Transaction{}, fmt.Errorf("fee column: %w", err)
		}
	}

	origin := tax.Origin(strings.ToLower(strings.TrimSpace(parsers.Field(row, idx, "source"))))
	walletAddress := strings.TrimSpace(parsers.Field(row, idx, "wallet_address"))
	exchangeName := strings.TrimSpace(parsers.Field(row, idx, "exchange_name"))
	if walletAddress == "" {
		walletAddress = opts.WalletAddress
	}
	if exchangeName == "" {
		exchangeName = opts.ExchangeName
	}
	if origin == "" {
		// infer from whichever provenance is present
		if walletAddress != "" {
			origin = tax.OriginWallet
		} else if exchangeName != "" {
			origin = tax.OriginExchange
		}
	}

	return tax.NewTransaction(tax.Transaction{
		Timestamp:      timestamp,
		Kind:           tax.Kind(strings.ToLower(strings.TrimSpace(parsers.Field(row, idx, "type")))),
		Token:          strings.ToUpper(strings.TrimSpace(parsers.Field(row, idx, "token"))),
		Amount:         amount,
		UnitPriceFiat:  price,
		TotalValueFiat: value,
		Origin:         origin,
		WalletAddress:  walletAddress,
		ExchangeName:   exchangeName,
		Chain:          strings.TrimSpace(parsers.Field(row, idx, "chain")),
		FeeFiat:        fee,
		ExternalRef:    strings.TrimSpace(parsers.Field(row, idx, "tx_hash")),
	})
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q", s)
}
