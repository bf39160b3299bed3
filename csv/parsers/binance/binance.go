package binance

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
	ParserKey = "binance"

	// TimeLayout is the timestamp format in Binance trade exports
	TimeLayout = "2006-01-02 15:04:05"

	defaultExchangeName = "binance"
)

// quote currencies treated as dollar denominated; their values are converted
// to VND with the import's USD/VND rate
var usdQuotes = map[string]bool{
	"USDT":  true,
	"USDC":  true,
	"BUSD":  true,
	"USD":   true,
	"FDUSD": true,
}

// Parser reads the Binance spot trade history export:
// Date(UTC), Pair, Side, Price, Executed, Amount, Fee.
// Executed is the base asset quantity ("0.5BTC"), Amount the quote total
// ("30000USDT").
type Parser struct{}

func (p *Parser) Key() string {
	return ParserKey
}

func (p *Parser) Matches(header []string) bool {
	idx := parsers.HeaderIndex(header)
	for _, required := range []string{"date(utc)", "pair", "side", "price", "executed"} {
		if _, ok := idx[required]; !ok {
			return false
		}
	}
	return true
}

func (p *Parser) Parse(header []string, rows [][]string, opts parsers.Options) ([]tax.Transaction, error) {
	idx := parsers.HeaderIndex(header)

	exchangeName := opts.ExchangeName
	if exchangeName == "" {
		exchangeName = defaultExchangeName
	}
	if !opts.UsdVndRate.IsPositive() {
		return nil, fmt.Errorf("a positive USD/VND rate is required to import %s files", ParserKey)
	}

	transactions := make([]tax.Transaction, 0, len(rows))
	for i, row := range rows {
		tx, err := p.parseRow(row, idx, exchangeName, opts.UsdVndRate)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func (p *Parser) parseRow(row []string, idx map[string]int, exchangeName string, usdVnd decimal.Decimal) (tax.Transaction, error) {
	timestamp, err := time.Parse(TimeLayout, strings.TrimSpace(parsers.Field(row, idx, "date(utc)")))
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("unable to parse trade time: %w", err)
	}

	var kind tax.Kind
	switch strings.ToUpper(strings.TrimSpace(parsers.Field(row, idx, "side"))) {
	case "BUY":
		kind = tax.KindBuy
	case "SELL":
		kind = tax.KindSell
	default:
		return tax.Transaction{}, fmt.Errorf("unknown trade side %q", parsers.Field(row, idx, "side"))
	}

	executedStr, baseAsset := util.SplitAmountAsset(parsers.Field(row, idx, "executed"))
	amount, err := util.ParseDecimal(executedStr)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("executed column: %w", err)
	}

	totalStr, quoteAsset := util.SplitAmountAsset(parsers.Field(row, idx, "amount"))
	total, err := util.ParseDecimal(totalStr)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("amount column: %w", err)
	}

	quoteAsset = strings.ToUpper(quoteAsset)
	if !usdQuotes[quoteAsset] {
		return tax.Transaction{}, fmt.Errorf("unsupported quote currency %q, only dollar quoted pairs can be converted", quoteAsset)
	}

	if baseAsset == "" {
		// older exports leave Executed unsuffixed; derive the base from the pair
		pair := strings.ToUpper(strings.TrimSpace(parsers.Field(row, idx, "pair")))
		baseAsset = strings.TrimSuffix(pair, quoteAsset)
	}
	if baseAsset == "" {
		return tax.Transaction{}, fmt.Errorf("unable to determine the traded asset")
	}

	totalVnd := total.Mul(usdVnd)
	unitPriceVnd := decimal.Zero
	if amount.IsPositive() {
		unitPriceVnd = totalVnd.Div(amount)
	}

	feeVnd := decimal.Zero
	if feeStr, feeAsset := util.SplitAmountAsset(parsers.Field(row, idx, "fee")); feeStr != "" {
		// fees paid in other assets (BNB discounts) are not convertible here
		if strings.ToUpper(feeAsset) == quoteAsset {
			if fee, err := util.ParseDecimal(feeStr); err == nil {
				feeVnd = fee.Mul(usdVnd)
			}
		}
	}

	return tax.NewTransaction(tax.Transaction{
		Timestamp:      timestamp,
		Kind:           kind,
		Token:          strings.ToUpper(baseAsset),
		Amount:         amount,
		UnitPriceFiat:  unitPriceVnd,
		TotalValueFiat: totalVnd,
		Origin:         tax.OriginExchange,
		ExchangeName:   exchangeName,
		FeeFiat:        feeVnd,
	})
}
