package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/vietlabs/cryptotax/config"
	"github.com/vietlabs/cryptotax/csv/parsers"
	"github.com/vietlabs/cryptotax/csv/parsers/binance"
	"github.com/vietlabs/cryptotax/csv/parsers/custom"
	"github.com/vietlabs/cryptotax/tax"
)

// Register new parsers by adding them to this list
var supportedParsers = []string{custom.ParserKey, binance.ParserKey}

func init() {
	parsers.RegisterParsers(supportedParsers)
}

func GetParser(parserKey string) parsers.Parser {
	switch parserKey {
	case binance.ParserKey:
		parser := binance.Parser{}
		return &parser
	case custom.ParserKey:
		parser := custom.Parser{}
		return &parser
	}
	return nil
}

// DetectParser finds the first registered parser whose expected columns all
// appear in the header row.
func DetectParser(header []string) parsers.Parser {
	for _, key := range supportedParsers {
		parser := GetParser(key)
		if parser.Matches(header) {
			return parser
		}
	}
	return nil
}

// ParseFile reads a transaction CSV file into validated transactions. An
// empty parserKey auto-detects the format from the header row.
func ParseFile(path string, parserKey string, opts parsers.Options) ([]tax.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		config.Log.Error("Error opening transaction file.", err)
		return nil, err
	}
	defer f.Close()

	return Parse(f, parserKey, opts)
}

// Parse reads transaction CSV content from a reader. See ParseFile.
func Parse(r io.Reader, parserKey string, opts parsers.Options) ([]tax.Transaction, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("transaction file is empty")
		}
		return nil, err
	}

	var parser parsers.Parser
	if parserKey == "" {
		parser = DetectParser(header)
		if parser == nil {
			return nil, errors.New("unable to detect the transaction file format from its header row")
		}
		config.Log.Infof("Detected transaction file format %q", parser.Key())
	} else {
		parser = GetParser(parserKey)
		if parser == nil {
			return nil, errors.New("invalid parser key")
		}
		if !parser.Matches(header) {
			return nil, fmt.Errorf("file header does not look like the %q format", parserKey)
		}
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	transactions, err := parser.Parse(header, rows, opts)
	if err != nil {
		config.Log.Error("Error parsing transaction file.", err)
		return nil, err
	}

	config.Log.Infof("Parsed %d transactions", len(transactions))
	return transactions, nil
}
