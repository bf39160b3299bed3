package csv

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"

	"github.com/vietlabs/cryptotax/config"
)

// CsvRow is one renderable report row.
type CsvRow interface {
	GetRowForCsv() []string
}

// Create the CSV and write it to byte buffer
func ToCsv(rows []CsvRow, headers []string) (bytes.Buffer, error) {
	var b bytes.Buffer
	w := csv.NewWriter(&b)

	if err := w.Write(headers); err != nil {
		config.Log.Error("Error writing header to csv", err)
		return b, err
	}

	for _, row := range rows {
		if err := w.Write(row.GetRowForCsv()); err != nil {
			config.Log.Error("Error writing row to csv", err)
			return b, err
		}
	}

	// Write any buffered data to the underlying writer.
	w.Flush()

	if err := w.Error(); err != nil {
		config.Log.Error("Error flushing csv", err)
		return b, err
	}

	return b, nil
}

// WriteFile renders rows to a CSV file under dir.
func WriteFile(dir, name string, rows []CsvRow, headers []string) error {
	buffer, err := ToCsv(rows, headers)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		config.Log.Error("Error creating report directory", err)
		return err
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		config.Log.Error("Error writing csv file", err)
		return err
	}

	config.Log.Infof("Wrote %s", path)
	return nil
}
