package db

import (
	"time"

	"github.com/vietlabs/cryptotax/config"
	"github.com/vietlabs/cryptotax/db/models"
	"github.com/vietlabs/cryptotax/tax"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordFromTransaction maps a validated transaction onto its persisted form.
func RecordFromTransaction(tx tax.Transaction) models.TransactionRecord {
	return models.TransactionRecord{
		Timestamp:      tx.Timestamp,
		Kind:           string(tx.Kind),
		Token:          tx.Token,
		Amount:         tx.Amount,
		UnitPriceFiat:  tx.UnitPriceFiat,
		TotalValueFiat: tx.TotalValueFiat,
		Origin:         string(tx.Origin),
		WalletAddress:  tx.WalletAddress,
		ExchangeName:   tx.ExchangeName,
		Chain:          tx.Chain,
		FeeFiat:        tx.FeeFiat,
		ExternalRef:    tx.ExternalRef,
	}
}

// TransactionFromRecord rebuilds the engine-facing transaction, re-running
// construction validation so rows edited out-of-band cannot smuggle invalid
// data into a calculation.
func TransactionFromRecord(record models.TransactionRecord) (tax.Transaction, error) {
	return tax.NewTransaction(tax.Transaction{
		Timestamp:      record.Timestamp,
		Kind:           tax.Kind(record.Kind),
		Token:          record.Token,
		Amount:         record.Amount,
		UnitPriceFiat:  record.UnitPriceFiat,
		TotalValueFiat: record.TotalValueFiat,
		Origin:         tax.Origin(record.Origin),
		WalletAddress:  record.WalletAddress,
		ExchangeName:   record.ExchangeName,
		Chain:          record.Chain,
		FeeFiat:        record.FeeFiat,
		ExternalRef:    record.ExternalRef,
	})
}

// StoreTransactions persists a batch. Rows that carry an external reference
// already present in the database are skipped, so importing the same export
// file twice does not duplicate history.
func StoreTransactions(db *gorm.DB, transactions []tax.Transaction) (int64, error) {
	if len(transactions) == 0 {
		return 0, nil
	}

	records := make([]models.TransactionRecord, 0, len(transactions))
	for _, tx := range transactions {
		records = append(records, RecordFromTransaction(tx))
	}

	result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records)
	if result.Error != nil {
		if IsDuplicateKey(result.Error) {
			config.Log.Warn("Skipping rows already present in the database")
			return result.RowsAffected, nil
		}
		config.Log.Error("Error storing transactions.", result.Error)
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

// GetTransactions loads transactions ordered by timestamp, optionally
// bounded by a half-open [start, end) window.
func GetTransactions(db *gorm.DB, start, end *time.Time) ([]tax.Transaction, error) {
	query := db.Model(&models.TransactionRecord{}).Order("timestamp asc, id asc")
	if start != nil {
		query = query.Where("timestamp >= ?", *start)
	}
	if end != nil {
		query = query.Where("timestamp < ?", *end)
	}

	var records []models.TransactionRecord
	result := query.Find(&records)
	if result.Error != nil {
		config.Log.Error("Error searching DB for transactions.", result.Error)
		return nil, result.Error
	}

	return transactionsFromRecords(records)
}

// GetTransactionsByToken loads one token's transactions ordered by timestamp.
func GetTransactionsByToken(db *gorm.DB, token string) ([]tax.Transaction, error) {
	var records []models.TransactionRecord
	result := db.Where("token = ?", token).Order("timestamp asc, id asc").Find(&records)
	if result.Error != nil {
		config.Log.Error("Error searching DB for transactions.", result.Error)
		return nil, result.Error
	}

	return transactionsFromRecords(records)
}

func transactionsFromRecords(records []models.TransactionRecord) ([]tax.Transaction, error) {
	transactions := make([]tax.Transaction, 0, len(records))
	for _, record := range records {
		tx, err := TransactionFromRecord(record)
		if err != nil {
			config.Log.Error("Error rebuilding stored transaction.", err)
			return nil, err
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}
