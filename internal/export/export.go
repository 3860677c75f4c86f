// Package export writes normalized transactions back out as CSV, the
// interchange format downstream bookkeeping tools consume.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
)

// Delimiter used for exported CSV files.
var Delimiter rune = ','

// row is the flat CSV shape of one transaction. Dates are ISO, amounts are
// fixed to 2 fractional digits.
type row struct {
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Amount      string `csv:"Amount"`
	Merchant    string `csv:"Merchant"`
	Category    string `csv:"Category"`
	Account     string `csv:"Account"`
	Reference   string `csv:"Reference"`
	Notes       string `csv:"Notes"`
}

// WriteTransactions writes the transactions as CSV to w.
func WriteTransactions(w io.Writer, txs []models.ParsedTransaction) error {
	rows := make([]row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, row{
			Date:        tx.Date.Format("2006-01-02"),
			Description: tx.Description,
			Amount:      tx.Amount.StringFixed(2),
			Merchant:    tx.Merchant,
			Category:    tx.Category,
			Account:     tx.Account,
			Reference:   tx.Reference,
			Notes:       tx.Notes,
		})
	}

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(&rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}

// WriteFile writes the transactions to a CSV file at path.
func WriteFile(path string, txs []models.ParsedTransaction, logger logging.Logger) error {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	file, err := os.Create(path) // #nosec G304 -- operator-chosen output path
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close file",
				logging.Field{Key: "file", Value: path})
		}
	}()

	if err := WriteTransactions(file, txs); err != nil {
		return err
	}
	logger.Info("Wrote transactions to CSV file",
		logging.Field{Key: "file", Value: path},
		logging.Field{Key: "count", Value: len(txs)})
	return nil
}
