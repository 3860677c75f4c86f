package csvparser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
	"ledgerline/statement-import/internal/profile"
)

// FieldIndexes maps resolved semantic fields to column positions. An absent
// field has no column in this file. The Excel parser shares this resolution
// so spreadsheet and CSV exports of the same bank behave identically.
type FieldIndexes struct {
	Date        int
	Description int
	Amount      int
	Debit       int
	Credit      int
	Reference   int
	Account     int
	Headers     []string

	// NegativeDebits means the debit column already carries a minus sign
	// and must not be negated again.
	NegativeDebits bool
}

const noColumn = -1

func newFieldIndexes(headers []string) *FieldIndexes {
	return &FieldIndexes{
		Date:        noColumn,
		Description: noColumn,
		Amount:      noColumn,
		Debit:       noColumn,
		Credit:      noColumn,
		Reference:   noColumn,
		Account:     noColumn,
		Headers:     headers,
	}
}

// complete reports whether the mandatory columns were resolved: a date, a
// description, and either a single amount column or a debit/credit pair.
func (f *FieldIndexes) complete() bool {
	if f.Date == noColumn || f.Description == noColumn {
		return false
	}
	return f.Amount != noColumn || (f.Debit != noColumn && f.Credit != noColumn)
}

// FindHeader scans the leading rows for one that resolves the mandatory
// columns, either through the profile's explicit field mappings or the shared
// header vocabulary. Returns (-1, nil) when no usable header exists. The
// Excel parser calls this too so spreadsheet and CSV exports of a bank
// resolve identically.
func FindHeader(records [][]string, prof *profile.BankProfile) (int, *FieldIndexes) {
	// Preambles before the real header are short in practice.
	limit := len(records)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		if fields := resolveColumns(records[i], prof); fields.complete() {
			return i, fields
		}
	}
	return -1, nil
}

// resolveColumns maps one candidate header row to field indexes. Explicit
// profile mappings take precedence; heuristics fill whatever remains.
func resolveColumns(header []string, prof *profile.BankProfile) *FieldIndexes {
	fields := newFieldIndexes(header)

	set := func(field string, idx int) {
		switch field {
		case "date":
			fields.Date = idx
		case "description":
			fields.Description = idx
		case "amount":
			fields.Amount = idx
		case "debit":
			fields.Debit = idx
		case "credit":
			fields.Credit = idx
		case "reference":
			fields.Reference = idx
		case "account":
			fields.Account = idx
		}
	}
	get := func(field string) int {
		switch field {
		case "date":
			return fields.Date
		case "description":
			return fields.Description
		case "amount":
			return fields.Amount
		case "debit":
			return fields.Debit
		case "credit":
			return fields.Credit
		case "reference":
			return fields.Reference
		case "account":
			return fields.Account
		}
		return noColumn
	}

	if prof != nil {
		fields.NegativeDebits = prof.CSVConfig.AmountColumns.NegativeDebits
		for field, candidates := range prof.CSVConfig.FieldMappings {
			for _, candidate := range candidates {
				if idx := columnIndex(header, candidate); idx != noColumn {
					set(field, idx)
					break
				}
			}
		}
		if col := prof.CSVConfig.AmountColumns.DebitColumn; col != "" {
			if idx := columnIndex(header, col); idx != noColumn {
				fields.Debit = idx
			}
		}
		if col := prof.CSVConfig.AmountColumns.CreditColumn; col != "" {
			if idx := columnIndex(header, col); idx != noColumn {
				fields.Credit = idx
			}
		}
	}

	used := make(map[int]bool)
	for _, field := range []string{"date", "description", "debit", "credit", "amount", "reference", "account"} {
		if idx := get(field); idx != noColumn {
			used[idx] = true
		}
	}
	for _, field := range []string{"date", "description", "debit", "credit", "amount", "reference", "account"} {
		if get(field) != noColumn {
			continue
		}
		for idx, column := range header {
			if used[idx] {
				continue
			}
			if profile.MatchesField(field, column) {
				set(field, idx)
				used[idx] = true
				break
			}
		}
	}
	return fields
}

func columnIndex(header []string, name string) int {
	want := strings.ToLower(strings.TrimSpace(name))
	for i, column := range header {
		if strings.ToLower(strings.TrimSpace(column)) == want {
			return i
		}
	}
	return noColumn
}

// AppendRows converts data rows into transactions on the result. Rows with an
// unparseable date or amount are dropped with a warning; blank rows are
// skipped silently. Row numbers in warnings are 1-based within rows.
func AppendRows(result *models.ParseResult, rows [][]string, fields *FieldIndexes, opts parser.Options, cat *categorizer.Categorizer) {
	var dateFormats []string
	if opts.Profile != nil {
		dateFormats = opts.Profile.CSVConfig.DateFormats
	}

	for i, row := range rows {
		if isBlankRow(row) {
			continue
		}
		tx, err := parseRow(row, fields, dateFormats)
		if err != nil {
			result.AddWarning(fmt.Sprintf("row %d: %v", i+1, err))
			continue
		}
		if tx.Account == "" {
			tx.Account = opts.AccountHint
		}
		if cat != nil && tx.Category == "" {
			tx.Category, _ = cat.Categorize(tx.Merchant, tx.Description)
		}
		result.Transactions = append(result.Transactions, *tx)
	}
}

func parseRow(row []string, fields *FieldIndexes, dateFormats []string) (*models.ParsedTransaction, error) {
	cell := func(idx int) string {
		if idx == noColumn || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	rawDate := cell(fields.Date)
	if rawDate == "" {
		return nil, fmt.Errorf("missing date")
	}
	date, err := dateutils.Parse(rawDate, dateFormats)
	if err != nil {
		return nil, err
	}

	description := cell(fields.Description)
	if description == "" {
		return nil, fmt.Errorf("missing description")
	}

	amount, err := rowAmount(cell, fields)
	if err != nil {
		return nil, err
	}

	tx := &models.ParsedTransaction{
		Date:        date,
		Description: description,
		Amount:      amount,
		Merchant:    ExtractMerchant(description),
		Reference:   cell(fields.Reference),
		Account:     cell(fields.Account),
	}
	tx.SetRaw("date", rawDate)
	for i, header := range fields.Headers {
		if i < len(row) && strings.TrimSpace(row[i]) != "" {
			tx.SetRaw(strings.TrimSpace(header), strings.TrimSpace(row[i]))
		}
	}
	return tx, nil
}

// rowAmount applies the configured amount policy. With a single column the
// cell's own sign is trusted. With split columns a populated debit yields a
// negative amount (unless the column already carries its sign) and a
// populated credit yields a positive one.
func rowAmount(cell func(int) string, fields *FieldIndexes) (decimal.Decimal, error) {
	if fields.Debit != noColumn && fields.Credit != noColumn {
		debit, credit := cell(fields.Debit), cell(fields.Credit)
		switch {
		case debit != "":
			amount, err := models.ParseAmount(debit)
			if err != nil {
				return decimal.Zero, err
			}
			if !fields.NegativeDebits && amount.IsPositive() {
				amount = amount.Neg()
			}
			return amount, nil
		case credit != "":
			return models.ParseAmount(credit)
		default:
			return decimal.Zero, fmt.Errorf("missing amount: both debit and credit are empty")
		}
	}

	raw := cell(fields.Amount)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("missing amount")
	}
	return models.ParseAmount(raw)
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// trailingNoise strips reference numbers, card fragments and bare dates that
// banks append after the merchant name in CSV descriptions.
var trailingNoise = []*regexp.Regexp{
	regexp.MustCompile(`\s+\d{1,2}[./-]\d{1,2}(?:[./-]\d{2,4})?$`),
	regexp.MustCompile(`\s+(?:#|№)?\d{4,}$`),
	regexp.MustCompile(`\s+\*{2,}\d*$`),
	regexp.MustCompile(`\s+(?:REF|TXN|ID)[:.]?\s*\S+$`),
}

// ExtractMerchant derives a merchant name from a free-text description by
// peeling trailing reference and date noise.
func ExtractMerchant(description string) string {
	merchant := strings.TrimSpace(description)
	for changed := true; changed; {
		changed = false
		for _, re := range trailingNoise {
			if trimmed := re.ReplaceAllString(merchant, ""); trimmed != merchant {
				merchant = trimmed
				changed = true
			}
		}
	}
	return strings.TrimSpace(merchant)
}
