// Package qifparser parses Quicken Interchange Format files: line-oriented
// records where each line is a one-letter field tag plus its value and "^"
// terminates a record.
package qifparser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
)

// qifDateFormats covers the date shapes QIF exports use in the wild. The
// apostrophe-year convention ("1/2'25") is normalized before parsing.
var qifDateFormats = []string{
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	"2.1.2006",
	"2006-01-02",
}

// Parser implements parser.Parser for QIF files.
type Parser struct {
	parser.BaseParser
	categorizer *categorizer.Categorizer
}

// New creates a QIF parser.
func New(logger logging.Logger, cat *categorizer.Categorizer) *Parser {
	return &Parser{
		BaseParser:  parser.NewBaseParser(logger),
		categorizer: cat,
	}
}

// Name implements parser.Parser.
func (p *Parser) Name() string { return "qif" }

// DefaultConfig implements parser.Parser.
func (p *Parser) DefaultConfig() models.ParserConfig {
	return models.ParserConfig{
		Name:                p.Name(),
		SupportedExtensions: []string{"qif"},
		MimeTypes:           []string{"application/x-qif"},
	}
}

// CanParse implements parser.Parser.
func (p *Parser) CanParse(filename, mime string) bool {
	return parser.ExtensionOf(filename) == "qif" || mime == "application/x-qif"
}

// Parse implements parser.Parser. Records missing a date or amount are
// dropped with a warning; a file with no "^" record terminator at all fails.
func (p *Parser) Parse(ctx context.Context, r io.Reader, opts parser.Options) (*models.ParseResult, error) {
	result := models.NewParseResult()
	result.Metadata[models.MetaExtractionMethod] = "qif"

	scanner := bufio.NewScanner(r)
	var record []string
	recordNum := 0
	sawTerminator := false

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			continue
		case strings.HasPrefix(trimmed, "!"):
			// Type headers such as !Type:Bank select an account class we
			// do not distinguish; every record normalizes the same way.
			result.Metadata[models.MetaDetectedBank] = strings.TrimPrefix(trimmed, "!")
			continue
		case trimmed == "^":
			sawTerminator = true
			recordNum++
			if len(record) == 0 {
				continue
			}
			if tx, err := p.parseRecord(record, opts); err != nil {
				result.AddWarning(fmt.Sprintf("record %d: %v", recordNum, err))
			} else {
				result.Transactions = append(result.Transactions, *tx)
			}
			record = record[:0]
		default:
			record = append(record, trimmed)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading QIF content: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// A trailing record without its terminator is still honored.
	if len(record) > 0 {
		recordNum++
		if tx, err := p.parseRecord(record, opts); err != nil {
			result.AddWarning(fmt.Sprintf("record %d: %v", recordNum, err))
		} else {
			result.Transactions = append(result.Transactions, *tx)
		}
	}

	if !sawTerminator && len(result.Transactions) == 0 {
		result.AddError("no QIF records found")
		return result, nil
	}

	p.GetLogger().Info("Parsed QIF file",
		logging.Field{Key: "transactions", Value: len(result.Transactions)},
		logging.Field{Key: "warnings", Value: len(result.Warnings)})
	return result, nil
}

// parseRecord converts one tag/value block into a transaction. Tags: D date,
// T or U amount, P payee, M memo, N reference, L category.
func (p *Parser) parseRecord(lines []string, opts parser.Options) (*models.ParsedTransaction, error) {
	tx := &models.ParsedTransaction{}
	var rawDate, rawAmount string

	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		tag, value := line[0], strings.TrimSpace(line[1:])
		switch tag {
		case 'D':
			rawDate = value
		case 'T', 'U':
			rawAmount = value
		case 'P':
			tx.Description = value
			tx.Merchant = value
		case 'M':
			tx.Notes = value
		case 'N':
			tx.Reference = value
		case 'L':
			tx.Category = strings.Trim(value, "[]")
		}
		tx.SetRaw(string(tag), value)
	}

	if rawDate == "" {
		return nil, fmt.Errorf("missing date")
	}
	date, err := dateutils.Parse(normalizeQIFDate(rawDate), qifDateFormats)
	if err != nil {
		return nil, err
	}
	tx.Date = date

	if rawAmount == "" {
		return nil, fmt.Errorf("missing amount")
	}
	amount, err := models.ParseAmount(rawAmount)
	if err != nil {
		return nil, err
	}
	tx.Amount = amount

	if tx.Description == "" {
		tx.Description = tx.Notes
	}
	if tx.Description == "" {
		return nil, fmt.Errorf("missing payee and memo")
	}
	tx.Account = opts.AccountHint
	if p.categorizer != nil && tx.Category == "" {
		tx.Category, _ = p.categorizer.Categorize(tx.Merchant, tx.Description)
	}
	return tx, nil
}

// normalizeQIFDate rewrites the apostrophe-year convention to a parseable
// form: in "1/2'25" the apostrophe means year 2025.
func normalizeQIFDate(raw string) string {
	if idx := strings.IndexByte(raw, '\''); idx >= 0 {
		year := raw[idx+1:]
		if len(year) == 2 {
			return raw[:idx] + "/20" + year
		}
		return raw[:idx] + "/" + year
	}
	return raw
}
