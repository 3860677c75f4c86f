// Package pdfparser extracts transactions from PDF bank statements. The
// source is unstructured prose, not a table: text is pulled from the
// document, scanned line by line for a profile-defined transaction-start
// pattern, and each match is expanded into a block by a bounded look-ahead
// that collects the amount, merchant location, reference and any
// foreign-exchange annotation.
package pdfparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
	"ledgerline/statement-import/internal/parsererror"
	"ledgerline/statement-import/internal/profile"
)

// defaultProfileKey selects the built-in profile used when the caller
// supplies none with PDF patterns.
const defaultProfileKey = "tatra"

// Parser implements parser.Parser for PDF statements.
type Parser struct {
	parser.BaseParser
	extractor   PDFExtractor
	categorizer *categorizer.Categorizer
}

// New creates a PDF parser. A nil extractor selects the pdftotext
// implementation.
func New(extractor PDFExtractor, logger logging.Logger, cat *categorizer.Categorizer) *Parser {
	if extractor == nil {
		extractor = NewPdftotextExtractor()
	}
	return &Parser{
		BaseParser:  parser.NewBaseParser(logger),
		extractor:   extractor,
		categorizer: cat,
	}
}

// Name implements parser.Parser.
func (p *Parser) Name() string { return "pdf" }

// DefaultConfig implements parser.Parser.
func (p *Parser) DefaultConfig() models.ParserConfig {
	return models.ParserConfig{
		Name:                p.Name(),
		SupportedExtensions: []string{"pdf"},
		MimeTypes:           []string{"application/pdf"},
	}
}

// CanParse implements parser.Parser.
func (p *Parser) CanParse(filename, mime string) bool {
	return parser.ExtensionOf(filename) == "pdf" || mime == "application/pdf"
}

// Parse spools the document to a temporary file, extracts its text layer and
// runs the block scanner. Blocks missing a resolvable amount become warnings;
// only failed text extraction or an unusable profile fails the file.
func (p *Parser) Parse(ctx context.Context, r io.Reader, opts parser.Options) (*models.ParseResult, error) {
	prof := opts.Profile
	if prof == nil || len(prof.PDFConfig.TransactionPatterns) == 0 {
		prof = profile.Builtin(defaultProfileKey)
	}
	cp, err := compileProfile(prof)
	if err != nil {
		return nil, &parsererror.ValidationError{FilePath: "", Reason: err.Error()}
	}

	text, err := p.extractText(ctx, r)
	if err != nil {
		return nil, err
	}

	result := models.NewParseResult()
	result.Metadata[models.MetaExtractionMethod] = "pdftotext"
	result.Metadata[models.MetaDetectedBank] = prof.Name

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	p.scan(lines, cp, opts, result)

	p.GetLogger().Info("Parsed PDF statement",
		logging.Field{Key: "bank", Value: prof.Name},
		logging.Field{Key: "transactions", Value: len(result.Transactions)},
		logging.Field{Key: "warnings", Value: len(result.Warnings)})
	return result, nil
}

func (p *Parser) extractText(ctx context.Context, r io.Reader) (string, error) {
	tempFile, err := os.CreateTemp("", "*.pdf")
	if err != nil {
		return "", fmt.Errorf("error creating temporary PDF file: %w", err)
	}
	defer func() {
		if err := os.Remove(tempFile.Name()); err != nil {
			p.GetLogger().WithError(err).Warn("Failed to remove temporary file",
				logging.Field{Key: "file", Value: tempFile.Name()})
		}
	}()

	if _, err := io.Copy(tempFile, r); err != nil {
		_ = tempFile.Close()
		return "", fmt.Errorf("error writing temporary PDF file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return "", fmt.Errorf("error closing temporary PDF file: %w", err)
	}

	text, err := p.extractor.ExtractText(ctx, tempFile.Name())
	if err != nil {
		return "", &parsererror.ParseError{
			Parser: p.Name(),
			Field:  "text extraction",
			Value:  tempFile.Name(),
			Err:    err,
		}
	}
	return text, nil
}

// scan walks the extracted lines, skipping ignored ones and handing each
// transaction-start match to the block parser.
func (p *Parser) scan(lines []string, cp *compiledProfile, opts parser.Options, result *models.ParseResult) {
	period := findStatementPeriod(lines)
	if period.ok {
		result.Metadata[models.MetaStatementPeriod] = fmt.Sprintf("%s - %s",
			period.start.Format("2006-01-02"), period.end.Format("2006-01-02"))
	}
	if account := findAccountNumber(lines); account != "" {
		result.Metadata[models.MetaAccountNumber] = account
	}

	for i := 0; i < len(lines); {
		line := strings.TrimSpace(lines[i])
		if line == "" || cp.isIgnored(line) || cp.matchStart(line) == nil {
			i++
			continue
		}

		tx, consumed, err := parseBlock(lines, i, cp, period)
		if err != nil {
			result.AddWarning(err.Error())
			i += consumed
			continue
		}

		if tx.Account == "" {
			tx.Account = opts.AccountHint
		}
		if p.categorizer != nil && tx.Category == "" {
			tx.Category, _ = p.categorizer.Categorize(tx.Merchant, tx.Description)
		}
		result.Transactions = append(result.Transactions, *tx)
		i += consumed
	}
}
