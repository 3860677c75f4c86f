// Package csvparser parses delimited statement exports. Column meaning is
// resolved from an explicit bank profile when one is supplied, otherwise by
// case-insensitive header heuristics against a fixed vocabulary.
package csvparser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
)

// Parser implements parser.Parser for CSV statement exports.
type Parser struct {
	parser.BaseParser
	categorizer *categorizer.Categorizer
}

// New creates a CSV parser. A nil categorizer disables category suggestions.
func New(logger logging.Logger, cat *categorizer.Categorizer) *Parser {
	return &Parser{
		BaseParser:  parser.NewBaseParser(logger),
		categorizer: cat,
	}
}

// Name implements parser.Parser.
func (p *Parser) Name() string { return "csv" }

// DefaultConfig implements parser.Parser.
func (p *Parser) DefaultConfig() models.ParserConfig {
	return models.ParserConfig{
		Name:                p.Name(),
		SupportedExtensions: []string{"csv"},
		MimeTypes:           []string{"text/csv", "application/csv", "text/plain"},
		Settings: map[string]interface{}{
			"delimiter": ",",
		},
	}
}

// CanParse implements parser.Parser.
func (p *Parser) CanParse(filename, mime string) bool {
	if parser.ExtensionOf(filename) == "csv" {
		return true
	}
	return p.DefaultConfig().SupportsMime(mime)
}

// Parse reads the delimited file and folds each data row into the result:
// parseable rows become transactions, malformed rows become warnings, and
// only an unreadable structure fails the file.
func (p *Parser) Parse(ctx context.Context, r io.Reader, opts parser.Options) (*models.ParseResult, error) {
	result := models.NewParseResult()
	result.Metadata[models.MetaExtractionMethod] = "csv"

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading CSV input: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	delimiter := detectDelimiter(string(data))
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		result.AddError(fmt.Sprintf("unreadable CSV structure: %v", err))
		return result, nil
	}
	if len(records) == 0 {
		result.AddError("file contains no rows")
		return result, nil
	}

	headerIdx, fields := FindHeader(records, opts.Profile)
	if fields == nil {
		result.AddError("could not identify a header row mapping date, description and amount columns")
		return result, nil
	}

	p.GetLogger().Debug("Resolved CSV columns",
		logging.Field{Key: "header_row", Value: headerIdx},
		logging.Field{Key: "delimiter", Value: string(delimiter)})

	AppendRows(result, records[headerIdx+1:], fields, opts, p.categorizer)

	p.GetLogger().Info("Parsed CSV statement",
		logging.Field{Key: "transactions", Value: len(result.Transactions)},
		logging.Field{Key: "warnings", Value: len(result.Warnings)})
	return result, nil
}

// detectDelimiter picks the separator that splits the first line into the
// most fields. Comma wins ties.
func detectDelimiter(data string) rune {
	firstLine := data
	if idx := strings.IndexByte(data, '\n'); idx >= 0 {
		firstLine = data[:idx]
	}

	best, bestCount := ',', strings.Count(firstLine, ",")
	for _, candidate := range []rune{';', '\t', '|'} {
		if count := strings.Count(firstLine, string(candidate)); count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}
