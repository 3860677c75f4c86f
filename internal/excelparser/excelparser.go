// Package excelparser parses spreadsheet statement exports. Both the OOXML
// (.xlsx) and legacy binary (.xls) containers are supported; rows from the
// first sheet are handed to the same column-resolution pipeline the CSV
// parser uses.
package excelparser

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/csvparser"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
)

var zipSignature = []byte{0x50, 0x4B, 0x03, 0x04}

// Parser implements parser.Parser for Excel workbooks.
type Parser struct {
	parser.BaseParser
	categorizer *categorizer.Categorizer
}

// New creates an Excel parser.
func New(logger logging.Logger, cat *categorizer.Categorizer) *Parser {
	return &Parser{
		BaseParser:  parser.NewBaseParser(logger),
		categorizer: cat,
	}
}

// Name implements parser.Parser.
func (p *Parser) Name() string { return "excel" }

// DefaultConfig implements parser.Parser.
func (p *Parser) DefaultConfig() models.ParserConfig {
	return models.ParserConfig{
		Name:                p.Name(),
		SupportedExtensions: []string{"xlsx", "xls"},
		MimeTypes: []string{
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			"application/vnd.ms-excel",
		},
	}
}

// CanParse implements parser.Parser.
func (p *Parser) CanParse(filename, mime string) bool {
	ext := parser.ExtensionOf(filename)
	return ext == "xlsx" || ext == "xls" || p.DefaultConfig().SupportsMime(mime)
}

// Parse implements parser.Parser. The container kind is chosen by content
// signature, not extension, since legacy-named files are often OOXML inside.
func (p *Parser) Parse(ctx context.Context, r io.Reader, opts parser.Options) (*models.ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading spreadsheet: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := models.NewParseResult()

	var rows [][]string
	if bytes.HasPrefix(content, zipSignature) {
		result.Metadata[models.MetaExtractionMethod] = "excelize"
		rows, err = readXLSX(content)
	} else {
		result.Metadata[models.MetaExtractionMethod] = "xls"
		rows, err = readXLS(content)
	}
	if err != nil {
		result.AddError(err.Error())
		return result, nil
	}
	if len(rows) == 0 {
		result.AddError("spreadsheet contains no rows")
		return result, nil
	}

	headerIdx, fields := csvparser.FindHeader(rows, opts.Profile)
	if fields == nil {
		result.AddError("could not identify a header row mapping date, description and amount columns")
		return result, nil
	}
	csvparser.AppendRows(result, rows[headerIdx+1:], fields, opts, p.categorizer)

	p.GetLogger().Info("Parsed spreadsheet statement",
		logging.Field{Key: "transactions", Value: len(result.Transactions)},
		logging.Field{Key: "warnings", Value: len(result.Warnings)})
	return result, nil
}

func readXLSX(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("unreadable workbook: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %q: %v", sheets[0], err)
	}
	return rows, nil
}

func readXLS(content []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(content), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("unreadable workbook: %v", err)
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook first sheet is unreadable")
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for col := row.FirstCol(); col < row.LastCol(); col++ {
			cells[col] = row.Col(col)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
