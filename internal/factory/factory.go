// Package factory assembles the default parser registry. Registration order
// is detection priority: format-specific parsers go first, CSV last because
// its MIME claims include text/plain and would shadow everything behind it.
package factory

import (
	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/csvparser"
	"ledgerline/statement-import/internal/excelparser"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/ofxparser"
	"ledgerline/statement-import/internal/parser"
	"ledgerline/statement-import/internal/pdfparser"
	"ledgerline/statement-import/internal/qifparser"
)

// NewDefaultRegistry returns a registry with all built-in parsers registered.
// A nil extractor leaves the PDF parser on the pdftotext binary.
func NewDefaultRegistry(logger logging.Logger, cat *categorizer.Categorizer, extractor pdfparser.PDFExtractor) *parser.Registry {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}

	r := parser.NewRegistry(logger)
	r.Register(ofxparser.New(logger, cat))
	r.Register(qifparser.New(logger, cat))
	r.Register(excelparser.New(logger, cat))
	r.Register(pdfparser.New(extractor, logger, cat))
	r.Register(csvparser.New(logger, cat))
	return r
}
