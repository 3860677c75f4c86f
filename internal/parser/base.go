package parser

import (
	"path/filepath"
	"strings"

	"ledgerline/statement-import/internal/logging"
)

// BaseParser provides the common functionality format parsers embed:
//
//	type MyParser struct {
//		parser.BaseParser
//		// parser-specific fields
//	}
//
// This follows the composition pattern and keeps logger plumbing out of the
// individual parsers.
type BaseParser struct {
	logger logging.Logger
}

// NewBaseParser creates a BaseParser ready for embedding. A nil logger is
// replaced with a default.
func NewBaseParser(logger logging.Logger) BaseParser {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return BaseParser{logger: logger}
}

// SetLogger replaces the parser's logger. Nil loggers are ignored.
func (b *BaseParser) SetLogger(logger logging.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

// GetLogger returns the current logger instance.
func (b *BaseParser) GetLogger() logging.Logger {
	return b.logger
}

// ExtensionOf returns the lower-cased filename extension without the dot.
func ExtensionOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
