// Package models provides the data structures shared by all format parsers
// and the import workflow.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is the normalized, parser-agnostic representation of one
// statement line. Amount uses the sign convention negative = outflow and is
// always rounded to 2 fractional digits (half-up). Date is a fully resolved
// calendar date; when the year had to be inferred from statement context the
// parser sets RawData["year_inferred"] = "true".
type ParsedTransaction struct {
	Date        time.Time         `csv:"Date" json:"date"`
	Description string            `csv:"Description" json:"description"`
	Amount      decimal.Decimal   `csv:"Amount" json:"amount"`
	Merchant    string            `csv:"Merchant" json:"merchant,omitempty"`
	Category    string            `csv:"Category" json:"category,omitempty"`
	Account     string            `csv:"Account" json:"account,omitempty"`
	Reference   string            `csv:"Reference" json:"reference,omitempty"`
	Notes       string            `csv:"Notes" json:"notes,omitempty"`
	RawData     map[string]string `csv:"-" json:"raw_data,omitempty"`
}

// SetRaw records an original field value for audit purposes.
func (t *ParsedTransaction) SetRaw(key, value string) {
	if t.RawData == nil {
		t.RawData = make(map[string]string)
	}
	t.RawData[key] = value
}

// IsOutflow reports whether the transaction moves money out of the account.
func (t *ParsedTransaction) IsOutflow() bool {
	return t.Amount.IsNegative()
}

// ParseResult is the outcome of parsing one statement file. Success == false
// means the file structure could not be trusted; Transactions may still hold
// a partial extraction but callers must not commit it without an explicit
// override. Warnings carry per-line failures that dropped single
// transactions without aborting the file.
type ParseResult struct {
	Success      bool                   `json:"success"`
	Transactions []ParsedTransaction    `json:"transactions"`
	Errors       []string               `json:"errors,omitempty"`
	Warnings     []string               `json:"warnings,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// NewParseResult creates an empty successful result.
func NewParseResult() *ParseResult {
	return &ParseResult{
		Success:  true,
		Metadata: make(map[string]interface{}),
	}
}

// AddWarning records a non-fatal per-line problem.
func (r *ParseResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddError records a fatal file-level problem and marks the result failed.
func (r *ParseResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Success = false
}

// Metadata keys populated by parsers.
const (
	MetaExtractionMethod = "extraction_method"
	MetaDetectedBank     = "detected_bank"
	MetaAccountNumber    = "account_number"
	MetaStatementPeriod  = "statement_period"
)

// ParserConfig is the static descriptor a parser registers under. Settings
// holds parser-specific tunables such as field mappings or delimiter.
type ParserConfig struct {
	Name                string                 `yaml:"name"`
	SupportedExtensions []string               `yaml:"supported_extensions"`
	MimeTypes           []string               `yaml:"mime_types"`
	Settings            map[string]interface{} `yaml:"settings,omitempty"`
}

// SupportsExtension reports whether ext (with or without leading dot,
// case-insensitive) is one of the parser's supported extensions.
func (c ParserConfig) SupportsExtension(ext string) bool {
	norm := normalizeExt(ext)
	for _, e := range c.SupportedExtensions {
		if normalizeExt(e) == norm {
			return true
		}
	}
	return false
}

// SupportsMime reports whether the MIME type is claimed by the parser.
func (c ParserConfig) SupportsMime(mime string) bool {
	for _, m := range c.MimeTypes {
		if m == mime {
			return true
		}
	}
	return false
}

func normalizeExt(ext string) string {
	if len(ext) > 0 && ext[0] == '.' {
		ext = ext[1:]
	}
	b := []byte(ext)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
