// Package profile manages per-bank extraction profiles: the field mappings,
// date formats and regex patterns that tell a parser how a specific
// institution lays out its statements.
package profile

import (
	"fmt"
	"regexp"
)

// BankProfile is one institution's extraction configuration. Profiles are
// loaded on demand by bank key and treated as immutable during a parse.
type BankProfile struct {
	Name      string    `yaml:"name"`
	CSVConfig CSVConfig `yaml:"csv_config"`
	PDFConfig PDFConfig `yaml:"pdf_config"`
}

// CSVConfig drives the tabular parsers (CSV and Excel).
type CSVConfig struct {
	// FieldMappings maps a semantic field name (date, description, amount,
	// debit, credit, reference) to the column headers that may carry it.
	FieldMappings map[string][]string `yaml:"field_mappings"`
	DateFormats   []string            `yaml:"date_formats"`
	AmountColumns AmountColumns       `yaml:"amount_columns"`
}

// AmountColumns selects between a single signed amount column and separate
// debit/credit columns merged into one signed value.
type AmountColumns struct {
	Single         bool   `yaml:"single"`
	DebitColumn    string `yaml:"debit_column,omitempty"`
	CreditColumn   string `yaml:"credit_column,omitempty"`
	NegativeDebits bool   `yaml:"negative_debits,omitempty"`
}

// PDFConfig drives the pattern-based PDF statement parser.
type PDFConfig struct {
	TransactionPatterns []string          `yaml:"transaction_patterns"`
	DateFormats         []string          `yaml:"date_formats"`
	IgnorePatterns      []string          `yaml:"ignore_patterns"`
	CustomProcessing    map[string]string `yaml:"custom_processing,omitempty"`
}

// RequiredFields are the semantic fields a profile must map for tabular
// parsing to be possible.
var RequiredFields = []string{"date", "description", "amount"}

// Validate checks profile completeness. A valid profile maps every required
// field, supplies both debit and credit columns when split-column amounts
// are configured, and contains only compilable regex patterns.
func Validate(p *BankProfile) (bool, []string) {
	var errs []string

	if p.Name == "" {
		errs = append(errs, "profile name is required")
	}
	for _, field := range RequiredFields {
		if len(p.CSVConfig.FieldMappings[field]) == 0 {
			errs = append(errs, fmt.Sprintf("field_mappings missing required field %q", field))
		}
	}
	if !p.CSVConfig.AmountColumns.Single {
		if p.CSVConfig.AmountColumns.DebitColumn == "" {
			errs = append(errs, "split-column amounts require debit_column")
		}
		if p.CSVConfig.AmountColumns.CreditColumn == "" {
			errs = append(errs, "split-column amounts require credit_column")
		}
	}
	for _, pattern := range p.PDFConfig.TransactionPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Sprintf("invalid transaction pattern %q: %v", pattern, err))
		}
	}
	for _, pattern := range p.PDFConfig.IgnorePatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			errs = append(errs, fmt.Sprintf("invalid ignore pattern %q: %v", pattern, err))
		}
	}

	return len(errs) == 0, errs
}
