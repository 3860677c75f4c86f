package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// currencyTokens are symbols and codes stripped from amount strings before
// numeric parsing.
var currencyTokens = []string{"CHF", "EUR", "USD", "GBP", "CZK", "PLN", "$", "€", "£", "Kč", "zł"}

// ParseAmount parses an amount string using dot as the decimal separator and
// comma (or apostrophe) as the thousands separator. Currency symbols are
// stripped, parenthesized values and a leading or trailing minus become
// negative, and the result is rounded half-up to 2 fractional digits.
//
//	"$1,234.56" -> 1234.56
//	"(25.50)"   -> -25.50
//	"25.50-"    -> -25.50
func ParseAmount(raw string) (decimal.Decimal, error) {
	s, negative := stripAmountDecorations(raw)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, " ", "")

	dec, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	dec = dec.Round(2)
	if negative {
		dec = dec.Neg()
	}
	return dec, nil
}

// ParseLocaleAmount parses an amount string using comma as the decimal
// separator and space (regular or non-breaking) as the thousands separator,
// the convention used by the profile-driven PDF statements.
//
//	"-12,90"   -> -12.90
//	"1 300,54" -> 1300.54
func ParseLocaleAmount(raw string) (decimal.Decimal, error) {
	dec, err := ParseLocaleNumber(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return dec.Round(2), nil
}

// ParseLocaleNumber is ParseLocaleAmount without the 2-digit rounding step.
// Exchange rates keep their full precision.
func ParseLocaleNumber(raw string) (decimal.Decimal, error) {
	s, negative := stripAmountDecorations(raw)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	// A comma is the decimal point; a dot can only be a stray thousands
	// separator when a comma is also present.
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}

	dec, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	if negative {
		dec = dec.Neg()
	}
	return dec, nil
}

// stripAmountDecorations removes currency tokens and sign markers, returning
// the bare numeric text and whether any negative convention was seen.
func stripAmountDecorations(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	negative := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	for _, token := range currencyTokens {
		s = strings.ReplaceAll(s, token, "")
	}
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "-") {
		negative = true
		s = strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}
	s = strings.TrimPrefix(s, "+")
	if strings.HasPrefix(s, "-") {
		negative = true
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}
	return s, negative
}
