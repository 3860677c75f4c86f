package pdfparser

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
)

const sampleStatement = `Výpis z účtu 5/2025                                        strana 1
Číslo účtu: SK31 1100 0000 0026 1234 5678
Obdobie: 01.05.2025 - 31.05.2025

 2. 5.  Platba kartou                                      -12,90
        Miesto: SUPERMARKET FRESH KOSICE
        Ref: 902100415
 5. 5.  Platba kartou                                      -20,15
        Miesto: DELIKATESY STARE MESTO WARSZAWA
        Suma: 4.83 PLN 02.05.2025 Kurz: 4,2
12. 5.  Prevod                                           1 300,54
        Ref: 445120033
15. 5.  Platba kartou                                       -8,40
        Miesto: KAVIAREN U MACKA

Zostatok: 1 259,09
`

func newTestParser(text string) *Parser {
	logger := logging.NewMockLogger()
	return New(NewMockExtractor(text, nil), logger, categorizer.New(nil, logger))
}

func parseSample(t *testing.T, text string) *models.ParseResult {
	t.Helper()
	result, err := newTestParser(text).Parse(context.Background(), strings.NewReader("%PDF-1.4"), parser.Options{})
	require.NoError(t, err)
	require.True(t, result.Success)
	return result
}

func TestParseStatementBlocks(t *testing.T) {
	result := parseSample(t, sampleStatement)
	require.Len(t, result.Transactions, 4)
	assert.Empty(t, result.Warnings)

	first := result.Transactions[0]
	assert.Equal(t, "2025-05-02", first.Date.Format("2006-01-02"))
	assert.Equal(t, "-12.9", first.Amount.String())
	assert.Equal(t, "SUPERMARKET FRESH", first.Merchant)
	assert.Equal(t, "KOSICE", first.RawData["location"])
	assert.Equal(t, "902100415", first.Reference)
	assert.Equal(t, "true", first.RawData["year_inferred"])
	assert.Equal(t, TypeCardPayment, first.RawData["transaction_type"])
	assert.Equal(t, categorizer.CategoryGroceries, first.Category)

	transfer := result.Transactions[2]
	assert.Equal(t, "1300.54", transfer.Amount.String())
	assert.Equal(t, TypeTransfer, transfer.RawData["transaction_type"])
}

func TestParseStatementMetadata(t *testing.T) {
	result := parseSample(t, sampleStatement)
	assert.Equal(t, "2025-05-01 - 2025-05-31", result.Metadata[models.MetaStatementPeriod])
	assert.Equal(t, "SK3111000000002612345678", result.Metadata[models.MetaAccountNumber])
	assert.Equal(t, "pdftotext", result.Metadata[models.MetaExtractionMethod])
}

func TestForeignExchangeAnnotation(t *testing.T) {
	result := parseSample(t, sampleStatement)
	fx := result.Transactions[1]
	assert.Equal(t, "4.83", fx.RawData["original_amount"])
	assert.Equal(t, "PLN", fx.RawData["original_currency"])
	assert.Equal(t, "4.2", fx.RawData["exchange_rate"])
	assert.Equal(t, "2025-05-02", fx.RawData["value_date"])
	assert.Equal(t, "DELIKATESY STARE MESTO", fx.Merchant)
	assert.Equal(t, "WARSZAWA", fx.RawData["location"])
}

func TestParseFXAnnotation(t *testing.T) {
	fx, ok := ParseFXAnnotation("Suma: 4.83 PLN 02.05.2025 Kurz: 4,2")
	require.True(t, ok)
	assert.Equal(t, "4.83", fx.OriginalAmount.String())
	assert.Equal(t, "PLN", fx.Currency)
	assert.True(t, fx.HasRate)
	assert.Equal(t, "4.2", fx.Rate.String())

	noRate, ok := ParseFXAnnotation("Suma: 12.9 EUR 30.04.2025 Kurz:")
	require.True(t, ok)
	assert.Equal(t, "12.9", noRate.OriginalAmount.String())
	assert.Equal(t, "EUR", noRate.Currency)
	assert.False(t, noRate.HasRate)

	_, ok = ParseFXAnnotation("Miesto: SUPERMARKET FRESH KOSICE")
	assert.False(t, ok)
}

func TestBlockWithoutAmountBecomesWarning(t *testing.T) {
	text := `Obdobie: 01.05.2025 - 31.05.2025
 2. 5.  Platba kartou
        Miesto: SUPERMARKET FRESH KOSICE
 3. 5.  Platba kartou                                      -10,00
        Miesto: KAVIAREN U MACKA
`
	result := parseSample(t, text)
	require.Len(t, result.Transactions, 1)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "no amount")
	assert.Equal(t, "-10", result.Transactions[0].Amount.String())
}

func TestSplitMerchantLocation(t *testing.T) {
	merchant, city := SplitMerchantLocation("SUPERMARKET FRESH KOSICE")
	assert.Equal(t, "SUPERMARKET FRESH", merchant)
	assert.Equal(t, "KOSICE", city)

	merchant, city = SplitMerchantLocation("ONLINE SERVICE PAYMENT")
	assert.Equal(t, "ONLINE SERVICE PAYMENT", merchant)
	assert.Empty(t, city)

	merchant, city = SplitMerchantLocation("PENZION POD TATRAMI BANSKA BYSTRICA")
	assert.Equal(t, "PENZION POD TATRAMI", merchant)
	assert.Equal(t, "BANSKA BYSTRICA", city)
}

func TestCleanBusinessName(t *testing.T) {
	cases := map[string]string{
		"ACME Consulting s.r.o. SVK": "ACME Consulting",
		"Widget Works LLC US":        "Widget Works",
		"Stavebniny Novak a.s.":      "Stavebniny Novak",
		"Plain Merchant":             "Plain Merchant",
	}
	for input, want := range cases {
		assert.Equal(t, want, CleanBusinessName(input), "input %q", input)
	}
}

func TestClassifyTransactionType(t *testing.T) {
	assert.Equal(t, TypeCardPayment, ClassifyTransactionType("Platba kartou"))
	assert.Equal(t, TypeLoanPayment, ClassifyTransactionType("Splatka uveru 443"))
	assert.Equal(t, TypeTransfer, ClassifyTransactionType("Prevod na ucet"))
	assert.Equal(t, TypeUnknown, ClassifyTransactionType("Mystery line"))
}

func TestResolveYearAcrossBoundary(t *testing.T) {
	period := statementPeriod{
		start: dateutils.Day(2024, time.December, 15),
		end:   dateutils.Day(2025, time.January, 15),
		ok:    true,
	}
	assert.Equal(t, dateutils.Day(2024, time.December, 20), resolveYear(20, time.December, period))
	assert.Equal(t, dateutils.Day(2025, time.January, 5), resolveYear(5, time.January, period))
}

func TestLocaleAmounts(t *testing.T) {
	cp := &compiledProfile{decimalComma: true}
	amount, _, ok := cp.findAmount("Platba kartou        -12,90")
	require.True(t, ok)
	assert.Equal(t, "-12.9", amount.String())

	amount, _, ok = cp.findAmount("Prevod            1 300,54")
	require.True(t, ok)
	assert.Equal(t, "1300.54", amount.String())

	_, _, ok = cp.findAmount("Obdobie: 01.05.2025 - 31.05.2025")
	assert.False(t, ok)
}

func TestExtractionFailureFailsFile(t *testing.T) {
	logger := logging.NewMockLogger()
	p := New(NewMockExtractor("", assert.AnError), logger, nil)
	_, err := p.Parse(context.Background(), strings.NewReader("%PDF-1.4"), parser.Options{})
	require.Error(t, err)
}
