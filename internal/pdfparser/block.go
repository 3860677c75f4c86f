package pdfparser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/profile"
)

// lookAheadWindow bounds how many lines after a transaction-start line are
// examined for the block's amount, location, reference and FX annotation.
const lookAheadWindow = 8

// compiledProfile holds a PDF profile with its patterns compiled once per
// parse.
type compiledProfile struct {
	txStart      []*regexp.Regexp
	ignore       []*regexp.Regexp
	dateFormats  []string
	decimalComma bool
}

func compileProfile(p *profile.BankProfile) (*compiledProfile, error) {
	cp := &compiledProfile{
		dateFormats:  p.PDFConfig.DateFormats,
		decimalComma: p.PDFConfig.CustomProcessing["decimal_comma"] == "true",
	}
	for _, pattern := range p.PDFConfig.TransactionPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid transaction pattern %q: %w", pattern, err)
		}
		cp.txStart = append(cp.txStart, re)
	}
	if len(cp.txStart) == 0 {
		return nil, fmt.Errorf("profile defines no transaction patterns")
	}
	for _, pattern := range p.PDFConfig.IgnorePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		cp.ignore = append(cp.ignore, re)
	}
	return cp, nil
}

func (cp *compiledProfile) isIgnored(line string) bool {
	for _, re := range cp.ignore {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (cp *compiledProfile) matchStart(line string) []string {
	for _, re := range cp.txStart {
		if m := re.FindStringSubmatch(line); m != nil {
			return m
		}
	}
	return nil
}

// statementPeriod is the declared date range of the statement, used to
// resolve years for short-form day/month dates.
type statementPeriod struct {
	start, end time.Time
	ok         bool
}

var periodRe = regexp.MustCompile(`(\d{1,2}\.\d{1,2}\.\d{4})\s*[-–]\s*(\d{1,2}\.\d{1,2}\.\d{4})`)

func findStatementPeriod(lines []string) statementPeriod {
	formats := []string{"2.1.2006", "02.01.2006"}
	for _, line := range lines {
		m := periodRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		start, err1 := dateutils.Parse(m[1], formats)
		end, err2 := dateutils.Parse(m[2], formats)
		if err1 == nil && err2 == nil && !end.Before(start) {
			return statementPeriod{start: start, end: end, ok: true}
		}
	}
	return statementPeriod{}
}

var ibanRe = regexp.MustCompile(`\b[A-Z]{2}\d{2}(?:\s?\d{4}){4,7}\b`)

func findAccountNumber(lines []string) string {
	for _, line := range lines {
		if m := ibanRe.FindString(line); m != "" {
			return strings.ReplaceAll(m, " ", "")
		}
	}
	return ""
}

// Amount patterns. The locale form requires a decimal comma with exactly two
// digits so date tokens never match; the dot form mirrors the CSV parser.
var (
	localeAmountRe = regexp.MustCompile(`(?:^|\s)([-+]?\d{1,3}(?:[ \x{00A0}]\d{3})*(?:,\d{2}))\s*$`)
	dotAmountRe    = regexp.MustCompile(`(?:^|\s)(\(?[-+]?[\d,']*\d\.\d{2}\)?)\s*$`)
)

func (cp *compiledProfile) findAmount(line string) (decimal.Decimal, string, bool) {
	if cp.decimalComma {
		if m := localeAmountRe.FindStringSubmatch(line); m != nil {
			if amount, err := models.ParseLocaleAmount(m[1]); err == nil {
				return amount, m[1], true
			}
		}
		return decimal.Zero, "", false
	}
	if m := dotAmountRe.FindStringSubmatch(line); m != nil {
		if amount, err := models.ParseAmount(m[1]); err == nil {
			return amount, m[1], true
		}
	}
	return decimal.Zero, "", false
}

// Marker lines inside a transaction block.
var (
	locationRe  = regexp.MustCompile(`(?i)^(?:Miesto|Location)\s*:\s*(.+)$`)
	referenceRe = regexp.MustCompile(`(?i)^(?:Ref|Referencia|Reference)\s*[:.]?\s+(\S.*)$`)
)

// FXAnnotation is a parsed foreign-exchange note: the original amount and
// currency, the value date, and the exchange rate when the statement carries
// one.
type FXAnnotation struct {
	OriginalAmount decimal.Decimal
	Currency       string
	ValueDate      time.Time
	Rate           decimal.Decimal
	HasRate        bool
}

var fxRe = regexp.MustCompile(`(?i)^Suma:\s*(\S+)\s+([A-Za-z]{3})\s+(\d{1,2}\.\d{1,2}\.\d{2,4})\s+Kurz:\s*(\S*)\s*$`)

// ParseFXAnnotation parses a foreign-exchange annotation line of the shape
// "Suma: 4.83 PLN 02.05.2025 Kurz: 4,2". The trailing rate may be absent.
// Returns ok == false when the line is not an FX annotation.
func ParseFXAnnotation(line string) (FXAnnotation, bool) {
	m := fxRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return FXAnnotation{}, false
	}

	amount, err := models.ParseLocaleNumber(m[1])
	if err != nil {
		return FXAnnotation{}, false
	}
	valueDate, err := dateutils.Parse(m[3], []string{"2.1.2006", "02.01.2006", "2.1.06", "02.01.06"})
	if err != nil {
		return FXAnnotation{}, false
	}

	fx := FXAnnotation{
		OriginalAmount: amount,
		Currency:       strings.ToUpper(m[2]),
		ValueDate:      valueDate,
	}
	if m[4] != "" {
		rate, err := models.ParseLocaleNumber(m[4])
		if err != nil {
			return FXAnnotation{}, false
		}
		fx.Rate = rate
		fx.HasRate = true
	}
	return fx, true
}

// parseBlock parses one transaction block starting at lines[start], which is
// known to match a transaction-start pattern. It is a pure function over the
// line buffer: no scanner state survives between calls. Returns the parsed
// transaction (nil when the block lacks a resolvable amount), the number of
// lines consumed, and the per-block problem when the transaction is dropped.
func parseBlock(lines []string, start int, cp *compiledProfile, period statementPeriod) (*models.ParsedTransaction, int, error) {
	m := cp.matchStart(strings.TrimSpace(lines[start]))
	if m == nil {
		return nil, 1, fmt.Errorf("line %d does not start a transaction", start+1)
	}

	date, inferred, rest, err := startLineDate(m, cp, period)
	if err != nil {
		return nil, 1, err
	}

	tx := &models.ParsedTransaction{Date: date}
	if inferred {
		tx.SetRaw("year_inferred", "true")
	}

	var descParts []string
	amount, rawAmount, haveAmount := cp.findAmount(rest)
	if haveAmount {
		rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), rawAmount))
	}
	if rest != "" {
		descParts = append(descParts, rest)
	}

	consumed := 1
	for i := start + 1; i < len(lines) && consumed <= lookAheadWindow; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || cp.matchStart(line) != nil || cp.isIgnored(line) {
			break
		}
		consumed++

		if lm := locationRe.FindStringSubmatch(line); lm != nil {
			merchant, city := SplitMerchantLocation(lm[1])
			tx.Merchant = CleanBusinessName(merchant)
			if city != "" {
				tx.SetRaw("location", city)
			}
			continue
		}
		if fx, ok := ParseFXAnnotation(line); ok {
			tx.SetRaw("original_amount", fx.OriginalAmount.String())
			tx.SetRaw("original_currency", fx.Currency)
			tx.SetRaw("value_date", fx.ValueDate.Format("2006-01-02"))
			if fx.HasRate {
				tx.SetRaw("exchange_rate", fx.Rate.String())
			}
			continue
		}
		if rm := referenceRe.FindStringSubmatch(line); rm != nil {
			tx.Reference = strings.TrimSpace(rm[1])
			continue
		}
		if !haveAmount {
			if a, raw, ok := cp.findAmount(line); ok {
				amount, haveAmount = a, true
				if remainder := strings.TrimSpace(strings.TrimSuffix(line, raw)); remainder != "" {
					descParts = append(descParts, remainder)
				}
				continue
			}
		}
		descParts = append(descParts, line)
	}

	if !haveAmount {
		return nil, consumed, fmt.Errorf("no amount found in transaction block at line %d", start+1)
	}

	tx.Amount = amount
	tx.Description = strings.Join(descParts, " ")
	tx.SetRaw("transaction_type", ClassifyTransactionType(tx.Description))
	return tx, consumed, nil
}

// startLineDate resolves the date captured by the transaction-start pattern.
// Three capture groups mean short-form (day, month, rest of line) with the
// year inferred from the statement period; two groups mean (full date, rest).
func startLineDate(m []string, cp *compiledProfile, period statementPeriod) (time.Time, bool, string, error) {
	switch len(m) {
	case 4:
		day, err1 := strconv.Atoi(m[1])
		month, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil || month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, false, "", fmt.Errorf("invalid short-form date %q.%q.", m[1], m[2])
		}
		return resolveYear(day, time.Month(month), period), true, m[3], nil
	case 3:
		date, err := dateutils.Parse(m[1], cp.dateFormats)
		if err != nil {
			return time.Time{}, false, "", err
		}
		return date, false, m[2], nil
	default:
		return time.Time{}, false, "", fmt.Errorf("transaction pattern must capture (day, month, rest) or (date, rest)")
	}
}

// resolveYear picks the year for a day/month token. The statement period's
// end year is preferred; a date that would land after the period end belongs
// to the previous year (statements spanning a year boundary). Without a
// declared period the current year is used.
func resolveYear(day int, month time.Month, period statementPeriod) time.Time {
	if !period.ok {
		return dateutils.Day(time.Now().Year(), month, day)
	}
	candidate := dateutils.Day(period.end.Year(), month, day)
	if candidate.After(period.end) {
		candidate = dateutils.Day(period.end.Year()-1, month, day)
	}
	return candidate
}
