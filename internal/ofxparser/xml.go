package ofxparser

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/xmlpath.v2"

	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
)

var (
	stmtTrnPath = xmlpath.MustCompile("//STMTTRN")
	acctIDPath  = xmlpath.MustCompile("//ACCTID")

	trnTypePath  = xmlpath.MustCompile("TRNTYPE")
	dtPostedPath = xmlpath.MustCompile("DTPOSTED")
	trnAmtPath   = xmlpath.MustCompile("TRNAMT")
	fitIDPath    = xmlpath.MustCompile("FITID")
	namePath     = xmlpath.MustCompile("NAME")
	memoPath     = xmlpath.MustCompile("MEMO")
)

func looksLikeXML(content []byte) bool {
	head := bytes.TrimSpace(content)
	return bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<OFX"))
}

// parseXML extracts transactions from an OFX 2.x XML document with XPath.
// It handles only the statement-transaction subset, which is all the strict
// parser rejections seen in practice contain.
func (p *Parser) parseXML(content []byte, opts parser.Options, result *models.ParseResult) (*models.ParseResult, error) {
	root, err := xmlpath.Parse(bytes.NewReader(content))
	if err != nil {
		result.AddError(fmt.Sprintf("unparseable OFX XML document: %v", err))
		return result, nil
	}
	result.Metadata[models.MetaExtractionMethod] = "ofx-xml"

	if account, ok := acctIDPath.String(root); ok {
		result.Metadata[models.MetaAccountNumber] = strings.TrimSpace(account)
	}

	count := 0
	iter := stmtTrnPath.Iter(root)
	for iter.Next() {
		node := iter.Node()
		count++

		rawAmount, _ := trnAmtPath.String(node)
		amount, err := decimal.NewFromString(strings.TrimSpace(rawAmount))
		if err != nil {
			result.AddWarning(fmt.Sprintf("transaction %d: invalid amount %q", count, rawAmount))
			continue
		}
		rawDate, _ := dtPostedPath.String(node)
		date, err := parseOFXDate(rawDate)
		if err != nil {
			result.AddWarning(fmt.Sprintf("transaction %d: %v", count, err))
			continue
		}

		name, _ := namePath.String(node)
		memo, _ := memoPath.String(node)
		tx := models.ParsedTransaction{
			Date:        date,
			Description: strings.TrimSpace(name),
			Amount:      amount.Round(2),
			Notes:       strings.TrimSpace(memo),
		}
		if tx.Description == "" {
			tx.Description = tx.Notes
		}
		if tx.Description == "" {
			result.AddWarning(fmt.Sprintf("transaction %d: missing description", count))
			continue
		}
		if ref, ok := fitIDPath.String(node); ok {
			tx.Reference = strings.TrimSpace(ref)
		}
		if trnType, ok := trnTypePath.String(node); ok {
			tx.SetRaw("trntype", strings.TrimSpace(trnType))
		}
		tx.Account = opts.AccountHint
		if p.categorizer != nil {
			tx.Category, _ = p.categorizer.Categorize("", tx.Description+" "+tx.Notes)
		}
		result.Transactions = append(result.Transactions, tx)
	}

	if count == 0 {
		result.AddError("no transactions found in OFX XML document")
	}
	return result, nil
}

// parseOFXDate handles the OFX timestamp shape: YYYYMMDD optionally followed
// by a time and timezone suffix. Only the calendar date matters.
func parseOFXDate(raw string) (time.Time, error) {
	digits := strings.TrimSpace(raw)
	if len(digits) < 8 {
		return time.Time{}, fmt.Errorf("invalid OFX date %q", raw)
	}
	return dateutils.Parse(digits[:8], []string{dateutils.LayoutCompact})
}

func dayOf(t time.Time) time.Time {
	return dateutils.Day(t.Year(), t.Month(), t.Day())
}
