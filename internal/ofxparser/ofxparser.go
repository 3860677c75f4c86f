// Package ofxparser parses OFX and QFX statements. OFX 1.x SGML and most 2.x
// files go through ofxgo; 2.x XML documents ofxgo rejects fall back to a
// small XPath extraction.
package ofxparser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"ledgerline/statement-import/internal/categorizer"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
)

// Parser implements parser.Parser for OFX/QFX statements.
type Parser struct {
	parser.BaseParser
	categorizer *categorizer.Categorizer
}

// New creates an OFX parser.
func New(logger logging.Logger, cat *categorizer.Categorizer) *Parser {
	return &Parser{
		BaseParser:  parser.NewBaseParser(logger),
		categorizer: cat,
	}
}

// Name implements parser.Parser.
func (p *Parser) Name() string { return "ofx" }

// DefaultConfig implements parser.Parser.
func (p *Parser) DefaultConfig() models.ParserConfig {
	return models.ParserConfig{
		Name:                p.Name(),
		SupportedExtensions: []string{"ofx", "qfx"},
		MimeTypes:           []string{"application/x-ofx"},
	}
}

// CanParse implements parser.Parser.
func (p *Parser) CanParse(filename, mime string) bool {
	ext := parser.ExtensionOf(filename)
	return ext == "ofx" || ext == "qfx" || mime == "application/x-ofx"
}

// Parse implements parser.Parser.
func (p *Parser) Parse(ctx context.Context, r io.Reader, opts parser.Options) (*models.ParseResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading OFX content: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := models.NewParseResult()

	resp, err := ofxgo.ParseResponse(bytes.NewReader(content))
	if err != nil {
		// ofxgo is strict about OFX 2.x XML; retry with the XPath path
		// before giving up.
		if looksLikeXML(content) {
			p.GetLogger().WithError(err).Debug("ofxgo rejected document, trying XML extraction")
			return p.parseXML(content, opts, result)
		}
		result.AddError(fmt.Sprintf("unparseable OFX document: %v", err))
		return result, nil
	}

	result.Metadata[models.MetaExtractionMethod] = "ofxgo"
	p.collectStatements(resp, opts, result)
	if len(result.Transactions) == 0 && len(result.Errors) == 0 && !p.sawStatement(resp) {
		result.AddError("no bank or credit-card statement found in OFX document")
	}

	p.GetLogger().Info("Parsed OFX statement",
		logging.Field{Key: "transactions", Value: len(result.Transactions)})
	return result, nil
}

func (p *Parser) sawStatement(resp *ofxgo.Response) bool {
	return len(resp.Bank) > 0 || len(resp.CreditCard) > 0
}

func (p *Parser) collectStatements(resp *ofxgo.Response, opts parser.Options, result *models.ParseResult) {
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			result.AddWarning(fmt.Sprintf("unexpected bank message type %T", msg))
			continue
		}
		account := stmt.BankAcctFrom.AcctID.String()
		if account != "" {
			result.Metadata[models.MetaAccountNumber] = account
		}
		p.collectTransactions(stmt.BankTranList, account, opts, result)
	}
	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			result.AddWarning(fmt.Sprintf("unexpected credit-card message type %T", msg))
			continue
		}
		account := stmt.CCAcctFrom.AcctID.String()
		if account != "" {
			result.Metadata[models.MetaAccountNumber] = account
		}
		p.collectTransactions(stmt.BankTranList, account, opts, result)
	}
}

func (p *Parser) collectTransactions(list *ofxgo.TransactionList, account string, opts parser.Options, result *models.ParseResult) {
	if list == nil {
		result.AddWarning("statement carries no transaction list")
		return
	}
	result.Metadata[models.MetaStatementPeriod] = fmt.Sprintf("%s - %s",
		list.DtStart.Time.Format("2006-01-02"), list.DtEnd.Time.Format("2006-01-02"))

	for _, stmtTx := range list.Transactions {
		// Amount embeds a big.Rat; FloatString gives an exact fixed-point
		// rendering regardless of how the library formats it.
		amount, err := decimal.NewFromString(stmtTx.TrnAmt.FloatString(4))
		if err != nil {
			result.AddWarning(fmt.Sprintf("transaction %s: invalid amount", stmtTx.FiTID.String()))
			continue
		}

		posted := stmtTx.DtPosted.Time
		tx := models.ParsedTransaction{
			Date:        dayOf(posted),
			Description: strings.TrimSpace(stmtTx.Name.String()),
			Amount:      amount.Round(2),
			Reference:   stmtTx.FiTID.String(),
			Account:     account,
			Notes:       strings.TrimSpace(stmtTx.Memo.String()),
		}
		if tx.Description == "" {
			tx.Description = tx.Notes
		}
		if tx.Description == "" {
			result.AddWarning(fmt.Sprintf("transaction %s: missing description", tx.Reference))
			continue
		}
		if tx.Account == "" {
			tx.Account = opts.AccountHint
		}
		tx.SetRaw("trntype", stmtTx.TrnType.String())
		if stmtTx.DtUser != nil {
			tx.SetRaw("dtuser", stmtTx.DtUser.Time.Format("2006-01-02"))
		}
		if p.categorizer != nil {
			tx.Category, _ = p.categorizer.Categorize("", tx.Description+" "+tx.Notes)
		}
		result.Transactions = append(result.Transactions, tx)
	}
}
