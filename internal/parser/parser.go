// Package parser defines the capability interface every format parser
// implements, the shared base parser, and the registry that resolves which
// parser handles a given file.
package parser

import (
	"context"
	"io"

	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/profile"
)

// Options carries per-parse inputs a caller may supply.
type Options struct {
	// Profile is the bank profile to apply, nil for generic heuristics.
	Profile *profile.BankProfile
	// AccountHint is copied onto transactions that carry no account of
	// their own.
	AccountHint string
}

// Parser is the contract every format parser implements. Parse is the only
// method permitted to block on I/O and must not mutate shared state, so a
// single parser instance is safe for concurrent parses.
type Parser interface {
	// Name returns the unique registry key.
	Name() string

	// DefaultConfig describes the extensions, MIME types and tunables the
	// parser registers under.
	DefaultConfig() models.ParserConfig

	// CanParse reports whether the parser claims the file, judged by
	// filename extension and optional MIME type. mime may be empty.
	CanParse(filename, mime string) bool

	// Parse reads the statement and returns a ParseResult. Per-line
	// failures become warnings; only a file-level structural failure
	// yields Success == false or a non-nil error.
	Parse(ctx context.Context, r io.Reader, opts Options) (*models.ParseResult, error)
}
