// Package importer drives the upload → preview → confirm workflow that
// turns a statement file into committed transactions, with duplicate
// resolution on the way in and a single-use rollback token on the way out.
package importer

import (
	"context"
	"time"

	"ledgerline/statement-import/internal/duplicate"
	"ledgerline/statement-import/internal/models"
)

// Upload lifecycle states.
const (
	StatusUploaded  = "uploaded"
	StatusValidated = "validated"
	StatusParsed    = "parsed"
	StatusConfirmed = "confirmed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// Duplicate-handling policies applied at confirm time.
const (
	// PolicyAutoSkip drops likely duplicates from the committed set.
	PolicyAutoSkip = "auto_skip"
	// PolicyFlag commits everything but keeps the duplicate report.
	PolicyFlag = "flag"
	// PolicyKeep commits everything and discards the report.
	PolicyKeep = "keep"
)

// UploadRecord tracks one file through the workflow. It is the persistent
// state machine instance keyed by ID.
type UploadRecord struct {
	ID             string              `json:"id"`
	Filename       string              `json:"filename"`
	FilePath       string              `json:"file_path"`
	BankKey        string              `json:"bank_key,omitempty"`
	Status         string              `json:"status"`
	FileHash       string              `json:"file_hash"`
	DetectedParser string              `json:"detected_parser,omitempty"`
	Errors         []string            `json:"errors,omitempty"`
	Result         *models.ParseResult `json:"result,omitempty"`
	Matches        []duplicate.Match   `json:"matches,omitempty"`
	ImportID       string              `json:"import_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ImportResult is the outcome of a confirm request. RollbackToken is issued
// on every confirm outcome, including partial failure, so the operator can
// always clean up deterministically.
type ImportResult struct {
	ImportID       string   `json:"import_id"`
	Success        bool     `json:"success"`
	ImportedCount  int      `json:"imported_count"`
	SkippedCount   int      `json:"skipped_count"`
	DuplicateCount int      `json:"duplicate_count"`
	Errors         []string `json:"errors,omitempty"`
	RollbackToken  string   `json:"rollback_token"`
}

// Repository is the persistence collaborator. SaveTransactions commits the
// batch atomically under the import id; RedeemRollbackToken must consume the
// token exactly once even under concurrent redemption.
type Repository interface {
	SaveTransactions(ctx context.Context, importID string, txs []models.ParsedTransaction) (int, error)
	DeleteByImportID(ctx context.Context, importID string) (int, error)
	FindCandidates(ctx context.Context, from, to time.Time) ([]models.StoredTransaction, error)

	SaveUpload(ctx context.Context, rec *UploadRecord) error
	GetUpload(ctx context.Context, id string) (*UploadRecord, error)
	DeleteUpload(ctx context.Context, id string) error
	FindConfirmedUploadByHash(ctx context.Context, hash string) (*UploadRecord, error)

	SaveRollbackToken(ctx context.Context, token, importID string) error
	RedeemRollbackToken(ctx context.Context, token string) (string, error)
}

// ProgressNotifier receives workflow stage updates. Implementations must be
// fast; the service calls them inline.
type ProgressNotifier interface {
	Progress(uploadID, stage string, done, total int)
}

// NopNotifier ignores all progress updates.
type NopNotifier struct{}

// Progress implements ProgressNotifier.
func (NopNotifier) Progress(uploadID, stage string, done, total int) {}
