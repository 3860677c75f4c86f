// Package sqlrepo is the SQLite persistence collaborator for the import
// workflow: imported transactions, upload records and rollback tokens.
package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"ledgerline/statement-import/internal/importer"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
)

const dateLayout = "2006-01-02"

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	import_id   TEXT NOT NULL,
	date        TEXT NOT NULL,
	description TEXT NOT NULL,
	amount      TEXT NOT NULL,
	merchant    TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	account     TEXT NOT NULL DEFAULT '',
	reference   TEXT NOT NULL DEFAULT '',
	notes       TEXT NOT NULL DEFAULT '',
	raw_data    TEXT NOT NULL DEFAULT '{}'
);
CREATE INDEX IF NOT EXISTS idx_transactions_import ON transactions(import_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);

CREATE TABLE IF NOT EXISTS uploads (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	status     TEXT NOT NULL,
	file_hash  TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploads_hash ON uploads(file_hash);

CREATE TABLE IF NOT EXISTS rollback_tokens (
	token     TEXT PRIMARY KEY,
	import_id TEXT NOT NULL,
	redeemed  INTEGER NOT NULL DEFAULT 0
);
`

// Repository implements importer.Repository on a SQLite database.
type Repository struct {
	db     *sql.DB
	logger logging.Logger
}

var _ importer.Repository = (*Repository)(nil)

// New opens (creating if needed) the database at path and prepares the
// schema. WAL mode and a busy timeout keep the single-writer model usable;
// one connection avoids SQLite lock contention entirely.
func New(path string, logger logging.Logger) (*Repository, error) {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error reaching database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error preparing schema: %w", err)
	}

	logger.Info("Database ready", logging.Field{Key: "path", Value: path})
	return &Repository{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// SaveTransactions inserts the batch inside one transaction so a failure
// commits nothing.
func (r *Repository) SaveTransactions(ctx context.Context, importID string, txs []models.ParsedTransaction) (int, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error starting transaction: %w", err)
	}
	defer func() {
		_ = dbTx.Rollback()
	}()

	stmt, err := dbTx.PrepareContext(ctx, `INSERT INTO transactions
		(import_id, date, description, amount, merchant, category, account, reference, notes, raw_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, tx := range txs {
		raw, err := json.Marshal(tx.RawData)
		if err != nil {
			return 0, fmt.Errorf("error encoding raw data: %w", err)
		}
		if tx.RawData == nil {
			raw = []byte("{}")
		}
		if _, err := stmt.ExecContext(ctx,
			importID,
			tx.Date.Format(dateLayout),
			tx.Description,
			tx.Amount.String(),
			tx.Merchant,
			tx.Category,
			tx.Account,
			tx.Reference,
			tx.Notes,
			string(raw),
		); err != nil {
			return 0, fmt.Errorf("error inserting transaction: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing import %s: %w", importID, err)
	}
	return len(txs), nil
}

// DeleteByImportID removes every transaction created under the import.
func (r *Repository) DeleteByImportID(ctx context.Context, importID string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE import_id = ?`, importID)
	if err != nil {
		return 0, fmt.Errorf("error deleting import %s: %w", importID, err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(deleted), nil
}

// FindCandidates returns stored transactions dated within [from, to], the
// coarse window duplicate detection scores against.
func (r *Repository) FindCandidates(ctx context.Context, from, to time.Time) ([]models.StoredTransaction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, import_id, date, description, amount, merchant, category, account, reference, notes, raw_data
		FROM transactions WHERE date >= ? AND date <= ? ORDER BY date, id`,
		from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("error querying candidates: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []models.StoredTransaction
	for rows.Next() {
		var (
			stored        models.StoredTransaction
			date, amount  string
			rawData       string
		)
		if err := rows.Scan(&stored.ID, &stored.ImportID, &date, &stored.Description, &amount,
			&stored.Merchant, &stored.Category, &stored.Account, &stored.Reference, &stored.Notes, &rawData); err != nil {
			return nil, fmt.Errorf("error scanning transaction: %w", err)
		}
		if stored.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("error parsing stored date %q: %w", date, err)
		}
		if stored.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("error parsing stored amount %q: %w", amount, err)
		}
		if rawData != "" && rawData != "{}" {
			if err := json.Unmarshal([]byte(rawData), &stored.RawData); err != nil {
				return nil, fmt.Errorf("error decoding raw data: %w", err)
			}
		}
		out = append(out, stored)
	}
	return out, rows.Err()
}

// SaveUpload upserts the workflow record. The record itself travels as a
// JSON payload; status and hash are mirrored into columns for querying.
func (r *Repository) SaveUpload(ctx context.Context, rec *importer.UploadRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("error encoding upload record: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO uploads (id, payload, status, file_hash, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, status = excluded.status,
			file_hash = excluded.file_hash, updated_at = excluded.updated_at`,
		rec.ID, string(payload), rec.Status, rec.FileHash, rec.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("error saving upload %s: %w", rec.ID, err)
	}
	return nil
}

// GetUpload loads one workflow record by id.
func (r *Repository) GetUpload(ctx context.Context, id string) (*importer.UploadRecord, error) {
	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT payload FROM uploads WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("upload %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("error loading upload %s: %w", id, err)
	}
	return decodeUpload(payload)
}

// DeleteUpload removes a workflow record.
func (r *Repository) DeleteUpload(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM uploads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("error deleting upload %s: %w", id, err)
	}
	return nil
}

// FindConfirmedUploadByHash returns a confirmed upload with the same content
// hash, or nil when none exists.
func (r *Repository) FindConfirmedUploadByHash(ctx context.Context, hash string) (*importer.UploadRecord, error) {
	if hash == "" {
		return nil, nil
	}
	var payload string
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM uploads WHERE file_hash = ? AND status = ? LIMIT 1`,
		hash, importer.StatusConfirmed).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying uploads by hash: %w", err)
	}
	return decodeUpload(payload)
}

// SaveRollbackToken records an unredeemed token for the import.
func (r *Repository) SaveRollbackToken(ctx context.Context, token, importID string) error {
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO rollback_tokens (token, import_id) VALUES (?, ?)`, token, importID); err != nil {
		return fmt.Errorf("error saving rollback token: %w", err)
	}
	return nil
}

// RedeemRollbackToken consumes the token and returns its import id. The
// conditional update makes redemption atomic: the second caller sees zero
// affected rows.
func (r *Repository) RedeemRollbackToken(ctx context.Context, token string) (string, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rollback_tokens SET redeemed = 1 WHERE token = ? AND redeemed = 0`, token)
	if err != nil {
		return "", fmt.Errorf("error redeeming rollback token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", fmt.Errorf("unknown or already redeemed rollback token")
	}

	var importID string
	if err := r.db.QueryRowContext(ctx,
		`SELECT import_id FROM rollback_tokens WHERE token = ?`, token).Scan(&importID); err != nil {
		return "", fmt.Errorf("error loading redeemed token: %w", err)
	}
	return importID, nil
}

func decodeUpload(payload string) (*importer.UploadRecord, error) {
	var rec importer.UploadRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("error decoding upload record: %w", err)
	}
	return &rec, nil
}
