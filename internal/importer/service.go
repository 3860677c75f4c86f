package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"ledgerline/statement-import/internal/duplicate"
	"ledgerline/statement-import/internal/filedetect"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
	"ledgerline/statement-import/internal/parser"
	"ledgerline/statement-import/internal/profile"
)

// candidateWindowSlack widens the repository date-window query beyond the
// parsed date range so near-boundary duplicates are still found.
const candidateWindowSlack = 3 * 24 * time.Hour

// Service orchestrates the import workflow. All collaborators are injected;
// the service owns no global state.
type Service struct {
	registry *parser.Registry
	detector *filedetect.Detector
	profiles *profile.Store
	dups     *duplicate.Detector
	repo     Repository
	notifier ProgressNotifier
	logger   logging.Logger
}

// NewService wires an import service. A nil notifier gets the no-op one.
func NewService(registry *parser.Registry, detector *filedetect.Detector, profiles *profile.Store, dups *duplicate.Detector, repo Repository, notifier ProgressNotifier, logger logging.Logger) *Service {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Service{
		registry: registry,
		detector: detector,
		profiles: profiles,
		dups:     dups,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

// Upload registers a statement file. Validation failures move the record
// straight to failed without invoking any parser; the structured errors ride
// on the record. A file whose content hash matches an already confirmed
// upload is rejected to guard against double imports.
func (s *Service) Upload(ctx context.Context, path, bankKey string) (*UploadRecord, error) {
	now := time.Now().UTC()
	rec := &UploadRecord{
		ID:        uuid.NewString(),
		Filename:  filepath.Base(path),
		FilePath:  path,
		BankKey:   bankKey,
		Status:    StatusUploaded,
		CreatedAt: now,
		UpdatedAt: now,
	}

	valid, problems, err := s.detector.ValidateFile(path)
	if err != nil {
		return nil, fmt.Errorf("error validating upload: %w", err)
	}
	if !valid {
		rec.Status = StatusFailed
		rec.Errors = problems
		if err := s.repo.SaveUpload(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	hash, err := hashFile(path)
	if err != nil {
		return nil, fmt.Errorf("error hashing upload: %w", err)
	}
	rec.FileHash = hash

	if prior, err := s.repo.FindConfirmedUploadByHash(ctx, hash); err != nil {
		return nil, err
	} else if prior != nil {
		rec.Status = StatusFailed
		rec.Errors = []string{fmt.Sprintf("identical file already imported as upload %s", prior.ID)}
		if err := s.repo.SaveUpload(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	rec.Status = StatusValidated
	if err := s.repo.SaveUpload(ctx, rec); err != nil {
		return nil, err
	}
	s.logger.Info("Upload accepted",
		logging.Field{Key: "upload", Value: rec.ID},
		logging.Field{Key: "file", Value: rec.Filename})
	return rec, nil
}

// Preview parses the uploaded file and runs duplicate detection, moving the
// record to parsed. The stored result is what a later Confirm commits.
func (s *Service) Preview(ctx context.Context, uploadID string) (*UploadRecord, error) {
	rec, err := s.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusValidated && rec.Status != StatusUploaded && rec.Status != StatusParsed {
		return nil, fmt.Errorf("upload %s is %s, expected a pre-confirm state", uploadID, rec.Status)
	}
	s.notifier.Progress(uploadID, "parsing", 0, 1)

	info, err := s.detector.GetFileInfo(rec.FilePath)
	if err != nil {
		return nil, err
	}
	p := s.registry.FindParser(info.Name, info.Mime)
	if p == nil {
		return s.failUpload(ctx, rec, fmt.Sprintf("unsupported file format %q", info.Extension))
	}
	rec.DetectedParser = p.Name()

	opts := parser.Options{}
	if rec.BankKey != "" {
		prof, err := s.profiles.LoadProfile(rec.BankKey)
		if err != nil {
			return nil, err
		}
		opts.Profile = prof
	}

	file, err := os.Open(rec.FilePath) // #nosec G304 -- path was validated at upload time
	if err != nil {
		return nil, fmt.Errorf("error opening upload: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	result, err := p.Parse(ctx, file, opts)
	if err != nil {
		return s.failUpload(ctx, rec, fmt.Sprintf("parse failed: %v", err))
	}
	if !result.Success {
		rec.Result = result
		rec.Status = StatusFailed
		rec.Errors = result.Errors
		rec.UpdatedAt = time.Now().UTC()
		if err := s.repo.SaveUpload(ctx, rec); err != nil {
			return nil, err
		}
		return rec, nil
	}

	matches, err := s.detectDuplicates(ctx, result.Transactions)
	if err != nil {
		return nil, err
	}

	rec.Result = result
	rec.Matches = matches
	rec.Status = StatusParsed
	rec.Errors = nil
	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveUpload(ctx, rec); err != nil {
		return nil, err
	}
	s.notifier.Progress(uploadID, "parsed", 1, 1)

	s.logger.Info("Upload parsed",
		logging.Field{Key: "upload", Value: rec.ID},
		logging.Field{Key: "transactions", Value: len(result.Transactions)},
		logging.Field{Key: "warnings", Value: len(result.Warnings)})
	return rec, nil
}

// Confirm commits the previewed transactions under a fresh import id.
// selected restricts the commit to those preview indices; nil commits all.
// A rollback token is issued on every outcome, including persistence
// failure, covering whatever was created under the import id.
func (s *Service) Confirm(ctx context.Context, uploadID, policy string, selected []int) (*ImportResult, error) {
	rec, err := s.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusParsed {
		return nil, fmt.Errorf("upload %s is %s, expected %s", uploadID, rec.Status, StatusParsed)
	}

	matches, err := selectMatches(rec.Matches, selected)
	if err != nil {
		return nil, err
	}
	clean, report, err := ResolveConflicts(matches, policy)
	if err != nil {
		return nil, err
	}

	importID := uuid.NewString()
	token := uuid.NewString()
	out := &ImportResult{
		ImportID:       importID,
		DuplicateCount: report.DuplicateCount,
		SkippedCount:   len(rec.Matches) - len(clean),
		RollbackToken:  token,
	}
	if err := s.repo.SaveRollbackToken(ctx, token, importID); err != nil {
		return nil, err
	}

	s.notifier.Progress(uploadID, "importing", 0, len(clean))
	imported, err := s.repo.SaveTransactions(ctx, importID, clean)
	rec.ImportID = importID
	rec.UpdatedAt = time.Now().UTC()
	if err != nil {
		out.Errors = append(out.Errors, fmt.Sprintf("persistence failed: %v", err))
		rec.Status = StatusFailed
		rec.Errors = out.Errors
	} else {
		out.Success = true
		out.ImportedCount = imported
		rec.Status = StatusConfirmed
	}
	if saveErr := s.repo.SaveUpload(ctx, rec); saveErr != nil {
		return nil, saveErr
	}
	s.notifier.Progress(uploadID, "imported", out.ImportedCount, len(clean))

	s.logger.Info("Import confirmed",
		logging.Field{Key: "upload", Value: uploadID},
		logging.Field{Key: "import", Value: importID},
		logging.Field{Key: "imported", Value: out.ImportedCount},
		logging.Field{Key: "duplicates", Value: out.DuplicateCount},
		logging.Field{Key: "success", Value: out.Success})
	return out, nil
}

// Rollback redeems a token and deletes every record created under its
// import. Each token works exactly once.
func (s *Service) Rollback(ctx context.Context, token string) (int, error) {
	importID, err := s.repo.RedeemRollbackToken(ctx, token)
	if err != nil {
		return 0, err
	}
	deleted, err := s.repo.DeleteByImportID(ctx, importID)
	if err != nil {
		return 0, fmt.Errorf("error deleting import %s: %w", importID, err)
	}
	s.logger.Info("Import rolled back",
		logging.Field{Key: "import", Value: importID},
		logging.Field{Key: "deleted", Value: deleted})
	return deleted, nil
}

// Cancel deletes a not-yet-confirmed upload and its temporary storage.
func (s *Service) Cancel(ctx context.Context, uploadID string) error {
	rec, err := s.repo.GetUpload(ctx, uploadID)
	if err != nil {
		return err
	}
	if rec.Status == StatusConfirmed {
		return fmt.Errorf("upload %s is already confirmed; use rollback instead", uploadID)
	}
	rec.Status = StatusCancelled
	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveUpload(ctx, rec); err != nil {
		return err
	}
	return s.repo.DeleteUpload(ctx, uploadID)
}

func (s *Service) failUpload(ctx context.Context, rec *UploadRecord, reason string) (*UploadRecord, error) {
	rec.Status = StatusFailed
	rec.Errors = append(rec.Errors, reason)
	rec.UpdatedAt = time.Now().UTC()
	if err := s.repo.SaveUpload(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) detectDuplicates(ctx context.Context, txs []models.ParsedTransaction) ([]duplicate.Match, error) {
	if len(txs) == 0 {
		return nil, nil
	}

	from, to := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date.Before(from) {
			from = tx.Date
		}
		if tx.Date.After(to) {
			to = tx.Date
		}
	}
	existing, err := s.repo.FindCandidates(ctx, from.Add(-candidateWindowSlack), to.Add(candidateWindowSlack))
	if err != nil {
		return nil, fmt.Errorf("error loading duplicate candidates: %w", err)
	}
	return s.dups.CheckAll(txs, existing), nil
}

// selectMatches filters the preview matches down to the chosen indices.
func selectMatches(matches []duplicate.Match, selected []int) ([]duplicate.Match, error) {
	if selected == nil {
		return matches, nil
	}
	out := make([]duplicate.Match, 0, len(selected))
	for _, idx := range selected {
		if idx < 0 || idx >= len(matches) {
			return nil, fmt.Errorf("selected index %d out of range", idx)
		}
		out = append(out, matches[idx])
	}
	return out, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied statement path
	if err != nil {
		return "", err
	}
	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
