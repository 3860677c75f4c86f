package sqlrepo

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/importer"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func sampleTx(date, amount, description string) models.ParsedTransaction {
	d, err := dateutils.Parse(date, nil)
	if err != nil {
		panic(err)
	}
	tx := models.ParsedTransaction{
		Date:        d,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
	}
	tx.SetRaw("source", "test")
	return tx
}

func TestSaveAndFindTransactions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	saved, err := repo.SaveTransactions(ctx, "imp-1", []models.ParsedTransaction{
		sampleTx("2025-03-01", "-25.50", "Coffee Shop"),
		sampleTx("2025-03-05", "1300.54", "Salary"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	from, _ := dateutils.Parse("2025-03-01", nil)
	to, _ := dateutils.Parse("2025-03-02", nil)
	got, err := repo.FindCandidates(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Coffee Shop", got[0].Description)
	assert.Equal(t, "-25.5", got[0].Amount.String())
	assert.Equal(t, "imp-1", got[0].ImportID)
	assert.Equal(t, "test", got[0].RawData["source"])
	assert.NotZero(t, got[0].ID)
}

func TestDeleteByImportID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.SaveTransactions(ctx, "imp-1", []models.ParsedTransaction{
		sampleTx("2025-03-01", "-1.00", "one"),
		sampleTx("2025-03-02", "-2.00", "two"),
	})
	require.NoError(t, err)
	_, err = repo.SaveTransactions(ctx, "imp-2", []models.ParsedTransaction{
		sampleTx("2025-03-03", "-3.00", "three"),
	})
	require.NoError(t, err)

	deleted, err := repo.DeleteByImportID(ctx, "imp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	from, _ := dateutils.Parse("2025-01-01", nil)
	to, _ := dateutils.Parse("2025-12-31", nil)
	remaining, err := repo.FindCandidates(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "imp-2", remaining[0].ImportID)
}

func TestUploadRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec := &importer.UploadRecord{
		ID:        "up-1",
		Filename:  "statement.csv",
		FilePath:  "/tmp/statement.csv",
		Status:    importer.StatusValidated,
		FileHash:  "abc123",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, repo.SaveUpload(ctx, rec))

	got, err := repo.GetUpload(ctx, "up-1")
	require.NoError(t, err)
	assert.Equal(t, rec.Filename, got.Filename)
	assert.Equal(t, rec.Status, got.Status)

	// Upsert on status change.
	rec.Status = importer.StatusConfirmed
	require.NoError(t, repo.SaveUpload(ctx, rec))
	got, err = repo.GetUpload(ctx, "up-1")
	require.NoError(t, err)
	assert.Equal(t, importer.StatusConfirmed, got.Status)

	byHash, err := repo.FindConfirmedUploadByHash(ctx, "abc123")
	require.NoError(t, err)
	require.NotNil(t, byHash)
	assert.Equal(t, "up-1", byHash.ID)

	missing, err := repo.FindConfirmedUploadByHash(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.DeleteUpload(ctx, "up-1"))
	_, err = repo.GetUpload(ctx, "up-1")
	require.Error(t, err)
}

func TestRollbackTokenSingleUse(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.SaveRollbackToken(ctx, "tok-1", "imp-1"))

	importID, err := repo.RedeemRollbackToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "imp-1", importID)

	_, err = repo.RedeemRollbackToken(ctx, "tok-1")
	require.Error(t, err)

	_, err = repo.RedeemRollbackToken(ctx, "never-issued")
	require.Error(t, err)
}
