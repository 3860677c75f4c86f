package duplicate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
)

func tx(date string, amount string, description string) models.ParsedTransaction {
	d, err := dateutils.Parse(date, nil)
	if err != nil {
		panic(err)
	}
	return models.ParsedTransaction{
		Date:        d,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
	}
}

func stored(id int64, t models.ParsedTransaction) models.StoredTransaction {
	return models.StoredTransaction{ID: id, ImportID: "imp-1", ParsedTransaction: t}
}

func newDetector() *Detector {
	return NewDetector(Config{}, logging.NewMockLogger())
}

func TestIdenticalTransactionsScoreOne(t *testing.T) {
	a := tx("2025-03-01", "-25.50", "Coffee Shop Main Street")
	score := newDetector().Score(a, a)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestCompletelyDifferentTransactionsScoreNearZero(t *testing.T) {
	a := tx("2025-03-01", "-25.50", "Coffee Shop Main Street")
	b := tx("2025-03-20", "1300.54", "Salary payment employer")
	score := newDetector().Score(a, b)
	assert.Less(t, score, 0.1)
}

func TestDateDecayWithinWindow(t *testing.T) {
	d := newDetector()
	base := tx("2025-03-10", "-10.00", "Lunch place")
	sameDay := d.Score(base, tx("2025-03-10", "-10.00", "Lunch place"))
	oneDay := d.Score(base, tx("2025-03-11", "-10.00", "Lunch place"))
	fourDays := d.Score(base, tx("2025-03-14", "-10.00", "Lunch place"))

	assert.InDelta(t, 1.0, sameDay, 1e-9)
	assert.Greater(t, sameDay, oneDay)
	// Beyond the window only the date credit is lost.
	assert.InDelta(t, 0.7, fourDays, 1e-9)
}

func TestAmountPartialCredit(t *testing.T) {
	d := newDetector()
	base := tx("2025-03-10", "-100.00", "Store")
	near := d.Score(base, tx("2025-03-10", "-99.00", "Store"))
	far := d.Score(base, tx("2025-03-10", "-10.00", "Store"))
	assert.Greater(t, near, far)
	assert.Less(t, near, 1.0)
}

func TestCheckFlagsLikelyDuplicate(t *testing.T) {
	existing := []models.StoredTransaction{
		stored(1, tx("2025-03-01", "-25.50", "Coffee Shop Main Street")),
		stored(2, tx("2025-03-15", "9.99", "Streaming subscription")),
	}
	match := newDetector().Check(tx("2025-03-01", "-25.50", "Coffee Shop Main Street"), existing)

	assert.True(t, match.IsLikelyDuplicate)
	assert.InDelta(t, 1.0, match.ConfidenceScore, 1e-9)
	require.Len(t, match.Duplicates, 1)
	assert.Equal(t, int64(1), match.Duplicates[0].Existing.ID)
}

func TestCheckAttachesCandidatesBelowLikelyThreshold(t *testing.T) {
	// Same amount and close date but different wording: suspicious enough
	// to surface, not enough to flag.
	existing := []models.StoredTransaction{
		stored(7, tx("2025-03-02", "-25.50", "Card purchase coffee")),
	}
	match := newDetector().Check(tx("2025-03-01", "-25.50", "Morning espresso downtown"), existing)

	assert.False(t, match.IsLikelyDuplicate)
	require.Len(t, match.Duplicates, 1)
	assert.GreaterOrEqual(t, match.Duplicates[0].Score, 0.5)
}

func TestCheckNoCandidates(t *testing.T) {
	match := newDetector().Check(tx("2025-03-01", "-25.50", "Coffee"), nil)
	assert.False(t, match.IsLikelyDuplicate)
	assert.Zero(t, match.ConfidenceScore)
	assert.Empty(t, match.Duplicates)
}

func TestCheckAllPreservesOrder(t *testing.T) {
	txs := []models.ParsedTransaction{
		tx("2025-03-01", "-1.00", "one"),
		tx("2025-03-02", "-2.00", "two"),
	}
	matches := newDetector().CheckAll(txs, nil)
	require.Len(t, matches, 2)
	assert.Equal(t, "one", matches[0].Transaction.Description)
	assert.Equal(t, "two", matches[1].Transaction.Description)
}

func TestDescriptionSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, descriptionSimilarity("Coffee Shop", "coffee shop"), 1e-9)
	assert.InDelta(t, 0.0, descriptionSimilarity("Coffee Shop", "Hardware Store"), 1e-9)
	assert.InDelta(t, 1.0/3.0, descriptionSimilarity("coffee shop", "coffee bar"), 1e-9)
}
