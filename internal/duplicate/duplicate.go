// Package duplicate scores newly parsed transactions against previously
// recorded ones. The score is a weighted blend of amount equality, date
// proximity and description token overlap; thresholds decide what counts as
// a likely duplicate versus a candidate worth showing an operator.
package duplicate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerline/statement-import/internal/dateutils"
	"ledgerline/statement-import/internal/logging"
	"ledgerline/statement-import/internal/models"
)

// Similarity weights. They sum to 1 so the score stays in [0,1].
const (
	amountWeight      = 0.4
	dateWeight        = 0.3
	descriptionWeight = 0.3
)

// Config tunes the detector. Zero values select the defaults.
type Config struct {
	// LikelyThreshold marks a transaction a likely duplicate when its best
	// candidate scores at or above it. Default 0.7.
	LikelyThreshold float64
	// InclusionThreshold attaches candidates scoring at or above it for
	// operator review. Default 0.5.
	InclusionThreshold float64
	// DateWindowDays is where date proximity credit reaches zero. Default 3.
	DateWindowDays int
}

func (c Config) withDefaults() Config {
	if c.LikelyThreshold == 0 {
		c.LikelyThreshold = 0.7
	}
	if c.InclusionThreshold == 0 {
		c.InclusionThreshold = 0.5
	}
	if c.DateWindowDays == 0 {
		c.DateWindowDays = 3
	}
	return c
}

// Candidate is one existing record scored against a new transaction.
type Candidate struct {
	Existing models.StoredTransaction `json:"existing"`
	Score    float64                  `json:"score"`
}

// Match is the detection outcome for one new transaction. Duplicates holds
// every candidate above the inclusion threshold, best first, whether or not
// the likely-duplicate flag is set.
type Match struct {
	Transaction       models.ParsedTransaction `json:"transaction"`
	IsLikelyDuplicate bool                     `json:"is_likely_duplicate"`
	ConfidenceScore   float64                  `json:"confidence_score"`
	Duplicates        []Candidate              `json:"duplicates,omitempty"`
}

// Detector computes duplicate matches.
type Detector struct {
	cfg    Config
	logger logging.Logger
}

// NewDetector creates a Detector.
func NewDetector(cfg Config, logger logging.Logger) *Detector {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Detector{cfg: cfg.withDefaults(), logger: logger}
}

// Check scores one new transaction against the candidate records.
func (d *Detector) Check(tx models.ParsedTransaction, existing []models.StoredTransaction) Match {
	match := Match{Transaction: tx}

	for _, record := range existing {
		score := d.Score(tx, record.ParsedTransaction)
		if score >= match.ConfidenceScore {
			match.ConfidenceScore = score
		}
		if score >= d.cfg.InclusionThreshold {
			match.Duplicates = append(match.Duplicates, Candidate{Existing: record, Score: score})
		}
	}
	sortCandidates(match.Duplicates)
	match.IsLikelyDuplicate = match.ConfidenceScore >= d.cfg.LikelyThreshold

	if match.IsLikelyDuplicate {
		d.logger.Debug("Likely duplicate detected",
			logging.Field{Key: "description", Value: tx.Description},
			logging.Field{Key: "score", Value: match.ConfidenceScore})
	}
	return match
}

// CheckAll scores every new transaction, preserving input order.
func (d *Detector) CheckAll(txs []models.ParsedTransaction, existing []models.StoredTransaction) []Match {
	matches := make([]Match, 0, len(txs))
	for _, tx := range txs {
		matches = append(matches, d.Check(tx, existing))
	}
	return matches
}

// Score computes the weighted similarity of two transactions in [0,1].
func (d *Detector) Score(a, b models.ParsedTransaction) float64 {
	return amountWeight*amountSimilarity(a.Amount, b.Amount) +
		dateWeight*d.dateSimilarity(a, b) +
		descriptionWeight*descriptionSimilarity(a.Description, b.Description)
}

// amountSimilarity gives full credit for an exact match and partial credit
// decaying linearly with the relative difference.
func amountSimilarity(a, b decimal.Decimal) float64 {
	if a.Equal(b) {
		return 1
	}
	larger := decimal.Max(a.Abs(), b.Abs())
	if larger.IsZero() {
		return 1
	}
	relDiff, _ := a.Sub(b).Abs().Div(larger).Float64()
	if relDiff > 1 {
		return 0
	}
	return 1 - relDiff
}

// dateSimilarity gives full credit at zero days apart, decaying linearly to
// zero at the window edge.
func (d *Detector) dateSimilarity(a, b models.ParsedTransaction) float64 {
	days := dateutils.DaysApart(a.Date, b.Date)
	if days >= d.cfg.DateWindowDays {
		return 0
	}
	return 1 - float64(days)/float64(d.cfg.DateWindowDays)
}

// descriptionSimilarity is the Jaccard overlap of the lower-cased word sets.
func descriptionSimilarity(a, b string) float64 {
	setA, setB := tokenSet(a), tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if setB[token] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range strings.Fields(strings.ToLower(s)) {
		set[token] = true
	}
	return set
}

func sortCandidates(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
}
