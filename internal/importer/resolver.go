package importer

import (
	"fmt"

	"ledgerline/statement-import/internal/duplicate"
	"ledgerline/statement-import/internal/models"
)

// ConflictReport summarizes what the resolver did with detected duplicates.
type ConflictReport struct {
	Policy         string            `json:"policy"`
	DuplicateCount int               `json:"duplicate_count"`
	Skipped        []duplicate.Match `json:"skipped,omitempty"`
	Flagged        []duplicate.Match `json:"flagged,omitempty"`
}

// ResolveConflicts applies a duplicate policy to the detection matches and
// returns the transaction set to commit plus the report. Unknown policies
// are an error rather than a silent default.
func ResolveConflicts(matches []duplicate.Match, policy string) ([]models.ParsedTransaction, ConflictReport, error) {
	report := ConflictReport{Policy: policy}
	clean := make([]models.ParsedTransaction, 0, len(matches))

	switch policy {
	case PolicyAutoSkip:
		for _, match := range matches {
			if match.IsLikelyDuplicate {
				report.DuplicateCount++
				report.Skipped = append(report.Skipped, match)
				continue
			}
			clean = append(clean, match.Transaction)
		}
	case PolicyFlag:
		for _, match := range matches {
			if match.IsLikelyDuplicate {
				report.DuplicateCount++
				report.Flagged = append(report.Flagged, match)
			}
			clean = append(clean, match.Transaction)
		}
	case PolicyKeep:
		for _, match := range matches {
			if match.IsLikelyDuplicate {
				report.DuplicateCount++
			}
			clean = append(clean, match.Transaction)
		}
	default:
		return nil, report, fmt.Errorf("unknown duplicate policy %q", policy)
	}
	return clean, report, nil
}
