package profile

import "strings"

// fieldVocabulary holds case-insensitive substrings used to guess which
// semantic field a raw column header carries. Order inside a slice matters:
// more specific tokens come first so "trans date" wins over "date" alone.
var fieldVocabulary = map[string][]string{
	"date":        {"trans date", "transaction date", "post date", "booking date", "value date", "datum", "date"},
	"description": {"description", "narrative", "details", "memo", "text", "payee", "name", "popis"},
	"debit":       {"debit", "withdrawal", "money out", "paid out"},
	"credit":      {"credit", "deposit", "money in", "paid in"},
	"amount":      {"amount", "suma", "value"},
	"reference":   {"reference", "ref no", "cheque", "transaction id"},
	"account":     {"account", "iban"},
}

// fieldOrder fixes the iteration order so mapping suggestions are
// deterministic. Debit/credit are matched before the generic amount field.
var fieldOrder = []string{"date", "description", "debit", "credit", "amount", "reference", "account"}

// SuggestFieldMapping guesses a semantic-field -> column-name mapping from
// raw header names. It is a heuristic assist for onboarding a new bank;
// columns that match nothing are simply absent from the result.
func SuggestFieldMapping(columnNames []string) map[string]string {
	mapping := make(map[string]string)
	used := make(map[string]bool)

	for _, field := range fieldOrder {
		for _, column := range columnNames {
			if used[column] || mapping[field] != "" {
				continue
			}
			if MatchesField(field, column) {
				mapping[field] = column
				used[column] = true
			}
		}
	}
	return mapping
}

// MatchesField reports whether a column header looks like the given semantic
// field according to the shared vocabulary.
func MatchesField(field, columnName string) bool {
	lower := strings.ToLower(strings.TrimSpace(columnName))
	for _, token := range fieldVocabulary[field] {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
