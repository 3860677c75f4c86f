// Package categorizer assigns best-effort spending categories to parsed
// transactions by keyword matching. Suggestions are never authoritative;
// callers treat an empty category as perfectly valid.
package categorizer

import (
	"strings"

	"ledgerline/statement-import/internal/logging"
)

// Category names used by the built-in keyword table.
const (
	CategoryGroceries     = "Groceries"
	CategoryRestaurants   = "Restaurants"
	CategoryTransport     = "Transportation"
	CategoryShopping      = "Shopping"
	CategoryUtilities     = "Utilities"
	CategoryEntertainment = "Entertainment"
	CategoryHealth        = "Health"
	CategoryWithdrawals   = "Cash Withdrawals"
	CategoryTransfers     = "Transfers"
	CategoryIncome        = "Income"
	CategoryFees          = "Fees"
)

// keywordRule pairs an upper-cased keyword with the category it implies.
// Rules are ordered from most to least specific; the first hit wins.
type keywordRule struct {
	Keyword  string
	Category string
}

var builtinRules = []keywordRule{
	// Groceries
	{"GROCERY", CategoryGroceries},
	{"SUPERMARKET", CategoryGroceries},
	{"MARKET", CategoryGroceries},
	{"LIDL", CategoryGroceries},
	{"ALDI", CategoryGroceries},
	{"TESCO", CategoryGroceries},
	{"KAUFLAND", CategoryGroceries},
	{"BILLA", CategoryGroceries},
	{"COOP", CategoryGroceries},

	// Restaurants
	{"RESTAURANT", CategoryRestaurants},
	{"PIZZERIA", CategoryRestaurants},
	{"CAFE", CategoryRestaurants},
	{"COFFEE", CategoryRestaurants},
	{"BISTRO", CategoryRestaurants},
	{"KEBAB", CategoryRestaurants},
	{"MCDONALD", CategoryRestaurants},

	// Transportation
	{"FUEL", CategoryTransport},
	{"PETROL", CategoryTransport},
	{"GAS STATION", CategoryTransport},
	{"SHELL", CategoryTransport},
	{"SLOVNAFT", CategoryTransport},
	{"OMV", CategoryTransport},
	{"PARKING", CategoryTransport},
	{"TAXI", CategoryTransport},
	{"UBER", CategoryTransport},
	{"BOLT", CategoryTransport},
	{"RAILWAY", CategoryTransport},

	// Utilities and telecom
	{"ELECTRIC", CategoryUtilities},
	{"ENERGY", CategoryUtilities},
	{"TELEKOM", CategoryUtilities},
	{"O2", CategoryUtilities},
	{"ORANGE", CategoryUtilities},
	{"INTERNET", CategoryUtilities},

	// Entertainment
	{"CINEMA", CategoryEntertainment},
	{"NETFLIX", CategoryEntertainment},
	{"SPOTIFY", CategoryEntertainment},
	{"STEAM", CategoryEntertainment},

	// Health
	{"PHARMACY", CategoryHealth},
	{"LEKAREN", CategoryHealth},
	{"APOTHEKE", CategoryHealth},

	// Money movement
	{"WITHDRAWAL", CategoryWithdrawals},
	{"ATM", CategoryWithdrawals},
	{"TRANSFER", CategoryTransfers},
	{"SALARY", CategoryIncome},
	{"PAYROLL", CategoryIncome},
	{"MZDA", CategoryIncome},
	{"FEE", CategoryFees},
	{"POPLATOK", CategoryFees},
}

// Categorizer matches transaction text against the built-in keyword table
// plus any extra rules supplied at construction time.
type Categorizer struct {
	rules  []keywordRule
	logger logging.Logger
}

// New creates a Categorizer. extra maps keyword -> category and is matched
// before the built-in table.
func New(extra map[string]string, logger logging.Logger) *Categorizer {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	rules := make([]keywordRule, 0, len(extra)+len(builtinRules))
	for keyword, category := range extra {
		rules = append(rules, keywordRule{Keyword: strings.ToUpper(keyword), Category: category})
	}
	rules = append(rules, builtinRules...)
	return &Categorizer{rules: rules, logger: logger}
}

// Categorize returns a category suggestion for the given merchant and
// description, and whether any keyword matched.
func (c *Categorizer) Categorize(merchant, description string) (string, bool) {
	haystack := strings.ToUpper(merchant + " " + description)
	for _, rule := range c.rules {
		if strings.Contains(haystack, rule.Keyword) {
			c.logger.Debug("Transaction categorized by keyword",
				logging.Field{Key: "keyword", Value: rule.Keyword},
				logging.Field{Key: "category", Value: rule.Category})
			return rule.Category, true
		}
	}
	return "", false
}
