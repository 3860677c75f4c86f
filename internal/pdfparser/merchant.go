package pdfparser

import (
	"sort"
	"strings"
)

// knownCities are the location tokens recognized at the end of a merchant
// line. Multi-word cities are matched before shorter ones.
var knownCities = []string{
	"BANSKA BYSTRICA",
	"NOVE ZAMKY",
	"SPISSKA NOVA VES",
	"BRATISLAVA",
	"KOSICE",
	"PRESOV",
	"ZILINA",
	"NITRA",
	"TRNAVA",
	"TRENCIN",
	"MARTIN",
	"POPRAD",
	"PRAHA",
	"BRNO",
	"OSTRAVA",
	"WARSZAWA",
	"KRAKOW",
	"WIEN",
	"BUDAPEST",
	"BERLIN",
	"LONDON",
}

func init() {
	sort.Slice(knownCities, func(i, j int) bool {
		return len(knownCities[i]) > len(knownCities[j])
	})
}

// SplitMerchantLocation splits a location line into merchant name and city.
// When no known city token ends the line the whole string is the merchant and
// the location is empty.
func SplitMerchantLocation(line string) (merchant, city string) {
	trimmed := strings.TrimSpace(line)
	upper := strings.ToUpper(trimmed)
	for _, candidate := range knownCities {
		if upper == candidate {
			return "", trimmed
		}
		if strings.HasSuffix(upper, " "+candidate) {
			cut := len(trimmed) - len(candidate)
			return strings.TrimSpace(trimmed[:cut]), trimmed[cut:]
		}
	}
	return trimmed, ""
}

// legalSuffixes are the legal-entity forms stripped when deriving a stable
// merchant key. Longer forms come first so "S.R.O." wins over "S.R".
var legalSuffixes = []string{
	"SP. Z O.O.", "SPOL. S R.O.", "S.R.O.", "S. R. O.", "SRO",
	"A.S.", "A. S.", "AS.",
	"GMBH", "LLC", "INC.", "INC", "LTD.", "LTD", "CORP.", "CORP", "PLC",
}

// countryTokens are trailing country/region codes stripped after the legal
// suffix pass.
var countryTokens = []string{
	"SVK", "CZE", "POL", "AUT", "DEU", "HUN", "GBR", "USA",
	"SK", "CZ", "PL", "AT", "DE", "HU", "GB", "US",
}

// CleanBusinessName strips legal-entity suffixes and trailing country tokens
// to produce a stable merchant key for matching.
func CleanBusinessName(name string) string {
	cleaned := strings.TrimSpace(name)
	for changed := true; changed; {
		changed = false
		upper := strings.ToUpper(cleaned)
		for _, suffix := range legalSuffixes {
			if strings.HasSuffix(upper, " "+suffix) || upper == suffix {
				cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len(suffix)])
				cleaned = strings.TrimSuffix(cleaned, ",")
				cleaned = strings.TrimSpace(cleaned)
				changed = true
				break
			}
		}
		if changed {
			continue
		}
		for _, token := range countryTokens {
			if strings.HasSuffix(upper, " "+token) {
				cleaned = strings.TrimSpace(cleaned[:len(cleaned)-len(token)])
				cleaned = strings.TrimSuffix(cleaned, ",")
				cleaned = strings.TrimSpace(cleaned)
				changed = true
				break
			}
		}
	}
	return cleaned
}

// Transaction types assigned by ClassifyTransactionType.
const (
	TypeCardPayment = "card_payment"
	TypeLoanPayment = "loan_payment"
	TypeTransfer    = "transfer"
	TypeUnknown     = "unknown"
)

var typeKeywords = []struct {
	Type     string
	Keywords []string
}{
	{TypeCardPayment, []string{"PLATBA KARTOU", "NAKUP KARTOU", "CARD PAYMENT", "POS "}},
	{TypeLoanPayment, []string{"SPLATKA UVERU", "SPLÁTKA ÚVERU", "UVER", "HYPOTEKA", "LOAN PAYMENT"}},
	{TypeTransfer, []string{"PREVOD", "TRVALY PRIKAZ", "TRVALÝ PRÍKAZ", "UHRADA", "ÚHRADA", "TRANSFER", "STANDING ORDER"}},
}

// ClassifyTransactionType buckets a description by keyword lookup.
func ClassifyTransactionType(description string) string {
	upper := strings.ToUpper(description)
	for _, entry := range typeKeywords {
		for _, keyword := range entry.Keywords {
			if strings.Contains(upper, keyword) {
				return entry.Type
			}
		}
	}
	return TypeUnknown
}
