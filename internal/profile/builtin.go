package profile

// Builtin returns a shipped profile by bank key, or nil when none exists.
func Builtin(key string) *BankProfile {
	return builtinProfiles[key]
}

// builtinProfiles are the profiles shipped for known institutions. The
// "tatra" profile is the reference for comma-decimal PDF statements where
// transactions are prose blocks rather than table rows.
var builtinProfiles = map[string]*BankProfile{
	"tatra": {
		Name: "Tatra banka",
		CSVConfig: CSVConfig{
			FieldMappings: map[string][]string{
				"date":        {"datum", "date"},
				"description": {"popis", "description"},
				"amount":      {"suma", "amount"},
				"reference":   {"referencia", "reference"},
			},
			DateFormats: []string{"2.1.2006", "02.01.2006", "2006-01-02"},
			AmountColumns: AmountColumns{
				Single: true,
			},
		},
		PDFConfig: PDFConfig{
			// A transaction block starts with a short day/month token
			// ("2. 5.") followed by free text.
			TransactionPatterns: []string{
				`^(\d{1,2})\.\s{0,2}(\d{1,2})\.\s+(.+)$`,
			},
			DateFormats: []string{"2.1.2006", "02.01.2006"},
			IgnorePatterns: []string{
				`(?i)^výpis|^vypis|^statement`,
				`(?i)^strana\s+\d+|^page\s+\d+`,
				`(?i)^číslo účtu|^cislo uctu|^account number`,
				`(?i)^zostatok|^balance`,
				`^\s*$`,
			},
			CustomProcessing: map[string]string{
				"decimal_comma": "true",
			},
		},
	},
	"generic": {
		Name: "Generic bank",
		CSVConfig: CSVConfig{
			FieldMappings: map[string][]string{
				"date":        {"date", "transaction date", "post date"},
				"description": {"description", "details", "memo"},
				"amount":      {"amount", "value"},
			},
			DateFormats: []string{"2006-01-02", "02/01/2006", "01/02/2006"},
			AmountColumns: AmountColumns{
				Single: true,
			},
		},
	},
}
