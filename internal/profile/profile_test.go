package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *BankProfile {
	return &BankProfile{
		Name: "Test bank",
		CSVConfig: CSVConfig{
			FieldMappings: map[string][]string{
				"date":        {"date"},
				"description": {"description"},
				"amount":      {"amount"},
			},
			DateFormats:   []string{"2006-01-02"},
			AmountColumns: AmountColumns{Single: true},
		},
	}
}

func TestValidateCompleteProfile(t *testing.T) {
	valid, errs := Validate(validProfile())
	assert.True(t, valid)
	assert.Empty(t, errs)
}

func TestValidateMissingRequiredFields(t *testing.T) {
	p := validProfile()
	delete(p.CSVConfig.FieldMappings, "amount")
	p.Name = ""

	valid, errs := Validate(p)
	assert.False(t, valid)
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "name is required")
	assert.Contains(t, errs[1], `"amount"`)
}

func TestValidateSplitColumnsNeedBothSides(t *testing.T) {
	p := validProfile()
	p.CSVConfig.AmountColumns = AmountColumns{Single: false, DebitColumn: "Money Out"}

	valid, errs := Validate(p)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "credit_column")
}

func TestValidateRejectsBadPatterns(t *testing.T) {
	p := validProfile()
	p.PDFConfig.TransactionPatterns = []string{`^(\d{1,2}\.`}

	valid, errs := Validate(p)
	assert.False(t, valid)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "invalid transaction pattern")
}

func TestSuggestFieldMapping(t *testing.T) {
	mapping := SuggestFieldMapping([]string{
		"Trans Date", "Details", "Money Out", "Money In", "Ref No", "IBAN",
	})

	assert.Equal(t, "Trans Date", mapping["date"])
	assert.Equal(t, "Details", mapping["description"])
	assert.Equal(t, "Money Out", mapping["debit"])
	assert.Equal(t, "Money In", mapping["credit"])
	assert.Equal(t, "Ref No", mapping["reference"])
	assert.Equal(t, "IBAN", mapping["account"])
	assert.NotContains(t, mapping, "amount")
}

func TestSuggestFieldMappingDoesNotReuseColumns(t *testing.T) {
	// "Value Date" matches both the date and amount vocabulary; the earlier
	// field in the suggestion order claims it and the later one goes empty.
	mapping := SuggestFieldMapping([]string{"Value Date", "Details"})
	assert.Equal(t, "Value Date", mapping["date"])
	assert.Equal(t, "Details", mapping["description"])
	assert.NotContains(t, mapping, "amount")
}

func TestMatchesField(t *testing.T) {
	assert.True(t, MatchesField("date", "Booking Date"))
	assert.True(t, MatchesField("description", "Popis transakcie"))
	assert.False(t, MatchesField("amount", "Date"))
	assert.False(t, MatchesField("nonexistent", "Date"))
}
