package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "25.50", "25.5"},
		{"negative", "-25.50", "-25.5"},
		{"parenthesized", "(25.50)", "-25.5"},
		{"trailing minus", "25.50-", "-25.5"},
		{"thousands comma", "$1,234.56", "1234.56"},
		{"apostrophe thousands", "1'234.56", "1234.56"},
		{"currency code", "25.50 CHF", "25.5"},
		{"leading plus", "+12.00", "12"},
		{"rounds half up", "1.005", "1.01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmountInvalid(t *testing.T) {
	_, err := ParseAmount("not a number")
	assert.Error(t, err)

	_, err = ParseAmount("")
	assert.Error(t, err)
}

func TestParseLocaleAmount(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"-12,90", "-12.9"},
		{"1 300,54", "1300.54"},
		{"1 300,54", "1300.54"},
		{"1.300,54", "1300.54"},
		{"4,83", "4.83"},
	}
	for _, tt := range tests {
		got, err := ParseLocaleAmount(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.String(), "input %q", tt.input)
	}
}

func TestParseLocaleNumberKeepsPrecision(t *testing.T) {
	got, err := ParseLocaleNumber("4,2675")
	require.NoError(t, err)
	assert.Equal(t, "4.2675", got.String())
}
