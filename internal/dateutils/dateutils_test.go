package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultFormats(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-01-15", Day(2025, time.January, 15)},
		{"15.01.2025", Day(2025, time.January, 15)},
		{"15/01/2025", Day(2025, time.January, 15)},
		{"2.5.2025", Day(2025, time.May, 2)},
		{"20250115", Day(2025, time.January, 15)},
		{"15 Jan 2025", Day(2025, time.January, 15)},
		{"  2025-01-15  ", Day(2025, time.January, 15)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input, nil)
		require.NoError(t, err, "input %q", tt.input)
		assert.True(t, got.Equal(tt.want), "input %q: got %s", tt.input, got)
	}
}

func TestParseConfiguredFormatsWinOverDefaults(t *testing.T) {
	// 01/02/2006 is ambiguous; an explicit European format resolves it.
	got, err := Parse("03/04/2025", []string{"02/01/2006"})
	require.NoError(t, err)
	assert.Equal(t, time.April, got.Month())
	assert.Equal(t, 3, got.Day())
}

func TestParseUnparseable(t *testing.T) {
	_, err := Parse("yesterday", nil)
	assert.Error(t, err)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "15 Jan 2025", Clean("  15   Jan \t 2025 "))
}

func TestDaysApart(t *testing.T) {
	a := Day(2025, time.March, 1)
	b := Day(2025, time.March, 4)
	assert.Equal(t, 3, DaysApart(a, b))
	assert.Equal(t, 3, DaysApart(b, a))
	assert.Equal(t, 0, DaysApart(a, a))
}
