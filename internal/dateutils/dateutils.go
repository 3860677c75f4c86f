// Package dateutils provides the date parsing shared by all format parsers.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Common date layout constants used throughout the engine.
const (
	LayoutISO      = "2006-01-02"
	LayoutEuropean = "02.01.2006"
	LayoutUS       = "01/02/2006"
	LayoutCompact  = "20060102"
)

// DefaultFormats is the ordered list tried when a parser has no configured
// formats. ISO first, then locale-specific layouts.
var DefaultFormats = []string{
	LayoutISO,
	LayoutEuropean,
	"02/01/2006",
	LayoutUS,
	"02-01-2006",
	"2.1.2006",
	"2006/01/02",
	LayoutCompact,
	"02 Jan 2006",
	"Jan 2, 2006",
}

var spaceRe = regexp.MustCompile(`\s+`)

// Clean trims and collapses whitespace in a date string.
func Clean(dateStr string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// Parse tries each format in order and returns the first that fully consumes
// the input. An empty formats slice falls back to DefaultFormats.
func Parse(dateStr string, formats []string) (time.Time, error) {
	dateStr = Clean(dateStr)
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// Day returns a date truncated to midnight UTC, the canonical form for
// transaction dates which carry no time component.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DaysApart returns the absolute number of calendar days between two dates.
func DaysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
