// Package util provides small shared helpers for command parsing and
// stage-table formatting.
package util

import (
	"fmt"
	"strconv"
	"strings"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// ParsePressureArg interprets a host-supplied pressure argument: a number
// is a pressure in atmospheres, anything non-numeric (typically "current")
// selects the vessel's ambient pressure. The boolean reports whether a
// fixed value was given.
func ParsePressureArg(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(TrimQuotes(s)), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatDuration renders a burn duration in seconds as m:ss.s for stage
// tables.
func FormatDuration(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	m := int(seconds) / 60
	s := seconds - float64(m*60)
	return fmt.Sprintf("%d:%04.1f", m, s)
}

// FormatTons renders a mass in tons with stable width for stage tables.
func FormatTons(t float64) string {
	return fmt.Sprintf("%.3ft", t)
}
