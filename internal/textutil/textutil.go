// Package textutil provides text helpers for terminal and notification
// display: whitespace collapsing and width-limited truncation.
package textutil

import "strings"

// CollapseWhitespace replaces every run of whitespace, including newlines,
// with a single space and trims the result. Transition notes are free-form
// multi-line text; tables and notification bodies want one line.
func CollapseWhitespace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Truncate shortens value to at most max runes, appending an ellipsis when
// anything was cut. A max below 1 returns the value unchanged.
func Truncate(value string, max int) string {
	if max < 1 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= max {
		return value
	}
	if max == 1 {
		return "…"
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}

// Ternary returns a when cond is true, b otherwise.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}
