package tui

import "strings"

// truncateEnd shortens s to at most limit runes, ending with an ellipsis
// when it had to cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	return string(r[:limit-1]) + "…"
}

// truncateMiddle keeps both ends of s, which suits URLs and emails.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	r := []rune(s)
	n := len(r)
	if n <= limit {
		return s
	}
	if limit <= 1 {
		return "…"
	}
	keep := limit - 1
	left := keep / 2
	right := keep - left
	if left <= 0 {
		return "…" + string(r[n-right:])
	}
	return string(r[:left]) + "…" + string(r[n-right:])
}

// singleLine collapses all whitespace runs, newlines included, to one space.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

const maxQueryLength = 256

// limitQuery caps search input at maxQueryLength runes. Whitespace is kept:
// terms match as plain substrings.
func limitQuery(input string) string {
	if r := []rune(input); len(r) > maxQueryLength {
		return string(r[:maxQueryLength])
	}
	return input
}
