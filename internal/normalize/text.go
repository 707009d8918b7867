package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, so "Café" and
// "Cafe" compare equal.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics removes diacritical marks from s.
func FoldDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// ForComparison produces the canonical comparison key for a free-text field:
// lowercase, diacritics stripped, punctuation removed, whitespace collapsed.
// Comparison keys are for matching only, never for display.
func ForComparison(s string) string {
	return collapse(FoldDiacritics(strings.ToLower(strings.TrimSpace(s))), false)
}

// forComparisonKeepHyphens is ForComparison but preserves hyphens, used for
// compound personal names like "Mary-Jane".
func forComparisonKeepHyphens(s string) string {
	return collapse(FoldDiacritics(strings.ToLower(strings.TrimSpace(s))), true)
}

// collapse drops punctuation and squeezes runs of whitespace to one space.
func collapse(s string, keepHyphens bool) string {
	var sb strings.Builder
	sb.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
			prevSpace = false
		case keepHyphens && r == '-':
			sb.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimRight(sb.String(), " ")
}

// Title normalizes a title string for comparison. Alias of ForComparison
// kept for call-site readability.
func Title(s string) string {
	return ForComparison(s)
}
