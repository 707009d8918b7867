package normalize

import (
	"regexp"
	"strings"
)

// honorifics are title tokens stripped from the front of a creator name.
var honorifics = map[string]bool{
	"dr": true, "prof": true, "professor": true, "sir": true,
	"rev": true, "reverend": true, "saint": true, "st": true,
	"mr": true, "mrs": true, "ms": true, "miss": true,
	"lady": true, "lord": true, "dame": true,
	"capt": true, "captain": true, "fr": true, "hon": true,
}

// nameSuffixes are generational and academic tokens stripped from the end of
// a creator name. Single-letter roman numerals (I, V, X) are excluded so
// trailing initials are not eaten.
var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "jnr": true, "snr": true,
	"ii": true, "iii": true, "iv": true, "vi": true, "vii": true,
	"viii": true, "ix": true, "xi": true, "xii": true, "xiii": true,
	"xiv": true, "xv": true,
	"phd": true, "md": true, "esq": true, "dds": true, "jd": true,
	"ma": true, "mba": true, "obe": true, "mbe": true,
}

// CreatorName normalizes a person name to its comparison form: "Last, First"
// flipped to natural order, honorific titles and generational/academic
// suffixes stripped, lowercase, diacritics and punctuation removed. Hyphens
// in compound names are preserved.
func CreatorName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	// Flip "Last, First" before any stripping so the suffix scan sees the
	// natural order ("King, Martin Luther, Jr." is handled by dropping the
	// suffix segment first).
	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		rest := strings.TrimSpace(name[idx+1:])
		// A second comma segment is a suffix ("King, Martin Luther, Jr.").
		if j := strings.Index(rest, ","); j >= 0 {
			rest = strings.TrimSpace(rest[:j])
		}
		if rest != "" {
			name = rest + " " + last
		} else {
			name = last
		}
	}

	norm := forComparisonKeepHyphens(name)
	tokens := strings.Fields(norm)

	for len(tokens) > 1 && honorifics[tokens[0]] {
		tokens = tokens[1:]
	}
	for len(tokens) > 1 && nameSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}

	return strings.Join(tokens, " ")
}

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// businessSuffixes are tokens stripped from the end of a publisher name.
var businessSuffixes = map[string]bool{
	"ltd": true, "limited": true, "inc": true, "incorporated": true,
	"corp": true, "corporation": true, "co": true, "company": true,
	"llc": true, "plc": true, "gmbh": true,
	"publishing": true, "publishers": true, "publisher": true,
	"publications": true, "press": true, "books": true, "group": true,
	"house": true, "international": true, "media": true, "editions": true,
}

// PublisherName normalizes a publisher name to its comparison form:
// parentheticals removed ("Penguin (US)" -> "penguin"), a leading article
// dropped, and business suffixes stripped from the end until a core name
// remains. Returns "" only for empty input.
func PublisherName(name string) string {
	name = parenthetical.ReplaceAllString(name, " ")
	norm := ForComparison(name)
	if norm == "" {
		return ""
	}

	tokens := strings.Fields(norm)
	if len(tokens) > 1 && tokens[0] == "the" {
		tokens = tokens[1:]
	}
	for len(tokens) > 1 && businessSuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}
