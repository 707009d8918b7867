package match

import (
	"strings"

	"github.com/openshelf/metadata-service/internal/normalize"
)

// particles are lowercase surname particles. Multi-word last names like
// "van der Berg" or "de la Cruz" are detected by scanning backward from the
// final token while consecutive tokens stay in this set.
var particles = map[string]bool{
	"van": true, "von": true, "de": true, "la": true, "le": true,
	"del": true, "della": true, "di": true, "da": true, "dos": true,
	"du": true, "der": true, "den": true, "ten": true, "ter": true,
	"mac": true, "mc": true, "o": true, "al": true, "el": true,
	"bin": true, "ibn": true, "st": true,
}

var namePrefixes = map[string]bool{
	"dr": true, "prof": true, "professor": true, "sir": true,
	"rev": true, "reverend": true, "saint": true,
	"mr": true, "mrs": true, "ms": true, "miss": true,
	"lady": true, "lord": true, "dame": true, "hon": true,
}

var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
	"phd": true, "md": true, "esq": true,
}

// NameComponents is a personal name broken into its structural parts.
// Tokens keep their original casing; only classification is normalized.
type NameComponents struct {
	First    string
	Middle   []string
	Last     string
	Prefixes []string
	Suffixes []string
}

// ParseNameComponents splits a personal name into components, handling both
// "First Middle Last" and "Last, First Middle" orders, honorific prefixes,
// generational suffixes, and multi-word surname particles.
func ParseNameComponents(name string) NameComponents {
	var out NameComponents
	name = strings.TrimSpace(name)
	if name == "" {
		return out
	}

	var tokens []string
	if idx := strings.Index(name, ","); idx >= 0 {
		last := strings.TrimSpace(name[:idx])
		rest := strings.TrimSpace(name[idx+1:])
		// "King, Martin Luther, Jr." carries the suffix in a third segment.
		if j := strings.Index(rest, ","); j >= 0 {
			suffix := strings.TrimSpace(rest[j+1:])
			rest = strings.TrimSpace(rest[:j])
			if suffix != "" {
				out.Suffixes = append(out.Suffixes, suffix)
			}
		}
		tokens = append(strings.Fields(rest), strings.Fields(last)...)
	} else {
		tokens = strings.Fields(name)
	}

	for len(tokens) > 1 && namePrefixes[classify(tokens[0])] {
		out.Prefixes = append(out.Prefixes, tokens[0])
		tokens = tokens[1:]
	}
	for len(tokens) > 1 && nameSuffixes[classify(tokens[len(tokens)-1])] {
		out.Suffixes = append(out.Suffixes, tokens[len(tokens)-1])
		tokens = tokens[:len(tokens)-1]
	}

	switch len(tokens) {
	case 0:
		return out
	case 1:
		out.Last = tokens[0]
		return out
	}

	// The last name starts at the final token and grows backward while the
	// preceding tokens are surname particles.
	lastStart := len(tokens) - 1
	for lastStart > 1 && particles[classify(tokens[lastStart-1])] {
		lastStart--
	}
	out.Last = strings.Join(tokens[lastStart:], " ")
	out.First = tokens[0]
	if lastStart > 1 {
		out.Middle = tokens[1:lastStart]
	}
	return out
}

// classify lowercases a token and strips trailing periods for set lookups.
func classify(tok string) string {
	return strings.TrimRight(strings.ToLower(tok), ".")
}

// NamesEquivalent reports whether two name strings plausibly refer to the
// same person. The check is symmetric: NamesEquivalent(a,b) ==
// NamesEquivalent(b,a). Matching levels, in order:
//  1. Exact match (case-insensitive).
//  2. Normalized comparison form match.
//  3. Core first+last match, ignoring middle names.
//  4. Initial match: one first name is an initial of the other, same last name.
//  5. Mirror order: "Tolkien J.R.R." vs "J.R.R. Tolkien".
func NamesEquivalent(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	if strings.EqualFold(a, b) {
		return true
	}

	normA := normalize.CreatorName(a)
	normB := normalize.CreatorName(b)
	if normA == normB {
		return true
	}

	compA := ParseNameComponents(a)
	compB := ParseNameComponents(b)
	firstA, lastA := foldToken(compA.First), foldToken(compA.Last)
	firstB, lastB := foldToken(compB.First), foldToken(compB.Last)

	if lastA != "" && lastA == lastB {
		// Core match, middle names ignored.
		if firstA != "" && firstA == firstB {
			return true
		}
		// Initial match.
		if initialMatch(firstA, firstB) {
			return true
		}
	}

	// Mirror order: tokens of one are the reverse of the other.
	return mirrorMatch(normA, normB)
}

// foldToken normalizes one name token for comparison (case, diacritics,
// periods in initials).
func foldToken(tok string) string {
	return normalize.ForComparison(tok)
}

// initialMatch reports whether one token is a single-letter initial of the
// other.
func initialMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if len(a) == 1 && len(b) > 1 && a[0] == b[0] {
		return true
	}
	if len(b) == 1 && len(a) > 1 && b[0] == a[0] {
		return true
	}
	return false
}

// mirrorMatch reports whether the normalized token sequences are reverses of
// each other ("last first" vs "first last" without a comma).
func mirrorMatch(normA, normB string) bool {
	ta := strings.Fields(normA)
	tb := strings.Fields(normB)
	if len(ta) != len(tb) || len(ta) < 2 {
		return false
	}
	for i := range ta {
		if ta[i] != tb[len(tb)-1-i] {
			return false
		}
	}
	return true
}

// PreferredNameFormat selects the best display form among name variants of
// the same person: comma-free beats inverted, fuller strings beat
// abbreviations, fewer periods beat initials, and more tokens beat fewer.
// Ties keep the earliest variant so output is deterministic.
func PreferredNameFormat(variants []string) string {
	best := ""
	bestScore := 0.0
	for _, v := range variants {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		score := scoreNameFormat(v)
		if best == "" || score > bestScore {
			best = v
			bestScore = score
		}
	}
	return best
}

func scoreNameFormat(name string) float64 {
	score := float64(len(name)) * 0.1
	score += float64(len(strings.Fields(name)))
	score -= float64(strings.Count(name, ".")) * 0.5
	if !strings.Contains(name, ",") {
		score += 3.0
	}
	return score
}
