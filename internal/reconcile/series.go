package reconcile

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/match"
	"github.com/openshelf/metadata-service/internal/normalize"
)

// seriesPatterns are tried in order against free-text series strings. Named
// captures carry the semantics so pattern order never decides which group is
// the volume.
var seriesPatterns = []*regexp.Regexp{
	// "The Expanse, Book 3" / "Discworld, Vol. 4"
	regexp.MustCompile(`(?i)^(?P<name>.+?),\s*(?:book|bk\.?|volume|vol\.?|no\.?|part)\s*(?P<volume>\S+)$`),
	// "The Expanse #3"
	regexp.MustCompile(`(?i)^(?P<name>.+?)\s*#(?P<volume>\S+)$`),
	// "The Expanse (Vol. 3)" / "Dune (Book One)"
	regexp.MustCompile(`(?i)^(?P<name>.+?)\s*\(\s*(?:book|volume|vol\.?|no\.?|part)?\s*(?P<volume>[^)]+?)\s*\)$`),
	// "3 of The Expanse" / "Book Three of the Stormlight Archive"
	regexp.MustCompile(`(?i)^(?:book\s+)?(?P<volume>\S+)\s+(?:of|in)\s+(?:the\s+)?(?P<name>.+)$`),
	// "The Expanse: Leviathan Wakes" -- name only, subtitle dropped
	regexp.MustCompile(`^(?P<name>[^:]+):\s*.+$`),
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"eleventh": 11, "twelfth": 12, "thirteenth": 13, "fourteenth": 14,
	"fifteenth": 15, "sixteenth": 16, "seventeenth": 17, "eighteenth": 18,
	"nineteenth": 19, "twentieth": 20,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

var romanNumerals = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7,
	"viii": 8, "ix": 9, "x": 10, "xi": 11, "xii": 12, "xiii": 13,
	"xiv": 14, "xv": 15, "xvi": 16, "xvii": 17, "xviii": 18, "xix": 19,
	"xx": 20,
}

// ParseVolumeToken converts a volume token to an integer: plain digits,
// ordinal words ("third"), number words ("three"), and roman numerals I-XX.
// Returns 0 when the token does not express a number.
func ParseVolumeToken(tok string) int {
	tok = strings.ToLower(strings.Trim(tok, " .,)#"))
	if tok == "" {
		return 0
	}
	if n, err := strconv.Atoi(tok); err == nil && n > 0 {
		return n
	}
	if n, ok := ordinalWords[tok]; ok {
		return n
	}
	// Trailing ordinal suffix: "3rd".
	if m := regexp.MustCompile(`^(\d+)(?:st|nd|rd|th)$`).FindStringSubmatch(tok); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if n, ok := romanNumerals[tok]; ok {
		return n
	}
	return 0
}

// ParseSeriesString extracts a series name and volume from a free-text
// series claim. The subtitle pattern yields a name with no volume; input
// that matches nothing is treated as a bare series name.
func ParseSeriesString(s string) (name string, volume int) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", 0
	}
	for _, pat := range seriesPatterns {
		m := pat.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		var matchedName, matchedVolume string
		for i, groupName := range pat.SubexpNames() {
			switch groupName {
			case "name":
				matchedName = m[i]
			case "volume":
				matchedVolume = m[i]
			}
		}
		vol := ParseVolumeToken(matchedVolume)
		// A volume-bearing pattern that captured a non-numeric token is a
		// false positive ("Love in the Time of Cholera" is not volume
		// "Love" of "the Time of Cholera"); keep trying.
		if matchedVolume != "" && vol == 0 {
			continue
		}
		return strings.Trim(matchedName, " ,"), vol
	}
	return s, 0
}

// SeriesReconciler merges series membership claims across sources. Claims
// whose normalized names clear the similarity threshold collapse into one
// series; distinct series survive side by side, so a work can belong to
// both a numbered series and a collection.
type SeriesReconciler struct{}

// NewSeriesReconciler creates a SeriesReconciler.
func NewSeriesReconciler() *SeriesReconciler {
	return &SeriesReconciler{}
}

// seriesCandidate pairs a parsed series claim with its originating input.
type seriesCandidate struct {
	series domain.Series
	in     Input[domain.SeriesRef]
}

// Reconcile resolves the full series list for a work. Returns
// domain.ErrNoInput when called with zero inputs.
func (r *SeriesReconciler) Reconcile(inputs []Input[domain.SeriesRef]) (domain.ReconciledField[[]domain.Series], error) {
	var out domain.ReconciledField[[]domain.Series]
	if len(inputs) == 0 {
		return out, domain.ErrNoInput
	}

	ranked := sortByReliability(inputs)
	candidates := make([]seriesCandidate, 0, len(ranked))
	for _, in := range ranked {
		name, vol := ParseSeriesString(in.Value.Name)
		if in.Value.Volume != nil && *in.Value.Volume > 0 {
			vol = *in.Value.Volume
		}
		if name == "" {
			continue
		}
		s := domain.Series{
			Name:       name,
			Normalized: normalize.ForComparison(name),
			Volume:     vol,
			Type:       domain.SeriesTypeUnknown,
		}
		if vol > 0 {
			s.Type = domain.SeriesTypeNumbered
		}
		candidates = append(candidates, seriesCandidate{series: s, in: in})
	}

	// Group by name similarity above the threshold; first-match linear scan.
	var groups [][]seriesCandidate
	for _, c := range candidates {
		placed := false
		for gi, group := range groups {
			if match.Similarity(group[0].series.Normalized, c.series.Normalized) > match.DefaultSimilarityThreshold {
				groups[gi] = append(group, c)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []seriesCandidate{c})
		}
	}

	// Volume disagreement inside one series group is a conflict; distinct
	// series names are not (membership in several series is normal).
	for _, group := range groups {
		if volumeDisagreement(group) {
			conflict := domain.Conflict{Field: domain.FieldSeries}
			for _, c := range group {
				conflict.Values = append(conflict.Values, domain.ConflictValue{
					Value:  fmt.Sprintf("%s #%d", c.series.Name, c.series.Volume),
					Source: c.in.Source.Name,
				})
			}
			conflict.Resolution = "kept the volume claimed by the most reliable source"
			out.Conflicts = append(out.Conflicts, conflict)
		}
	}

	merged := make([]domain.Series, 0, len(groups))
	for _, group := range groups {
		merged = append(merged, mergeSeriesGroup(group))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Volume != merged[j].Volume {
			return merged[i].Volume < merged[j].Volume
		}
		return merged[i].Name < merged[j].Name
	})

	out.Value = merged
	out.Sources = sources(ranked)
	out.Confidence = clamp(avgReliability(out.Sources) * avgCompleteness(merged))
	switch {
	case len(inputs) == 1:
		out.Reasoning = fmt.Sprintf("single source %s", ranked[0].Source.Name)
	default:
		out.Reasoning = fmt.Sprintf("%d claims merged into %d series", len(candidates), len(merged))
	}
	return out, nil

}

// volumeDisagreement reports whether group members claim different non-zero
// volumes.
func volumeDisagreement(group []seriesCandidate) bool {
	seen := 0
	for _, c := range group {
		if c.series.Volume == 0 {
			continue
		}
		if seen != 0 && c.series.Volume != seen {
			return true
		}
		seen = c.series.Volume
	}
	return false
}

// mergeSeriesGroup coalesces one group's claims fill-missing: the highest
// reliability member's fields win, lower-ranked members backfill what is
// absent. Group order is already reliability-descending.
func mergeSeriesGroup(group []seriesCandidate) domain.Series {
	out := group[0].series
	for _, c := range group[1:] {
		cur := c.series
		if out.Volume == 0 {
			out.Volume = cur.Volume
		}
		if out.Position == 0 {
			out.Position = cur.Position
		}
		if out.TotalVolumes == 0 {
			out.TotalVolumes = cur.TotalVolumes
		}
		if out.Type == domain.SeriesTypeUnknown {
			out.Type = cur.Type
		}
		out.Identifiers = unionIdentifiers(out.Identifiers, cur.Identifiers)
	}
	if out.Volume > 0 && out.Type == domain.SeriesTypeUnknown {
		out.Type = domain.SeriesTypeNumbered
	}
	return out
}

func unionIdentifiers(a, b []domain.Identifier) []domain.Identifier {
	seen := make(map[domain.Identifier]bool, len(a))
	out := append([]domain.Identifier(nil), a...)
	for _, id := range a {
		seen[id] = true
	}
	for _, id := range b {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func avgCompleteness(series []domain.Series) float64 {
	if len(series) == 0 {
		return 0
	}
	var sum float64
	for _, s := range series {
		sum += s.Complete()
	}
	return sum / float64(len(series))
}
