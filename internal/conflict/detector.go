package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/match"
	"github.com/openshelf/metadata-service/internal/normalize"
	"github.com/openshelf/metadata-service/internal/observability"
)

// Detector finds and classifies disagreements across a set of records
// describing what should be the same work. It is stateless apart from its
// logger and metrics handles.
type Detector struct {
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewDetector creates a Detector. metrics may be nil.
func NewDetector(logger zerolog.Logger, metrics *observability.Metrics) *Detector {
	return &Detector{
		logger:  logger.With().Str("component", "conflict_detector").Logger(),
		metrics: metrics,
	}
}

// Detect compares the given records field by field and returns every
// classified disagreement, ordered by severity descending. Fewer than two
// records cannot conflict.
func (d *Detector) Detect(records []*domain.MetadataRecord) []DetailedConflict {
	if len(records) < 2 {
		return nil
	}
	var conflicts []DetailedConflict
	appendIf := func(c *DetailedConflict) {
		if c == nil {
			return
		}
		c.ID = uuid.NewString()
		conflicts = append(conflicts, *c)
		if d.metrics != nil {
			d.metrics.ConflictsDetected.WithLabelValues(string(c.Severity)).Inc()
		}
	}

	appendIf(d.titleConflict(records))
	appendIf(d.authorConflict(records))
	appendIf(d.isbnConflict(records))
	appendIf(d.publisherConflict(records))
	appendIf(d.pageCountConflict(records))
	appendIf(d.yearConflict(records))
	appendIf(d.languageConflict(records))

	sort.SliceStable(conflicts, func(i, j int) bool {
		return severityRank(conflicts[i].Severity) > severityRank(conflicts[j].Severity)
	})
	if len(conflicts) > 0 {
		d.logger.Debug().
			Int("records", len(records)).
			Int("conflicts", len(conflicts)).
			Msg("conflicts detected")
	}
	return conflicts
}

// titleConflict fires when normalized titles disagree. Severity scales with
// how far apart the closest pair of distinct titles is: near-identical
// strings are formatting variance, distant ones may be different works.
func (d *Detector) titleConflict(records []*domain.MetadataRecord) *DetailedConflict {
	values, distinct := distinctBy(records, func(r *domain.MetadataRecord) (string, string) {
		return normalize.ForComparison(r.Title), r.Title
	})
	if len(distinct) < 2 {
		return nil
	}
	best := closestSimilarity(distinct)
	c := &DetailedConflict{
		Field:      domain.FieldTitle,
		Type:       TypeValueMismatch,
		Values:     values,
		Confidence: best,
	}
	switch {
	case best >= match.DefaultSimilarityThreshold:
		c.Severity = SeverityMinor
		c.AutoResolvable = true
		c.Resolution = "titles differ only in formatting; keep the highest-confidence variant"
		c.Impact = "display title may change"
	case best >= 0.5:
		c.Severity = SeverityMajor
		c.Resolution = "titles differ substantially; verify both refer to the same work"
		c.Impact = "wrong title would misidentify the work"
	default:
		c.Severity = SeverityCritical
		c.Confidence = 1 - best
		c.Resolution = "titles are unrelated; records likely describe different works"
		c.Impact = "merging would combine metadata from different works"
	}
	return c
}

// authorConflict distinguishes an author *set* mismatch from one source
// merely listing fewer contributors than another.
func (d *Detector) authorConflict(records []*domain.MetadataRecord) *DetailedConflict {
	type claim struct {
		source string
		raw    []string
		keys   map[string]bool
	}
	var claims []claim
	for _, r := range records {
		if len(r.Authors) == 0 {
			continue
		}
		keys := make(map[string]bool, len(r.Authors))
		for _, a := range r.Authors {
			keys[normalize.CreatorName(a)] = true
		}
		claims = append(claims, claim{source: r.Source, raw: r.Authors, keys: keys})
	}
	if len(claims) < 2 {
		return nil
	}

	union := map[string]bool{}
	intersection := map[string]bool{}
	for k := range claims[0].keys {
		intersection[k] = true
	}
	for _, cl := range claims {
		for k := range cl.keys {
			union[k] = true
		}
		for k := range intersection {
			if !cl.keys[k] {
				delete(intersection, k)
			}
		}
	}
	if len(intersection) == len(union) {
		return nil
	}

	var values []domain.ConflictValue
	for _, cl := range claims {
		values = append(values, domain.ConflictValue{
			Value:  joinAuthors(cl.raw),
			Source: cl.source,
		})
	}
	c := &DetailedConflict{
		Field:  domain.FieldAuthors,
		Values: values,
	}
	if len(intersection) > 0 {
		// Shared core with extras on some sides: sources disagree on the
		// full contributor list, not on who wrote the book.
		c.Type = TypeMissingData
		c.Severity = SeverityMinor
		c.AutoResolvable = true
		c.Confidence = float64(len(intersection)) / float64(len(union))
		c.Resolution = "sources agree on the core authors; union the contributor lists"
		c.Impact = "additional contributors added to the record"
	} else {
		c.Type = TypeValueMismatch
		c.Severity = SeverityMajor
		c.Confidence = 0.5
		c.Resolution = "no author is shared between sources; verify attribution manually"
		c.Impact = "wrong attribution credits the work to the wrong person"
	}
	return c
}

// isbnConflict fires when records carry disjoint valid ISBN-13 sets. That
// is never formatting variance: it means different editions or different
// works, so it is always critical and never auto-resolved.
func (d *Detector) isbnConflict(records []*domain.MetadataRecord) *DetailedConflict {
	type claim struct {
		source string
		isbns  map[string]bool
	}
	var claims []claim
	for _, r := range records {
		isbns := map[string]bool{}
		for _, raw := range r.ISBN {
			if n := normalize.NormalizeISBN(raw, true); n != "" {
				isbns[n] = true
			}
		}
		if len(isbns) > 0 {
			claims = append(claims, claim{source: r.Source, isbns: isbns})
		}
	}
	if len(claims) < 2 {
		return nil
	}
	for i := 1; i < len(claims); i++ {
		if !disjoint(claims[0].isbns, claims[i].isbns) {
			return nil
		}
	}

	var values []domain.ConflictValue
	for _, cl := range claims {
		keys := make([]string, 0, len(cl.isbns))
		for k := range cl.isbns {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values = append(values, domain.ConflictValue{Value: joinAuthors(keys), Source: cl.source})
	}
	return &DetailedConflict{
		Field:      domain.FieldISBN,
		Type:       TypeValueMismatch,
		Severity:   SeverityCritical,
		Values:     values,
		Confidence: 0.9,
		Resolution: "ISBNs are disjoint; records describe different editions or works",
		Impact:     "merging would conflate distinct editions",
	}
}

func (d *Detector) publisherConflict(records []*domain.MetadataRecord) *DetailedConflict {
	values, distinct := distinctBy(records, func(r *domain.MetadataRecord) (string, string) {
		return normalize.PublisherName(r.Publisher), r.Publisher
	})
	if len(distinct) < 2 {
		return nil
	}
	allSame := true
	for i := 1; i < len(distinct); i++ {
		if !match.SamePublisher(distinct[0], distinct[i]) {
			allSame = false
			break
		}
	}
	c := &DetailedConflict{
		Field:  domain.FieldPublisher,
		Type:   TypeValueMismatch,
		Values: values,
	}
	if allSame {
		c.Severity = SeverityInformational
		c.AutoResolvable = true
		c.Confidence = 0.9
		c.Resolution = "publisher names are imprints of the same house; keep the canonical name"
		c.Impact = "publisher display name normalized"
	} else {
		c.Severity = SeverityMinor
		c.AutoResolvable = true
		c.Confidence = 0.6
		c.Resolution = "publishers differ; prefer the most reliable source's value"
		c.Impact = "publisher field may be wrong for this edition"
	}
	return c
}

// pageCountConflict scales with relative spread: a few pages is counting
// convention (front matter in or out), a large gap is a different edition.
func (d *Detector) pageCountConflict(records []*domain.MetadataRecord) *DetailedConflict {
	var values []domain.ConflictValue
	minPC, maxPC := 0, 0
	for _, r := range records {
		if r.PageCount <= 0 {
			continue
		}
		values = append(values, domain.ConflictValue{
			Value:  fmt.Sprintf("%d", r.PageCount),
			Source: r.Source,
		})
		if minPC == 0 || r.PageCount < minPC {
			minPC = r.PageCount
		}
		if r.PageCount > maxPC {
			maxPC = r.PageCount
		}
	}
	if len(values) < 2 || minPC == maxPC {
		return nil
	}
	spread := float64(maxPC-minPC) / float64(maxPC)
	c := &DetailedConflict{
		Field:      domain.FieldPageCount,
		Type:       TypeNumericDelta,
		Values:     values,
		Confidence: 1 - spread,
	}
	switch {
	case spread < 0.05:
		c.Severity = SeverityInformational
		c.AutoResolvable = true
		c.Resolution = "page counts differ by under 5%; counting convention, keep the higher value"
		c.Impact = "negligible"
	case spread < 0.15:
		c.Severity = SeverityMinor
		c.AutoResolvable = true
		c.Resolution = "page counts differ modestly; prefer the most reliable source's value"
		c.Impact = "page count may be off by a printing variant"
	default:
		c.Severity = SeverityMajor
		c.Resolution = "page counts differ widely; records may describe different editions"
		c.Impact = "wrong page count suggests a wrong edition"
	}
	return c
}

// yearConflict escalates with the span between claimed publication years: a
// one-year gap is usually hardcover vs paperback, a decade is a reissue or
// a different work entirely.
func (d *Detector) yearConflict(records []*domain.MetadataRecord) *DetailedConflict {
	var values []domain.ConflictValue
	minY, maxY := 0, 0
	for _, r := range records {
		pd := normalize.ParseDate(r.PublicationDate)
		if pd.Year == 0 {
			continue
		}
		values = append(values, domain.ConflictValue{Value: pd.String(), Source: r.Source})
		if minY == 0 || pd.Year < minY {
			minY = pd.Year
		}
		if pd.Year > maxY {
			maxY = pd.Year
		}
	}
	if len(values) < 2 || minY == maxY {
		return nil
	}
	span := maxY - minY
	c := &DetailedConflict{
		Field:  domain.FieldPublicationDate,
		Type:   TypeDateMismatch,
		Values: values,
	}
	switch {
	case span <= 1:
		c.Severity = SeverityInformational
		c.AutoResolvable = true
		c.Confidence = 0.9
		c.Resolution = "years differ by one; likely hardcover and paperback releases, keep the earliest"
		c.Impact = "negligible"
	case span <= 3:
		c.Severity = SeverityMinor
		c.AutoResolvable = true
		c.Confidence = 0.7
		c.Resolution = fmt.Sprintf("years span %d; likely regional or format releases, keep the earliest", span)
		c.Impact = "first-publication year may be approximate"
	case span <= 10:
		c.Severity = SeverityMajor
		c.Confidence = 0.5
		c.Resolution = fmt.Sprintf("years span %d; verify whether sources describe a reissue", span)
		c.Impact = "publication year materially uncertain"
	default:
		c.Severity = SeverityCritical
		c.Confidence = 0.7
		c.Resolution = fmt.Sprintf("years span %d; records likely describe different works or editions", span)
		c.Impact = "merging would conflate releases decades apart"
	}
	return c
}

func (d *Detector) languageConflict(records []*domain.MetadataRecord) *DetailedConflict {
	values, distinct := distinctBy(records, func(r *domain.MetadataRecord) (string, string) {
		return normalize.LanguageCode(r.Language), r.Language
	})
	if len(distinct) < 2 {
		return nil
	}
	return &DetailedConflict{
		Field:          domain.FieldLanguage,
		Type:           TypeValueMismatch,
		Severity:       SeverityMinor,
		Values:         values,
		Confidence:     0.6,
		AutoResolvable: true,
		Resolution:     "languages differ; prefer the majority value",
		Impact:         "record may mix translations of the same work",
	}
}

// Summarize groups conflicts by severity, type, and field, partitions them
// into auto-resolvable and manual sets, and attaches free-text
// recommendations for the reviewer.
func (d *Detector) Summarize(conflicts []DetailedConflict) Summary {
	s := Summary{
		Total:      len(conflicts),
		BySeverity: map[Severity]int{},
		ByType:     map[Type]int{},
		ByField:    map[domain.FieldType]int{},
	}
	for _, c := range conflicts {
		s.BySeverity[c.Severity]++
		s.ByType[c.Type]++
		s.ByField[c.Field]++
		if c.AutoResolvable {
			s.AutoResolvable = append(s.AutoResolvable, c)
		} else {
			s.Manual = append(s.Manual, c)
		}
	}

	switch {
	case len(conflicts) == 0:
		s.Recommendations = append(s.Recommendations, "no conflicts detected; safe to import")
	case s.BySeverity[SeverityCritical] > 0:
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("%d critical conflict(s) require manual review before import", s.BySeverity[SeverityCritical]))
	case len(s.Manual) > 0:
		s.Recommendations = append(s.Recommendations,
			fmt.Sprintf("%d conflict(s) need manual review; the remaining %d resolve automatically", len(s.Manual), len(s.AutoResolvable)))
	default:
		s.Recommendations = append(s.Recommendations, "all conflicts resolve automatically; safe to import")
	}
	if s.ByField[domain.FieldISBN] > 0 {
		s.Recommendations = append(s.Recommendations,
			"ISBN disagreement usually means different editions; verify the edition before merging")
	}
	if s.ByField[domain.FieldPublicationDate] > 0 && s.BySeverity[SeverityCritical]+s.BySeverity[SeverityMajor] > 0 {
		s.Recommendations = append(s.Recommendations,
			"publication years diverge widely; check whether sources describe a reissue")
	}
	return s
}

// distinctBy collects one ConflictValue per record with a non-empty key and
// returns the distinct original values, keyed by the normalizer. The first
// spelling seen for each key is kept.
func distinctBy(records []*domain.MetadataRecord, key func(*domain.MetadataRecord) (norm, raw string)) ([]domain.ConflictValue, []string) {
	var values []domain.ConflictValue
	seen := map[string]bool{}
	var distinct []string
	for _, r := range records {
		norm, raw := key(r)
		if norm == "" {
			continue
		}
		values = append(values, domain.ConflictValue{Value: raw, Source: r.Source})
		if !seen[norm] {
			seen[norm] = true
			distinct = append(distinct, raw)
		}
	}
	if len(distinct) < 2 {
		return nil, nil
	}
	return values, distinct
}

// closestSimilarity returns the highest pairwise similarity among the
// distinct values: how close the two nearest disagreeing spellings are.
func closestSimilarity(distinct []string) float64 {
	best := 0.0
	for i := 0; i < len(distinct); i++ {
		for j := i + 1; j < len(distinct); j++ {
			if s := match.Similarity(distinct[i], distinct[j]); s > best {
				best = s
			}
		}
	}
	return best
}

func disjoint(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return false
		}
	}
	return true
}

func joinAuthors(list []string) string {
	return strings.Join(list, "; ")
}
