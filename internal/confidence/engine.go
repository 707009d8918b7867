package confidence

import (
	"sort"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
	"github.com/openshelf/metadata-service/internal/normalize"
)

// Underlying holds the raw factors feeding the computation, kept for audit.
type Underlying struct {
	SourceCount       int
	AgreementScore    float64
	AvgQuality        float64
	ConsensusStrength float64
	ReliabilityScore  float64
}

// Factors is the full audit trail of one confidence computation: the base,
// every named boost, the disagreement penalty, the qualitative cap tags that
// fired, and the final bounded confidence with its tier.
type Factors struct {
	Base                float64
	ConsensusBoost      float64
	AgreementBoost      float64
	QualityBoost        float64
	SourceCountBoost    float64
	ReliabilityBoost    float64
	DisagreementPenalty float64
	Penalties           []string
	Final               float64
	Tier                Tier
	Underlying          Underlying
}

// Engine computes consensus confidence over sets of same-entity records.
// It is stateless and safe for concurrent use.
type Engine struct {
	tuning Tuning
}

// NewEngine creates an Engine with the given tuning.
func NewEngine(tuning Tuning) *Engine {
	return &Engine{tuning: tuning}
}

// Score computes the consensus confidence for a set of records describing
// the same logical entity. The ordering of the steps is load-bearing:
// compute boosts and penalty, apply consensus thresholds, apply tier gates,
// then floor and ceiling. Reordering changes outputs.
func (e *Engine) Score(records []*domain.MetadataRecord) Factors {
	t := e.tuning
	n := len(records)

	if n == 0 {
		return Factors{
			Final:     t.MinConfidence,
			Tier:      TierFor(t.MinConfidence),
			Penalties: []string{PenaltyMinimumFloor},
		}
	}

	if n == 1 {
		c := records[0].Confidence
		final := c
		penalties := []string{PenaltySingleSourceCap}
		if final > t.MaxConfidence {
			final = t.MaxConfidence
		}
		if final < t.MinConfidence {
			final = t.MinConfidence
			penalties = append(penalties, PenaltyMinimumFloor)
		}
		return Factors{
			Base:      c,
			Final:     final,
			Tier:      TierFor(final),
			Penalties: penalties,
			Underlying: Underlying{
				SourceCount: 1,
				// Nothing to disagree with.
				AgreementScore: 1.0,
				AvgQuality:     c,
			},
		}
	}

	base := weightedBase(records)
	agreement := fieldAgreement(records)
	avgQuality := meanConfidence(records)
	reliability := weightedReliability(records)
	disagreement := disagreementScore(records)

	consensusBoost := min2(t.ConsensusBoostMax, t.ConsensusBoostPerSource*float64(n-1))
	agreementBoost := min2(t.AgreementBoostMax, agreement*t.AgreementBoostMax)
	qualityBoost := max2(0, (avgQuality-t.QualityBaseline)*t.QualityBoostScale)
	sourceCountBoost := min2(t.SourceCountBoostMax,
		max2(0, float64(n-t.SourceCountBaseline)*t.SourceCountBoostPerSource))
	reliabilityBoost := reliability * t.ReliabilityBoostMax
	penalty := min2(t.DisagreementPenaltyMax, disagreement*t.DisagreementPenaltyMax)

	total := base + consensusBoost + agreementBoost + qualityBoost + sourceCountBoost + reliabilityBoost - penalty
	raw := total

	// Consensus thresholds.
	if agreement >= t.StrongConsensusAgreement && n >= t.StrongConsensusSources {
		total = min2(t.MaxConfidence, total*t.StrongConsensusUplift)
	}
	if agreement < t.WeakConsensusAgreement {
		total = min2(total, t.WeakConsensusCap)
	}

	// Tier gates.
	var penalties []string
	if total > t.ExceptionalFloor &&
		!(agreement >= t.ExceptionalAgreement && n >= t.ExceptionalSources) {
		total = t.ExceptionalFloor
		penalties = append(penalties, PenaltyExceptionalUnmet)
	}
	if total > t.StrongFloor && total <= t.ExceptionalFloor &&
		!(agreement >= t.StrongAgreement && n >= t.StrongSources) {
		total = t.StrongFloor
		penalties = append(penalties, PenaltyStrongUnmet)
	}
	if agreement < t.WeakConsensusAgreement && total > t.WeakConsensusTierCap {
		total = t.WeakConsensusTierCap
		penalties = append(penalties, PenaltyWeakConsensusCap)
	}

	// Floor and ceiling, last.
	if total < t.MinConfidence {
		total = t.MinConfidence
		penalties = append(penalties, PenaltyMinimumFloor)
	}
	if total > t.MaxConfidence {
		total = t.MaxConfidence
	}
	if total == t.MaxConfidence && raw > 1.0 {
		penalties = append(penalties, PenaltyPerfectScoreCap)
	}

	return Factors{
		Base:                base,
		ConsensusBoost:      consensusBoost,
		AgreementBoost:      agreementBoost,
		QualityBoost:        qualityBoost,
		SourceCountBoost:    sourceCountBoost,
		ReliabilityBoost:    reliabilityBoost,
		DisagreementPenalty: penalty,
		Penalties:           penalties,
		Final:               total,
		Tier:                TierFor(total),
		Underlying: Underlying{
			SourceCount:       n,
			AgreementScore:    agreement,
			AvgQuality:        avgQuality,
			ConsensusStrength: consensusBoost,
			ReliabilityScore:  reliability,
		},
	}
}

// weightedBase is the confidence-weighted average where each confidence is
// weighted by itself. This intentionally over-weights already-high-confidence
// sources relative to a plain mean.
func weightedBase(records []*domain.MetadataRecord) float64 {
	var sum, sumSq float64
	for _, r := range records {
		sum += r.Confidence
		sumSq += r.Confidence * r.Confidence
	}
	if sum == 0 {
		return 0
	}
	return sumSq / sum
}

func meanConfidence(records []*domain.MetadataRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Confidence
	}
	return sum / float64(len(records))
}

// completeness is the fraction of core fields a record fills in.
func completeness(r *domain.MetadataRecord) float64 {
	filled := 0
	if r.Title != "" {
		filled++
	}
	if len(r.Authors) > 0 {
		filled++
	}
	if len(r.ISBN) > 0 {
		filled++
	}
	if r.Publisher != "" {
		filled++
	}
	if r.PublicationDate != "" {
		filled++
	}
	if r.Language != "" {
		filled++
	}
	if r.PageCount > 0 {
		filled++
	}
	if len(r.Subjects) > 0 {
		filled++
	}
	if r.Description != "" {
		filled++
	}
	if r.Series != nil {
		filled++
	}
	return float64(filled) / 10.0
}

// weightedReliability averages confidence*completeness across records,
// yielding a 0..1 score that rewards sources that are both confident and
// thorough.
func weightedReliability(records []*domain.MetadataRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Confidence * completeness(r)
	}
	return sum / float64(len(records))
}

// fieldAgreement averages per-field agreement over whichever of title,
// authors, ISBN, and year are present in at least two records. A field
// contributes 1.0 when all its values match after normalization, else
// 0.5 / uniqueCount. Returns 1.0 when no field can be checked.
func fieldAgreement(records []*domain.MetadataRecord) float64 {
	var total float64
	checked := 0

	if vals := collect(records, titleKey); len(vals) >= 2 {
		total += agreementOf(vals)
		checked++
	}
	if vals := collect(records, authorsKey); len(vals) >= 2 {
		total += agreementOf(vals)
		checked++
	}
	if vals := collect(records, isbnKey); len(vals) >= 2 {
		total += agreementOf(vals)
		checked++
	}
	if vals := collect(records, yearKey); len(vals) >= 2 {
		total += agreementOf(vals)
		checked++
	}

	if checked == 0 {
		return 1.0
	}
	return total / float64(checked)
}

func agreementOf(vals []string) float64 {
	unique := uniqueCount(vals)
	if unique <= 1 {
		return 1.0
	}
	return 0.5 / float64(unique)
}

func uniqueCount(vals []string) int {
	seen := make(map[string]bool, len(vals))
	for _, v := range vals {
		seen[v] = true
	}
	return len(seen)
}

// collect extracts one comparison key per record that has the field set.
func collect(records []*domain.MetadataRecord, key func(*domain.MetadataRecord) (string, bool)) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		if v, ok := key(r); ok {
			out = append(out, v)
		}
	}
	return out
}

func titleKey(r *domain.MetadataRecord) (string, bool) {
	if r.Title == "" {
		return "", false
	}
	return normalize.Title(r.Title), true
}

func authorsKey(r *domain.MetadataRecord) (string, bool) {
	if len(r.Authors) == 0 {
		return "", false
	}
	names := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		names = append(names, normalize.CreatorName(a))
	}
	sort.Strings(names)
	return strings.Join(names, "|"), true
}

func isbnKey(r *domain.MetadataRecord) (string, bool) {
	for _, raw := range r.ISBN {
		if norm := normalize.NormalizeISBN(raw, true); norm != "" {
			return norm, true
		}
	}
	return "", false
}

func yearKey(r *domain.MetadataRecord) (string, bool) {
	d := normalize.ParseDate(r.PublicationDate)
	if d.Precision == domain.PrecisionUnknown {
		return "", false
	}
	return d.String()[:4], true
}

// disagreementScore sums the unique-title fraction, the author-count-spread
// fraction, and the year spread (contribution capped at 0.5), averaged over
// the fields that could be checked.
func disagreementScore(records []*domain.MetadataRecord) float64 {
	n := len(records)
	var total float64
	checked := 0

	if vals := collect(records, titleKey); len(vals) >= 2 {
		unique := uniqueCount(vals)
		total += float64(unique-1) / float64(n-1)
		checked++
	}

	counts := make([]int, 0, n)
	for _, r := range records {
		if len(r.Authors) > 0 {
			counts = append(counts, len(r.Authors))
		}
	}
	if len(counts) >= 2 {
		minC, maxC := counts[0], counts[0]
		for _, c := range counts[1:] {
			if c < minC {
				minC = c
			}
			if c > maxC {
				maxC = c
			}
		}
		total += float64(maxC-minC) / float64(maxC)
		checked++
	}

	years := make([]int, 0, n)
	for _, r := range records {
		d := normalize.ParseDate(r.PublicationDate)
		if d.Precision != domain.PrecisionUnknown {
			years = append(years, d.Year)
		}
	}
	if len(years) >= 2 {
		minY, maxY := years[0], years[0]
		for _, y := range years[1:] {
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
		// A decade of spread saturates this field's contribution.
		total += min2(0.5, float64(maxY-minY)*0.05)
		checked++
	}

	if checked == 0 {
		return 0
	}
	return total / float64(checked)
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
