// Package confidence turns source agreement, source reliability, and data
// completeness across a set of same-entity metadata records into a single
// bounded, tiered confidence score with a full audit trail of every boost
// and penalty applied.
package confidence

// Tuning groups every numeric constant of the confidence computation so the
// whole surface can be adjusted and regression-tested as a unit.
type Tuning struct {
	// MinConfidence is the floor: no non-degenerate result reports below it,
	// and absolute impossibility is never claimed.
	MinConfidence float64

	// MaxConfidence is the ceiling: absolute certainty is never claimed.
	MaxConfidence float64

	// ConsensusBoostPerSource is the boost earned per additional agreeing
	// source beyond the first.
	ConsensusBoostPerSource float64

	// ConsensusBoostMax caps the consensus boost.
	ConsensusBoostMax float64

	// AgreementBoostMax caps the field-agreement boost.
	AgreementBoostMax float64

	// QualityBaseline is the average source confidence above which the
	// quality boost starts accruing.
	QualityBaseline float64

	// QualityBoostScale scales (avgQuality - QualityBaseline) into a boost.
	QualityBoostScale float64

	// SourceCountBoostPerSource is the boost per source beyond
	// SourceCountBaseline.
	SourceCountBoostPerSource float64

	// SourceCountBaseline is the source count at which the count boost
	// starts accruing.
	SourceCountBaseline int

	// SourceCountBoostMax caps the source-count boost.
	SourceCountBoostMax float64

	// ReliabilityBoostMax scales the weighted reliability score into a boost.
	ReliabilityBoostMax float64

	// DisagreementPenaltyMax caps the disagreement penalty.
	DisagreementPenaltyMax float64

	// StrongConsensusAgreement and StrongConsensusSources gate the
	// strong-consensus uplift.
	StrongConsensusAgreement float64
	StrongConsensusSources   int

	// StrongConsensusUplift is the multiplicative uplift for strong consensus.
	StrongConsensusUplift float64

	// WeakConsensusAgreement is the agreement below which confidence is
	// hard-capped at WeakConsensusCap during thresholding and at
	// WeakConsensusTierCap during tier gating.
	WeakConsensusAgreement float64
	WeakConsensusCap       float64
	WeakConsensusTierCap   float64

	// ExceptionalFloor is the confidence above which the exceptional tier
	// gate applies; ExceptionalAgreement and ExceptionalSources are its
	// requirements.
	ExceptionalFloor     float64
	ExceptionalAgreement float64
	ExceptionalSources   int

	// StrongFloor is the confidence above which the strong tier gate
	// applies; StrongAgreement and StrongSources are its requirements.
	StrongFloor     float64
	StrongAgreement float64
	StrongSources   int
}

// DefaultTuning returns the canonical tuning. Tests pin exact boundary
// values against these numbers; change them only together with the fixtures.
func DefaultTuning() Tuning {
	return Tuning{
		MinConfidence:             0.3,
		MaxConfidence:             0.98,
		ConsensusBoostPerSource:   0.03,
		ConsensusBoostMax:         0.15,
		AgreementBoostMax:         0.1,
		QualityBaseline:           0.7,
		QualityBoostScale:         0.1,
		SourceCountBoostPerSource: 0.01,
		SourceCountBaseline:       3,
		SourceCountBoostMax:       0.05,
		ReliabilityBoostMax:       0.08,
		DisagreementPenaltyMax:    0.2,
		StrongConsensusAgreement:  0.9,
		StrongConsensusSources:    3,
		StrongConsensusUplift:     1.05,
		WeakConsensusAgreement:    0.6,
		WeakConsensusCap:          0.85,
		WeakConsensusTierCap:      0.89,
		ExceptionalFloor:          0.95,
		ExceptionalAgreement:      0.85,
		ExceptionalSources:        3,
		StrongFloor:               0.90,
		StrongAgreement:           0.7,
		StrongSources:             2,
	}
}
