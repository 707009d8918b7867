package confidence

// Tier is a discrete confidence bucket for human-readable reporting.
type Tier string

const (
	TierExceptional Tier = "exceptional"
	TierStrong      Tier = "strong"
	TierGood        Tier = "good"
	TierModerate    Tier = "moderate"
	TierWeak        Tier = "weak"
	TierPoor        Tier = "poor"
)

// TierFor buckets a final confidence value.
func TierFor(confidence float64) Tier {
	switch {
	case confidence >= 0.95:
		return TierExceptional
	case confidence >= 0.90:
		return TierStrong
	case confidence >= 0.80:
		return TierGood
	case confidence >= 0.65:
		return TierModerate
	case confidence >= 0.50:
		return TierWeak
	default:
		return TierPoor
	}
}

// Penalty tags recorded in Factors.Penalties when a cap or floor fired.
const (
	PenaltySingleSourceCap  = "single-source-cap"
	PenaltyWeakConsensusCap = "weak-consensus-cap"
	PenaltyExceptionalUnmet = "exceptional-tier-requirements-not-met"
	PenaltyStrongUnmet      = "strong-tier-requirements-not-met"
	PenaltyMinimumFloor     = "minimum-confidence-floor"
	PenaltyPerfectScoreCap  = "perfect-score-cap"
)
