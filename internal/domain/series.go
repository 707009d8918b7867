package domain

// Series is a structured bibliographic series claim reconciled across
// sources. Normalized is the derived comparison key and is never hand-set
// by callers.
type Series struct {
	Name       string
	Normalized string

	// Volume is this work's position in the series; 0 when unknown.
	Volume int

	// Position allows fractional placements (novellas between volumes);
	// 0 when unknown.
	Position float64

	// TotalVolumes is the series length if any source stated it; 0 when unknown.
	TotalVolumes int

	Type        SeriesType
	Identifiers []Identifier
	WorkID      string
}

// Complete scores how filled-in a series entry is, 0..1. Each known facet
// contributes 0.2: name, volume, type, total volumes, identifiers.
func (s Series) Complete() float64 {
	score := 0.0
	if s.Name != "" {
		score += 0.2
	}
	if s.Volume > 0 {
		score += 0.2
	}
	if s.Type != "" && s.Type != SeriesTypeUnknown {
		score += 0.2
	}
	if s.TotalVolumes > 0 {
		score += 0.2
	}
	if len(s.Identifiers) > 0 {
		score += 0.2
	}
	return score
}
