// Package conflict classifies disagreements between metadata records by
// type and severity, summarizes them for review, and builds the
// field-by-field preview used for edition selection. Nothing in this
// package mutates the records or reconciled values it describes; it is
// decision support over the aggregation pipeline's output.
package conflict

import (
	"github.com/openshelf/metadata-service/internal/domain"
)

// Type categorizes what kind of disagreement a conflict is.
type Type string

const (
	TypeValueMismatch Type = "value_mismatch"
	TypeNumericDelta  Type = "numeric_delta"
	TypeDateMismatch  Type = "date_mismatch"
	TypeMissingData   Type = "missing_data"
)

// Severity ranks how much a conflict should worry a reviewer.
type Severity string

const (
	SeverityCritical      Severity = "critical"
	SeverityMajor         Severity = "major"
	SeverityMinor         Severity = "minor"
	SeverityInformational Severity = "informational"
)

// severityRank orders severities for sorting, highest first.
func severityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityMajor:
		return 2
	case SeverityMinor:
		return 1
	default:
		return 0
	}
}

// DetailedConflict is one detected disagreement, classified and annotated.
// It embeds the same field/values/resolution shape reconcilers attach to
// their output, plus the detector's classification.
type DetailedConflict struct {
	ID       string
	Field    domain.FieldType
	Type     Type
	Severity Severity
	Values   []domain.ConflictValue

	// Resolution explains how the disagreement would be (or was) resolved.
	Resolution string

	// Confidence is the detector's confidence that its suggested
	// resolution is correct, 0..1.
	Confidence float64

	// AutoResolvable marks conflicts the pipeline can settle without a
	// human in the loop.
	AutoResolvable bool

	// Impact describes what accepting the suggested resolution affects.
	Impact string
}

// Summary groups a set of conflicts for display and routing.
type Summary struct {
	Total      int
	BySeverity map[Severity]int
	ByType     map[Type]int
	ByField    map[domain.FieldType]int

	// AutoResolvable and Manual partition the input set. Every conflict
	// appears in exactly one of the two.
	AutoResolvable []DetailedConflict
	Manual         []DetailedConflict

	Recommendations []string
}
