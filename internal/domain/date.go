package domain

import (
	"fmt"
	"time"
)

// DatePrecision indicates how much of a publication date is actually known.
// Precision governs comparison granularity and confidence weighting.
type DatePrecision string

const (
	PrecisionDay     DatePrecision = "day"
	PrecisionMonth   DatePrecision = "month"
	PrecisionYear    DatePrecision = "year"
	PrecisionUnknown DatePrecision = "unknown"
)

// rank orders precisions from coarsest to finest for tie-breaking.
func (p DatePrecision) rank() int {
	switch p {
	case PrecisionDay:
		return 3
	case PrecisionMonth:
		return 2
	case PrecisionYear:
		return 1
	default:
		return 0
	}
}

// FinerThan reports whether p carries strictly more detail than other.
func (p DatePrecision) FinerThan(other DatePrecision) bool {
	return p.rank() > other.rank()
}

// PublicationDate is a possibly-partial date. It always carries the original
// unparsed string for traceability. Zero-valued components are unknown.
type PublicationDate struct {
	Year      int
	Month     int
	Day       int
	Raw       string
	Precision DatePrecision
}

// String renders the date at its known precision.
func (d PublicationDate) String() string {
	switch d.Precision {
	case PrecisionDay:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	case PrecisionMonth:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	case PrecisionYear:
		return fmt.Sprintf("%04d", d.Year)
	default:
		return d.Raw
	}
}

// YearPlausible reports whether the year falls in the range a real
// bibliographic date could: 1000 through ten years from now.
func (d PublicationDate) YearPlausible() bool {
	if d.Precision == PrecisionUnknown {
		return false
	}
	return d.Year >= 1000 && d.Year <= time.Now().Year()+10
}

// Equal compares two dates at the coarser of their two precisions.
func (d PublicationDate) Equal(other PublicationDate) bool {
	if d.Precision == PrecisionUnknown || other.Precision == PrecisionUnknown {
		return false
	}
	p := d.Precision
	if other.Precision.rank() < p.rank() {
		p = other.Precision
	}
	switch p {
	case PrecisionDay:
		return d.Year == other.Year && d.Month == other.Month && d.Day == other.Day
	case PrecisionMonth:
		return d.Year == other.Year && d.Month == other.Month
	default:
		return d.Year == other.Year
	}
}
