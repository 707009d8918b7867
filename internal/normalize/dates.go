package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/openshelf/metadata-service/internal/domain"
)

var (
	isoDayRe   = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
	isoMonthRe = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})$`)
	yearOnlyRe = regexp.MustCompile(`^(\d{4})$`)
	// monthNameRe matches "January 2, 2006", "January 2 2006" and "Jan 2006".
	monthNameRe = regexp.MustCompile(`(?i)^([a-z]+)\.?\s+(?:(\d{1,2})(?:st|nd|rd|th)?,?\s+)?(\d{4})$`)
	looseYearRe = regexp.MustCompile(`\b(\d{4})\b`)
)

var monthNames = map[string]int{
	"jan": 1, "january": 1, "feb": 2, "february": 2, "mar": 3, "march": 3,
	"apr": 4, "april": 4, "may": 5, "jun": 6, "june": 6, "jul": 7, "july": 7,
	"aug": 8, "august": 8, "sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10, "nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// ParseDate parses a noisy real-world date string into a PublicationDate,
// recording how much precision the input actually carried. Recognized forms:
// YYYY-MM-DD, YYYY-MM, YYYY (with / accepted as separator), "Month DD, YYYY",
// "Month YYYY", and as a last resort any 4-digit year inside a longer string.
// Unparseable input yields PrecisionUnknown with the raw string preserved.
func ParseDate(raw string) domain.PublicationDate {
	s := strings.TrimSpace(raw)
	out := domain.PublicationDate{Raw: raw, Precision: domain.PrecisionUnknown}
	if s == "" {
		return out
	}

	if m := isoDayRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if validMonth(month) && validDay(day) {
			out.Year, out.Month, out.Day = year, month, day
			out.Precision = domain.PrecisionDay
			return out
		}
	}
	if m := isoMonthRe.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if validMonth(month) {
			out.Year, out.Month = year, month
			out.Precision = domain.PrecisionMonth
			return out
		}
	}
	if m := yearOnlyRe.FindStringSubmatch(s); m != nil {
		out.Year, _ = strconv.Atoi(m[1])
		out.Precision = domain.PrecisionYear
		return out
	}
	if m := monthNameRe.FindStringSubmatch(s); m != nil {
		if month, ok := monthNames[strings.ToLower(m[1])]; ok {
			year, _ := strconv.Atoi(m[3])
			out.Year, out.Month = year, month
			out.Precision = domain.PrecisionMonth
			if m[2] != "" {
				day, _ := strconv.Atoi(m[2])
				if validDay(day) {
					out.Day = day
					out.Precision = domain.PrecisionDay
				}
			}
			return out
		}
	}
	// Loose fallback: any 4-digit year buried in a longer string,
	// e.g. "Published circa 1998 by Penguin".
	if m := looseYearRe.FindStringSubmatch(s); m != nil {
		out.Year, _ = strconv.Atoi(m[1])
		out.Precision = domain.PrecisionYear
		return out
	}
	return out
}

func validMonth(m int) bool { return m >= 1 && m <= 12 }
func validDay(d int) bool   { return d >= 1 && d <= 31 }
