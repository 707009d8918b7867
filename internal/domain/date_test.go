package domain

import "testing"

func TestPublicationDateEqual(t *testing.T) {
	t.Parallel()
	day := PublicationDate{Year: 1965, Month: 8, Day: 1, Precision: PrecisionDay}
	month := PublicationDate{Year: 1965, Month: 8, Precision: PrecisionMonth}
	year := PublicationDate{Year: 1965, Precision: PrecisionYear}
	otherYear := PublicationDate{Year: 1972, Precision: PrecisionYear}
	unknown := PublicationDate{Raw: "circa"}

	tests := []struct {
		name string
		a, b PublicationDate
		want bool
	}{
		{"day vs month at coarser precision", day, month, true},
		{"day vs year at coarser precision", day, year, true},
		{"different years", day, otherYear, false},
		{"unknown never equals", year, unknown, false},
		{"same day", day, day, true},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.want)
		}
		if got := tt.b.Equal(tt.a); got != tt.want {
			t.Errorf("%s (reversed): Equal = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestPublicationDateString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    PublicationDate
		want string
	}{
		{PublicationDate{Year: 1965, Month: 8, Day: 1, Precision: PrecisionDay}, "1965-08-01"},
		{PublicationDate{Year: 1965, Month: 8, Precision: PrecisionMonth}, "1965-08"},
		{PublicationDate{Year: 1965, Precision: PrecisionYear}, "1965"},
		{PublicationDate{Raw: "circa 1965?", Precision: PrecisionUnknown}, "circa 1965?"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestYearPlausible(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    PublicationDate
		want bool
	}{
		{PublicationDate{Year: 1965, Precision: PrecisionYear}, true},
		{PublicationDate{Year: 1000, Precision: PrecisionYear}, true},
		{PublicationDate{Year: 542, Precision: PrecisionYear}, false},
		{PublicationDate{Year: 9999, Precision: PrecisionYear}, false},
		{PublicationDate{Year: 1965, Precision: PrecisionUnknown}, false},
	}
	for _, tt := range tests {
		if got := tt.d.YearPlausible(); got != tt.want {
			t.Errorf("YearPlausible(%d, %s) = %v, want %v", tt.d.Year, tt.d.Precision, got, tt.want)
		}
	}
}

func TestFinerThan(t *testing.T) {
	t.Parallel()
	if !PrecisionDay.FinerThan(PrecisionMonth) || !PrecisionMonth.FinerThan(PrecisionYear) || !PrecisionYear.FinerThan(PrecisionUnknown) {
		t.Error("precision ordering broken")
	}
	if PrecisionYear.FinerThan(PrecisionDay) || PrecisionDay.FinerThan(PrecisionDay) {
		t.Error("FinerThan must be strict")
	}
}
