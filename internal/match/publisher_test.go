package match

import "testing"

func TestCanonicalPublisher(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in        string
		canonical string
		resolved  bool
	}{
		{"Alfred A. Knopf, Inc.", "penguin random house", true},
		{"The Viking Press", "penguin random house", true},
		{"Tor Books", "macmillan", true},
		{"Macmillan Publishers Ltd.", "macmillan", true},
		{"Oxford University Press", "oxford university", true},
		{"William Morrow", "harpercollins", true},
		{"Scribner", "simon schuster", true},
		{"Little, Brown and Company", "little brown and", false},
		{"Acme Press", "acme", false},
		{"", "", false},
	}
	for _, tt := range tests {
		canonical, resolved := CanonicalPublisher(tt.in)
		if canonical != tt.canonical || resolved != tt.resolved {
			t.Errorf("CanonicalPublisher(%q) = (%q, %v), want (%q, %v)",
				tt.in, canonical, resolved, tt.canonical, tt.resolved)
		}
	}
}

func TestIsMajorPublisher(t *testing.T) {
	t.Parallel()
	tests := []struct {
		canonical string
		want      bool
	}{
		{"penguin random house", true},
		{"harpercollins", true},
		{"macmillan", true},
		{"scholastic", true},
		{"acme", false},
		{"knopf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsMajorPublisher(tt.canonical); got != tt.want {
			t.Errorf("IsMajorPublisher(%q) = %v, want %v", tt.canonical, got, tt.want)
		}
	}
}

func TestSamePublisher(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want bool
	}{
		{"Penguin Books", "The Penguin Publishing Group, Inc.", true},
		{"Penguin Books", "Random House", true},
		{"Harper & Row", "HarperCollins Publishers", true},
		{"Scribner", "Atria Books", true},
		{"HarperCollins", "HarperColins", true},
		{"Tor Books", "Orbit", false},
		{"Acme Press", "Zenith Media", false},
		{"Penguin", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := SamePublisher(tt.a, tt.b); got != tt.want {
			t.Errorf("SamePublisher(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := SamePublisher(tt.b, tt.a); got != tt.want {
			t.Errorf("SamePublisher(%q, %q) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}
