package match

import (
	"github.com/openshelf/metadata-service/internal/normalize"
)

// publisherAliases maps normalized imprint names to their parent publisher.
// Keys and values are in normalize.PublisherName form. The table covers the
// major trade groups whose imprints show up under their own names in
// library catalogs.
var publisherAliases = map[string]string{
	// Penguin Random House
	"penguin":        "penguin random house",
	"penguin random": "penguin random house",
	"random":         "penguin random house",
	"knopf":          "penguin random house",
	"alfred a knopf": "penguin random house",
	"vintage":        "penguin random house",
	"pantheon":       "penguin random house",
	"doubleday":      "penguin random house",
	"crown":          "penguin random house",
	"ballantine":     "penguin random house",
	"bantam":         "penguin random house",
	"dell":           "penguin random house",
	"viking":         "penguin random house",
	"puffin":         "penguin random house",
	"dutton":         "penguin random house",
	"berkley":        "penguin random house",
	"riverhead":      "penguin random house",

	// HarperCollins
	"harper":           "harpercollins",
	"harper row":       "harpercollins",
	"william morrow":   "harpercollins",
	"avon":             "harpercollins",
	"ecco":             "harpercollins",
	"harper perennial": "harpercollins",

	// Simon & Schuster
	"simon schuster": "simon schuster",
	"scribner":       "simon schuster",
	"atria":          "simon schuster",
	"gallery":        "simon schuster",
	"pocket":         "simon schuster",

	// Hachette
	"little brown":  "hachette",
	"grand central": "hachette",
	"orbit":         "hachette",
	"mulholland":    "hachette",

	// Macmillan
	"farrar straus giroux": "macmillan",
	"st martins":           "macmillan",
	"tor":                  "macmillan",
	"henry holt":           "macmillan",
	"picador":              "macmillan",
	"forge":                "macmillan",
}

// majorPublishers are the recognized parent groups. Resolving to one of
// these earns the publisher reconciler its canonical-name boost.
var majorPublishers = map[string]bool{
	"penguin random house": true,
	"harpercollins":        true,
	"simon schuster":       true,
	"hachette":             true,
	"macmillan":            true,
	"oxford university":    true,
	"cambridge university": true,
	"scholastic":           true,
	"wiley":                true,
	"pearson":              true,
}

// CanonicalPublisher resolves a raw publisher string to its canonical parent
// name. Returns the normalized input and false when no alias entry exists.
func CanonicalPublisher(raw string) (string, bool) {
	norm := normalize.PublisherName(raw)
	if canonical, ok := publisherAliases[norm]; ok {
		return canonical, true
	}
	if majorPublishers[norm] {
		return norm, true
	}
	return norm, false
}

// IsMajorPublisher reports whether a canonical name is a recognized major
// trade publisher.
func IsMajorPublisher(canonical string) bool {
	return majorPublishers[canonical]
}

// SamePublisher reports whether two raw publisher strings refer to the same
// publisher: identical normalized forms, membership in a shared canonical
// alias cluster, or edit-distance similarity above the default threshold.
func SamePublisher(a, b string) bool {
	normA := normalize.PublisherName(a)
	normB := normalize.PublisherName(b)
	if normA == "" || normB == "" {
		return false
	}
	if normA == normB {
		return true
	}
	canonA, okA := CanonicalPublisher(a)
	canonB, okB := CanonicalPublisher(b)
	if okA && okB && canonA == canonB {
		return true
	}
	return Similar(normA, normB)
}
