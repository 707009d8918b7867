package normalize

import "strings"

// iso639_2to1 maps ISO 639-2/B bibliographic codes to ISO 639-1 two-letter
// codes. Bibliographic (B) variants are used where they differ from the
// terminological (T) form since library catalogs emit the B form.
var iso639_2to1 = map[string]string{
	"eng": "en", "fre": "fr", "ger": "de", "spa": "es", "ita": "it",
	"por": "pt", "rus": "ru", "jpn": "ja", "chi": "zh", "dut": "nl",
	"swe": "sv", "dan": "da", "nor": "no", "fin": "fi", "pol": "pl",
	"gre": "el", "ara": "ar", "heb": "he", "kor": "ko", "tur": "tr",
	"cze": "cs", "hun": "hu", "rum": "ro", "ukr": "uk", "vie": "vi",
	"tha": "th", "hin": "hi", "ben": "bn", "per": "fa", "ind": "id",
	"lat": "la", "wel": "cy", "gle": "ga", "ice": "is", "cat": "ca",
	"slo": "sk", "bul": "bg", "hrv": "hr", "srp": "sr", "lit": "lt",
	"lav": "lv", "est": "et",
}

// LanguageCode maps an ISO 639-2/B three-letter code to its ISO 639-1
// two-letter equivalent. Two-letter input is lowercased and returned.
// Unknown codes pass through unchanged.
func LanguageCode(code string) string {
	trimmed := strings.TrimSpace(code)
	lower := strings.ToLower(trimmed)
	if len(lower) == 2 {
		return lower
	}
	if two, ok := iso639_2to1[lower]; ok {
		return two
	}
	return trimmed
}
