// Package normalize provides pure normalization functions for bibliographic
// data: ISBN cleaning and checksum validation, comparison-key normalization
// for titles, creator and publisher names, language code mapping, and loose
// date parsing.
//
// All functions are total: malformed input degrades to a best-effort result
// or the empty value, never a panic or error.
package normalize

import (
	"strings"
)

// CleanISBN strips hyphens, spaces, and "ISBN" prefixes from a raw ISBN
// string and uppercases a trailing check character. It does not validate.
func CleanISBN(s string) string {
	s = strings.TrimSpace(s)
	upper := strings.ToUpper(s)
	for _, prefix := range []string{"ISBN-13", "ISBN-10", "ISBN13", "ISBN10", "ISBN"} {
		if strings.HasPrefix(upper, prefix) {
			s = s[len(prefix):]
			break
		}
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == 'x' || r == 'X':
			sb.WriteRune('X')
		}
	}
	return sb.String()
}

// NormalizeISBN cleans and checksum-validates an ISBN. When to13 is true a
// valid ISBN-10 is converted to its ISBN-13 form via the 978 prefix and a
// recomputed check digit. Returns "" when the checksum is invalid.
func NormalizeISBN(s string, to13 bool) string {
	cleaned := CleanISBN(s)
	switch len(cleaned) {
	case 13:
		if !ValidISBN13(cleaned) {
			return ""
		}
		return cleaned
	case 10:
		if !ValidISBN10(cleaned) {
			return ""
		}
		if to13 {
			return isbn10to13(cleaned)
		}
		return cleaned
	default:
		return ""
	}
}

// ValidISBN10 reports whether a cleaned 10-character string passes the
// ISBN-10 mod-11 checksum.
func ValidISBN10(s string) bool {
	if len(s) != 10 {
		return false
	}
	sum := 0
	for i := 0; i < 9; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		sum += (10 - i) * int(s[i]-'0')
	}
	last := s[9]
	switch {
	case last == 'X':
		sum += 10
	case last >= '0' && last <= '9':
		sum += int(last - '0')
	default:
		return false
	}
	return sum%11 == 0
}

// ValidISBN13 reports whether a cleaned 13-digit string passes the ISBN-13
// mod-10 checksum.
func ValidISBN13(s string) bool {
	if len(s) != 13 {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		d := int(s[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return sum%10 == 0
}

// isbn10to13 converts a validated ISBN-10 to ISBN-13.
func isbn10to13(s string) string {
	body := "978" + s[:9]
	sum := 0
	for i := 0; i < 12; i++ {
		d := int(body[i] - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	check := (10 - sum%10) % 10
	return body + string(rune('0'+check))
}
