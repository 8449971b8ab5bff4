package base

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StripDiacritics removes combining marks, so "Šibenik" becomes "Sibenik".
// Letters without a decomposition such as "Đ" are kept.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Title converts "ULICA GRADA VUKOVARA_12" style publisher text to
// "Ulica Grada Vukovara 12". A letter is upper cased when it follows a
// non-letter, so "1D" stays "1D".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range strings.ReplaceAll(s, "_", " ") {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToTitle(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// HasSuffixFold reports whether s ends with suffix, ignoring case and
// diacritics.
func HasSuffixFold(s, suffix string) bool {
	fold := func(v string) string { return strings.ToLower(StripDiacritics(v)) }
	return strings.HasSuffix(fold(s), fold(suffix))
}

// TrimSuffixRunes drops the last n runes of s.
func TrimSuffixRunes(s string, n int) string {
	r := []rune(s)
	if n >= len(r) {
		return ""
	}
	return string(r[:len(r)-n])
}
