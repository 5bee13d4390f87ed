package thaitext

import (
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// Thai digit glyphs occupy a contiguous block: ๐ (U+0E50) through ๙ (U+0E59).
const (
	thaiZero = '๐'
	thaiNine = '๙'
)

var thaiDigits = runes.Map(func(r rune) rune {
	if r >= thaiZero && r <= thaiNine {
		return '0' + (r - thaiZero)
	}
	return r
})

// NormalizeDigits replaces every Thai digit with its Arabic equivalent.
// All other runes pass through unchanged.
func NormalizeDigits(s string) string {
	out, _, err := transform.String(thaiDigits, s)
	if err != nil {
		return s
	}
	return out
}

// IsDigit reports whether r is an ASCII or Thai decimal digit.
func IsDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= thaiZero && r <= thaiNine)
}
