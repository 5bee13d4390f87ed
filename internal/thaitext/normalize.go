package thaitext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key returns the comparison key used for title matching: lowercased,
// trimmed, with internal whitespace runs collapsed to a single space.
func Key(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Len counts characters, not bytes. Thai titles are multi-byte in UTF-8.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// Indent returns the number of leading whitespace characters in line.
func Indent(line string) int {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	return utf8.RuneCountInString(line[:len(line)-len(trimmed)])
}
