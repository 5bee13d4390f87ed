package sections

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dgallion1/tenderdoc/internal/catalog"
	"github.com/dgallion1/tenderdoc/internal/doctree"
	"github.com/dgallion1/tenderdoc/internal/thaitext"
)

// Assemble slices lines between consecutive headers into sections. Headers
// must already be ordered by anchor line.
func Assemble(lines []string, headers []doctree.Header) *doctree.Document {
	doc := &doctree.Document{
		Title:    catalog.DocumentTitle,
		Sections: make([]doctree.Section, 0, len(headers)),
	}

	found := make(map[string]bool, len(headers))
	for i, h := range headers {
		found[h.ID] = true

		end := len(lines)
		if i+1 < len(headers) {
			end = headers[i+1].Line
		}

		content := joinLines(lines, contentStart(lines, h), end)
		doc.Sections = append(doc.Sections, doctree.Section{
			ID:            h.ID,
			Title:         h.Title,
			Line:          h.Line,
			Content:       content,
			ContentLength: thaitext.Len(content),
		})
	}
	doc.TotalSections = len(doc.Sections)

	doc.Missing = make([]string, 0, catalog.Len())
	for _, id := range catalog.IDs() {
		if !found[id] {
			doc.Missing = append(doc.Missing, id)
		}
	}
	sortNumeric(doc.Missing)

	return doc
}

// contentStart skips the anchor line, and the title line too when the
// anchor is a numeral line immediately followed by the title.
func contentStart(lines []string, h doctree.Header) int {
	start := h.Line + 1
	if start < len(lines) {
		next := strings.TrimSpace(lines[start])
		if next != "" && thaitext.Key(next) == thaitext.Key(h.Title) {
			start++
		}
	}
	return start
}

func joinLines(lines []string, start, end int) string {
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func sortNumeric(ids []string) {
	slices.SortFunc(ids, func(a, b string) int {
		na, _ := strconv.Atoi(a)
		nb, _ := strconv.Atoi(b)
		return na - nb
	})
}
