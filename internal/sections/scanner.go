package sections

import (
	"slices"
	"strings"

	"github.com/dgallion1/tenderdoc/internal/catalog"
	"github.com/dgallion1/tenderdoc/internal/doctree"
	"github.com/dgallion1/tenderdoc/internal/thaitext"
)

// DefaultIndentCeiling separates top-level headers from indented sub-clauses
// that repeat a section title.
const DefaultIndentCeiling = 25

// minTitleOnlyLen is the minimum trimmed length of a title-only header line.
const minTitleOnlyLen = 10

// Parser locates catalog sections in extracted tender text.
type Parser struct {
	// IndentCeiling rejects candidate headers whose leading whitespace is at
	// least this many characters. Zero means DefaultIndentCeiling.
	IndentCeiling int
}

func (p Parser) ceiling() int {
	if p.IndentCeiling <= 0 {
		return DefaultIndentCeiling
	}
	return p.IndentCeiling
}

// Scan finds at most one header per catalog identifier and returns them
// ordered by anchor line. Physical order may differ from numeric order.
func (p Parser) Scan(lines []string) []doctree.Header {
	var headers []doctree.Header
	for _, id := range catalog.IDs() {
		if h, ok := p.scanFor(lines, id); ok {
			headers = append(headers, h)
		}
	}
	slices.SortStableFunc(headers, func(a, b doctree.Header) int {
		return a.Line - b.Line
	})
	return headers
}

// scanFor returns the first line that confidently opens section id.
func (p Parser) scanFor(lines []string, id string) (doctree.Header, bool) {
	ceiling := p.ceiling()

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if m := combinedHeader.FindStringSubmatch(trimmed); m != nil {
			title := strings.TrimSpace(m[2])
			if thaitext.NormalizeDigits(m[1]) == id &&
				MatchesTitle(title, id) &&
				thaitext.Indent(line) < ceiling {
				return doctree.Header{Line: i, ID: id, Title: title}, true
			}
			// A numbered line is never reconsidered as a bare title.
			continue
		}

		if thaitext.Len(trimmed) <= minTitleOnlyLen || !MatchesTitle(trimmed, id) {
			continue
		}
		anchor, ok := FindNumberNear(lines, i, id)
		if !ok || thaitext.Indent(lines[anchor]) >= ceiling {
			continue
		}
		return doctree.Header{Line: anchor, ID: id, Title: trimmed}, true
	}

	return doctree.Header{}, false
}
