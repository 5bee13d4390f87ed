package sections

import (
	"strings"

	"github.com/dgallion1/tenderdoc/internal/doctree"
)

// Parse splits text into lines, locates the catalog sections and assembles
// the document. It never fails: sections that cannot be found are reported
// in Document.Missing.
func (p Parser) Parse(text string) *doctree.Document {
	lines := strings.Split(text, "\n")
	return Assemble(lines, p.Scan(lines))
}

// Parse runs a Parser with the default indentation ceiling.
func Parse(text string) *doctree.Document {
	return Parser{}.Parse(text)
}
