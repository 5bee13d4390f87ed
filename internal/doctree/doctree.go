package doctree

// Header is a located section start within a document's line sequence.
type Header struct {
	Line  int    // Anchor line: the title line, or the numeral line when number and title are split
	ID    string // Catalog identifier, "1".."13"
	Title string // Title text as it appears in the document
}

// Section is one extracted section of a tender document.
type Section struct {
	ID            string `json:"section_number"`
	Title         string `json:"title"`
	Line          int    `json:"line_number"`
	Content       string `json:"content"`
	ContentLength int    `json:"content_length"` // In characters
}

// Document is the structured result of parsing a tender document.
type Document struct {
	Title         string    `json:"document_title"`
	TotalSections int       `json:"total_sections"`
	Sections      []Section `json:"sections"`         // Ordered by position in the source text
	Missing       []string  `json:"missing_sections"` // Catalog identifiers not found, ascending
}

// Section returns the section with the given identifier.
func (d *Document) Section(id string) (Section, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Select returns the sections whose identifiers are in ids, in document order.
func (d *Document) Select(ids []string) []Section {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []Section{}
	for _, s := range d.Sections {
		if want[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
