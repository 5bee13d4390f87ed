// Package knowledge keeps the document sections a chat session answers from
// and renders them into the context block sent with each question.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/dgallion1/tenderdoc/internal/doctree"
)

// Item is one piece of retrievable context.
type Item struct {
	Source    string `json:"source"`
	Content   string `json:"content"`
	SectionID string `json:"section_number,omitempty"`
}

// FromSection formats a parsed section as a knowledge item.
func FromSection(sec doctree.Section, source string) Item {
	return Item{
		Source:    fmt.Sprintf("%s - Section %s", source, sec.ID),
		Content:   fmt.Sprintf("Section %s: %s\n\n%s", sec.ID, sec.Title, sec.Content),
		SectionID: sec.ID,
	}
}

// Base is an ordered collection of knowledge items. It is not safe for
// concurrent use; a session owns its base.
type Base struct {
	// MaxItemTokens splits longer items into parts on line boundaries.
	// Zero keeps items whole.
	MaxItemTokens int

	items []Item
}

// Add appends an item, splitting it if it exceeds MaxItemTokens.
func (b *Base) Add(item Item) {
	if b.MaxItemTokens <= 0 || EstimateTokens(item.Content) <= b.MaxItemTokens {
		b.items = append(b.items, item)
		return
	}
	parts := splitLines(item.Content, b.MaxItemTokens)
	for i, part := range parts {
		b.items = append(b.items, Item{
			Source:    fmt.Sprintf("%s (part %d/%d)", item.Source, i+1, len(parts)),
			Content:   part,
			SectionID: item.SectionID,
		})
	}
}

// AddSections adds each section as an item attributed to source.
func (b *Base) AddSections(sections []doctree.Section, source string) {
	for _, s := range sections {
		b.Add(FromSection(s, source))
	}
}

// Replace clears the base and adds sections.
func (b *Base) Replace(sections []doctree.Section, source string) {
	b.Clear()
	b.AddSections(sections, source)
}

// Clear removes all items.
func (b *Base) Clear() {
	b.items = nil
}

// Len returns the number of items.
func (b *Base) Len() int {
	return len(b.items)
}

// Items returns a copy of the items in insertion order.
func (b *Base) Items() []Item {
	out := make([]Item, len(b.items))
	copy(out, b.items)
	return out
}

// Tokens estimates the size of the rendered context.
func (b *Base) Tokens() int {
	return EstimateTokens(b.Context())
}

// Context renders every item as a "Source/Content" block, blocks separated
// by a blank line. An empty base renders as "".
func (b *Base) Context() string {
	blocks := make([]string, 0, len(b.items))
	for _, it := range b.items {
		blocks = append(blocks, "Source: "+it.Source+"\nContent: "+it.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// splitLines packs whole lines into parts of at most targetTokens. A single
// line over the target becomes its own part.
func splitLines(text string, targetTokens int) []string {
	var result []string
	var current strings.Builder
	currentTokens := 0

	for _, line := range strings.Split(text, "\n") {
		lineTokens := EstimateTokens(line)
		if currentTokens+lineTokens > targetTokens && current.Len() > 0 {
			result = append(result, strings.TrimRight(current.String(), "\n"))
			current.Reset()
			currentTokens = 0
		}
		current.WriteString(line)
		current.WriteByte('\n')
		currentTokens += lineTokens
	}
	if s := strings.TrimRight(current.String(), "\n"); s != "" {
		result = append(result, s)
	}
	return result
}
