package sections

import (
	"strings"

	"github.com/dgallion1/tenderdoc/internal/catalog"
	"github.com/dgallion1/tenderdoc/internal/thaitext"
)

// MatchesTitle reports whether candidate reads as the title of catalog
// section id. Every catalog keyword must occur in the normalized candidate,
// then the section's own disambiguation rule decides. Unknown identifiers
// never match.
func MatchesTitle(candidate, id string) bool {
	entry, ok := catalog.Lookup(id)
	if !ok {
		return false
	}

	title := thaitext.Key(candidate)
	for _, kw := range entry.Keywords {
		if !strings.Contains(title, thaitext.Key(kw)) {
			return false
		}
	}
	return entry.Disambiguate(title)
}
