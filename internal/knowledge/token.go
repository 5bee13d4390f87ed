package knowledge

import "unicode/utf8"

// EstimateTokens gives a rough token count using the ~4 chars/token heuristic.
// Characters, not words: Thai runs words together without spaces.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	tokens := utf8.RuneCountInString(text) / 4
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}
