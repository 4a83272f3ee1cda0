package parser

import "strings"

// MatchesKeywords reports whether any keyword appears case-insensitively
// in one of the given text fragments.
func MatchesKeywords(keywords []string, texts ...string) bool {
	for _, text := range texts {
		lowered := strings.ToLower(text)
		for _, keyword := range keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return true
			}
		}
	}
	return false
}
