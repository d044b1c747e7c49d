package ingest

import (
	"strings"
	"unicode"
)

// NormalizeText trims text and collapses whitespace runs to single spaces.
// PDF extraction emits line wraps and tab runs mid-sentence; normalizing
// keeps content-pattern matching stable across layouts.
func NormalizeText(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
