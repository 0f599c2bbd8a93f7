package indexer

import (
	"strings"
	"unicode"
)

// Preprocess collapses runs of whitespace to single spaces and trims the
// ends. Extracted PDF text arrives with ragged spacing that would otherwise
// bloat chunk windows.
func Preprocess(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range strings.TrimSpace(text) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
