package extract

import (
	"strings"
	"unicode/utf8"
)

// extractPlain passes text files through, replacing invalid UTF-8 sequences so
// downstream regexes and the keyword analyzer never see broken runes.
func extractPlain(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}
	return strings.ToValidUTF8(string(content), "�"), nil
}
