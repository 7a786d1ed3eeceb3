package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeString drops control characters, collapses runs of whitespace
// and truncates to maxLen runes. maxLen <= 0 means no limit.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if maxLen > 0 && utf8.RuneCountInString(cleaned) > maxLen {
		cleaned = strings.TrimSpace(string([]rune(cleaned)[:maxLen]))
	}
	return cleaned
}
