package utils

import (
	"strings"
	"unicode/utf8"
)

// SanitizeText trims surrounding whitespace and strips NUL bytes and invalid
// UTF-8 sequences. Postgres rejects text values containing NUL, so every
// free-text field coming off the wire passes through here before it reaches
// the database.
func SanitizeText(input string) string {
	cleaned := strings.TrimSpace(input)

	if !strings.Contains(cleaned, "\x00") && utf8.ValidString(cleaned) {
		return cleaned
	}

	cleaned = strings.ToValidUTF8(cleaned, "")
	return strings.ReplaceAll(cleaned, "\x00", "")
}
