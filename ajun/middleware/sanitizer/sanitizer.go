package sanitizer

import (
	"html"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeInput prepares free text typed by a user for display or storage.
// Compatibility forms are folded first so that lookalikes such as U+FF1C
// become '<' and get escaped with everything else.
func SanitizeInput(text string) string {
	text = norm.NFKC.String(text)
	text = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
	return html.EscapeString(strings.TrimSpace(text))
}

// Digits keeps only ASCII digits, for identifiers such as account numbers.
func Digits(text string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, norm.NFKC.String(text))
}
