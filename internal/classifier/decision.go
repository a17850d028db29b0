package classifier

import (
	"strings"
	"unicode"
)

const yesToken = "YES"

// parseDecision reduces a raw completion to the binary decision. The
// completion is truncated at the first whitespace or punctuation rune
// and the remaining token is compared case-sensitively against "YES".
// Anything else, including lowercase variants, means "not an
// introduction".
func parseDecision(raw string) bool {
	token := firstToken(strings.TrimSpace(raw))
	return token == yesToken
}

func firstToken(s string) string {
	for i, r := range s {
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			return s[:i]
		}
	}
	return s
}

var promptSanitizer = strings.NewReplacer(
	`"`, `'`,
	"\n", " ",
	"\r", " ",
)

// sanitizeText makes message text safe to embed into the quoted section
// of the classification prompt.
func sanitizeText(text string) string {
	return promptSanitizer.Replace(text)
}
