package query

import (
	"strings"
	"unicode"
)

// Tokenize is the analyzer shared by indexing and querying of text fields:
// lowercase, split on anything that is not a letter or a digit.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, strings.ToLower(f))
	}
	return tokens
}

// HasWildcard reports whether the value asks for pattern matching.
func HasWildcard(value string) bool {
	return strings.Contains(value, "*")
}
