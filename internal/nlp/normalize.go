package nlp

import (
	"regexp"
	"strings"
)

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	disallowedPattern = regexp.MustCompile(`[^a-z0-9\s@#]`)
	priorityToken     = regexp.MustCompile(`^p\d+$`)
	numericToken      = regexp.MustCompile(`^\d+$`)
)

// Normalize lowercases raw, drops characters outside [a-z0-9@#] and
// whitespace, collapses runs of whitespace and splits into tokens.
// Empty or blank input yields an empty Input, never an error.
func Normalize(raw string) Input {
	in := Input{Original: raw, Tokens: []Token{}}

	text := strings.ToLower(raw)
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = disallowedPattern.ReplaceAllString(text, " ")
	text = whitespacePattern.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if text == "" {
		return in
	}

	in.Normalized = text
	for _, word := range strings.Fields(text) {
		in.Tokens = append(in.Tokens, Token{Text: word, Special: isSpecial(word)})
	}
	return in
}

func isSpecial(word string) bool {
	return strings.HasPrefix(word, "@") ||
		priorityToken.MatchString(word) ||
		numericToken.MatchString(word)
}
