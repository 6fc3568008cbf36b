// Package textnorm turns raw title and abstract text into the normalized
// tokens the vocabulary is built from. It lower-cases input, splits on
// whitespace, and trims surrounding punctuation from every token.
package textnorm

import (
	"database/sql"
	"strings"
)

// trimSet is the punctuation stripped from both ends of every token.
const trimSet = `.,;:()"'`

// Normalize splits text on whitespace and returns the lower-cased tokens with
// surrounding punctuation removed, in input order. Tokens consisting only of
// punctuation are dropped.
func Normalize(text string) []string {
	if text == "" {
		return nil
	}
	words := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		token := strings.Trim(word, trimSet)
		if token == "" {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// Field normalizes a nullable text column. A NULL value yields no tokens.
func Field(text sql.NullString) []string {
	if !text.Valid {
		return nil
	}
	return Normalize(text.String)
}

// Each calls fn for every token of text without allocating the token slice.
func Each(text sql.NullString, fn func(token string)) {
	if !text.Valid || text.String == "" {
		return
	}
	for _, word := range strings.Fields(strings.ToLower(text.String)) {
		if token := strings.Trim(word, trimSet); token != "" {
			fn(token)
		}
	}
}
