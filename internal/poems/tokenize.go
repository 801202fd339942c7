// Package poems provides the poem catalogue and word tokenization.
package poems

import "strings"

// Tokenize splits poem text into word tokens. Runs of whitespace, including
// newlines, separate words; punctuation stays attached to its word.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	if words == nil {
		return []string{}
	}
	return words
}
