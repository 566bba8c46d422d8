package wer

import "strings"

// Tokenize splits text into word tokens on whitespace. No case folding,
// punctuation stripping, or other normalization is applied; callers that
// want normalized scoring must normalize before tokenizing.
func Tokenize(s string) []string {
	return strings.Fields(s)
}
