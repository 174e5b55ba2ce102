package tokenizer

import (
	"regexp"
	"strings"
)

// TokenizeSubwords splits text into words or numbers, preserving internal apostrophes.
var reToken = regexp.MustCompile(`\pL+(?:[’']\pL+)*|\pN+`)

func TokenizeSubwords(text string) []string {
	return reToken.FindAllString(text, -1)
}

// Words returns the lowercased tokens of text.
func Words(text string) []string {
	return reToken.FindAllString(strings.ToLower(text), -1)
}
