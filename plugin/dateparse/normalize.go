package dateparse

import (
	"regexp"
	"strings"
)

var wordSeparator = regexp.MustCompile(`[\s,.:;!?]+`)

// Text is a normalized message with two token views.
type Text struct {
	// Normalized is the lower-cased, trimmed message.
	Normalized string
	// Words splits on whitespace and punctuation; used for whole-word vocabulary matches.
	Words []string
	// Fields splits on whitespace only, with edge punctuation trimmed; used for
	// numeric captures such as "15:00" or "25.12.2025".
	Fields []string
}

// Normalize lower-cases and trims raw, folds "ё" into "е" and tokenizes it.
// It never fails; an empty input yields an empty Text.
func Normalize(raw string) *Text {
	s := strings.TrimSpace(strings.ToLower(raw))
	s = strings.ReplaceAll(s, "ё", "е")

	t := &Text{Normalized: s}
	for _, w := range wordSeparator.Split(s, -1) {
		if w != "" {
			t.Words = append(t.Words, w)
		}
	}
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, `,;!?()"'«»`)
		f = strings.TrimRight(f, ".:")
		if f != "" {
			t.Fields = append(t.Fields, f)
		}
	}
	return t
}

// HasWord reports whether word occurs in the text as a whole word.
func (t *Text) HasWord(word string) bool {
	return containsPhrase(t.Words, strings.Fields(word))
}
