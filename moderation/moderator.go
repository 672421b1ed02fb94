// Package moderation censors display names before they enter a roster.
package moderation

import (
	_ "embed"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"quiz-arena/errors"
)

//go:embed words.txt
var defaultWords string

// Moderator replaces forbidden patterns with a replacement rune. Matching
// is case-insensitive, skips punctuation and spacing, and folds common
// leet substitutions, so "B.4.d N4me" is caught by the pattern "bad name".
type Moderator struct {
	matcher     *goahocorasick.Machine
	replacement rune
}

// NewModerator builds the Aho-Corasick automaton from a normalized copy of
// the word list.
func NewModerator(words []string, replacement rune) (Moderator, error) {
	if len(words) == 0 {
		return Moderator{}, errors.ErrEmptyWords
	}
	patterns := make([][]rune, len(words))
	for i, word := range words {
		patterns[i] = normalize([]rune(word))
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return Moderator{}, err
	}
	return Moderator{matcher: machine, replacement: replacement}, nil
}

// Default builds a Moderator from the embedded word list.
func Default(replacement rune) (Moderator, error) {
	var words []string
	for _, line := range strings.Split(defaultWords, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	return NewModerator(words, replacement)
}

// Censor stars out every forbidden span while preserving the original
// length, spacing and untouched characters.
func (m *Moderator) Censor(name string) string {
	original := []rune(name)

	// Normalized view plus the index of each kept rune in the original.
	normalized := make([]rune, 0, len(original))
	origIdx := make([]int, 0, len(original))
	for i, r := range original {
		folded := foldLeet(r)
		if isNoise(folded) {
			continue
		}
		normalized = append(normalized, unicode.ToLower(folded))
		origIdx = append(origIdx, i)
	}
	if len(normalized) == 0 {
		return name
	}

	spans := m.matcher.MultiPatternSearch(normalized, false)
	for _, span := range spans {
		start := span.Pos
		end := start + len(span.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		// Star from the first to the last original rune of the match,
		// punctuation in between included.
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			original[i] = m.replacement
		}
	}
	return string(original)
}

func normalize(input []rune) []rune {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		folded := foldLeet(r)
		if isNoise(folded) {
			continue
		}
		out = append(out, unicode.ToLower(folded))
	}
	return out
}

// foldLeet maps common leet-speak substitutions back to letters.
func foldLeet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	default:
		return r
	}
}

func isNoise(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r)
}
