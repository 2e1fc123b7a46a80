package metrics

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petasbytes/go-agent-context/memory"
)

// Features holds basic local text features derived from an input string.
type Features struct {
	Bytes int
	Runes int
	Words int
	Lines int
}

// Add returns the field-wise sum of f and g.
func (f Features) Add(g Features) Features {
	return Features{
		Bytes: f.Bytes + g.Bytes,
		Runes: f.Runes + g.Runes,
		Words: f.Words + g.Words,
		Lines: f.Lines + g.Lines,
	}
}

// CountFeatures computes and returns byte, rune, word, and line counts for the input string.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: countWords(s),
		Lines: countLines(s),
	}
}

// CountTurns sums the features of every turn's text.
func CountTurns(turns []memory.Turn) Features {
	var total Features
	for _, t := range turns {
		total = total.Add(CountFeatures(t.Text))
	}
	return total
}

// Terms lowercases s and splits it on any rune that is not a letter or digit.
// It is the tokenization shared by local embedding and summarization.
func Terms(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// countWords counts words split on Unicode whitespace.
func countWords(s string) int {
	return len(strings.Fields(s))
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}
