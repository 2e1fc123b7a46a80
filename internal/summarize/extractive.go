// Package summarize provides Summarizer implementations for the summarizing
// window. Lengths are measured in words.
package summarize

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/petasbytes/go-agent-context/contextmgr"
)

// Extractive builds a summary from the leading sentences of the transcript
// without calling a model. Whole sentences are kept while they fit maxLen
// words; if that yields fewer than minLen words the text is cut at maxLen
// words instead. The "role:" prefixes of transcript lines are dropped.
// Safe for concurrent use.
type Extractive struct{}

func (Extractive) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if maxLen <= 0 {
		return "", nil
	}

	var words []string
	for _, line := range strings.Split(text, "\n") {
		words = append(words, strings.Fields(stripRole(line))...)
	}
	if len(words) <= maxLen {
		return strings.Join(words, " "), nil
	}

	n := 0
	for i, w := range words[:maxLen] {
		if endsSentence(w) {
			n = i + 1
		}
	}
	if n < minLen || n == 0 {
		n = maxLen
	}
	return strings.Join(words[:n], " "), nil
}

func stripRole(line string) string {
	for _, p := range []string{"user:", "model:"} {
		if rest, ok := strings.CutPrefix(line, p); ok {
			return rest
		}
	}
	return line
}

func endsSentence(w string) bool {
	w = strings.TrimRightFunc(w, func(r rune) bool { return r == '"' || r == '\'' || r == ')' })
	last, size := utf8.DecodeLastRuneInString(w)
	return size > 0 && unicode.Is(unicode.Sentence_Terminal, last)
}

var _ contextmgr.Summarizer = Extractive{}
