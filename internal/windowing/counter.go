package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/go-agent-context/memory"
)

// TokenCounter estimates the input-token cost of a turn.
type TokenCounter interface {
	Count(t memory.Turn) int
}

// HeuristicCounter is the default deterministic estimator: the rune count of
// the turn text plus a small fixed overhead for role and framing.
type HeuristicCounter struct{}

// Fixed per-turn overhead; changing this requires updating the guard test.
const turnOverhead = 4

func (HeuristicCounter) Count(t memory.Turn) int {
	return utf8.RuneCountInString(t.Text) + turnOverhead
}

// CountAll sums c over turns.
func CountAll(c TokenCounter, turns []memory.Turn) int {
	total := 0
	for _, t := range turns {
		total += c.Count(t)
	}
	return total
}
