package contextmgr

import (
	"context"
	"slices"

	"github.com/petasbytes/go-agent-context/memory"
)

// window is a FIFO buffer holding at most cap turns.
type window struct {
	cap   int
	turns []memory.Turn
}

func newWindow(capacity int) window {
	return window{cap: capacity, turns: make([]memory.Turn, 0, capacity)}
}

func (w *window) push(t memory.Turn) {
	if len(w.turns) == w.cap {
		copy(w.turns, w.turns[1:])
		w.turns = w.turns[:len(w.turns)-1]
	}
	w.turns = append(w.turns, t)
}

func (w *window) snapshot() []memory.Turn {
	return slices.Clone(w.turns)
}

// Sliding keeps the last N turns verbatim. It is the baseline strategy.
type Sliding struct {
	buf window
}

// NewSliding returns a sliding window holding up to capacity turns.
func NewSliding(capacity int) (*Sliding, error) {
	if capacity < 1 {
		return nil, invalidf("sliding capacity %d < 1", capacity)
	}
	return &Sliding{buf: newWindow(capacity)}, nil
}

// AddTurn appends t, evicting the oldest turn when full. It fails only for an
// invalid turn.
func (s *Sliding) AddTurn(ctx context.Context, t memory.Turn, opts ...Option) error {
	return addTurn(ctx, s, t, opts)
}

func (s *Sliding) stage(_ context.Context, t memory.Turn, _ options) (func(), error) {
	return func() { s.buf.push(t) }, nil
}

// Context returns the buffered turns oldest first. It never fails.
func (s *Sliding) Context(context.Context, ...Option) ([]memory.Turn, error) {
	return s.buf.snapshot(), nil
}

var _ Strategy = (*Sliding)(nil)
