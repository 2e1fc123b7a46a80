package contextmgr

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/petasbytes/go-agent-context/memory"
)

// SummarizingConfig configures a Summarizing strategy.
type SummarizingConfig struct {
	// MaxTurns is both the detailed tail capacity and the batch size that
	// triggers a summary.
	MaxTurns int
	// MinLength and MaxLength bound the summarizer output.
	MinLength int
	MaxLength int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c SummarizingConfig) validate() error {
	switch {
	case c.MaxTurns < 1:
		return invalidf("summarizing max turns %d < 1", c.MaxTurns)
	case c.MaxLength < 1:
		return invalidf("summary max length %d < 1", c.MaxLength)
	case c.MinLength < 0 || c.MinLength > c.MaxLength:
		return invalidf("summary min length %d outside [0, %d]", c.MinLength, c.MaxLength)
	}
	return nil
}

// Summarizing keeps a detailed tail of recent turns plus rolling summaries of
// every completed batch of older turns.
type Summarizing struct {
	cfg        SummarizingConfig
	summarizer Summarizer
	logger     *slog.Logger

	tail      window
	pending   []memory.Turn
	summaries []string
}

// NewSummarizing returns a summarizing window backed by s.
func NewSummarizing(cfg SummarizingConfig, s Summarizer) (*Summarizing, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if s == nil {
		return nil, invalidf("summarizer is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizing{
		cfg:        cfg,
		summarizer: s,
		logger:     logger,
		tail:       newWindow(cfg.MaxTurns),
	}, nil
}

// AddTurn appends t to the tail and the pending batch. When the batch is full
// it is summarized before anything is committed; a summarizer failure returns
// an error wrapping ErrSummarization and leaves the window unchanged.
func (s *Summarizing) AddTurn(ctx context.Context, t memory.Turn, opts ...Option) error {
	return addTurn(ctx, s, t, opts)
}

func (s *Summarizing) stage(ctx context.Context, t memory.Turn, _ options) (func(), error) {
	batch := append(slices.Clone(s.pending), t)
	if len(batch) < s.cfg.MaxTurns {
		return func() {
			s.tail.push(t)
			s.pending = batch
		}, nil
	}

	summary, err := s.summarize(ctx, batch)
	if err != nil {
		return nil, err
	}
	return func() {
		s.tail.push(t)
		s.pending = nil
		s.summaries = append(s.summaries, summary)
		s.logger.Debug("contextmgr: batch summarized",
			"batch_turns", len(batch),
			"summaries", len(s.summaries),
			"summary_len", len(summary),
		)
	}, nil
}

func (s *Summarizing) summarize(ctx context.Context, batch []memory.Turn) (string, error) {
	lines := make([]string, len(batch))
	for i, t := range batch {
		lines[i] = t.Line()
	}
	out, err := s.summarizer.Summarize(ctx, strings.Join(lines, "\n"), s.cfg.MinLength, s.cfg.MaxLength)
	if err != nil {
		s.logger.Warn("contextmgr: summarizer failed", "err", err, "batch_turns", len(batch))
		return "", fmt.Errorf("%w: %w", ErrSummarization, err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrDegenerateSummary
	}
	return out, nil
}

// Context returns one synthetic model turn holding every summary (when any
// exist) followed by the detailed tail.
func (s *Summarizing) Context(context.Context, ...Option) ([]memory.Turn, error) {
	out := make([]memory.Turn, 0, len(s.tail.turns)+1)
	if len(s.summaries) > 0 {
		out = append(out, memory.Model(strings.Join(s.summaries, " ")))
	}
	return append(out, s.tail.turns...), nil
}

// Summaries returns a copy of the accumulated summaries, oldest first.
func (s *Summarizing) Summaries() []string {
	return slices.Clone(s.summaries)
}

// Pending returns the number of turns waiting for the next summary.
func (s *Summarizing) Pending() int {
	return len(s.pending)
}

var _ Strategy = (*Summarizing)(nil)
