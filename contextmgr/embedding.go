package contextmgr

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/petasbytes/go-agent-context/memory"
)

// EmbeddingConfig configures an Embedding strategy.
type EmbeddingConfig struct {
	// TopK is the number of most similar turns returned for a query. Zero
	// disables similarity ranking.
	TopK int
	// RecentTurns is the number of latest turns appended after the ranked
	// ones, and the whole result when no query is given.
	RecentTurns int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c EmbeddingConfig) validate() error {
	switch {
	case c.TopK < 0:
		return invalidf("top-k %d < 0", c.TopK)
	case c.RecentTurns < 0:
		return invalidf("recent turns %d < 0", c.RecentTurns)
	}
	return nil
}

type embeddedTurn struct {
	turn memory.Turn
	vec  []float32
	norm float64
}

// Embedding stores every turn with its vector and retrieves by cosine
// similarity. Entries are never evicted.
type Embedding struct {
	cfg      EmbeddingConfig
	embedder Embedder
	logger   *slog.Logger
	entries  []embeddedTurn
}

// NewEmbedding returns a retrieval strategy backed by e.
func NewEmbedding(cfg EmbeddingConfig, e Embedder) (*Embedding, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, invalidf("embedder is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedding{cfg: cfg, embedder: e, logger: logger}, nil
}

// AddTurn embeds t and stores it. An embedder failure, an empty vector, or a
// vector whose dimension differs from the stored ones returns an error
// wrapping ErrEmbedding and stores nothing.
func (e *Embedding) AddTurn(ctx context.Context, t memory.Turn, opts ...Option) error {
	return addTurn(ctx, e, t, opts)
}

func (e *Embedding) stage(ctx context.Context, t memory.Turn, _ options) (func(), error) {
	vec, err := e.embed(ctx, t.Text)
	if err != nil {
		return nil, err
	}
	entry := embeddedTurn{turn: t, vec: vec, norm: norm(vec)}
	return func() { e.entries = append(e.entries, entry) }, nil
}

func (e *Embedding) embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.embedder.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("contextmgr: embedder failed", "err", err, "text_len", len(text))
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(vec) == 0 {
		return nil, ErrDegenerateEmbedding
	}
	if dim := e.Dim(); dim != 0 && len(vec) != dim {
		return nil, fmt.Errorf("%w: dimension %d, want %d", ErrDegenerateEmbedding, len(vec), dim)
	}
	return slices.Clone(vec), nil
}

// Dim returns the vector dimension of stored entries, or 0 when empty.
func (e *Embedding) Dim() int {
	if len(e.entries) == 0 {
		return 0
	}
	return len(e.entries[0].vec)
}

// Len returns the number of stored turns.
func (e *Embedding) Len() int { return len(e.entries) }

// Context returns the latest turns when no query is given. With WithQuery it
// returns the TopK most similar turns (ties keep insertion order) followed by
// the latest turns, dropping repeated (role, text) pairs.
func (e *Embedding) Context(ctx context.Context, opts ...Option) ([]memory.Turn, error) {
	if len(e.entries) == 0 {
		return []memory.Turn{}, nil
	}
	o := collect(opts)
	recent := e.recent()
	if !o.hasQuery {
		return recent, nil
	}

	q, err := e.embed(ctx, o.query)
	if err != nil {
		return nil, err
	}
	return dedupe(e.rank(q), recent), nil
}

func (e *Embedding) recent() []memory.Turn {
	start := max(len(e.entries)-e.cfg.RecentTurns, 0)
	out := make([]memory.Turn, 0, len(e.entries)-start)
	for _, en := range e.entries[start:] {
		out = append(out, en.turn)
	}
	return out
}

func (e *Embedding) rank(q []float32) []memory.Turn {
	if e.cfg.TopK == 0 {
		return nil
	}
	qn := norm(q)
	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(e.entries))
	for i, en := range e.entries {
		scores[i] = scored{idx: i, score: cosine(q, qn, en.vec, en.norm)}
	}
	slices.SortStableFunc(scores, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	k := min(e.cfg.TopK, len(scores))
	out := make([]memory.Turn, k)
	for i := range k {
		out[i] = e.entries[scores[i].idx].turn
	}
	return out
}

var _ Strategy = (*Embedding)(nil)
