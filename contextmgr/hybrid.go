package contextmgr

import (
	"context"
	"log/slog"

	"github.com/petasbytes/go-agent-context/memory"
)

// HybridConfig derives the settings of the four strategies a Hybrid owns.
type HybridConfig struct {
	// MaxRecentTurns sizes the sliding window, the summarizing tail and
	// batch, and the recent tail of embedding retrieval.
	MaxRecentTurns int
	TopK           int
	// SummaryMinLength and SummaryMaxLength bound each summary.
	SummaryMinLength int
	SummaryMaxLength int
	TreeDepth        int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Hybrid feeds every turn to a sliding window, a summarizing window, an
// embedding store and a tree, and merges their contexts in that priority
// order without duplicates.
type Hybrid struct {
	sliding     *Sliding
	summarizing *Summarizing
	embedding   *Embedding
	tree        *Tree
}

// NewHybrid builds the four strategies from cfg.
func NewHybrid(cfg HybridConfig, e Embedder, s Summarizer) (*Hybrid, error) {
	sliding, err := NewSliding(cfg.MaxRecentTurns)
	if err != nil {
		return nil, err
	}
	summarizing, err := NewSummarizing(SummarizingConfig{
		MaxTurns:  cfg.MaxRecentTurns,
		MinLength: cfg.SummaryMinLength,
		MaxLength: cfg.SummaryMaxLength,
		Logger:    cfg.Logger,
	}, s)
	if err != nil {
		return nil, err
	}
	embedding, err := NewEmbedding(EmbeddingConfig{
		TopK:        cfg.TopK,
		RecentTurns: cfg.MaxRecentTurns,
		Logger:      cfg.Logger,
	}, e)
	if err != nil {
		return nil, err
	}
	tree, err := NewTree(cfg.TreeDepth)
	if err != nil {
		return nil, err
	}
	return &Hybrid{
		sliding:     sliding,
		summarizing: summarizing,
		embedding:   embedding,
		tree:        tree,
	}, nil
}

// AddTurn forwards t to every owned strategy. WithParent reaches only the
// tree. Collaborator calls happen before any strategy is updated, so a
// failure leaves all four unchanged.
func (h *Hybrid) AddTurn(ctx context.Context, t memory.Turn, opts ...Option) error {
	return addTurn(ctx, h, t, opts)
}

func (h *Hybrid) stage(ctx context.Context, t memory.Turn, o options) (func(), error) {
	treeOnly := options{parent: o.parent, hasParent: o.hasParent}
	steps := []struct {
		s stager
		o options
	}{
		{h.sliding, options{}},
		{h.summarizing, options{}},
		{h.embedding, options{}},
		{h.tree, treeOnly},
	}
	commits := make([]func(), 0, len(steps))
	for _, step := range steps {
		c, err := step.s.stage(ctx, t, step.o)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return func() {
		for _, c := range commits {
			c()
		}
	}, nil
}

// Context merges, in order, the sliding window, the summarizing window, the
// embedding retrieval for WithQuery, and the tree lineage of WithParent
// (default: the last added node). Repeated (role, text) pairs keep their
// first position.
func (h *Hybrid) Context(ctx context.Context, opts ...Option) ([]memory.Turn, error) {
	o := collect(opts)

	recency, err := h.sliding.Context(ctx)
	if err != nil {
		return nil, err
	}
	summary, err := h.summarizing.Context(ctx)
	if err != nil {
		return nil, err
	}
	var embOpts []Option
	if o.hasQuery {
		embOpts = append(embOpts, WithQuery(o.query))
	}
	relevant, err := h.embedding.Context(ctx, embOpts...)
	if err != nil {
		return nil, err
	}
	from := h.tree.LastID()
	if o.hasParent && o.parent != 0 {
		from = o.parent
	}
	lineage, err := h.tree.Context(ctx, WithParent(from))
	if err != nil {
		return nil, err
	}

	return dedupe(recency, summary, relevant, lineage), nil
}

// Nodes passes through to the owned tree.
func (h *Hybrid) Nodes() []MessageNode { return h.tree.Nodes() }

// Node passes through to the owned tree.
func (h *Hybrid) Node(id NodeID) (MessageNode, bool) { return h.tree.Node(id) }

// LastID passes through to the owned tree.
func (h *Hybrid) LastID() NodeID { return h.tree.LastID() }

var (
	_ Strategy = (*Hybrid)(nil)
	_ Brancher = (*Hybrid)(nil)
)
