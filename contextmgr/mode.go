package contextmgr

import (
	"fmt"
	"log/slog"
	"strings"
)

// Mode names a context strategy.
type Mode string

const (
	ModeSliding     Mode = "sliding"
	ModeSummarizing Mode = "summarizing"
	ModeTree        Mode = "tree"
	ModeEmbedding   Mode = "embedding"
	ModeHybrid      Mode = "hybrid"
)

// Modes lists every mode in presentation order.
var Modes = []Mode{ModeSliding, ModeSummarizing, ModeTree, ModeEmbedding, ModeHybrid}

// ParseMode accepts a mode name case-insensitively; spaces, dashes and
// underscores are ignored and a trailing "window" or "retrieval" is optional,
// so "Sliding Window" and "embedding-retrieval" both parse.
func ParseMode(s string) (Mode, error) {
	norm := strings.ToLower(s)
	norm = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(norm)
	norm = strings.TrimSuffix(norm, "window")
	norm = strings.TrimSuffix(norm, "retrieval")
	switch norm {
	case "sliding":
		return ModeSliding, nil
	case "summarizing", "summarising":
		return ModeSummarizing, nil
	case "tree", "conversationtree":
		return ModeTree, nil
	case "embedding":
		return ModeEmbedding, nil
	case "hybrid":
		return ModeHybrid, nil
	}
	return "", invalidf("unknown mode %q", s)
}

// Branching reports whether the mode keeps a conversation tree.
func (m Mode) Branching() bool { return m == ModeTree || m == ModeHybrid }

// Queried reports whether the mode ranks turns against the prompt.
func (m Mode) Queried() bool { return m == ModeEmbedding || m == ModeHybrid }

// Config selects and sizes a strategy from one set of caller parameters.
type Config struct {
	Mode Mode
	// ContextLength sizes windows and tree depth.
	ContextLength int
	TopK          int
	SummaryMin    int
	SummaryMax    int
	Logger        *slog.Logger
}

// DefaultConfig returns the defaults used by the chat front end.
func DefaultConfig() Config {
	return Config{
		Mode:          ModeSliding,
		ContextLength: 10,
		TopK:          10,
		SummaryMin:    10,
		SummaryMax:    1000,
	}
}

// New builds the strategy named by cfg.Mode. Collaborators a mode does not
// use may be nil.
func New(cfg Config, e Embedder, s Summarizer) (Strategy, error) {
	switch cfg.Mode {
	case ModeSliding:
		return NewSliding(cfg.ContextLength)
	case ModeSummarizing:
		return NewSummarizing(SummarizingConfig{
			MaxTurns:  cfg.ContextLength,
			MinLength: cfg.SummaryMin,
			MaxLength: cfg.SummaryMax,
			Logger:    cfg.Logger,
		}, s)
	case ModeTree:
		return NewTree(cfg.ContextLength)
	case ModeEmbedding:
		return NewEmbedding(EmbeddingConfig{
			TopK:        cfg.TopK,
			RecentTurns: cfg.ContextLength,
			Logger:      cfg.Logger,
		}, e)
	case ModeHybrid:
		return NewHybrid(HybridConfig{
			MaxRecentTurns:   cfg.ContextLength,
			TopK:             cfg.TopK,
			SummaryMinLength: cfg.SummaryMin,
			SummaryMaxLength: cfg.SummaryMax,
			TreeDepth:        cfg.ContextLength,
			Logger:           cfg.Logger,
		}, e, s)
	}
	return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidConfig, cfg.Mode)
}
