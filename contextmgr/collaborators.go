package contextmgr

import "context"

// Embedder produces a fixed-dimension vector for text. Repeated calls on the
// same text must yield comparable vectors.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Summarizer condenses text into a summary whose length falls within
// [minLen, maxLen] in the summarizer's own length unit.
type Summarizer interface {
	Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f EmbedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, text string, minLen, maxLen int) (string, error)

func (f SummarizerFunc) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	return f(ctx, text, minLen, maxLen)
}
