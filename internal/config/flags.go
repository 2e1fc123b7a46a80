package config

import (
	"github.com/spf13/pflag"
)

// Flags holds command-line overrides. Only flags the user set are applied, so
// flag defaults never mask values from the file or the environment.
type Flags struct {
	fs *pflag.FlagSet
	v  Config
}

// AddFlags registers one flag per configuration field on fs.
func AddFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	d := Default()
	fs.StringVarP(&f.v.Mode, "mode", "m", d.Mode, "context strategy: sliding, summarizing, tree, embedding, hybrid")
	fs.IntVar(&f.v.ContextLength, "context-length", d.ContextLength, "recent turns kept; also summary batch size and tree depth")
	fs.IntVar(&f.v.TopK, "top-k", d.TopK, "similar turns retrieved in embedding and hybrid modes")
	fs.IntVar(&f.v.SummaryMin, "summary-min", d.SummaryMin, "lower summary length bound in words")
	fs.IntVar(&f.v.SummaryMax, "summary-max", d.SummaryMax, "upper summary length bound in words")
	fs.IntVar(&f.v.TokenBudget, "token-budget", d.TokenBudget, "estimated input-token ceiling per request")
	fs.StringVar(&f.v.Model, "model", d.Model, "Anthropic model id")
	fs.Int64Var(&f.v.MaxTokens, "max-tokens", d.MaxTokens, "reply token limit")
	fs.StringVar(&f.v.Embedder.Kind, "embedder", d.Embedder.Kind, "embedding backend: hash or openai")
	fs.IntVar(&f.v.Embedder.Dim, "embed-dim", d.Embedder.Dim, "hash embedder vector size")
	fs.StringVar(&f.v.Embedder.BaseURL, "embed-base-url", d.Embedder.BaseURL, "OpenAI-compatible endpoint root")
	fs.StringVar(&f.v.Embedder.Model, "embed-model", d.Embedder.Model, "embedding model id")
	fs.StringVar(&f.v.Summarizer, "summarizer", d.Summarizer, "summarization backend: extractive or anthropic")
	fs.StringVar(&f.v.TranscriptPath, "transcript", d.TranscriptPath, "JSON transcript to replay and keep updated")
	fs.StringVar(&f.v.DatabasePath, "db", d.DatabasePath, "SQLite database holding sessions")
	fs.StringVar(&f.v.Session, "session", d.Session, "session id to resume from --db")
	fs.StringVar(&f.v.LogLevel, "log-level", d.LogLevel, "debug, info, warn or error")
	return f
}

// Apply copies every flag that was set on the command line into c.
func (f *Flags) Apply(c *Config) {
	set := map[string]func(){
		"mode":           func() { c.Mode = f.v.Mode },
		"context-length": func() { c.ContextLength = f.v.ContextLength },
		"top-k":          func() { c.TopK = f.v.TopK },
		"summary-min":    func() { c.SummaryMin = f.v.SummaryMin },
		"summary-max":    func() { c.SummaryMax = f.v.SummaryMax },
		"token-budget":   func() { c.TokenBudget = f.v.TokenBudget },
		"model":          func() { c.Model = f.v.Model },
		"max-tokens":     func() { c.MaxTokens = f.v.MaxTokens },
		"embedder":       func() { c.Embedder.Kind = f.v.Embedder.Kind },
		"embed-dim":      func() { c.Embedder.Dim = f.v.Embedder.Dim },
		"embed-base-url": func() { c.Embedder.BaseURL = f.v.Embedder.BaseURL },
		"embed-model":    func() { c.Embedder.Model = f.v.Embedder.Model },
		"summarizer":     func() { c.Summarizer = f.v.Summarizer },
		"transcript":     func() { c.TranscriptPath = f.v.TranscriptPath },
		"db":             func() { c.DatabasePath = f.v.DatabasePath },
		"session":        func() { c.Session = f.v.Session },
		"log-level":      func() { c.LogLevel = f.v.LogLevel },
	}
	f.fs.Visit(func(fl *pflag.Flag) {
		if apply, ok := set[fl.Name]; ok {
			apply()
		}
	})
}
