// Package config loads the agent configuration. Values are layered: built-in
// defaults, then an optional YAML file, then AGT_* environment variables, then
// command-line flags that were set explicitly.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/petasbytes/go-agent-context/contextmgr"
)

// Embedder kinds.
const (
	EmbedderHash   = "hash"
	EmbedderOpenAI = "openai"
)

// Summarizer kinds.
const (
	SummarizerExtractive = "extractive"
	SummarizerAnthropic  = "anthropic"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid")

// Config is the agent configuration file format.
type Config struct {
	Mode          string `yaml:"mode" json:"mode" jsonschema:"enum=sliding,enum=summarizing,enum=tree,enum=embedding,enum=hybrid,default=sliding" jsonschema_description:"Context strategy."`
	ContextLength int    `yaml:"context_length" json:"context_length" jsonschema:"minimum=1,default=10" jsonschema_description:"Recent turns kept; also the summary batch size and tree depth."`
	TopK          int    `yaml:"top_k" json:"top_k" jsonschema:"minimum=0,default=10" jsonschema_description:"Most similar turns retrieved for embedding and hybrid modes."`
	SummaryMin    int    `yaml:"summary_min" json:"summary_min" jsonschema:"minimum=0,default=10" jsonschema_description:"Lower summary length bound in words."`
	SummaryMax    int    `yaml:"summary_max" json:"summary_max" jsonschema:"minimum=1,default=1000" jsonschema_description:"Upper summary length bound in words."`

	TokenBudget int    `yaml:"token_budget" json:"token_budget" jsonschema:"minimum=1,default=8000" jsonschema_description:"Estimated input-token ceiling per request."`
	Model       string `yaml:"model" json:"model,omitempty" jsonschema_description:"Anthropic model id; empty uses the built-in default."`
	MaxTokens   int64  `yaml:"max_tokens" json:"max_tokens" jsonschema:"minimum=1,default=1024" jsonschema_description:"Reply token limit."`

	Embedder   EmbedderConfig `yaml:"embedder" json:"embedder"`
	Summarizer string         `yaml:"summarizer" json:"summarizer" jsonschema:"enum=extractive,enum=anthropic,default=extractive" jsonschema_description:"Summarization backend."`

	TranscriptPath string `yaml:"transcript" json:"transcript,omitempty" jsonschema_description:"JSON transcript file replayed at start and rewritten after each turn."`
	DatabasePath   string `yaml:"database" json:"database,omitempty" jsonschema_description:"SQLite database holding sessions."`
	Session        string `yaml:"session" json:"session,omitempty" jsonschema_description:"Session id to resume from the database; empty starts a new one."`

	LogLevel string `yaml:"log_level" json:"log_level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=warn"`
}

// EmbedderConfig selects and configures the embedding backend. The OpenAI API
// key is read from OPENAI_API_KEY and never stored in the file.
type EmbedderConfig struct {
	Kind    string `yaml:"kind" json:"kind" jsonschema:"enum=hash,enum=openai,default=hash"`
	Dim     int    `yaml:"dim" json:"dim" jsonschema:"minimum=1,default=256" jsonschema_description:"Vector size of the hash embedder."`
	BaseURL string `yaml:"base_url" json:"base_url,omitempty" jsonschema_description:"OpenAI-compatible endpoint root."`
	Model   string `yaml:"model" json:"model,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	d := contextmgr.DefaultConfig()
	return Config{
		Mode:          string(d.Mode),
		ContextLength: d.ContextLength,
		TopK:          d.TopK,
		SummaryMin:    d.SummaryMin,
		SummaryMax:    d.SummaryMax,
		TokenBudget:   8000,
		MaxTokens:     1024,
		Embedder:      EmbedderConfig{Kind: EmbedderHash, Dim: 256},
		Summarizer:    SummarizerExtractive,
		LogLevel:      "warn",
	}
}

// Load returns Default overlaid with the YAML file at path. An empty path
// skips the file. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: open: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays AGT_* variables found by lookup (os.LookupEnv in production).
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q: %w", ErrInvalid, key, v, err))
			return
		}
		*dst = n
	}

	str("AGT_MODE", &c.Mode)
	num("AGT_CONTEXT_LENGTH", &c.ContextLength)
	num("AGT_TOP_K", &c.TopK)
	num("AGT_SUMMARY_MIN", &c.SummaryMin)
	num("AGT_SUMMARY_MAX", &c.SummaryMax)
	num("AGT_TOKEN_BUDGET", &c.TokenBudget)
	str("AGT_MODEL", &c.Model)
	maxTokens := int(c.MaxTokens)
	num("AGT_MAX_TOKENS", &maxTokens)
	c.MaxTokens = int64(maxTokens)
	str("AGT_EMBEDDER", &c.Embedder.Kind)
	num("AGT_EMBED_DIM", &c.Embedder.Dim)
	str("AGT_EMBED_BASE_URL", &c.Embedder.BaseURL)
	str("AGT_EMBED_MODEL", &c.Embedder.Model)
	str("AGT_SUMMARIZER", &c.Summarizer)
	str("AGT_TRANSCRIPT", &c.TranscriptPath)
	str("AGT_DB", &c.DatabasePath)
	str("AGT_SESSION", &c.Session)
	str("AGT_LOG_LEVEL", &c.LogLevel)
	return errors.Join(errs...)
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := contextmgr.ParseMode(c.Mode); err != nil {
		bad("mode %q", c.Mode)
	}
	if c.ContextLength < 1 {
		bad("context_length %d < 1", c.ContextLength)
	}
	if c.TopK < 0 {
		bad("top_k %d < 0", c.TopK)
	}
	if c.SummaryMax < 1 {
		bad("summary_max %d < 1", c.SummaryMax)
	}
	if c.SummaryMin < 0 || c.SummaryMin > c.SummaryMax {
		bad("summary_min %d outside [0, %d]", c.SummaryMin, c.SummaryMax)
	}
	if c.TokenBudget < 1 {
		bad("token_budget %d < 1", c.TokenBudget)
	}
	if c.MaxTokens < 1 {
		bad("max_tokens %d < 1", c.MaxTokens)
	}
	switch c.Embedder.Kind {
	case EmbedderHash:
		if c.Embedder.Dim < 1 {
			bad("embedder.dim %d < 1", c.Embedder.Dim)
		}
	case EmbedderOpenAI:
	default:
		bad("embedder.kind %q", c.Embedder.Kind)
	}
	switch c.Summarizer {
	case SummarizerExtractive, SummarizerAnthropic:
	default:
		bad("summarizer %q", c.Summarizer)
	}
	if _, err := c.Level(); err != nil {
		bad("log_level %q", c.LogLevel)
	}
	return errors.Join(errs...)
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// Engine converts c to the engine configuration. Call Validate first.
func (c Config) Engine(logger *slog.Logger) (contextmgr.Config, error) {
	mode, err := contextmgr.ParseMode(c.Mode)
	if err != nil {
		return contextmgr.Config{}, err
	}
	return contextmgr.Config{
		Mode:          mode,
		ContextLength: c.ContextLength,
		TopK:          c.TopK,
		SummaryMin:    c.SummaryMin,
		SummaryMax:    c.SummaryMax,
		Logger:        logger,
	}, nil
}
