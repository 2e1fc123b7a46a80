package summarize

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/internal/provider"
)

// tokensPerWord converts the word bound into a max_tokens ceiling.
const tokensPerWord = 2

// Anthropic summarizes through the Messages API. Safe for concurrent use.
type Anthropic struct {
	Client *anthropic.Client
	Model  anthropic.Model
}

// NewAnthropic returns a summarizer using model (provider.DefaultModel when empty).
func NewAnthropic(client *anthropic.Client, model anthropic.Model) *Anthropic {
	if model == "" {
		model = provider.DefaultModel
	}
	return &Anthropic{Client: client, Model: model}
}

func (a *Anthropic) Summarize(ctx context.Context, text string, minLen, maxLen int) (string, error) {
	if maxLen <= 0 {
		return "", fmt.Errorf("summarizer anthropic: max length %d must be positive", maxLen)
	}
	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.Model,
		MaxTokens: int64(maxLen*tokensPerWord + 16),
		System: []anthropic.TextBlockParam{{Text: fmt.Sprintf(
			"Summarize the conversation you are given in %d to %d words. Keep facts, names and decisions. Reply with the summary only.",
			minLen, maxLen,
		)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarizer anthropic: %w", err)
	}
	return provider.ReplyText(msg), nil
}

var _ contextmgr.Summarizer = (*Anthropic)(nil)
