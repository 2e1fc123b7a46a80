// Package provider adapts engine turns to the Anthropic Messages API.
package provider

import (
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/petasbytes/go-agent-context/memory"
)

const DefaultModel = anthropic.ModelClaude3_7SonnetLatest
const APIVersion = "2023-06-01"

// NewAnthropicClient returns a client using the API key from the env plus any extra options.
func NewAnthropicClient(opts ...option.RequestOption) *anthropic.Client {
	c := anthropic.NewClient(opts...)
	return &c
}

// Messages converts selected turns to request messages. Consecutive turns with
// the same role are merged into one message with one text block each. Model
// turns that precede the first user turn (such as a running summary) cannot
// open a conversation, so they are returned as system text instead.
func Messages(turns []memory.Turn) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var msgs []anthropic.MessageParam
	for _, t := range turns {
		if len(msgs) == 0 && t.Role == memory.RoleModel {
			system = append(system, anthropic.TextBlockParam{Text: "Earlier in this conversation: " + t.Text})
			continue
		}
		role := toRole(t.Role)
		blk := anthropic.NewTextBlock(t.Text)
		if n := len(msgs); n > 0 && msgs[n-1].Role == role {
			msgs[n-1].Content = append(msgs[n-1].Content, blk)
			continue
		}
		msgs = append(msgs, anthropic.MessageParam{Role: role, Content: []anthropic.ContentBlockParamUnion{blk}})
	}
	return system, msgs
}

// ReplyText concatenates the text blocks of msg.
func ReplyText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if v, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(v.Text)
		}
	}
	return strings.TrimSpace(b.String())
}

func toRole(r memory.Role) anthropic.MessageParamRole {
	if r == memory.RoleModel {
		return anthropic.MessageParamRoleAssistant
	}
	return anthropic.MessageParamRoleUser
}
