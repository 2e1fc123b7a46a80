package provider_test

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-agent-context/internal/provider"
	"github.com/petasbytes/go-agent-context/memory"
)

func TestMessages_MergesSameRoleAndLiftsLeadingSummary(t *testing.T) {
	system, msgs := provider.Messages([]memory.Turn{
		memory.Model("we discussed cats"),
		memory.User("a"),
		memory.User("b"),
		memory.Model("c"),
		memory.User("d"),
	})

	require.Len(t, system, 1)
	assert.Equal(t, "Earlier in this conversation: we discussed cats", system[0].Text)

	require.Len(t, msgs, 3)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[0].Role)
	require.Len(t, msgs[0].Content, 2)
	assert.Equal(t, "a", msgs[0].Content[0].OfText.Text)
	assert.Equal(t, "b", msgs[0].Content[1].OfText.Text)
	assert.Equal(t, anthropic.MessageParamRoleAssistant, msgs[1].Role)
	assert.Equal(t, anthropic.MessageParamRoleUser, msgs[2].Role)
}

func TestMessages_Empty(t *testing.T) {
	system, msgs := provider.Messages(nil)
	assert.Nil(t, system)
	assert.Nil(t, msgs)
}

func TestReplyText(t *testing.T) {
	var msg anthropic.Message
	require.NoError(t, json.Unmarshal([]byte(`{
		"role":"assistant",
		"content":[{"type":"text","text":" Hello "},{"type":"text","text":"there. "}]
	}`), &msg))
	assert.Equal(t, "Hello there.", provider.ReplyText(&msg))
	assert.Equal(t, "", provider.ReplyText(nil))
}
