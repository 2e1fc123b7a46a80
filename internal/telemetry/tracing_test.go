package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/internal/telemetry"
	"github.com/petasbytes/go-agent-context/memory"
)

func recorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attr(kvs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTraceEmbedder(t *testing.T) {
	sr, tp := recorder(t)
	inner := contextmgr.EmbedderFunc(func(context.Context, string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	})

	v, err := telemetry.TraceEmbedder(inner, tp).Embed(context.Background(), "héllo")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, v)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "memory.embed", spans[0].Name())
	dim, ok := attr(spans[0].Attributes(), "embed.dim")
	require.True(t, ok)
	assert.EqualValues(t, 3, dim.AsInt64())
	runes, ok := attr(spans[0].Attributes(), "embed.input_runes")
	require.True(t, ok)
	assert.EqualValues(t, 5, runes.AsInt64())
	assert.NotEqual(t, codes.Error, spans[0].Status().Code)
}

func TestTraceEmbedder_Error(t *testing.T) {
	sr, tp := recorder(t)
	boom := errors.New("boom")
	inner := contextmgr.EmbedderFunc(func(context.Context, string) ([]float32, error) {
		return nil, boom
	})

	_, err := telemetry.TraceEmbedder(inner, tp).Embed(context.Background(), "x")
	require.ErrorIs(t, err, boom)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "boom", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestTraceSummarizer(t *testing.T) {
	sr, tp := recorder(t)
	var gotMin, gotMax int
	inner := contextmgr.SummarizerFunc(func(_ context.Context, text string, minLen, maxLen int) (string, error) {
		gotMin, gotMax = minLen, maxLen
		return "short", nil
	})

	out, err := telemetry.TraceSummarizer(inner, tp).Summarize(context.Background(), "user: a long text", 2, 8)
	require.NoError(t, err)
	assert.Equal(t, "short", out)
	assert.Equal(t, 2, gotMin)
	assert.Equal(t, 8, gotMax)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "memory.summarize", spans[0].Name())
	maxLen, ok := attr(spans[0].Attributes(), "summarize.max_length")
	require.True(t, ok)
	assert.EqualValues(t, 8, maxLen.AsInt64())
	outLen, ok := attr(spans[0].Attributes(), "summarize.output_runes")
	require.True(t, ok)
	assert.EqualValues(t, 5, outLen.AsInt64())
}

func TestTraceSummarizer_ErrorPropagatesThroughEngine(t *testing.T) {
	sr, tp := recorder(t)
	boom := errors.New("model offline")
	inner := contextmgr.SummarizerFunc(func(context.Context, string, int, int) (string, error) {
		return "", boom
	})
	s, err := contextmgr.NewSummarizing(contextmgr.SummarizingConfig{MaxTurns: 1, MaxLength: 10}, telemetry.TraceSummarizer(inner, tp))
	require.NoError(t, err)

	err = s.AddTurn(context.Background(), memory.User("hi"))
	require.ErrorIs(t, err, contextmgr.ErrSummarization)
	require.ErrorIs(t, err, boom)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}
