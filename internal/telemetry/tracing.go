package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/petasbytes/go-agent-context/contextmgr"
)

// InstrumentationName identifies spans created by this module.
const InstrumentationName = "github.com/petasbytes/go-agent-context"

// Tracer returns the module tracer from tp, or from the global provider when tp is nil.
func Tracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(InstrumentationName)
}

// TraceEmbedder wraps e so every call runs inside a "memory.embed" span.
func TraceEmbedder(e contextmgr.Embedder, tp trace.TracerProvider) contextmgr.Embedder {
	tr := Tracer(tp)
	return contextmgr.EmbedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		ctx, span := tr.Start(ctx, "memory.embed", trace.WithAttributes(
			attribute.Int("embed.input_runes", len([]rune(text))),
		))
		defer span.End()

		v, err := e.Embed(ctx, text)
		if err != nil {
			Fail(span, err)
			return nil, err
		}
		span.SetAttributes(attribute.Int("embed.dim", len(v)))
		return v, nil
	})
}

// TraceSummarizer wraps s so every call runs inside a "memory.summarize" span.
func TraceSummarizer(s contextmgr.Summarizer, tp trace.TracerProvider) contextmgr.Summarizer {
	tr := Tracer(tp)
	return contextmgr.SummarizerFunc(func(ctx context.Context, text string, minLen, maxLen int) (string, error) {
		ctx, span := tr.Start(ctx, "memory.summarize", trace.WithAttributes(
			attribute.Int("summarize.input_runes", len([]rune(text))),
			attribute.Int("summarize.min_length", minLen),
			attribute.Int("summarize.max_length", maxLen),
		))
		defer span.End()

		out, err := s.Summarize(ctx, text, minLen, maxLen)
		if err != nil {
			Fail(span, err)
			return "", err
		}
		span.SetAttributes(attribute.Int("summarize.output_runes", len([]rune(out))))
		return out, nil
	})
}

// Fail records err on span and marks it as failed.
func Fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
