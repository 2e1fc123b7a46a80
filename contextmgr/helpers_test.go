package contextmgr_test

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/memory"
)

var errBoom = errors.New("boom")

// fakeEmbedder returns fixed vectors for known texts and a zero vector of the
// same dimension otherwise.
type fakeEmbedder struct {
	dim     int
	vectors map[string][]float32
	fail    map[string]bool
	calls   []string
}

func newFakeEmbedder(dim int) *fakeEmbedder {
	return &fakeEmbedder{dim: dim, vectors: map[string][]float32{}, fail: map[string]bool{}}
}

func (f *fakeEmbedder) set(text string, v ...float32) *fakeEmbedder {
	f.vectors[text] = v
	return f
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.fail[text] {
		return nil, errBoom
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, f.dim), nil
}

// fakeSummarizer records every batch and returns "S<n>".
type fakeSummarizer struct {
	inputs []string
	fail   bool
	blank  bool
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, _, _ int) (string, error) {
	if f.fail {
		return "", errBoom
	}
	if f.blank {
		return "   ", nil
	}
	f.inputs = append(f.inputs, text)
	return fmt.Sprintf("S%d", len(f.inputs)), nil
}

func texts(turns []memory.Turn) string {
	parts := make([]string, len(turns))
	for i, t := range turns {
		parts[i] = string(t.Role) + ":" + t.Text
	}
	return strings.Join(parts, ",")
}

func addAll(s contextmgr.Strategy, turns ...memory.Turn) error {
	for _, t := range turns {
		if err := s.AddTurn(context.Background(), t); err != nil {
			return err
		}
	}
	return nil
}
