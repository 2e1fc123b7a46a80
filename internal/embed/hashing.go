// Package embed provides Embedder implementations for embedding retrieval: a
// local feature-hashing embedder that needs no network, and a client for
// OpenAI-compatible embedding endpoints.
package embed

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/internal/metrics"
)

// DefaultDim is the vector size used when Hashing.Dim is zero.
const DefaultDim = 256

// Hashing embeds text as a signed bag-of-words feature hash over the terms
// produced by metrics.Terms, L2-normalized. Equal term multisets map to equal
// vectors; text with no terms maps to the zero vector. Safe for concurrent use.
type Hashing struct {
	Dim int
}

// NewHashing returns a Hashing embedder with dim buckets (DefaultDim when dim ≤ 0).
func NewHashing(dim int) Hashing {
	if dim <= 0 {
		dim = DefaultDim
	}
	return Hashing{Dim: dim}
}

func (h Hashing) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dim := h.Dim
	if dim <= 0 {
		dim = DefaultDim
	}
	v := make([]float32, dim)
	for _, term := range metrics.Terms(text) {
		f := fnv.New32a()
		f.Write([]byte(term))
		sum := f.Sum32()
		// Low bits pick the bucket, the top bit picks the sign.
		idx := int(sum % uint32(dim))
		if sum&(1<<31) != 0 {
			v[idx]--
		} else {
			v[idx]++
		}
	}

	var ss float64
	for _, x := range v {
		ss += float64(x) * float64(x)
	}
	if ss == 0 {
		return v, nil
	}
	n := float32(math.Sqrt(ss))
	for i := range v {
		v[i] /= n
	}
	return v, nil
}

var _ contextmgr.Embedder = Hashing{}
