package contextmgr

import (
	"context"
	"fmt"

	"github.com/petasbytes/go-agent-context/memory"
)

// Replay feeds persisted records into s in order. A record's non-zero Parent
// is passed as WithParent, so a replayed tree keeps its shape as long as the
// records start from an empty tree. It stops at the first failing record and
// returns how many were applied.
func Replay(ctx context.Context, s Strategy, recs []memory.Record) (int, error) {
	for i, r := range recs {
		var opts []Option
		if r.Parent != 0 {
			opts = append(opts, WithParent(NodeID(r.Parent)))
		}
		if err := s.AddTurn(ctx, r.Turn(), opts...); err != nil {
			return i, fmt.Errorf("contextmgr: replay record %d: %w", i, err)
		}
	}
	return len(recs), nil
}
