// Package contextmgr selects which prior turns of a conversation are handed
// to the language model on each request.
//
// Five interchangeable strategies implement Strategy:
//   - Sliding: the last N turns verbatim.
//   - Summarizing: the last N turns plus rolling summaries of older batches.
//   - Tree: turns stored as a forest keyed by parent; context is the lineage
//     of one node, so forked branches never see each other.
//   - Embedding: every turn with its vector; context is the top-K turns most
//     similar to a query followed by the most recent turns.
//   - Hybrid: one of each of the above, merged in a fixed priority order with
//     duplicates removed.
//
// Embedding and summarization are external collaborators injected through the
// Embedder and Summarizer interfaces. Their calls may block; callers bound them
// through the context passed to AddTurn and Context.
//
// Invariants:
//   - A failed AddTurn leaves the strategy exactly as it was, so the call can
//     be retried.
//   - Context requests for unknown node ids are lookup misses, not errors.
//
// Strategies are not safe for concurrent use. Own one instance per
// conversation and serialize calls to it.
package contextmgr
