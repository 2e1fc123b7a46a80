// Package memory defines the conversation turn exchanged with the model and
// a minimal transcript persistence format.
//
// Persistence model:
//   - Only text turns are stored (role + text), plus the branch parent when
//     the turn was recorded against a conversation tree.
//   - Transcripts are replayed into a context strategy on startup; the
//     strategies themselves hold no durable state.
package memory
