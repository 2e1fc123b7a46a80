package contextmgr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by constructors for out-of-range settings.
	ErrInvalidConfig = errors.New("contextmgr: invalid config")

	// ErrEmbedding wraps failures of the embedding collaborator.
	ErrEmbedding = errors.New("contextmgr: embedding failed")

	// ErrDegenerateEmbedding is returned when the embedder yields an empty
	// vector or one whose dimension differs from the stored vectors.
	ErrDegenerateEmbedding = fmt.Errorf("%w: degenerate vector", ErrEmbedding)

	// ErrSummarization wraps failures of the summarization collaborator.
	ErrSummarization = errors.New("contextmgr: summarization failed")

	// ErrDegenerateSummary is returned when the summarizer yields blank text.
	ErrDegenerateSummary = fmt.Errorf("%w: empty summary", ErrSummarization)
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}
