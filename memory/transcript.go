package memory

import (
	"encoding/json"
	"errors"
	"os"
)

// Record is a persisted turn. Parent is the tree node id the turn was
// attached to, or 0 when the default branch was used.
type Record struct {
	Role   Role   `json:"role"`
	Text   string `json:"text,omitempty"`
	Parent int64  `json:"parent,omitempty"`
}

// Turn returns the record's turn.
func (r Record) Turn() Turn { return Turn{Role: r.Role, Text: r.Text} }

// LoadTranscript reads records from path. A missing file yields a nil slice
// and no error.
func LoadTranscript(path string) ([]Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var recs []Record
	if err := json.Unmarshal(b, &recs); err != nil {
		return nil, err
	}
	for _, r := range recs {
		if err := r.Turn().Validate(); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

// SaveTranscript writes recs to path, replacing any previous content.
func SaveTranscript(path string, recs []Record) error {
	b, err := json.MarshalIndent(recs, "", " ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
