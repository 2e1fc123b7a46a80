package memory

import "fmt"

// Role tags who produced a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModel
}

// Turn is one role-tagged message. Turns are values and are never mutated
// after creation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// User returns a user turn.
func User(text string) Turn { return Turn{Role: RoleUser, Text: text} }

// Model returns a model turn.
func Model(text string) Turn { return Turn{Role: RoleModel, Text: text} }

// Validate rejects turns with an unknown role.
func (t Turn) Validate() error {
	if !t.Role.Valid() {
		return fmt.Errorf("memory: invalid role %q", t.Role)
	}
	return nil
}

// Line renders the turn as "role: text".
func (t Turn) Line() string {
	return string(t.Role) + ": " + t.Text
}
