package contextmgr

import (
	"context"

	"github.com/petasbytes/go-agent-context/memory"
)

// Strategy is the capability shared by every context selection policy.
// Options a strategy has no use for are ignored.
type Strategy interface {
	// AddTurn records t. On error nothing is recorded.
	AddTurn(ctx context.Context, t memory.Turn, opts ...Option) error
	// Context returns the turns to supply to the model, oldest first.
	Context(ctx context.Context, opts ...Option) ([]memory.Turn, error)
}

// Brancher is implemented by strategies that keep a conversation tree. It is
// read-only; callers use it to offer branch selection.
type Brancher interface {
	// Nodes returns copies of all nodes in id order.
	Nodes() []MessageNode
	// Node returns a copy of the node with the given id.
	Node(id NodeID) (MessageNode, bool)
	// LastID returns the id of the most recently added node, or 0.
	LastID() NodeID
}

// Option tunes a single AddTurn or Context call.
type Option func(*options)

type options struct {
	parent    NodeID
	hasParent bool
	query     string
	hasQuery  bool
}

// WithParent sets the tree parent for AddTurn, or the node whose lineage is
// returned by Context. Parent 0 on AddTurn starts a new root.
func WithParent(id NodeID) Option {
	return func(o *options) {
		o.parent = id
		o.hasParent = true
	}
}

// WithQuery sets the text that similarity retrieval ranks stored turns
// against.
func WithQuery(q string) Option {
	return func(o *options) {
		o.query = q
		o.hasQuery = true
	}
}

func collect(opts []Option) options {
	var o options
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}

// stager splits AddTurn into a fallible phase that calls collaborators and an
// infallible commit, so composites can stage every child before committing
// any of them.
type stager interface {
	stage(ctx context.Context, t memory.Turn, o options) (commit func(), err error)
}

func addTurn(ctx context.Context, s stager, t memory.Turn, opts []Option) error {
	if err := t.Validate(); err != nil {
		return err
	}
	commit, err := s.stage(ctx, t, collect(opts))
	if err != nil {
		return err
	}
	commit()
	return nil
}
