package contextmgr

import (
	"context"
	"slices"

	"github.com/petasbytes/go-agent-context/memory"
)

// NodeID identifies a tree node. Ids are assigned from 1; 0 means "no node".
type NodeID int64

// MessageNode is one turn stored in a conversation tree.
type MessageNode struct {
	ID       NodeID
	Role     memory.Role
	Content  string
	ParentID NodeID // 0 for roots
	ChildIDs []NodeID
}

// Turn returns the node's turn.
func (n MessageNode) Turn() memory.Turn {
	return memory.Turn{Role: n.Role, Text: n.Content}
}

func (n MessageNode) clone() MessageNode {
	n.ChildIDs = slices.Clone(n.ChildIDs)
	return n
}

// Tree stores every turn as a node in a forest and returns the lineage of a
// single node as context, so branches forked from a shared ancestor coexist
// without seeing each other. Nodes are never evicted.
//
// Nodes live in an arena indexed by id-1. A parent id that is not in the arena
// when a child is added leaves the child stored but unlinked.
type Tree struct {
	depth int
	nodes []MessageNode
	last  NodeID
}

// NewTree returns a tree whose context walks at most depth nodes.
func NewTree(depth int) (*Tree, error) {
	if depth < 1 {
		return nil, invalidf("tree depth %d < 1", depth)
	}
	return &Tree{depth: depth}, nil
}

// AddTurn stores t as a new node. Without WithParent the node is chained under
// the most recently added node.
func (tr *Tree) AddTurn(ctx context.Context, t memory.Turn, opts ...Option) error {
	return addTurn(ctx, tr, t, opts)
}

func (tr *Tree) stage(_ context.Context, t memory.Turn, o options) (func(), error) {
	parent := tr.last
	if o.hasParent {
		parent = o.parent
	}
	return func() { tr.insert(t, parent) }, nil
}

func (tr *Tree) insert(t memory.Turn, parent NodeID) NodeID {
	id := NodeID(len(tr.nodes) + 1)
	if i, ok := tr.index(parent); ok {
		tr.nodes[i].ChildIDs = append(tr.nodes[i].ChildIDs, id)
	}
	tr.nodes = append(tr.nodes, MessageNode{
		ID:       id,
		Role:     t.Role,
		Content:  t.Text,
		ParentID: parent,
	})
	tr.last = id
	return id
}

func (tr *Tree) index(id NodeID) (int, bool) {
	if id < 1 || int(id) > len(tr.nodes) {
		return 0, false
	}
	return int(id) - 1, true
}

// Context returns the lineage of the WithParent node (default: the last added
// node), root first, truncated to the configured depth. An unknown start id
// yields an empty result.
func (tr *Tree) Context(_ context.Context, opts ...Option) ([]memory.Turn, error) {
	o := collect(opts)
	cur := tr.last
	if o.hasParent {
		cur = o.parent
	}
	return tr.lineage(cur), nil
}

func (tr *Tree) lineage(from NodeID) []memory.Turn {
	var path []memory.Turn
	cur := from
	for range tr.depth {
		i, ok := tr.index(cur)
		if !ok {
			break
		}
		n := tr.nodes[i]
		path = append(path, n.Turn())
		// A parent must predate its child; a forward id stays detached even
		// once a node with that id exists.
		if n.ParentID == 0 || n.ParentID >= n.ID {
			break
		}
		cur = n.ParentID
	}
	slices.Reverse(path)
	return path
}

// Nodes returns copies of every node in id order.
func (tr *Tree) Nodes() []MessageNode {
	out := make([]MessageNode, len(tr.nodes))
	for i, n := range tr.nodes {
		out[i] = n.clone()
	}
	return out
}

// Node returns a copy of the node with the given id.
func (tr *Tree) Node(id NodeID) (MessageNode, bool) {
	i, ok := tr.index(id)
	if !ok {
		return MessageNode{}, false
	}
	return tr.nodes[i].clone(), true
}

// LastID returns the id of the most recently added node, or 0 when empty.
func (tr *Tree) LastID() NodeID { return tr.last }

var (
	_ Strategy = (*Tree)(nil)
	_ Brancher = (*Tree)(nil)
)
