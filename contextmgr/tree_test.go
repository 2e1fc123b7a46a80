package contextmgr_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/memory"
)

func newTree(t *testing.T, depth int) *contextmgr.Tree {
	t.Helper()
	tr, err := contextmgr.NewTree(depth)
	require.NoError(t, err)
	return tr
}

func TestNewTree_RejectsNonPositiveDepth(t *testing.T) {
	_, err := contextmgr.NewTree(0)
	require.ErrorIs(t, err, contextmgr.ErrInvalidConfig)
}

func TestTree_EndToEndBranches(t *testing.T) {
	ctx := context.Background()
	tr := newTree(t, 10)
	require.NoError(t, tr.AddTurn(ctx, memory.User("A")))
	require.NoError(t, tr.AddTurn(ctx, memory.Model("B"), contextmgr.WithParent(1)))
	require.NoError(t, tr.AddTurn(ctx, memory.User("C"), contextmgr.WithParent(1)))

	got, err := tr.Context(ctx, contextmgr.WithParent(3))
	require.NoError(t, err)
	assert.Equal(t, []memory.Turn{memory.User("A"), memory.User("C")}, got)

	got, err = tr.Context(ctx, contextmgr.WithParent(2))
	require.NoError(t, err)
	assert.Equal(t, []memory.Turn{memory.User("A"), memory.Model("B")}, got)

	root, ok := tr.Node(1)
	require.True(t, ok)
	assert.Equal(t, []contextmgr.NodeID{2, 3}, root.ChildIDs)
	assert.Equal(t, contextmgr.NodeID(0), root.ParentID)
}

func TestTree_DefaultParentChainsToLast(t *testing.T) {
	ctx := context.Background()
	tr := newTree(t, 10)
	require.NoError(t, addAll(tr, memory.User("a"), memory.Model("b"), memory.User("c")))

	assert.Equal(t, contextmgr.NodeID(3), tr.LastID())
	n, ok := tr.Node(3)
	require.True(t, ok)
	assert.Equal(t, contextmgr.NodeID(2), n.ParentID)

	got, err := tr.Context(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user:a,model:b,user:c", texts(got))
}

func TestTree_DepthTruncatesToNearestAncestors(t *testing.T) {
	tr := newTree(t, 2)
	require.NoError(t, addAll(tr, memory.User("a"), memory.Model("b"), memory.User("c"), memory.Model("d")))

	got, err := tr.Context(context.Background(), contextmgr.WithParent(4))
	require.NoError(t, err)
	assert.Equal(t, "user:c,model:d", texts(got))
}

func TestTree_OrphanIsStoredButUnlinked(t *testing.T) {
	ctx := context.Background()
	tr := newTree(t, 10)
	require.NoError(t, tr.AddTurn(ctx, memory.User("root")))
	require.NoError(t, tr.AddTurn(ctx, memory.User("orphan"), contextmgr.WithParent(99)))

	n, ok := tr.Node(2)
	require.True(t, ok)
	assert.Equal(t, "orphan", n.Content)
	assert.Equal(t, contextmgr.NodeID(99), n.ParentID)
	for _, node := range tr.Nodes() {
		assert.NotContains(t, node.ChildIDs, contextmgr.NodeID(2))
	}

	got, err := tr.Context(ctx, contextmgr.WithParent(2))
	require.NoError(t, err)
	assert.Equal(t, "user:orphan", texts(got))
}

func TestTree_ForwardParentStaysDetached(t *testing.T) {
	ctx := context.Background()
	tr := newTree(t, 10)
	require.NoError(t, tr.AddTurn(ctx, memory.User("a")))
	require.NoError(t, tr.AddTurn(ctx, memory.User("early"), contextmgr.WithParent(3)))
	require.NoError(t, tr.AddTurn(ctx, memory.User("b"), contextmgr.WithParent(1)))

	got, err := tr.Context(ctx, contextmgr.WithParent(2))
	require.NoError(t, err)
	assert.Equal(t, "user:early", texts(got))
}

func TestTree_UnknownStartIsEmpty(t *testing.T) {
	tr := newTree(t, 10)
	got, err := tr.Context(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)

	require.NoError(t, addAll(tr, memory.User("a")))
	for _, id := range []contextmgr.NodeID{0, -4, 2, 100} {
		got, err = tr.Context(context.Background(), contextmgr.WithParent(id))
		require.NoError(t, err)
		assert.Empty(t, got, "id %d", id)
	}
}

func TestTree_ParentZeroStartsNewRoot(t *testing.T) {
	ctx := context.Background()
	tr := newTree(t, 10)
	require.NoError(t, addAll(tr, memory.User("a"), memory.Model("b")))
	require.NoError(t, tr.AddTurn(ctx, memory.User("fresh"), contextmgr.WithParent(0)))

	got, err := tr.Context(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user:fresh", texts(got))
}

func TestTree_NodesAreCopies(t *testing.T) {
	ctx := context.Background()
	tr := newTree(t, 10)
	require.NoError(t, addAll(tr, memory.User("a"), memory.Model("b")))

	nodes := tr.Nodes()
	require.Len(t, nodes, 2)
	nodes[0].ChildIDs[0] = 42
	nodes[0].Content = "tampered"

	n, _ := tr.Node(1)
	assert.Equal(t, "a", n.Content)
	assert.Equal(t, []contextmgr.NodeID{2}, n.ChildIDs)

	got, _ := tr.Context(ctx)
	assert.Equal(t, "user:a,model:b", texts(got))
}
