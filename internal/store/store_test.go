package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/internal/store"
	"github.com/petasbytes/go-agent-context/memory"
)

func open(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.Open(context.Background(), ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateSession(t *testing.T) {
	s := open(t)
	ctx := context.Background()

	sess, err := s.CreateSession(ctx, "tree")
	require.NoError(t, err)
	id, err := uuid.Parse(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	got, err := s.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "tree", got.Mode)
	assert.Equal(t, 0, got.Turns)
	assert.True(t, sess.CreatedAt.Equal(got.CreatedAt))
}

func TestSession_NotFound(t *testing.T) {
	s := open(t)
	_, err := s.Session(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Turns(context.Background(), "nope")
	require.ErrorIs(t, err, store.ErrNotFound)

	err = s.Append(context.Background(), "nope", memory.Record{Role: memory.RoleUser, Text: "x"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAppendAndTurns_PreserveOrderAndParents(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, "tree")
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, sess.ID,
		memory.Record{Role: memory.RoleUser, Text: "A"},
		memory.Record{Role: memory.RoleModel, Text: "A reply", Parent: 1},
	))
	require.NoError(t, s.Append(ctx, sess.ID, memory.Record{Role: memory.RoleUser, Text: "B", Parent: 1}))
	require.NoError(t, s.Append(ctx, sess.ID))

	recs, err := s.Turns(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, []memory.Record{
		{Role: memory.RoleUser, Text: "A"},
		{Role: memory.RoleModel, Text: "A reply", Parent: 1},
		{Role: memory.RoleUser, Text: "B", Parent: 1},
	}, recs)

	got, err := s.Session(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Turns)
}

func TestAppend_InvalidRoleWritesNothing(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	sess, err := s.CreateSession(ctx, "sliding")
	require.NoError(t, err)

	err = s.Append(ctx, sess.ID,
		memory.Record{Role: memory.RoleUser, Text: "ok"},
		memory.Record{Role: "system", Text: "bad"},
	)
	require.Error(t, err)

	recs, err := s.Turns(ctx, sess.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSessions_AreIsolatedAndListed(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	a, err := s.CreateSession(ctx, "sliding")
	require.NoError(t, err)
	b, err := s.CreateSession(ctx, "hybrid")
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, b.ID, memory.Record{Role: memory.RoleUser, Text: "only b"}))

	all, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a.ID, all[0].ID)
	assert.Equal(t, 0, all[0].Turns)
	assert.Equal(t, b.ID, all[1].ID)
	assert.Equal(t, 1, all[1].Turns)

	recs, err := s.Turns(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReopenAndReplayRestoresTree(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "agent.db")

	s, err := store.Open(ctx, path, nil)
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, "tree")
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, sess.ID,
		memory.Record{Role: memory.RoleUser, Text: "A"},
		memory.Record{Role: memory.RoleModel, Text: "A1", Parent: 1},
		memory.Record{Role: memory.RoleUser, Text: "B", Parent: 1},
	))
	require.NoError(t, s.Close())

	s, err = store.Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	recs, err := s.Turns(ctx, sess.ID)
	require.NoError(t, err)

	tree, err := contextmgr.NewTree(10)
	require.NoError(t, err)
	n, err := contextmgr.Replay(ctx, tree, recs)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	got, err := tree.Context(ctx)
	require.NoError(t, err)
	assert.Equal(t, []memory.Turn{memory.User("A"), memory.User("B")}, got)
}
