package contextmgr_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/go-agent-context/contextmgr"
	"github.com/petasbytes/go-agent-context/memory"
)

func TestNewSliding_RejectsNonPositiveCapacity(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := contextmgr.NewSliding(n)
		require.ErrorIs(t, err, contextmgr.ErrInvalidConfig)
	}
}

func TestSliding_KeepsLastN(t *testing.T) {
	for _, tc := range []struct{ capacity, extra int }{{1, 0}, {1, 3}, {3, 0}, {3, 5}, {5, 2}} {
		t.Run(fmt.Sprintf("cap=%d,extra=%d", tc.capacity, tc.extra), func(t *testing.T) {
			s, err := contextmgr.NewSliding(tc.capacity)
			require.NoError(t, err)

			var all []memory.Turn
			for i := range tc.capacity + tc.extra {
				turn := memory.User(fmt.Sprintf("t%d", i))
				all = append(all, turn)
				require.NoError(t, s.AddTurn(context.Background(), turn))
			}

			got, err := s.Context(context.Background())
			require.NoError(t, err)
			assert.Equal(t, all[len(all)-tc.capacity:], got)
		})
	}
}

func TestSliding_EndToEnd(t *testing.T) {
	s, err := contextmgr.NewSliding(2)
	require.NoError(t, err)
	require.NoError(t, addAll(s, memory.User("A"), memory.Model("B"), memory.User("C")))

	got, err := s.Context(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []memory.Turn{memory.Model("B"), memory.User("C")}, got)
}

func TestSliding_ContextIsACopy(t *testing.T) {
	s, err := contextmgr.NewSliding(2)
	require.NoError(t, err)
	require.NoError(t, addAll(s, memory.User("A")))

	got, _ := s.Context(context.Background())
	got[0] = memory.User("tampered")

	again, _ := s.Context(context.Background())
	assert.Equal(t, []memory.Turn{memory.User("A")}, again)
}

func TestSliding_RejectsUnknownRole(t *testing.T) {
	s, err := contextmgr.NewSliding(2)
	require.NoError(t, err)
	err = s.AddTurn(context.Background(), memory.Turn{Role: "assistant", Text: "x"})
	require.Error(t, err)

	got, _ := s.Context(context.Background())
	assert.Empty(t, got)
}
