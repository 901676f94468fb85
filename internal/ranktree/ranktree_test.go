package ranktree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInsertIsIdempotentAtZero(t *testing.T) {
	tr := New()
	require.True(t, tr.Insert(1))
	require.False(t, tr.Insert(1))
	score, ok := tr.Score(1)
	require.True(t, ok)
	require.Equal(t, 0, score)
}

func TestIncrementRequiresPresence(t *testing.T) {
	tr := New()
	_, ok := tr.IncrementByOne(99)
	require.False(t, ok)

	tr.Insert(1)
	score, ok := tr.IncrementByOne(1)
	require.True(t, ok)
	require.Equal(t, 1, score)
}

func TestRemoveReturnsPriorScore(t *testing.T) {
	tr := New()
	tr.Insert(1)
	tr.IncrementByOne(1)
	tr.IncrementByOne(1)

	score, ok := tr.Remove(1)
	require.True(t, ok)
	require.Equal(t, 2, score)
	require.False(t, tr.Contains(1))

	_, ok = tr.Remove(1)
	require.False(t, ok)
}

func TestExtractTopOrdersByScoreThenInsertionOrder(t *testing.T) {
	tr := New()
	tests := []struct {
		id          uint64
		increments  int
	}{
		{id: 1, increments: 2},
		{id: 2, increments: 5},
		{id: 3, increments: 2}, // ties id 1 on score, inserted later
		{id: 4, increments: 0},
	}
	for _, tt := range tests {
		tr.Insert(tt.id)
		for i := 0; i < tt.increments; i++ {
			tr.IncrementByOne(tt.id)
		}
	}

	require.Equal(t, []uint64{2, 1, 3, 4}, tr.ExtractTop(10))
	require.Equal(t, []uint64{2, 1}, tr.ExtractTop(2))
	require.Empty(t, tr.ExtractTop(0))
}

func TestExtractTopSetMatchesUsersInTopUsersInvariant(t *testing.T) {
	tr := New()
	tr.Insert(0) // A
	tr.Insert(1) // B
	tr.IncrementByOne(0)
	tr.IncrementByOne(1)
	tr.IncrementByOne(1)

	got := tr.ExtractTopSet(1)
	require.Equal(t, map[uint64]struct{}{1: {}}, got)
}
