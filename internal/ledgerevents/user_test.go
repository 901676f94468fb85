package ledgerevents_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/ledgerevents"
)

func TestCreateUserSeedsPerUserItemRanking(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 10})
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})

	require.True(t, s.PerUserItemRanks[0].Contains(0))
	score, ok := s.PerUserItemRanks[0].Score(0)
	require.True(t, ok)
	require.Equal(t, 0, score)
}

func TestUpdateUserLeavesNilFieldsUnchanged(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})

	highlight := true
	mustApply(t, s, &ledgerevents.UpdateUser{UserID: 0, Highlight: &highlight})

	u, _ := s.GetUser(0)
	require.Equal(t, "A", u.Username)
	require.True(t, u.Highlight)
	_, highlighted := s.HighlightedUsers[0]
	require.True(t, highlighted)
}

func TestUpdateUserRejectsUnknownUser(t *testing.T) {
	s := aggregate.New(testConfig())
	ev := &ledgerevents.UpdateUser{UserID: 99}
	require.False(t, ev.Validate(s))
}

func TestDeleteUserRemovesFromRankingsAndIndex(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.DeleteUser{UserID: 0})

	u, _ := s.GetUser(0)
	require.True(t, u.Deleted)
	require.False(t, s.UserRanking.Contains(0))
	require.Empty(t, s.SearchUsers(""))
}
