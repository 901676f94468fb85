package aggregate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{UsersPerPage: 20, UsersInTopUsers: 1, TopDrinksPerUser: 1}
}

func TestNewStateIsEmpty(t *testing.T) {
	s := New(testConfig())
	require.False(t, s.HasUser(0))
	require.Empty(t, s.SearchUsers(""))
	require.Empty(t, s.SearchItems(""))
}

func TestFindPurchaseIndicesOnSortedPurchases(t *testing.T) {
	s := New(testConfig())
	s.Purchases = []Purchase{
		{UniqueID: 1, TsMs: 10},
		{UniqueID: 2, TsMs: 20},
		{UniqueID: 3, TsMs: 20},
		{UniqueID: 4, TsMs: 30},
	}
	lo, hi := s.FindPurchaseIndices(20, 30)
	require.Equal(t, 1, lo)
	require.Equal(t, 3, hi)

	lo, hi = s.FindPurchaseIndices(0, 100)
	require.Equal(t, 0, lo)
	require.Equal(t, 4, hi)

	lo, hi = s.FindPurchaseIndices(100, 200)
	require.Equal(t, 4, lo)
	require.Equal(t, 4, hi)
}

func TestAddBalanceAccumulatesByKey(t *testing.T) {
	s := New(testConfig())
	uk := UserKey{ID: 0, Username: "klaus"}
	ik := ItemKey{ID: 0, Name: "cola"}

	s.AddBalance(uk, ik, 135, 1)
	s.AddBalance(uk, ik, 135, 1)

	require.Equal(t, int64(270), s.BalanceCost[uk][ik])
	require.Equal(t, 2, s.BalanceCount[uk][ik])
}

func TestInsertFreebyUsedUpSortedKeepsIDOrder(t *testing.T) {
	s := New(testConfig())
	s.InsertFreebyUsedUpSorted(&Freeby{ID: 5})
	s.InsertFreebyUsedUpSorted(&Freeby{ID: 1})
	s.InsertFreebyUsedUpSorted(&Freeby{ID: 3})

	var ids []FreebyID
	for _, f := range s.UsedUpFreebies {
		ids = append(ids, f.ID)
	}
	require.Equal(t, []FreebyID{1, 3, 5}, ids)
}

func TestFreebyAllowsByItemOrCategory(t *testing.T) {
	cat := "soda"
	item := &Item{ItemID: 7, Category: &cat}
	f := &Freeby{Kind: FreebyFFA, AllowedCategories: []string{"soda"}}
	require.True(t, f.Allows(item))

	other := &Item{ItemID: 8}
	require.False(t, f.Allows(other))
}

func TestFreebyLeftByKind(t *testing.T) {
	ffa := &Freeby{Kind: FreebyFFA, Total: 3, Used: 1}
	require.Equal(t, int64(2), ffa.Left())

	classic := &Freeby{Kind: FreebyClassic, ClassicTotal: 2, ClassicUsed: 2}
	require.Equal(t, int64(0), classic.Left())

	transfer := &Freeby{Kind: FreebyTransfer, CentsTotal: 1000, CentsUsed: 190}
	require.Equal(t, int64(810), transfer.Left())
}

func TestUserGroupMatches(t *testing.T) {
	all := AllUsers()
	require.True(t, all.Matches(nil))
	u := UserID(5)
	require.True(t, all.Matches(&u))

	single := SingleUser(3)
	require.False(t, single.Matches(&u))
	u3 := UserID(3)
	require.True(t, single.Matches(&u3))

	multi := MultipleUsers([]UserID{1, 2, 3})
	require.True(t, multi.Matches(&u3))
	require.False(t, multi.Matches(&u))
}
