package ledgerevents_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/ledgerevents"
)

func testConfig() aggregate.Config {
	return aggregate.Config{UsersPerPage: 20, UsersInTopUsers: 1, TopDrinksPerUser: 1}
}

func mustApply(t *testing.T, s *aggregate.State, ev ledgerevents.Event) {
	t.Helper()
	require.True(t, ev.Validate(s), "%T should validate", ev)
	ev.Apply(s)
}

func TestCreateFindUserScenario(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "klaus"})

	u, ok := s.GetUser(0)
	require.True(t, ok)
	require.Equal(t, "klaus", u.Username)

	require.Equal(t, []aggregate.UserID{0}, s.SearchUsers(""))
	require.Equal(t, []aggregate.UserID{0}, s.SearchUsers("klau"))
	require.Empty(t, s.SearchUsers("lisa"))
}

func TestTopNBookkeepingScenario(t *testing.T) {
	s := aggregate.New(aggregate.Config{UsersPerPage: 20, UsersInTopUsers: 1, TopDrinksPerUser: 1})
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.CreateUser{Username: "B"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 135})

	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 12345678})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 1, ItemID: 0, TsMs: 12345888})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 1, ItemID: 0, TsMs: 12347878})

	require.Equal(t, map[aggregate.UserID]struct{}{1: {}}, s.TopUsers)
	require.Equal(t, map[aggregate.ItemID]struct{}{0: {}}, s.TopItemsForUser[0])
	require.Equal(t, map[aggregate.ItemID]struct{}{0: {}}, s.TopItemsForUser[1])
}

func TestMakeSimplePurchaseRejectsOutOfOrderTimestamps(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 10})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 100})

	ev := &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 50}
	require.False(t, ev.Validate(s))
}

func TestUndoPurchaseRestoresBalances(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 50})

	uk := s.UserKeyAt(0)
	ik := s.ItemKeyAt(0)

	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 10})
	require.Equal(t, int64(50), s.BalanceCost[uk][ik])
	require.Equal(t, 1, s.BalanceCount[uk][ik])

	undo := &ledgerevents.UndoPurchase{UniqueID: 0}
	mustApply(t, s, undo)

	require.Equal(t, int64(0), s.BalanceCost[uk][ik])
	require.Equal(t, 0, s.BalanceCount[uk][ik])
	require.False(t, s.HasPurchase(0))
}

func TestSetPriceForSpecialOnlyMatchesSpecials(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 10})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 1})

	bad := &ledgerevents.SetPriceForSpecial{UniqueID: 0, Price: 99}
	require.False(t, bad.Validate(s), "must reject pricing a non-special purchase")

	mustApply(t, s, &ledgerevents.MakeSpecialPurchase{UserID: 0, SpecialName: "snack", TsMs: 2})
	good := &ledgerevents.SetPriceForSpecial{UniqueID: 1, Price: 99}
	mustApply(t, s, good)

	p, ok := s.GetPurchase(1)
	require.True(t, ok)
	require.NotNil(t, p.SpecialCost)
	require.Equal(t, int64(99), *p.SpecialCost)
}

func TestMakeShoppingCartPurchaseAppliesItemsThenSpecials(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 10})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "Y", CostCents: 20})

	cart := &ledgerevents.MakeShoppingCartPurchase{
		UserID: 0,
		Items:  []ledgerevents.CartItem{{ItemID: 0}, {ItemID: 1}},
		Specials: []ledgerevents.CartSpecial{{Name: "snack"}},
		TsMs:   5,
	}
	mustApply(t, s, cart)

	require.Len(t, s.Purchases, 3)
	require.Equal(t, aggregate.PurchaseSimple, s.Purchases[0].Kind)
	require.Equal(t, aggregate.PurchaseSimple, s.Purchases[1].Kind)
	require.Equal(t, aggregate.PurchaseSpecial, s.Purchases[2].Kind)
}
