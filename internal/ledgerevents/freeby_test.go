package ledgerevents_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/ledgerevents"
)

func TestFFAValidationScenario(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	categoryA := "category a"
	mustApply(t, s, &ledgerevents.CreateItem{Name: "I0", CostCents: 45})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "I1", CostCents: 55, Category: &categoryA})

	mustApply(t, s, &ledgerevents.CreateFreeForAll{Donor: 0, Total: 1, AllowedItems: []aggregate.ItemID{0}})

	bad := &ledgerevents.MakeFreeForAllPurchase{FreebyID: 0, ItemID: 1, TsMs: 1}
	require.False(t, bad.Validate(s), "item not in allowed items/categories must be rejected")

	good := &ledgerevents.MakeFreeForAllPurchase{FreebyID: 0, ItemID: 0, TsMs: 1}
	require.True(t, good.Validate(s))
}

func TestCreateFreeForAllExhaustsAndMovesToUsedUp(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "donor"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 10})
	mustApply(t, s, &ledgerevents.CreateFreeForAll{Donor: 0, Total: 1, AllowedItems: []aggregate.ItemID{0}})

	require.Len(t, s.OpenFFA, 1)
	mustApply(t, s, &ledgerevents.MakeFreeForAllPurchase{FreebyID: 0, ItemID: 0, TsMs: 1})

	require.Empty(t, s.OpenFFA)
	require.Len(t, s.UsedUpFreebies, 1)
	require.Equal(t, int64(0), s.UsedUpFreebies[0].Left())
}

func TestMarkFreebyMessageUpdatesOpenAndUsedUp(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "donor"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 10})
	mustApply(t, s, &ledgerevents.CreateFreeForAll{Donor: 0, Total: 1, AllowedItems: []aggregate.ItemID{0}})

	mark := &ledgerevents.MarkFreebyMessage{FreebyID: 0, Msg: "enjoy"}
	mustApply(t, s, mark)
	require.Equal(t, "enjoy", s.OpenFFA[0].Msg)

	mustApply(t, s, &ledgerevents.MakeFreeForAllPurchase{FreebyID: 0, ItemID: 0, TsMs: 1})
	mark2 := &ledgerevents.MarkFreebyMessage{FreebyID: 0, Msg: "used now"}
	mustApply(t, s, mark2)
	require.Equal(t, "used now", s.UsedUpFreebies[0].Msg)
}
