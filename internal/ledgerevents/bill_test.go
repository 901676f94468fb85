package ledgerevents_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/ledgerevents"
)

// TestBillWithFreebiesAndSpecialsScenario follows spec §8 scenario 3:
// three users, three items, a Transfer and a Classic freeby from A to
// C, an FFA freeby from A, a priced special, and a full finalization.
func TestBillWithFreebiesAndSpecialsScenario(t *testing.T) {
	s := aggregate.New(aggregate.Config{UsersPerPage: 20, UsersInTopUsers: 3, TopDrinksPerUser: 3})

	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"}) // 0
	mustApply(t, s, &ledgerevents.CreateUser{Username: "B"}) // 1
	mustApply(t, s, &ledgerevents.CreateUser{Username: "C"}) // 2

	catA, catB := "category a", "category b"
	mustApply(t, s, &ledgerevents.CreateItem{Name: "I0", CostCents: 45})             // 0
	mustApply(t, s, &ledgerevents.CreateItem{Name: "I1", CostCents: 55, Category: &catA}) // 1
	mustApply(t, s, &ledgerevents.CreateItem{Name: "I2", CostCents: 75, Category: &catB}) // 2

	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 10})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 1, TsMs: 20})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 30})

	mustApply(t, s, &ledgerevents.CreateFreeBudget{Donor: 0, Recipient: 2, CentsTotal: 1000})
	mustApply(t, s, &ledgerevents.CreateFreeCount{
		Donor: 0, Recipient: 2, Total: 2,
		AllowedCategories: []string{"category a"}, AllowedItems: []aggregate.ItemID{0},
	})

	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 2, ItemID: 0, TsMs: 33})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 2, ItemID: 1, TsMs: 34})

	mustApply(t, s, &ledgerevents.CreateFreeForAll{Donor: 0, Total: 2, AllowedItems: []aggregate.ItemID{0, 1}})
	ffaID := aggregate.FreebyID(2) // freeby ids are shared: 0 is the budget, 1 the count freeby

	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 2, ItemID: 0, TsMs: 36})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 2, ItemID: 0, TsMs: 37})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 2, ItemID: 1, TsMs: 38})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 2, ItemID: 0, TsMs: 39})

	mustApply(t, s, &ledgerevents.MakeSpecialPurchase{UserID: 0, SpecialName: "some special", TsMs: 40})
	specialID := s.Purchases[len(s.Purchases)-1].UniqueID

	mustApply(t, s, &ledgerevents.MakeFreeForAllPurchase{FreebyID: ffaID, ItemID: 0, TsMs: 41})
	mustApply(t, s, &ledgerevents.MakeFreeForAllPurchase{FreebyID: ffaID, ItemID: 0, TsMs: 42})

	thirdFFA := &ledgerevents.MakeFreeForAllPurchase{FreebyID: ffaID, ItemID: 1, TsMs: 43}
	require.False(t, thirdFFA.Validate(s), "FFA must be exhausted by now")

	mustApply(t, s, &ledgerevents.CreateBill{From: 0, To: 100, Users: aggregate.AllUsers()})

	finalize := &ledgerevents.FinalizeBill{From: 0, To: 100}
	require.False(t, finalize.Validate(s), "must reject until covered billed users are resolved")

	extA, extB, extC := "ext-a", "ext-b", "ext-c"
	mustApply(t, s, &ledgerevents.UpdateUser{UserID: 0, ExternalUserID: &extA})
	mustApply(t, s, &ledgerevents.UpdateUser{UserID: 1, ExternalUserID: &extB})
	mustApply(t, s, &ledgerevents.UpdateUser{UserID: 2, ExternalUserID: &extC})
	require.False(t, finalize.Validate(s), "must reject until the special is priced")

	mustApply(t, s, &ledgerevents.SetPriceForSpecial{UniqueID: specialID, Price: 15})
	require.True(t, finalize.Validate(s))
	mustApply(t, s, finalize)

	require.Empty(t, s.Purchases)

	idx, bill := s.GetBill(0, 100)
	require.GreaterOrEqual(t, idx, 0)
	require.Equal(t, aggregate.BillFinalized, bill.State)

	aConsumption := bill.FinalizedData.UserConsumption[0]
	require.NotNil(t, aConsumption)
	day0 := aConsumption.PerDay[0]
	require.NotNil(t, day0)
	pf := day0.GiveoutsToUser[2]
	require.NotNil(t, pf)
	require.Equal(t, int64(190), pf.BudgetGiven)
	// The count freeby covers C's I0@33 and I1@34; the budget then pays for
	// I0@36, I0@37, I1@38 and I0@39: 45+45+55+45 = 190.

	cConsumption := bill.FinalizedData.UserConsumption[2]
	require.NotNil(t, cConsumption)
	cDay0 := cConsumption.PerDay[0]
	require.NotNil(t, cDay0)
	cpf := cDay0.GiveoutsToUser[0]
	require.NotNil(t, cpf)
	require.Equal(t, int64(190), cpf.BudgetGotten)

	spansBoth := false
	for _, dc := range aConsumption.PerDay {
		if _, ok := dc.GiveoutsToUser[2]; ok {
			used := dc.GiveoutsToUser[2].CountGiveoutsUsed
			if used[0] > 0 && used[1] > 0 {
				spansBoth = true
			}
		}
	}
	require.True(t, spansBoth)
}

func TestUpdateBillAndDeleteUnfinishedBill(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 1})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 1})
	mustApply(t, s, &ledgerevents.CreateBill{From: 0, To: 10, Users: aggregate.AllUsers()})

	comment := "updated"
	upd := &ledgerevents.UpdateBill{From: 0, To: 10, Comment: &comment}
	mustApply(t, s, upd)
	_, b := s.GetBill(0, 10)
	require.Equal(t, "updated", b.Comment)

	del := &ledgerevents.DeleteUnfinishedBill{From: 0, To: 10}
	mustApply(t, s, del)
	idx, _ := s.GetBill(0, 10)
	require.Equal(t, -1, idx)
}

func TestExportBillRequiresFinalizedOrExported(t *testing.T) {
	s := aggregate.New(testConfig())
	mustApply(t, s, &ledgerevents.CreateUser{Username: "A"})
	mustApply(t, s, &ledgerevents.CreateItem{Name: "X", CostCents: 1})
	mustApply(t, s, &ledgerevents.MakeSimplePurchase{UserID: 0, ItemID: 0, TsMs: 1})
	mustApply(t, s, &ledgerevents.CreateBill{From: 0, To: 10, Users: aggregate.AllUsers()})

	notYet := &ledgerevents.ExportBill{From: 0, To: 10}
	require.False(t, notYet.Validate(s))

	ext := "ext-a"
	mustApply(t, s, &ledgerevents.UpdateUser{UserID: 0, ExternalUserID: &ext})
	mustApply(t, s, &ledgerevents.FinalizeBill{From: 0, To: 10})
	mustApply(t, s, notYet)
	_, b := s.GetBill(0, 10)
	require.Equal(t, aggregate.BillExportedAtLeastOnce, b.State)
}
