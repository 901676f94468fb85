package engine

import (
	"context"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/ledgerevents"
)

// The methods below are thin wrappers (§4.6): each builds the
// corresponding ledgerevents.Event and invokes Apply. One per row of
// the event table plus the two supplements.

func (e *Engine) CreateUser(ctx context.Context, username string) (bool, error) {
	return e.Apply(ctx, &ledgerevents.CreateUser{Username: username})
}

func (e *Engine) UpdateUser(ctx context.Context, ev *ledgerevents.UpdateUser) (bool, error) {
	return e.Apply(ctx, ev)
}

func (e *Engine) DeleteUser(ctx context.Context, userID aggregate.UserID) (bool, error) {
	return e.Apply(ctx, &ledgerevents.DeleteUser{UserID: userID})
}

func (e *Engine) CreateItem(ctx context.Context, name string, costCents int64, category *string) (bool, error) {
	return e.Apply(ctx, &ledgerevents.CreateItem{Name: name, CostCents: costCents, Category: category})
}

func (e *Engine) UpdateItem(ctx context.Context, ev *ledgerevents.UpdateItem) (bool, error) {
	return e.Apply(ctx, ev)
}

func (e *Engine) DeleteItem(ctx context.Context, itemID aggregate.ItemID) (bool, error) {
	return e.Apply(ctx, &ledgerevents.DeleteItem{ItemID: itemID})
}

func (e *Engine) RenameItemCategory(ctx context.Context, old, new_ string) (bool, error) {
	return e.Apply(ctx, &ledgerevents.RenameItemCategory{Old: old, New: new_})
}

func (e *Engine) MakeSimplePurchase(ctx context.Context, user aggregate.UserID, item aggregate.ItemID, ts int64) (bool, error) {
	return e.Apply(ctx, &ledgerevents.MakeSimplePurchase{UserID: user, ItemID: item, TsMs: ts})
}

func (e *Engine) MakeSpecialPurchase(ctx context.Context, user aggregate.UserID, name string, ts int64) (bool, error) {
	return e.Apply(ctx, &ledgerevents.MakeSpecialPurchase{UserID: user, SpecialName: name, TsMs: ts})
}

func (e *Engine) SetPriceForSpecial(ctx context.Context, purchaseID aggregate.PurchaseID, price int64) (bool, error) {
	return e.Apply(ctx, &ledgerevents.SetPriceForSpecial{UniqueID: purchaseID, Price: price})
}

func (e *Engine) MakeShoppingCartPurchase(ctx context.Context, ev *ledgerevents.MakeShoppingCartPurchase) (bool, error) {
	return e.Apply(ctx, ev)
}

func (e *Engine) MakeFreeForAllPurchase(ctx context.Context, freebyID aggregate.FreebyID, item aggregate.ItemID, ts int64) (bool, error) {
	return e.Apply(ctx, &ledgerevents.MakeFreeForAllPurchase{FreebyID: freebyID, ItemID: item, TsMs: ts})
}

func (e *Engine) UndoPurchase(ctx context.Context, purchaseID aggregate.PurchaseID) (bool, error) {
	return e.Apply(ctx, &ledgerevents.UndoPurchase{UniqueID: purchaseID})
}

func (e *Engine) CreateFreeForAll(ctx context.Context, ev *ledgerevents.CreateFreeForAll) (bool, error) {
	return e.Apply(ctx, ev)
}

func (e *Engine) CreateFreeCount(ctx context.Context, ev *ledgerevents.CreateFreeCount) (bool, error) {
	return e.Apply(ctx, ev)
}

func (e *Engine) CreateFreeBudget(ctx context.Context, ev *ledgerevents.CreateFreeBudget) (bool, error) {
	return e.Apply(ctx, ev)
}

func (e *Engine) MarkFreebyMessage(ctx context.Context, freebyID aggregate.FreebyID, msg string) (bool, error) {
	return e.Apply(ctx, &ledgerevents.MarkFreebyMessage{FreebyID: freebyID, Msg: msg})
}

func (e *Engine) CreateBill(ctx context.Context, from, to int64, users aggregate.UserGroup, comment string) (bool, error) {
	return e.Apply(ctx, &ledgerevents.CreateBill{From: from, To: to, Users: users, Comment: comment})
}

func (e *Engine) UpdateBill(ctx context.Context, ev *ledgerevents.UpdateBill) (bool, error) {
	return e.Apply(ctx, ev)
}

func (e *Engine) DeleteUnfinishedBill(ctx context.Context, from, to int64) (bool, error) {
	return e.Apply(ctx, &ledgerevents.DeleteUnfinishedBill{From: from, To: to})
}

func (e *Engine) FinalizeBill(ctx context.Context, from, to int64) (bool, error) {
	return e.Apply(ctx, &ledgerevents.FinalizeBill{From: from, To: to})
}

func (e *Engine) ExportBill(ctx context.Context, from, to int64) (bool, error) {
	return e.Apply(ctx, &ledgerevents.ExportBill{From: from, To: to})
}
