// Package codec turns ledgerevents.Event values into durable bytes and
// back, via a single flat envelope rather than one Go type per wire
// shape — matching the tagged-union, structural-match style used
// throughout internal/aggregate. goccy/go-json is used instead of
// encoding/json for both the event envelope and snapshot encoding,
// matching the rest of the module's JSON-heavy wire format.
package codec

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/n3phtys/rustixbl/internal/aggregate"
	"github.com/n3phtys/rustixbl/internal/ledgerevents"
)

// Kind discriminates which ledgerevents.Event an Envelope carries. One
// constant per row of SPEC_FULL.md's event table.
type Kind string

const (
	KindCreateUser            Kind = "create_user"
	KindUpdateUser            Kind = "update_user"
	KindDeleteUser            Kind = "delete_user"
	KindCreateItem            Kind = "create_item"
	KindUpdateItem            Kind = "update_item"
	KindDeleteItem            Kind = "delete_item"
	KindRenameItemCategory    Kind = "rename_item_category"
	KindMakeSimplePurchase    Kind = "make_simple_purchase"
	KindMakeSpecialPurchase   Kind = "make_special_purchase"
	KindSetPriceForSpecial    Kind = "set_price_for_special"
	KindMakeShoppingCart      Kind = "make_shopping_cart_purchase"
	KindMakeFreeForAll        Kind = "make_free_for_all_purchase"
	KindUndoPurchase          Kind = "undo_purchase"
	KindCreateFreeForAll      Kind = "create_free_for_all"
	KindCreateFreeCount       Kind = "create_free_count"
	KindCreateFreeBudget      Kind = "create_free_budget"
	KindMarkFreebyMessage     Kind = "mark_freeby_message"
	KindCreateBill            Kind = "create_bill"
	KindUpdateBill            Kind = "update_bill"
	KindDeleteUnfinishedBill  Kind = "delete_unfinished_bill"
	KindFinalizeBill          Kind = "finalize_bill"
	KindExportBill            Kind = "export_bill"
)

// Envelope is the on-the-wire representation of one event: a Kind tag
// plus every field any variant might need, all zero for fields a given
// Kind does not use. This mirrors aggregate.Purchase/aggregate.Freeby's
// flat tagged-union shape rather than introducing per-kind wrapper
// types or an interface{} payload.
type Envelope struct {
	Kind Kind `json:"kind"`

	Username       string  `json:"username,omitempty"`
	ExternalUserID *string `json:"external_user_id,omitempty"`
	IsBilled       *bool   `json:"is_billed,omitempty"`
	Highlight      *bool   `json:"highlight,omitempty"`
	UserID         uint64  `json:"user_id,omitempty"`

	Name      *string `json:"name,omitempty"`
	CostCents *int64  `json:"cost_cents,omitempty"`
	Category  *string `json:"category,omitempty"`
	// CategorySet distinguishes "Category field present" (clear or set)
	// from "field omitted" (unchanged) for UpdateItem's double-pointer
	// semantics, since JSON null and absent are otherwise indistinguishable
	// once decoded into a single *string.
	CategorySet bool   `json:"category_set,omitempty"`
	ItemID      uint64 `json:"item_id,omitempty"`
	OldCategory string `json:"old_category,omitempty"`
	NewCategory string `json:"new_category,omitempty"`

	ConsumerID  uint64  `json:"consumer_id,omitempty"`
	SpecialName string  `json:"special_name,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	PurchaseID  uint64  `json:"purchase_id,omitempty"`
	TsMs        int64   `json:"ts_ms,omitempty"`
	CartItems   []uint64 `json:"cart_items,omitempty"`
	CartSpecials []string `json:"cart_specials,omitempty"`

	FreebyID          uint64   `json:"freeby_id,omitempty"`
	Donor             uint64   `json:"donor,omitempty"`
	Recipient         uint64   `json:"recipient,omitempty"`
	Total             int      `json:"total,omitempty"`
	CentsTotal        int64    `json:"cents_total,omitempty"`
	AllowedItems      []uint64 `json:"allowed_items,omitempty"`
	AllowedCategories []string `json:"allowed_categories,omitempty"`
	Msg               string   `json:"msg,omitempty"`

	From     int64              `json:"from,omitempty"`
	To       int64              `json:"to,omitempty"`
	Comment  *string            `json:"comment,omitempty"`
	Users    *aggregate.UserGroup `json:"users,omitempty"`
	Excluded []uint64           `json:"excluded,omitempty"`
}

// Encode serializes an event into its wire Envelope, total over every
// variant named in SPEC_FULL.md's event table.
func Encode(e ledgerevents.Event) ([]byte, error) {
	env, err := toEnvelope(e)
	if err != nil {
		return nil, err
	}
	return gojson.Marshal(env)
}

// Decode parses a wire Envelope back into the concrete ledgerevents.Event
// it was encoded from.
func Decode(data []byte) (ledgerevents.Event, error) {
	var env Envelope
	if err := gojson.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("codec: decode envelope: %w", err)
	}
	return fromEnvelope(&env)
}

func toEnvelope(e ledgerevents.Event) (*Envelope, error) {
	switch v := e.(type) {
	case *ledgerevents.CreateUser:
		return &Envelope{Kind: KindCreateUser, Username: v.Username}, nil
	case *ledgerevents.UpdateUser:
		return &Envelope{
			Kind: KindUpdateUser, UserID: v.UserID, Name: v.Username,
			ExternalUserID: v.ExternalUserID, IsBilled: v.IsBilled, Highlight: v.Highlight,
		}, nil
	case *ledgerevents.DeleteUser:
		return &Envelope{Kind: KindDeleteUser, UserID: v.UserID}, nil

	case *ledgerevents.CreateItem:
		return &Envelope{Kind: KindCreateItem, Name: &v.Name, CostCents: &v.CostCents, Category: v.Category}, nil
	case *ledgerevents.UpdateItem:
		env := &Envelope{Kind: KindUpdateItem, ItemID: v.ItemID, Name: v.Name, CostCents: v.CostCents}
		if v.Category != nil {
			env.CategorySet = true
			env.Category = *v.Category
		}
		return env, nil
	case *ledgerevents.DeleteItem:
		return &Envelope{Kind: KindDeleteItem, ItemID: v.ItemID}, nil
	case *ledgerevents.RenameItemCategory:
		return &Envelope{Kind: KindRenameItemCategory, OldCategory: v.Old, NewCategory: v.New}, nil

	case *ledgerevents.MakeSimplePurchase:
		return &Envelope{Kind: KindMakeSimplePurchase, UserID: v.UserID, ItemID: v.ItemID, TsMs: v.TsMs}, nil
	case *ledgerevents.MakeSpecialPurchase:
		return &Envelope{Kind: KindMakeSpecialPurchase, UserID: v.UserID, SpecialName: v.SpecialName, TsMs: v.TsMs}, nil
	case *ledgerevents.SetPriceForSpecial:
		return &Envelope{Kind: KindSetPriceForSpecial, PurchaseID: v.UniqueID, Price: &v.Price}, nil
	case *ledgerevents.MakeShoppingCartPurchase:
		items := make([]uint64, len(v.Items))
		for i, it := range v.Items {
			items[i] = it.ItemID
		}
		specials := make([]string, len(v.Specials))
		for i, sp := range v.Specials {
			specials[i] = sp.Name
		}
		return &Envelope{
			Kind: KindMakeShoppingCart, UserID: v.UserID, TsMs: v.TsMs,
			CartItems: items, CartSpecials: specials,
		}, nil
	case *ledgerevents.MakeFreeForAllPurchase:
		return &Envelope{Kind: KindMakeFreeForAll, FreebyID: v.FreebyID, ItemID: v.ItemID, TsMs: v.TsMs}, nil
	case *ledgerevents.UndoPurchase:
		return &Envelope{Kind: KindUndoPurchase, PurchaseID: v.UniqueID}, nil

	case *ledgerevents.CreateFreeForAll:
		return &Envelope{
			Kind: KindCreateFreeForAll, Donor: v.Donor, Total: v.Total,
			AllowedItems: v.AllowedItems, AllowedCategories: v.AllowedCategories,
			Msg: v.Msg, TsMs: v.CreatedTs,
		}, nil
	case *ledgerevents.CreateFreeCount:
		return &Envelope{
			Kind: KindCreateFreeCount, Donor: v.Donor, Recipient: v.Recipient, Total: v.Total,
			AllowedItems: v.AllowedItems, AllowedCategories: v.AllowedCategories,
			Msg: v.Msg, TsMs: v.CreatedTs,
		}, nil
	case *ledgerevents.CreateFreeBudget:
		return &Envelope{
			Kind: KindCreateFreeBudget, Donor: v.Donor, Recipient: v.Recipient, CentsTotal: v.CentsTotal,
			AllowedItems: v.AllowedItems, AllowedCategories: v.AllowedCategories,
			Msg: v.Msg, TsMs: v.CreatedTs,
		}, nil
	case *ledgerevents.MarkFreebyMessage:
		return &Envelope{Kind: KindMarkFreebyMessage, FreebyID: v.FreebyID, Msg: v.Msg}, nil

	case *ledgerevents.CreateBill:
		return &Envelope{Kind: KindCreateBill, From: v.From, To: v.To, Users: &v.Users, Comment: &v.Comment}, nil
	case *ledgerevents.UpdateBill:
		return &Envelope{Kind: KindUpdateBill, From: v.From, To: v.To, Comment: v.Comment, Users: v.Users, Excluded: v.Excluded}, nil
	case *ledgerevents.DeleteUnfinishedBill:
		return &Envelope{Kind: KindDeleteUnfinishedBill, From: v.From, To: v.To}, nil
	case *ledgerevents.FinalizeBill:
		return &Envelope{Kind: KindFinalizeBill, From: v.From, To: v.To}, nil
	case *ledgerevents.ExportBill:
		return &Envelope{Kind: KindExportBill, From: v.From, To: v.To}, nil
	}
	return nil, fmt.Errorf("codec: unknown event type %T", e)
}

func fromEnvelope(env *Envelope) (ledgerevents.Event, error) {
	switch env.Kind {
	case KindCreateUser:
		return &ledgerevents.CreateUser{Username: env.Username}, nil
	case KindUpdateUser:
		return &ledgerevents.UpdateUser{
			UserID: env.UserID, Username: env.Name, ExternalUserID: env.ExternalUserID,
			IsBilled: env.IsBilled, Highlight: env.Highlight,
		}, nil
	case KindDeleteUser:
		return &ledgerevents.DeleteUser{UserID: env.UserID}, nil

	case KindCreateItem:
		name := ""
		if env.Name != nil {
			name = *env.Name
		}
		cost := int64(0)
		if env.CostCents != nil {
			cost = *env.CostCents
		}
		return &ledgerevents.CreateItem{Name: name, CostCents: cost, Category: env.Category}, nil
	case KindUpdateItem:
		up := &ledgerevents.UpdateItem{ItemID: env.ItemID, Name: env.Name, CostCents: env.CostCents}
		if env.CategorySet {
			cat := env.Category
			up.Category = &cat
		}
		return up, nil
	case KindDeleteItem:
		return &ledgerevents.DeleteItem{ItemID: env.ItemID}, nil
	case KindRenameItemCategory:
		return &ledgerevents.RenameItemCategory{Old: env.OldCategory, New: env.NewCategory}, nil

	case KindMakeSimplePurchase:
		return &ledgerevents.MakeSimplePurchase{UserID: env.UserID, ItemID: env.ItemID, TsMs: env.TsMs}, nil
	case KindMakeSpecialPurchase:
		return &ledgerevents.MakeSpecialPurchase{UserID: env.UserID, SpecialName: env.SpecialName, TsMs: env.TsMs}, nil
	case KindSetPriceForSpecial:
		price := int64(0)
		if env.Price != nil {
			price = *env.Price
		}
		return &ledgerevents.SetPriceForSpecial{UniqueID: env.PurchaseID, Price: price}, nil
	case KindMakeShoppingCart:
		items := make([]ledgerevents.CartItem, len(env.CartItems))
		for i, id := range env.CartItems {
			items[i] = ledgerevents.CartItem{ItemID: id}
		}
		specials := make([]ledgerevents.CartSpecial, len(env.CartSpecials))
		for i, name := range env.CartSpecials {
			specials[i] = ledgerevents.CartSpecial{Name: name}
		}
		return &ledgerevents.MakeShoppingCartPurchase{UserID: env.UserID, Items: items, Specials: specials, TsMs: env.TsMs}, nil
	case KindMakeFreeForAll:
		return &ledgerevents.MakeFreeForAllPurchase{FreebyID: env.FreebyID, ItemID: env.ItemID, TsMs: env.TsMs}, nil
	case KindUndoPurchase:
		return &ledgerevents.UndoPurchase{UniqueID: env.PurchaseID}, nil

	case KindCreateFreeForAll:
		return &ledgerevents.CreateFreeForAll{
			Donor: env.Donor, Total: env.Total, AllowedItems: env.AllowedItems,
			AllowedCategories: env.AllowedCategories, Msg: env.Msg, CreatedTs: env.TsMs,
		}, nil
	case KindCreateFreeCount:
		return &ledgerevents.CreateFreeCount{
			Donor: env.Donor, Recipient: env.Recipient, Total: env.Total, AllowedItems: env.AllowedItems,
			AllowedCategories: env.AllowedCategories, Msg: env.Msg, CreatedTs: env.TsMs,
		}, nil
	case KindCreateFreeBudget:
		return &ledgerevents.CreateFreeBudget{
			Donor: env.Donor, Recipient: env.Recipient, CentsTotal: env.CentsTotal, AllowedItems: env.AllowedItems,
			AllowedCategories: env.AllowedCategories, Msg: env.Msg, CreatedTs: env.TsMs,
		}, nil
	case KindMarkFreebyMessage:
		return &ledgerevents.MarkFreebyMessage{FreebyID: env.FreebyID, Msg: env.Msg}, nil

	case KindCreateBill:
		ug := aggregate.AllUsers()
		if env.Users != nil {
			ug = *env.Users
		}
		comment := ""
		if env.Comment != nil {
			comment = *env.Comment
		}
		return &ledgerevents.CreateBill{From: env.From, To: env.To, Users: ug, Comment: comment}, nil
	case KindUpdateBill:
		return &ledgerevents.UpdateBill{From: env.From, To: env.To, Comment: env.Comment, Users: env.Users, Excluded: env.Excluded}, nil
	case KindDeleteUnfinishedBill:
		return &ledgerevents.DeleteUnfinishedBill{From: env.From, To: env.To}, nil
	case KindFinalizeBill:
		return &ledgerevents.FinalizeBill{From: env.From, To: env.To}, nil
	case KindExportBill:
		return &ledgerevents.ExportBill{From: env.From, To: env.To}, nil
	}
	return nil, fmt.Errorf("codec: unknown envelope kind %q", env.Kind)
}
