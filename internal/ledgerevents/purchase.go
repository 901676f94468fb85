package ledgerevents

import "github.com/n3phtys/rustixbl/internal/aggregate"

// lastPurchaseTs returns the timestamp of the last live purchase, or
// -1<<62 if there are none yet (so the first purchase passes the
// non-decreasing check below for any timestamp at or above that value).
func lastPurchaseTs(s *aggregate.State) int64 {
	if len(s.Purchases) == 0 {
		return -1 << 62
	}
	return s.Purchases[len(s.Purchases)-1].TsMs
}

// appendAndScoreSimple performs the shared effect of charging item to
// consumer at ts: append the purchase, bump purchase_count, bump the
// user/per-user-item rankings, and update balances. Used by
// MakeSimplePurchase (and so by MakeShoppingCartPurchase's item lines);
// the FFA path charges the donor instead and has its own bookkeeping in
// freeby.go.
func appendAndScoreSimple(s *aggregate.State, consumer aggregate.UserID, item aggregate.ItemID, ts int64) {
	id := s.PurchaseCount
	s.PurchaseCount++

	s.Purchases = append(s.Purchases, aggregate.Purchase{
		Kind:       aggregate.PurchaseSimple,
		UniqueID:   id,
		TsMs:       ts,
		ConsumerID: consumer,
		ItemID:     item,
	})

	if tree, ok := s.PerUserItemRanks[consumer]; ok {
		if _, wasPresent := tree.Score(item); !wasPresent {
			tree.Insert(item)
		}
		tree.IncrementByOne(item)
		s.RefreshTopItemsForUser(consumer)
	}

	if !s.UserRanking.Contains(consumer) {
		s.UserRanking.Insert(consumer)
	}
	s.UserRanking.IncrementByOne(consumer)
	s.RefreshTopUsers()

	it := s.Items[item]
	uk := s.UserKeyAt(consumer)
	ik := s.ItemKeyAt(item)
	s.AddBalance(uk, ik, it.CostCents, 1)
}

// MakeSimplePurchase records consumer buying item at ts (§4.4).
type MakeSimplePurchase struct {
	UserID aggregate.UserID
	ItemID aggregate.ItemID
	TsMs   int64
}

func (e *MakeSimplePurchase) Validate(s *aggregate.State) bool {
	if !s.HasUser(e.UserID) || !s.HasItem(e.ItemID) {
		return false
	}
	// SPEC_FULL.md §9 open-question decision: reject out-of-order
	// timestamps rather than silently accepting them, to keep invariant
	// 3 (purchases sorted by ts) always true without a fallback linear
	// scan in FindPurchaseIndices.
	return e.TsMs >= lastPurchaseTs(s)
}

func (e *MakeSimplePurchase) Apply(s *aggregate.State) {
	appendAndScoreSimple(s, e.UserID, e.ItemID, e.TsMs)
}

// MakeSpecialPurchase records a one-off, initially unpriced purchase
// (§4.4). Priced later via SetPriceForSpecial, before bill finalization.
type MakeSpecialPurchase struct {
	UserID      aggregate.UserID
	SpecialName string
	TsMs        int64
}

func (e *MakeSpecialPurchase) Validate(s *aggregate.State) bool {
	if !s.HasUser(e.UserID) {
		return false
	}
	return e.TsMs >= lastPurchaseTs(s)
}

func (e *MakeSpecialPurchase) Apply(s *aggregate.State) {
	id := s.PurchaseCount
	s.PurchaseCount++
	s.Purchases = append(s.Purchases, aggregate.Purchase{
		Kind:        aggregate.PurchaseSpecial,
		UniqueID:    id,
		TsMs:        e.TsMs,
		ConsumerID:  e.UserID,
		SpecialName: e.SpecialName,
	})
}

// SetPriceForSpecial assigns the price of a previously-unpriced
// SpecialPurchase (§4.4).
type SetPriceForSpecial struct {
	UniqueID aggregate.PurchaseID
	Price    int64
}

func (e *SetPriceForSpecial) Validate(s *aggregate.State) bool {
	p, ok := s.GetPurchase(e.UniqueID)
	return ok && p.Kind == aggregate.PurchaseSpecial
}

func (e *SetPriceForSpecial) Apply(s *aggregate.State) {
	idx := s.PurchaseIndex(e.UniqueID)
	price := e.Price
	s.Purchases[idx].SpecialCost = &price
}

// CartItem and CartSpecial describe one line of a shopping-cart
// purchase (§4.4 MakeShoppingCartPurchase).
type CartItem struct {
	ItemID aggregate.ItemID
}

type CartSpecial struct {
	Name string
}

// MakeShoppingCartPurchase applies a batch of item purchases followed by
// a batch of special purchases, in that fixed order (§4.4): validity is
// the AND over every component event's validity, evaluated up front so
// the whole cart is rejected atomically rather than partially applied.
type MakeShoppingCartPurchase struct {
	UserID   aggregate.UserID
	Items    []CartItem
	Specials []CartSpecial
	TsMs     int64
}

func (e *MakeShoppingCartPurchase) component() []Event {
	events := make([]Event, 0, len(e.Items)+len(e.Specials))
	for _, it := range e.Items {
		events = append(events, &MakeSimplePurchase{UserID: e.UserID, ItemID: it.ItemID, TsMs: e.TsMs})
	}
	for _, sp := range e.Specials {
		events = append(events, &MakeSpecialPurchase{UserID: e.UserID, SpecialName: sp.Name, TsMs: e.TsMs})
	}
	return events
}

func (e *MakeShoppingCartPurchase) Validate(s *aggregate.State) bool {
	if !s.HasUser(e.UserID) {
		return false
	}
	for _, it := range e.Items {
		if !s.HasItem(it.ItemID) {
			return false
		}
	}
	if e.TsMs < lastPurchaseTs(s) {
		return false
	}
	return true
}

func (e *MakeShoppingCartPurchase) Apply(s *aggregate.State) {
	for _, ev := range e.component() {
		ev.Apply(s)
	}
}

// UndoPurchase removes a live purchase and reverses its balance effect
// (§4.4). Only SimplePurchase and FFAPurchase carry a cost reversal;
// undoing a SpecialPurchase simply removes it (its cost, if ever priced,
// never touched a balance map — specials are priced at bill time, not at
// purchase time).
type UndoPurchase struct {
	UniqueID aggregate.PurchaseID
}

func (e *UndoPurchase) Validate(s *aggregate.State) bool {
	return s.HasPurchase(e.UniqueID)
}

func (e *UndoPurchase) Apply(s *aggregate.State) {
	idx := s.PurchaseIndex(e.UniqueID)
	p := s.Purchases[idx]
	s.Purchases = append(s.Purchases[:idx:idx], s.Purchases[idx+1:]...)

	switch p.Kind {
	case aggregate.PurchaseSimple:
		it := s.Items[p.ItemID]
		uk := s.UserKeyAt(p.ConsumerID)
		ik := s.ItemKeyAt(p.ItemID)
		s.AddBalance(uk, ik, -it.CostCents, -1)
	case aggregate.PurchaseFFA:
		it := s.Items[p.ItemID]
		uk := s.UserKeyAt(p.FreebyDonor)
		ik := s.ItemKeyAt(p.ItemID)
		s.AddBalance(uk, ik, -it.CostCents, -1)
	}
}
