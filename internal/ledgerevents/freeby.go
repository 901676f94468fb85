package ledgerevents

import "github.com/n3phtys/rustixbl/internal/aggregate"

// CreateFreeForAll opens an FFA freeby: any user may redeem it, up to
// Total times, for any item matching AllowedItems/AllowedCategories
// (§3, §4.4).
type CreateFreeForAll struct {
	Donor             aggregate.UserID
	Total             int
	AllowedItems      []aggregate.ItemID
	AllowedCategories []string
	Msg               string
	CreatedTs         int64
}

func (e *CreateFreeForAll) Validate(s *aggregate.State) bool {
	if !s.HasUser(e.Donor) {
		return false
	}
	if e.Total <= 0 {
		return false
	}
	for _, id := range e.AllowedItems {
		if !s.HasItem(id) {
			return false
		}
	}
	return true
}

func (e *CreateFreeForAll) Apply(s *aggregate.State) {
	id := s.FreebyIDCounter
	s.FreebyIDCounter++

	f := &aggregate.Freeby{
		Kind:              aggregate.FreebyFFA,
		ID:                id,
		Donor:             e.Donor,
		Msg:               e.Msg,
		CreatedTs:         e.CreatedTs,
		AllowedItems:      append([]aggregate.ItemID(nil), e.AllowedItems...),
		AllowedCategories: append([]string(nil), e.AllowedCategories...),
		Total:             e.Total,
	}
	s.OpenFFA = append(s.OpenFFA, f)
}

// CreateFreeCount opens a Classic freeby: donor gives recipient a fixed
// number of free redemptions of matching items (§3, §4.4).
type CreateFreeCount struct {
	Donor             aggregate.UserID
	Recipient         aggregate.UserID
	Total             int
	AllowedItems      []aggregate.ItemID
	AllowedCategories []string
	Msg               string
	CreatedTs         int64
}

func (e *CreateFreeCount) Validate(s *aggregate.State) bool {
	if !s.HasUser(e.Donor) || !s.HasUser(e.Recipient) {
		return false
	}
	if e.Total <= 0 {
		return false
	}
	for _, id := range e.AllowedItems {
		if !s.HasItem(id) {
			return false
		}
	}
	return true
}

func (e *CreateFreeCount) Apply(s *aggregate.State) {
	id := s.FreebyIDCounter
	s.FreebyIDCounter++

	f := &aggregate.Freeby{
		Kind:              aggregate.FreebyClassic,
		ID:                id,
		Donor:             e.Donor,
		Msg:               e.Msg,
		CreatedTs:         e.CreatedTs,
		AllowedItems:      append([]aggregate.ItemID(nil), e.AllowedItems...),
		AllowedCategories: append([]string(nil), e.AllowedCategories...),
		Recipient:         e.Recipient,
		ClassicTotal:      e.Total,
	}
	s.OpenFreebies[e.Recipient] = append(s.OpenFreebies[e.Recipient], f)
}

// CreateFreeBudget opens a Transfer freeby: donor gives recipient a cents
// budget to spend on matching items (§3, §4.4). With no AllowedItems and
// no AllowedCategories the budget covers every item.
type CreateFreeBudget struct {
	Donor             aggregate.UserID
	Recipient         aggregate.UserID
	CentsTotal        int64
	AllowedItems      []aggregate.ItemID
	AllowedCategories []string
	Msg               string
	CreatedTs         int64
}

func (e *CreateFreeBudget) Validate(s *aggregate.State) bool {
	if !s.HasUser(e.Donor) || !s.HasUser(e.Recipient) {
		return false
	}
	if e.CentsTotal <= 0 {
		return false
	}
	for _, id := range e.AllowedItems {
		if !s.HasItem(id) {
			return false
		}
	}
	return true
}

func (e *CreateFreeBudget) Apply(s *aggregate.State) {
	id := s.FreebyIDCounter
	s.FreebyIDCounter++

	f := &aggregate.Freeby{
		Kind:              aggregate.FreebyTransfer,
		ID:                id,
		Donor:             e.Donor,
		Msg:               e.Msg,
		CreatedTs:         e.CreatedTs,
		AllowedItems:      append([]aggregate.ItemID(nil), e.AllowedItems...),
		AllowedCategories: append([]string(nil), e.AllowedCategories...),
		Recipient:         e.Recipient,
		CentsTotal:        e.CentsTotal,
	}
	s.OpenFreebies[e.Recipient] = append(s.OpenFreebies[e.Recipient], f)
}

// MarkFreebyMessage edits a freeby's human-readable message after
// creation (§4.4 supplement). Works against both open freeby lists
// (OpenFFA, OpenFreebies) and UsedUpFreebies, since the message is
// metadata and does not affect exhaustion bookkeeping.
type MarkFreebyMessage struct {
	FreebyID aggregate.FreebyID
	Msg      string
}

func findFreeby(s *aggregate.State, id aggregate.FreebyID) *aggregate.Freeby {
	for _, f := range s.OpenFFA {
		if f.ID == id {
			return f
		}
	}
	for _, list := range s.OpenFreebies {
		for _, f := range list {
			if f.ID == id {
				return f
			}
		}
	}
	for _, f := range s.UsedUpFreebies {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (e *MarkFreebyMessage) Validate(s *aggregate.State) bool {
	return findFreeby(s, e.FreebyID) != nil
}

func (e *MarkFreebyMessage) Apply(s *aggregate.State) {
	if f := findFreeby(s, e.FreebyID); f != nil {
		f.Msg = e.Msg
	}
}

// MakeFreeForAllPurchase redeems an open FFA freeby for item, charging
// the freeby's donor rather than the recipient (§3, §4.4). The freeby
// moves to UsedUpFreebies once Left() reaches zero.
type MakeFreeForAllPurchase struct {
	FreebyID aggregate.FreebyID
	ItemID   aggregate.ItemID
	TsMs     int64
}

func (e *MakeFreeForAllPurchase) findOpenFFA(s *aggregate.State) *aggregate.Freeby {
	for _, f := range s.OpenFFA {
		if f.ID == e.FreebyID {
			return f
		}
	}
	return nil
}

func (e *MakeFreeForAllPurchase) Validate(s *aggregate.State) bool {
	if !s.HasItem(e.ItemID) {
		return false
	}
	f := e.findOpenFFA(s)
	if f == nil || f.Kind != aggregate.FreebyFFA {
		return false
	}
	if f.Left() <= 0 {
		return false
	}
	item, _ := s.GetItem(e.ItemID)
	if !f.Allows(&item) {
		return false
	}
	return e.TsMs >= lastPurchaseTs(s)
}

func (e *MakeFreeForAllPurchase) Apply(s *aggregate.State) {
	f := e.findOpenFFA(s)

	id := s.PurchaseCount
	s.PurchaseCount++
	s.Purchases = append(s.Purchases, aggregate.Purchase{
		Kind:        aggregate.PurchaseFFA,
		UniqueID:    id,
		TsMs:        e.TsMs,
		ItemID:      e.ItemID,
		FreebyID:    f.ID,
		FreebyDonor: f.Donor,
	})

	f.Used++

	it := s.Items[e.ItemID]
	uk := s.UserKeyAt(f.Donor)
	ik := s.ItemKeyAt(e.ItemID)
	s.AddBalance(uk, ik, it.CostCents, 1)

	if f.Left() <= 0 {
		s.RemoveOpenFFA(f)
		s.InsertFreebyUsedUpSorted(f)
	}
}
