package aggregate

import "sort"

// HasUser reports whether id names a user (tombstoned or not).
func (s *State) HasUser(id UserID) bool {
	_, ok := s.Users[id]
	return ok
}

// HasItem reports whether id names an item (tombstoned or not).
func (s *State) HasItem(id ItemID) bool {
	_, ok := s.Items[id]
	return ok
}

// GetUser returns the user and whether it exists.
func (s *State) GetUser(id UserID) (User, bool) {
	u, ok := s.Users[id]
	return u, ok
}

// GetItem returns the item and whether it exists.
func (s *State) GetItem(id ItemID) (Item, bool) {
	it, ok := s.Items[id]
	return it, ok
}

// HasPurchase reports whether a live purchase with this unique id exists.
func (s *State) HasPurchase(id PurchaseID) bool {
	_, ok := s.GetPurchase(id)
	return ok
}

// GetPurchase returns the live purchase with this unique id, if any.
func (s *State) GetPurchase(id PurchaseID) (Purchase, bool) {
	for _, p := range s.Purchases {
		if p.UniqueID == id {
			return p, true
		}
	}
	return Purchase{}, false
}

// PurchaseIndex returns the slice index of the live purchase with this
// unique id, or -1.
func (s *State) PurchaseIndex(id PurchaseID) int {
	for i, p := range s.Purchases {
		if p.UniqueID == id {
			return i
		}
	}
	return -1
}

// TopUserIDs returns the current top-N users by purchase count, per the
// configured UsersInTopUsers, in descending-score order.
func (s *State) TopUserIDs() []UserID {
	return s.UserRanking.ExtractTop(s.Config.UsersInTopUsers)
}

// TopItemIDsForUser returns the current top-N items by purchase count for
// the given user, per the configured TopDrinksPerUser.
func (s *State) TopItemIDsForUser(user UserID) []ItemID {
	tree, ok := s.PerUserItemRanks[user]
	if !ok {
		return nil
	}
	return tree.ExtractTop(s.Config.TopDrinksPerUser)
}

// SearchUsers returns the ids of active users whose username contains
// query as a (case-insensitive) substring.
func (s *State) SearchUsers(query string) []UserID {
	return s.UserIndex.Search(query)
}

// SearchItems returns the ids of active items whose name contains query
// as a (case-insensitive) substring.
func (s *State) SearchItems(query string) []ItemID {
	return s.ItemIndex.Search(query)
}

// CategoryList returns the set of categories currently in use, sorted.
func (s *State) CategoryList() []string {
	out := make([]string, 0, len(s.Categories))
	for c := range s.Categories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// FindPurchaseIndices returns [lo, hi) over the live, timestamp-sorted
// purchase list covering ts in [startInc, endExc) (§4.4
// find_purchase_indices), via binary search — valid only because
// invariant 3 (purchases sorted by TsMs) is maintained by ingestion.
func (s *State) FindPurchaseIndices(startInc, endExc int64) (lo, hi int) {
	lo = sort.Search(len(s.Purchases), func(i int) bool {
		return s.Purchases[i].TsMs >= startInc
	})
	hi = sort.Search(len(s.Purchases), func(i int) bool {
		return s.Purchases[i].TsMs >= endExc
	})
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// PurchasesInRange returns the live purchases (by value) with
// ts in [startInc, endExc), optionally filtered to a single consumer.
func (s *State) PurchasesInRange(startInc, endExc int64, consumer *UserID) []Purchase {
	lo, hi := s.FindPurchaseIndices(startInc, endExc)
	out := make([]Purchase, 0, hi-lo)
	for _, p := range s.Purchases[lo:hi] {
		if consumer != nil && p.ConsumerID != *consumer {
			continue
		}
		out = append(out, p)
	}
	return out
}

// BillsForUser returns every bill whose selector matches user (nil user
// returns every bill, matching UserGroup.Matches' nil semantics).
func (s *State) BillsForUser(user *UserID) []Bill {
	out := make([]Bill, 0, len(s.Bills))
	for _, b := range s.Bills {
		if b.Users.Matches(user) {
			out = append(out, b)
		}
	}
	return out
}

// GetBill returns the bill with the exact [from,to) range, if any, and
// its index in s.Bills.
func (s *State) GetBill(from, to int64) (int, *Bill) {
	for i := range s.Bills {
		if s.Bills[i].TimestampFrom == from && s.Bills[i].TimestampTo == to {
			return i, &s.Bills[i]
		}
	}
	return -1, nil
}

// resolvedUsersForBill returns the set of user ids a bill's selector
// resolves to, given the live Users table (AllUsers resolves to every
// non-excluded user id).
func (s *State) resolvedUsersForBill(b *Bill) []UserID {
	excluded := make(map[UserID]struct{}, len(b.UsersThatWillNotBeBilled))
	for _, id := range b.UsersThatWillNotBeBilled {
		excluded[id] = struct{}{}
	}
	var ids []UserID
	switch b.Users.Kind {
	case GroupAllUsers:
		ids = sortedUserIDs(s.Users)
	case GroupSingleUser:
		ids = []UserID{b.Users.ID}
	case GroupMultipleUsers:
		ids = append(ids, b.Users.IDs...)
	}
	out := make([]UserID, 0, len(ids))
	for _, id := range ids {
		if _, ex := excluded[id]; ex {
			continue
		}
		out = append(out, id)
	}
	return out
}

// UnresolvedUsersToBill returns the covered, billed, non-excluded users
// that have not yet been resolved to an external identity — a
// FinalizeBill precondition (§4.4): it must be empty before a bill can
// be finalized. A user is "resolved" once they carry an ExternalUserID
// (set via UpdateUser); IsBilled users without one are who the check
// exists to catch.
func (s *State) UnresolvedUsersToBill(from, to int64) []UserID {
	_, b := s.GetBill(from, to)
	if b == nil {
		return nil
	}
	var missing []UserID
	for _, id := range s.resolvedUsersForBill(b) {
		u, ok := s.Users[id]
		if !ok || !u.IsBilled {
			continue
		}
		if u.ExternalUserID == nil {
			missing = append(missing, id)
		}
	}
	return missing
}

// UnpricedSpecialsToBill returns the unique ids of SpecialPurchases in
// [from,to) matching the bill's selector that have no SpecialCost set —
// the other FinalizeBill precondition (§4.4).
func (s *State) UnpricedSpecialsToBill(from, to int64) []PurchaseID {
	_, b := s.GetBill(from, to)
	if b == nil {
		return nil
	}
	lo, hi := s.FindPurchaseIndices(from, to)
	var out []PurchaseID
	for _, p := range s.Purchases[lo:hi] {
		if p.Kind != PurchaseSpecial {
			continue
		}
		consumer := p.ConsumerID
		if !b.Users.Matches(&consumer) {
			continue
		}
		if p.SpecialCost == nil {
			out = append(out, p.UniqueID)
		}
	}
	return out
}
