package aggregate

import "github.com/n3phtys/rustixbl/internal/ranktree"

// RebuildDerived recomputes every cache field (§9 "indices as caches")
// from the entity tables and the live purchase list: categories,
// highlighted-users, balances, rankings, top-N sets, and the substring
// indices. Used after restoring a Snapshot, which intentionally omits
// these fields, and is safe to call at any time since it never reads
// its own prior output.
func (s *State) RebuildDerived() {
	recomputeCategoriesOnState(s)

	s.HighlightedUsers = make(map[UserID]struct{})
	for id, u := range s.Users {
		if u.Highlight && !u.Deleted {
			s.HighlightedUsers[id] = struct{}{}
		}
	}

	s.BalanceCost = make(map[UserKey]map[ItemKey]int64)
	s.BalanceCount = make(map[UserKey]map[ItemKey]int)

	s.UserRanking = ranktree.New()
	s.PerUserItemRanks = make(map[UserID]*ranktree.Tree)
	for id := range s.Users {
		s.UserRanking.Insert(id)
		s.PerUserItemRanks[id] = ranktree.New()
		// Only live items are seeded here, matching CreateItem/CreateUser's
		// seeding on the live path; a deleted item is never present in a
		// freshly-seeded ranking (DeleteItem removes it from every tree).
		// A later purchase of a since-deleted item still lazily re-inserts
		// it below, mirroring appendAndScoreSimple's "insert if missing".
		for itemID, it := range s.Items {
			if !it.Deleted {
				s.PerUserItemRanks[id].Insert(itemID)
			}
		}
	}

	for _, p := range s.Purchases {
		switch p.Kind {
		case PurchaseSimple:
			if tree, ok := s.PerUserItemRanks[p.ConsumerID]; ok {
				if _, present := tree.Score(p.ItemID); !present {
					tree.Insert(p.ItemID)
				}
				tree.IncrementByOne(p.ItemID)
			}
			s.UserRanking.IncrementByOne(p.ConsumerID)

			it := s.Items[p.ItemID]
			s.AddBalance(s.UserKeyAt(p.ConsumerID), s.ItemKeyAt(p.ItemID), it.CostCents, 1)
		case PurchaseFFA:
			it := s.Items[p.ItemID]
			s.AddBalance(s.UserKeyAt(p.FreebyDonor), s.ItemKeyAt(p.ItemID), it.CostCents, 1)
		}
	}

	s.TopUsers = make(map[UserID]struct{})
	s.TopItemsForUser = make(map[UserID]map[ItemID]struct{})
	s.RefreshTopUsers()
	for id := range s.Users {
		s.RefreshTopItemsForUser(id)
	}

	s.rebuildUserIndex()
	s.rebuildItemIndex()
}

func recomputeCategoriesOnState(s *State) {
	cats := make(map[string]struct{})
	for _, it := range s.Items {
		if it.Deleted || it.Category == nil {
			continue
		}
		cats[*it.Category] = struct{}{}
	}
	s.Categories = cats
}
