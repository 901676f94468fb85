package aggregate

import (
	"sort"

	"github.com/n3phtys/rustixbl/internal/ranktree"
	"github.com/n3phtys/rustixbl/internal/textindex"
)

// Config holds the three semantic tuning knobs the aggregate needs from
// the engine's configuration (§6): how many users/items land in the
// materialized top-N sets, and the read-API page size. use_persistence
// and persistence_file_path are engine/persistence concerns, not
// aggregate ones, and live in internal/config instead.
type Config struct {
	UsersPerPage     int
	UsersInTopUsers  int
	TopDrinksPerUser int
}

// State is the entire in-memory aggregate (§3). It is owned exclusively
// by the engine; every mutation flows through a ledgerevents.Event's
// Apply method. Read-only query methods are defined in query.go.
type State struct {
	Config Config

	Users map[UserID]User
	Items map[ItemID]Item

	// Purchases is sorted by TsMs (invariant 3): ingestion only accepts
	// non-decreasing timestamps (§9 open question, decided in
	// SPEC_FULL.md: out-of-order timestamps are rejected by Validate).
	Purchases []Purchase

	Bills []Bill

	OpenFFA         []*Freeby
	OpenFreebies    map[UserID][]*Freeby // keyed by recipient
	UsedUpFreebies  []*Freeby            // sorted by ID ascending

	// Categories is the set of item categories currently in use by at
	// least one non-deleted item.
	Categories map[string]struct{}

	// HighlightedUsers mirrors User.Highlight for quick membership
	// checks without a full scan.
	HighlightedUsers map[UserID]struct{}

	// Balances are double-keyed by (id, name-at-apply-time); see keys.go.
	BalanceCost  map[UserKey]map[ItemKey]int64
	BalanceCount map[UserKey]map[ItemKey]int

	// Derived indices (caches — §9): rankings and substring search.
	UserRanking      *ranktree.Tree
	PerUserItemRanks map[UserID]*ranktree.Tree
	TopUsers         map[UserID]struct{}
	TopItemsForUser  map[UserID]map[ItemID]struct{}

	UserIndex *textindex.Index
	ItemIndex *textindex.Index

	// Monotonic counters (§3), incremented only in Apply. PurchaseCount
	// also serves as the source of each purchase's UniqueID: the value
	// assigned to a new purchase is PurchaseCount's value before the
	// increment, so ids are dense and assigned only on a successful
	// Apply (§9 "rejected event never consumes an id").
	UserIDCounter   UserID
	ItemIDCounter   ItemID
	FreebyIDCounter FreebyID
	PurchaseCount   PurchaseID
	Version         uint64
}

// New returns an empty aggregate ready to have events applied to it.
func New(cfg Config) *State {
	s := &State{
		Config:           cfg,
		Users:            make(map[UserID]User),
		Items:            make(map[ItemID]Item),
		OpenFreebies:     make(map[UserID][]*Freeby),
		Categories:       make(map[string]struct{}),
		HighlightedUsers: make(map[UserID]struct{}),
		BalanceCost:      make(map[UserKey]map[ItemKey]int64),
		BalanceCount:     make(map[UserKey]map[ItemKey]int),
		UserRanking:      ranktree.New(),
		PerUserItemRanks: make(map[UserID]*ranktree.Tree),
		TopUsers:         make(map[UserID]struct{}),
		TopItemsForUser:  make(map[UserID]map[ItemID]struct{}),
	}
	s.rebuildUserIndex()
	s.rebuildItemIndex()
	return s
}

// --- index maintenance helpers, used by internal/ledgerevents' Apply methods ---

// RebuildUserIndex rebuilds the substring index over active (non-deleted)
// usernames. Exported for use by ledgerevents; the index is always
// rebuilt wholesale on mutation, per §4.2.
func (s *State) RebuildUserIndex() { s.rebuildUserIndex() }

// RebuildItemIndex rebuilds the substring index over active item names.
func (s *State) RebuildItemIndex() { s.rebuildItemIndex() }

func (s *State) rebuildUserIndex() {
	elements := make([]textindex.Element, 0, len(s.Users))
	ids := sortedUserIDs(s.Users)
	for _, id := range ids {
		u := s.Users[id]
		if u.Deleted {
			continue
		}
		elements = append(elements, textindex.Element{ID: id, Text: u.Username})
	}
	s.UserIndex = textindex.Build(elements, false)
}

func (s *State) rebuildItemIndex() {
	elements := make([]textindex.Element, 0, len(s.Items))
	ids := sortedItemIDs(s.Items)
	for _, id := range ids {
		it := s.Items[id]
		if it.Deleted {
			continue
		}
		elements = append(elements, textindex.Element{ID: id, Text: it.Name})
	}
	s.ItemIndex = textindex.Build(elements, false)
}

func sortedUserIDs(m map[UserID]User) []UserID {
	ids := make([]UserID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedItemIDs(m map[ItemID]Item) []ItemID {
	ids := make([]ItemID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// RefreshTopUsers recomputes TopUsers from UserRanking. Called whenever a
// user's score moves or a user is added/removed from the ranking.
func (s *State) RefreshTopUsers() {
	s.TopUsers = s.UserRanking.ExtractTopSet(s.Config.UsersInTopUsers)
}

// RefreshTopItemsForUser recomputes TopItemsForUser[user] from that
// user's per-item ranking tree.
func (s *State) RefreshTopItemsForUser(user UserID) {
	tree, ok := s.PerUserItemRanks[user]
	if !ok {
		delete(s.TopItemsForUser, user)
		return
	}
	set := make(map[ItemID]struct{})
	for id := range tree.ExtractTopSet(s.Config.TopDrinksPerUser) {
		set[id] = struct{}{}
	}
	s.TopItemsForUser[user] = set
}

// AddBalance adds cents and count at (uk, ik) in BalanceCost and
// BalanceCount, creating the inner maps for uk if absent.
func (s *State) AddBalance(uk UserKey, ik ItemKey, cents int64, count int) {
	costs, ok := s.BalanceCost[uk]
	if !ok {
		costs = make(map[ItemKey]int64)
		s.BalanceCost[uk] = costs
	}
	costs[ik] += cents

	counts, ok := s.BalanceCount[uk]
	if !ok {
		counts = make(map[ItemKey]int)
		s.BalanceCount[uk] = counts
	}
	counts[ik] += count
}

// InsertFreebyUsedUpSorted inserts f into UsedUpFreebies keeping the
// slice sorted by ID ascending (§4.4: "insert preserving id-sorted
// position").
func (s *State) InsertFreebyUsedUpSorted(f *Freeby) {
	i := sort.Search(len(s.UsedUpFreebies), func(i int) bool {
		return s.UsedUpFreebies[i].ID >= f.ID
	})
	s.UsedUpFreebies = append(s.UsedUpFreebies, nil)
	copy(s.UsedUpFreebies[i+1:], s.UsedUpFreebies[i:])
	s.UsedUpFreebies[i] = f
}

// RemoveOpenFreebyFromRecipient removes f from OpenFreebies[recipient],
// preserving order of the remaining entries.
func (s *State) RemoveOpenFreebyFromRecipient(recipient UserID, f *Freeby) {
	list := s.OpenFreebies[recipient]
	for i, candidate := range list {
		if candidate == f {
			s.OpenFreebies[recipient] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// RemoveOpenFFA removes f from OpenFFA, preserving order.
func (s *State) RemoveOpenFFA(f *Freeby) {
	for i, candidate := range s.OpenFFA {
		if candidate == f {
			s.OpenFFA = append(s.OpenFFA[:i:i], s.OpenFFA[i+1:]...)
			return
		}
	}
}
