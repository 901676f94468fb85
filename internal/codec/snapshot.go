package codec

import (
	gojson "github.com/goccy/go-json"

	"github.com/n3phtys/rustixbl/internal/aggregate"
)

// Snapshot is the full serialized aggregate written to
// <persistence_dir>/snapshot.json (§6). Index fields (rankings,
// substring indices, top-N sets) are deliberately NOT part of the
// snapshot: §9 treats them as caches, rebuildable from the entity
// tables, and Reload always rebuilds them after restoring one.
type Snapshot struct {
	Version uint64 `json:"version"`

	UserIDCounter   aggregate.UserID     `json:"user_id_counter"`
	ItemIDCounter   aggregate.ItemID     `json:"item_id_counter"`
	FreebyIDCounter aggregate.FreebyID   `json:"freeby_id_counter"`
	PurchaseCount   aggregate.PurchaseID `json:"purchase_count"`

	Users     map[aggregate.UserID]aggregate.User `json:"users"`
	Items     map[aggregate.ItemID]aggregate.Item `json:"items"`
	Purchases []aggregate.Purchase                `json:"purchases"`
	Bills     []aggregate.Bill                    `json:"bills"`

	OpenFFA        []*aggregate.Freeby                         `json:"open_ffa"`
	OpenFreebies   map[aggregate.UserID][]*aggregate.Freeby     `json:"open_freebies"`
	UsedUpFreebies []*aggregate.Freeby                         `json:"used_up_freebies"`
}

// EncodeSnapshot serializes s into a Snapshot at the given version.
func EncodeSnapshot(s *aggregate.State, version uint64) ([]byte, error) {
	snap := Snapshot{
		Version:         version,
		UserIDCounter:   s.UserIDCounter,
		ItemIDCounter:   s.ItemIDCounter,
		FreebyIDCounter: s.FreebyIDCounter,
		PurchaseCount:   s.PurchaseCount,
		Users:           s.Users,
		Items:           s.Items,
		Purchases:       s.Purchases,
		Bills:           s.Bills,
		OpenFFA:         s.OpenFFA,
		OpenFreebies:    s.OpenFreebies,
		UsedUpFreebies:  s.UsedUpFreebies,
	}
	return gojson.MarshalIndent(&snap, "", "  ")
}

// DecodeSnapshot parses a Snapshot and restores every entity-table field
// of s, leaving index fields empty for the caller to rebuild.
func DecodeSnapshot(data []byte, s *aggregate.State) (version uint64, err error) {
	var snap Snapshot
	if err := gojson.Unmarshal(data, &snap); err != nil {
		return 0, err
	}

	s.UserIDCounter = snap.UserIDCounter
	s.ItemIDCounter = snap.ItemIDCounter
	s.FreebyIDCounter = snap.FreebyIDCounter
	s.PurchaseCount = snap.PurchaseCount

	s.Users = snap.Users
	if s.Users == nil {
		s.Users = make(map[aggregate.UserID]aggregate.User)
	}
	s.Items = snap.Items
	if s.Items == nil {
		s.Items = make(map[aggregate.ItemID]aggregate.Item)
	}
	s.Purchases = snap.Purchases
	s.Bills = snap.Bills

	s.OpenFFA = snap.OpenFFA
	s.OpenFreebies = snap.OpenFreebies
	if s.OpenFreebies == nil {
		s.OpenFreebies = make(map[aggregate.UserID][]*aggregate.Freeby)
	}
	s.UsedUpFreebies = snap.UsedUpFreebies

	return snap.Version, nil
}
