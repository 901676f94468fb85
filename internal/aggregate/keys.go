package aggregate

import "fmt"

// UserKey and ItemKey double-key balance maps by (id, name-at-apply-time)
// so that renaming a user/item does not silently rewrite historical
// balances (§4.4, §9 "name-frozen balance keys"). Implementers must not
// collapse this to a plain id-keyed map.
type UserKey struct {
	ID       UserID
	Username string
}

type ItemKey struct {
	ID   ItemID
	Name string
}

func (k UserKey) String() string { return fmt.Sprintf("%d:%s", k.ID, k.Username) }
func (k ItemKey) String() string { return fmt.Sprintf("%d:%s", k.ID, k.Name) }

// UserKeyAt and ItemKeyAt build the key for an id using whatever name
// that entity currently carries in the aggregate — "name at apply time".
// Exported for use by internal/ledgerevents' Apply methods.
func (s *State) UserKeyAt(id UserID) UserKey {
	u := s.Users[id]
	return UserKey{ID: id, Username: u.Username}
}

func (s *State) ItemKeyAt(id ItemID) ItemKey {
	it := s.Items[id]
	return ItemKey{ID: id, Name: it.Name}
}
