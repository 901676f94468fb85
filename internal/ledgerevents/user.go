package ledgerevents

import "github.com/n3phtys/rustixbl/internal/aggregate"

// CreateUser creates a new user (§4.4). Always valid.
type CreateUser struct {
	Username string
}

func (e *CreateUser) Validate(s *aggregate.State) bool { return true }

func (e *CreateUser) Apply(s *aggregate.State) {
	id := s.UserIDCounter
	s.UserIDCounter++

	s.Users[id] = aggregate.User{
		UserID:   id,
		Username: e.Username,
		IsBilled: true,
	}

	// Seed this user's per-item ranking with every current item, at
	// score 0, so later purchases of existing items have somewhere to
	// land without a special-case check.
	tree := s.PerUserItemRanks[id]
	if tree == nil {
		tree = newRankTree()
		s.PerUserItemRanks[id] = tree
	}
	for _, itemID := range sortedItemIDsOf(s) {
		tree.Insert(itemID)
	}
	s.RefreshTopItemsForUser(id)

	s.UserRanking.Insert(id)
	s.RefreshTopUsers()

	s.RebuildUserIndex()
}

// UpdateUser overwrites the mutable fields of an existing user. Nil
// pointer fields leave the corresponding value unchanged (§4.4).
type UpdateUser struct {
	UserID         aggregate.UserID
	Username       *string
	ExternalUserID *string
	IsBilled       *bool
	Highlight      *bool
}

func (e *UpdateUser) Validate(s *aggregate.State) bool {
	return s.HasUser(e.UserID)
}

func (e *UpdateUser) Apply(s *aggregate.State) {
	u := s.Users[e.UserID]
	if e.Username != nil {
		u.Username = *e.Username
	}
	if e.ExternalUserID != nil {
		u.ExternalUserID = e.ExternalUserID
	}
	if e.IsBilled != nil {
		u.IsBilled = *e.IsBilled
	}
	if e.Highlight != nil {
		u.Highlight = *e.Highlight
	}
	s.Users[e.UserID] = u

	if u.Highlight {
		s.HighlightedUsers[e.UserID] = struct{}{}
	} else {
		delete(s.HighlightedUsers, e.UserID)
	}

	if e.Username != nil {
		s.RebuildUserIndex()
	}
}

// DeleteUser logically deletes a user (soft delete, §3).
type DeleteUser struct {
	UserID aggregate.UserID
}

func (e *DeleteUser) Validate(s *aggregate.State) bool {
	return s.HasUser(e.UserID)
}

func (e *DeleteUser) Apply(s *aggregate.State) {
	u := s.Users[e.UserID]
	u.Deleted = true
	s.Users[e.UserID] = u

	delete(s.HighlightedUsers, e.UserID)
	delete(s.PerUserItemRanks, e.UserID)
	delete(s.TopItemsForUser, e.UserID)

	s.UserRanking.Remove(e.UserID)
	s.RefreshTopUsers()

	s.RebuildUserIndex()
}

func sortedItemIDsOf(s *aggregate.State) []aggregate.ItemID {
	ids := make([]aggregate.ItemID, 0, len(s.Items))
	for id := range s.Items {
		ids = append(ids, id)
	}
	sortUint64s(ids)
	return ids
}
