package ledgerevents

import "github.com/n3phtys/rustixbl/internal/aggregate"

// CreateItem creates a new purchasable item (§4.4). Always valid.
type CreateItem struct {
	Name      string
	CostCents int64
	Category  *string
}

func (e *CreateItem) Validate(s *aggregate.State) bool { return true }

func (e *CreateItem) Apply(s *aggregate.State) {
	id := s.ItemIDCounter
	s.ItemIDCounter++

	s.Items[id] = aggregate.Item{
		ItemID:    id,
		Name:      e.Name,
		Category:  e.Category,
		CostCents: e.CostCents,
	}
	if e.Category != nil {
		s.Categories[*e.Category] = struct{}{}
	}

	// Seed a zero-score entry for this item in every per-user ranking.
	for _, tree := range s.PerUserItemRanks {
		tree.Insert(id)
	}

	s.RebuildItemIndex()
}

// UpdateItem overwrites the mutable fields of an existing item. Nil
// pointer fields leave the corresponding value unchanged (§4.4).
type UpdateItem struct {
	ItemID    aggregate.ItemID
	Name      *string
	CostCents *int64
	Category  **string // nil: unchanged. *Category == nil: clear category.
}

func (e *UpdateItem) Validate(s *aggregate.State) bool {
	return s.HasItem(e.ItemID)
}

func (e *UpdateItem) Apply(s *aggregate.State) {
	it := s.Items[e.ItemID]
	if e.Name != nil {
		it.Name = *e.Name
	}
	if e.CostCents != nil {
		it.CostCents = *e.CostCents
	}
	categoryChanged := false
	if e.Category != nil {
		it.Category = *e.Category
		categoryChanged = true
	}
	s.Items[e.ItemID] = it

	if categoryChanged {
		recomputeCategories(s)
	}
	if e.Name != nil {
		s.RebuildItemIndex()
	}
}

// DeleteItem logically deletes an item (soft delete, §3).
type DeleteItem struct {
	ItemID aggregate.ItemID
}

func (e *DeleteItem) Validate(s *aggregate.State) bool {
	return s.HasItem(e.ItemID)
}

func (e *DeleteItem) Apply(s *aggregate.State) {
	it := s.Items[e.ItemID]
	it.Deleted = true
	s.Items[e.ItemID] = it

	for user, tree := range s.PerUserItemRanks {
		if tree.Contains(e.ItemID) {
			tree.Remove(e.ItemID)
			s.RefreshTopItemsForUser(user)
		}
	}

	recomputeCategories(s)
	s.RebuildItemIndex()
}

// RenameItemCategory bulk-renames a category across every item that
// carries it (§4.4 supplement). Distinct from UpdateItem, which only
// ever touches one item at a time.
type RenameItemCategory struct {
	Old string
	New string
}

func (e *RenameItemCategory) Validate(s *aggregate.State) bool {
	_, ok := s.Categories[e.Old]
	return ok
}

func (e *RenameItemCategory) Apply(s *aggregate.State) {
	for id, it := range s.Items {
		if it.Category != nil && *it.Category == e.Old {
			newCat := e.New
			it.Category = &newCat
			s.Items[id] = it
		}
	}
	recomputeCategories(s)
}

func recomputeCategories(s *aggregate.State) {
	cats := make(map[string]struct{})
	for _, it := range s.Items {
		if it.Deleted || it.Category == nil {
			continue
		}
		cats[*it.Category] = struct{}{}
	}
	s.Categories = cats
}
