// Package ranktree implements the ranking tree used to keep top-N
// rankings (users by purchase count, per-user items by purchase count) in
// sync with every mutation of the aggregate.
//
// The contract is a set of ids keyed by an integer score: insert at score
// zero, remove, increment by one, and extract the top N by descending
// score with ties broken by insertion order. It is backed by
// google/btree rather than a hand-rolled balanced tree — an ordered
// B-tree of (score, sequence, id) keys gives O(log N) insert/remove and
// an O(n) descending walk for extract_top, which satisfies the contract
// without reimplementing tree rebalancing.
package ranktree

import "github.com/google/btree"

// entry is the per-id bookkeeping kept outside the tree so remove/
// increment can find an id's current score in O(1) before mutating the
// tree (the tree itself is keyed by (score, sequence), not by id).
type entry struct {
	score int
	seq   uint64
}

// item is the btree element: ordered by descending score, then by
// ascending sequence so the earliest-inserted id of equal score sorts
// first when walking in insertion order, and ties broken stably.
type item struct {
	score int
	seq   uint64
	id    uint64
}

func less(a, b item) bool {
	if a.score != b.score {
		return a.score > b.score // higher score first
	}
	return a.seq < b.seq // earlier insertion first
}

// Tree is an ordered score-by-id structure supporting insert, remove,
// increment, and top-N extraction. The zero value is not usable; use New.
type Tree struct {
	tree    *btree.BTreeG[item]
	entries map[uint64]entry
	nextSeq uint64
}

// New creates an empty ranking tree.
func New() *Tree {
	return &Tree{
		tree:    btree.NewG(32, less),
		entries: make(map[uint64]entry),
	}
}

// Insert adds id at score 0. It is a no-op (returns false) if id is
// already present.
func (t *Tree) Insert(id uint64) bool {
	if _, ok := t.entries[id]; ok {
		return false
	}
	seq := t.nextSeq
	t.nextSeq++
	t.entries[id] = entry{score: 0, seq: seq}
	t.tree.ReplaceOrInsert(item{score: 0, seq: seq, id: id})
	return true
}

// Remove deletes id if present, returning its prior score and whether it
// was present.
func (t *Tree) Remove(id uint64) (score int, ok bool) {
	e, present := t.entries[id]
	if !present {
		return 0, false
	}
	delete(t.entries, id)
	t.tree.Delete(item{score: e.score, seq: e.seq, id: id})
	return e.score, true
}

// IncrementByOne increases id's score by one and returns the new score.
// ok is false if id is absent (the increment is not applied).
func (t *Tree) IncrementByOne(id uint64) (newScore int, ok bool) {
	e, present := t.entries[id]
	if !present {
		return 0, false
	}
	t.tree.Delete(item{score: e.score, seq: e.seq, id: id})
	e.score++
	t.entries[id] = e
	t.tree.ReplaceOrInsert(item{score: e.score, seq: e.seq, id: id})
	return e.score, true
}

// Score returns id's current score and whether it is present.
func (t *Tree) Score(id uint64) (int, bool) {
	e, ok := t.entries[id]
	if !ok {
		return 0, false
	}
	return e.score, true
}

// Contains reports whether id is present in the tree.
func (t *Tree) Contains(id uint64) bool {
	_, ok := t.entries[id]
	return ok
}

// Len returns the number of ids currently tracked.
func (t *Tree) Len() int {
	return len(t.entries)
}

// ExtractTop returns up to n ids in descending-score order, ties broken
// by insertion order (earliest first). n <= 0 returns an empty slice.
func (t *Tree) ExtractTop(n int) []uint64 {
	if n <= 0 {
		return nil
	}
	out := make([]uint64, 0, n)
	t.tree.Ascend(func(it item) bool {
		out = append(out, it.id)
		return len(out) < n
	})
	return out
}

// ExtractTopSet is ExtractTop as a set, convenient for the "top_users ==
// extract_top(N) as a set" invariant checks in the read API.
func (t *Tree) ExtractTopSet(n int) map[uint64]struct{} {
	ids := t.ExtractTop(n)
	set := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
