package ledgerevents

import (
	"sort"

	"github.com/n3phtys/rustixbl/internal/ranktree"
)

func newRankTree() *ranktree.Tree { return ranktree.New() }

func sortUint64s(ids []uint64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
