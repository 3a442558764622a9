package cfg

// These are used to memoize graph traversal to break loops.

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/susji/minissa/ir"
)

type memblock struct {
	set mapset.Set[ir.BlockId]
}

func newmemblock() memblock {
	return memblock{set: mapset.NewThreadUnsafeSet[ir.BlockId]()}
}

func (mb memblock) add(id ir.BlockId) bool {
	return mb.set.Add(id)
}

func (mb memblock) seen(id ir.BlockId) bool {
	return mb.set.Contains(id)
}

func (mb memblock) sorted() []ir.BlockId {
	return ir.SortIds(mb.set.ToSlice())
}
