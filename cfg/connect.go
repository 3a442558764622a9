package cfg

// The contents of this file are responsible for finding connections between
// nodes in a CFG. "A connection" is a directed path of at least one edge with
// a start and end. As the ends are sought with caller-provided callbacks,
// there should be enough flexibility.

import (
	"github.com/susji/minissa/ir"
)

type BlockCb func(b *ir.Block) bool

func (c *CFG) connect(end BlockCb, from ir.BlockId, mem memblock) bool {
	work := []ir.BlockId{from}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		for _, succ := range c.succs[cur] {
			if end(c.blocks[succ]) {
				return true
			}
			if mem.add(succ) {
				work = append(work, succ)
			}
		}
	}
	return false
}

// Connect reports whether there is a path from the block from to the block
// to.
func (c *CFG) Connect(from, to ir.BlockId) bool {
	if !c.Has(from) || !c.Has(to) {
		return false
	}
	return c.connect(func(b *ir.Block) bool {
		return b.Id == to
	}, from, newmemblock())
}

// ConnectWith is used to determine whether there is at least one path from
// a block matched by start to a block matched by end. If start is nil, it is
// interpreted as the entry block.
func (c *CFG) ConnectWith(start, end BlockCb) bool {
	if end == nil {
		panic("no end cb")
	}
	if start == nil {
		return c.connect(end, ir.Entry, newmemblock())
	}
	for _, id := range c.nodes {
		if start(c.blocks[id]) && c.connect(end, id, newmemblock()) {
			return true
		}
	}
	return false
}
