package cfg

// The code in this file is responsible for building the CFG. We first collect
// the full edge set from every supplied block's terminator, then restrict the
// graph to the live component of the entry block.
//
// Why is the weakly-connected component the default? Consider
//
//     block_0: BR block_1
//     block_1: RET 0
//     block_2: BR block_1      <-- no path from block_0 leads here
//
// block_2 is kept, since it is connected to block_1 when directions are
// ignored. It will never receive an immediate dominator, and later stages
// have to cope with that. Blocks which have no connection at all to the
// entry, like an empty merge block left behind by two returning branches,
// are dropped.

import (
	"fmt"

	"github.com/susji/minissa/ir"
)

type Liveness int

const (
	// LiveWeak keeps the weakly-connected component of the entry.
	LiveWeak Liveness = iota
	// LiveForward keeps only blocks reachable from the entry.
	LiveForward
)

var livenessnames = [...]string{
	"weak",
	"forward",
}

func (l Liveness) String() string {
	return livenessnames[l]
}

func ParseLiveness(s string) (Liveness, error) {
	for i, name := range livenessnames {
		if name == s {
			return Liveness(i), nil
		}
	}
	return LiveWeak, fmt.Errorf("unknown liveness mode %q", s)
}

type options struct {
	liveness Liveness
}

type Option func(*options)

func WithLiveness(l Liveness) Option {
	return func(o *options) {
		o.liveness = l
	}
}

func edgesof(b *ir.Block) []Edge {
	switch t := b.Terminator().(type) {
	case *ir.Branch:
		return []Edge{{From: b.Id, To: t.Target, Kind: BK_ALWAYS}}
	case *ir.CondBranch:
		return []Edge{
			{From: b.Id, To: t.Then, Kind: BK_TRUE},
			{From: b.Id, To: t.Else, Kind: BK_FALSE},
		}
	}
	return nil
}

// walk marks every node reachable from ir.Entry by following next.
func walk(next func(ir.BlockId) []ir.BlockId) memblock {
	mem := newmemblock()
	mem.add(ir.Entry)
	work := []ir.BlockId{ir.Entry}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		for _, n := range next(cur) {
			if mem.add(n) {
				work = append(work, n)
			}
		}
	}
	return mem
}

func appendUnique(ids []ir.BlockId, id ir.BlockId) []ir.BlockId {
	for _, cur := range ids {
		if cur == id {
			return ids
		}
	}
	return append(ids, id)
}

// Form builds the CFG of blocks. The blocks themselves are not copied.
func Form(blocks ir.Blocks, opts ...Option) (*CFG, error) {
	o := options{liveness: LiveWeak}
	for _, opt := range opts {
		opt(&o)
	}

	all := map[ir.BlockId]*ir.Block{}
	for _, b := range blocks {
		if _, ok := all[b.Id]; ok {
			return nil, &MalformedBlockError{Block: b.Id, Wrapped: ErrDuplicateBlock}
		}
		all[b.Id] = b
	}
	if _, ok := all[ir.Entry]; !ok {
		return nil, &MissingEntryError{}
	}

	var edges []Edge
	fwd := map[ir.BlockId][]ir.BlockId{}
	undirected := map[ir.BlockId][]ir.BlockId{}
	for _, b := range blocks.Sorted() {
		for _, e := range edgesof(b) {
			if _, ok := all[e.To]; !ok {
				return nil, &MalformedBlockError{
					Block:   b.Id,
					Target:  e.To,
					Wrapped: ErrUnknownSuccessor,
				}
			}
			edges = append(edges, e)
			fwd[e.From] = append(fwd[e.From], e.To)
			undirected[e.From] = append(undirected[e.From], e.To)
			undirected[e.To] = append(undirected[e.To], e.From)
		}
	}

	var live memblock
	switch o.liveness {
	case LiveForward:
		live = walk(func(id ir.BlockId) []ir.BlockId { return fwd[id] })
	default:
		live = walk(func(id ir.BlockId) []ir.BlockId { return undirected[id] })
	}

	c := &CFG{
		blocks:   map[ir.BlockId]*ir.Block{},
		nodes:    live.sorted(),
		succs:    map[ir.BlockId][]ir.BlockId{},
		preds:    map[ir.BlockId][]ir.BlockId{},
		liveness: o.liveness,
	}
	for _, id := range c.nodes {
		c.blocks[id] = all[id]
	}
	for _, e := range edges {
		if !live.seen(e.From) || !live.seen(e.To) {
			continue
		}
		c.edges = append(c.edges, e)
		c.succs[e.From] = appendUnique(c.succs[e.From], e.To)
		c.preds[e.To] = appendUnique(c.preds[e.To], e.From)
	}
	for id := range c.preds {
		ir.SortIds(c.preds[id])
	}
	return c, nil
}
