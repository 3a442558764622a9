// Package cfg contains everything relevant for representing a program's
// control-flow graph. The graph's nodes are basic block identifiers and the
// edges are derived from block terminators: one edge per unconditional
// branch, two per conditional branch.
//
// The graph is restricted to the live block set. By default this is the
// weakly-connected component containing the entry block, that is, blocks
// with no path to or from the entry are discarded but blocks which only
// lead into the entry's component are kept. See LiveForward for the strict
// alternative.
//
// A CFG is a read-only view. The blocks it refers to are owned by whoever
// formed it, and later SSA construction mutates their instruction lists in
// place without changing any edges.
//
package cfg

import (
	"sort"

	"github.com/susji/minissa/ir"
)

type BranchKind int

const (
	BK_INVALID BranchKind = iota
	BK_ALWAYS
	BK_TRUE
	BK_FALSE
)

var branchkindnames = [...]string{
	"invalid",
	"always",
	"true",
	"false",
}

func (bk BranchKind) String() string {
	return branchkindnames[bk]
}

// Edge is a single directed connection between two blocks. Edges from a
// conditional branch are labeled with the branch outcome.
type Edge struct {
	From, To ir.BlockId
	Kind     BranchKind
}

// CFG represents the control-flow paths of a single flat block set.
type CFG struct {
	blocks   map[ir.BlockId]*ir.Block
	nodes    []ir.BlockId
	edges    []Edge
	succs    map[ir.BlockId][]ir.BlockId
	preds    map[ir.BlockId][]ir.BlockId
	liveness Liveness
}

// Nodes returns the live block identifiers in ascending order.
func (c *CFG) Nodes() []ir.BlockId {
	return append([]ir.BlockId{}, c.nodes...)
}

// Blocks returns the live blocks in ascending order of id.
func (c *CFG) Blocks() ir.Blocks {
	ret := make(ir.Blocks, len(c.nodes))
	for i, id := range c.nodes {
		ret[i] = c.blocks[id]
	}
	return ret
}

func (c *CFG) Block(id ir.BlockId) *ir.Block {
	return c.blocks[id]
}

func (c *CFG) Has(id ir.BlockId) bool {
	_, ok := c.blocks[id]
	return ok
}

// Entry returns the entry block.
func (c *CFG) Entry() *ir.Block {
	return c.blocks[ir.Entry]
}

// Succs returns the distinct successors of id in terminator order.
func (c *CFG) Succs(id ir.BlockId) []ir.BlockId {
	return c.succs[id]
}

// Preds returns the distinct predecessors of id sorted ascending.
func (c *CFG) Preds(id ir.BlockId) []ir.BlockId {
	return c.preds[id]
}

// Edges returns all live edges. Two edges may connect the same pair of
// blocks if both outcomes of a conditional branch lead to the same place.
func (c *CFG) Edges() []Edge {
	return append([]Edge{}, c.edges...)
}

// PredIndex returns the position of pred in the sorted predecessor list of
// of.
func (c *CFG) PredIndex(pred, of ir.BlockId) (int, bool) {
	preds := c.preds[of]
	i := sort.Search(len(preds), func(i int) bool { return preds[i] >= pred })
	if i < len(preds) && preds[i] == pred {
		return i, true
	}
	return -1, false
}

func (c *CFG) Liveness() Liveness {
	return c.liveness
}
