package dom

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/ir"
)

// Frontier maps every live block to its dominance frontier.
type Frontier map[ir.BlockId]mapset.Set[ir.BlockId]

func newFrontier(c *cfg.CFG) Frontier {
	df := Frontier{}
	for _, id := range c.Nodes() {
		df[id] = mapset.NewThreadUnsafeSet[ir.BlockId]()
	}
	return df
}

// ComputeFrontier evaluates
//
//	DF(x) = { y in succ(x) : x does not strictly dominate y }
//	      + { y in DF(z) : z child of x, x does not strictly dominate y }
//
// until no set grows anymore. The sets only grow and are bounded by the
// node count, so this terminates.
func ComputeFrontier(c *cfg.CFG, t *Tree) Frontier {
	df := newFrontier(c)
	nodes := c.Nodes()
	for changed := true; changed; {
		changed = false
		for _, x := range nodes {
			for _, y := range c.Succs(x) {
				if !t.StrictlyDominates(x, y) && df[x].Add(y) {
					changed = true
				}
			}
			for _, z := range t.Children(x) {
				for _, y := range df[z].ToSlice() {
					if !t.StrictlyDominates(x, y) && df[x].Add(y) {
						changed = true
					}
				}
			}
		}
	}
	return df
}

// DirectFrontier computes the frontier straight from its definition: y is
// in DF(x) iff x dominates some predecessor of y and x does not strictly
// dominate y. It is quadratic and meant for validating ComputeFrontier.
func DirectFrontier(c *cfg.CFG, t *Tree) Frontier {
	df := newFrontier(c)
	nodes := c.Nodes()
	for _, y := range nodes {
		for _, p := range c.Preds(y) {
			for _, x := range nodes {
				if t.Dominates(x, p) && !t.StrictlyDominates(x, y) {
					df[x].Add(y)
				}
			}
		}
	}
	return df
}

// Of returns the frontier of b, sorted.
func (df Frontier) Of(b ir.BlockId) []ir.BlockId {
	set, ok := df[b]
	if !ok {
		return nil
	}
	return ir.SortIds(set.ToSlice())
}

// Iterated returns the iterated dominance frontier of defs, sorted.
func (df Frontier) Iterated(defs []ir.BlockId) []ir.BlockId {
	result := mapset.NewThreadUnsafeSet[ir.BlockId]()
	queued := mapset.NewThreadUnsafeSet[ir.BlockId](defs...)
	work := append([]ir.BlockId{}, defs...)
	for len(work) > 0 {
		b := work[len(work)-1]
		work = work[:len(work)-1]
		set, ok := df[b]
		if !ok {
			continue
		}
		for _, d := range set.ToSlice() {
			result.Add(d)
			if queued.Add(d) {
				work = append(work, d)
			}
		}
	}
	return ir.SortIds(result.ToSlice())
}

// Equal reports whether both frontiers have the same blocks with the same
// sets.
func (df Frontier) Equal(o Frontier) bool {
	if len(df) != len(o) {
		return false
	}
	for b, set := range df {
		other, ok := o[b]
		if !ok || !set.Equal(other) {
			return false
		}
	}
	return true
}
