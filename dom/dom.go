// Package dom implements the dominance analyses needed for SSA construction:
// the dominator tree, the dominance frontier, and the classification of back
// edges and loop headers.
//
// All analyses are computed on a *cfg.CFG and are read-only once built.
// Blocks which are part of the live set but cannot be reached from the entry
// get no immediate dominator. Such a block dominates only itself, and it is
// dominated only by itself.
package dom

import (
	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/ir"
)

// Tree is the dominator tree of a CFG, rooted at the entry block.
type Tree struct {
	idom     map[ir.BlockId]ir.BlockId
	children map[ir.BlockId][]ir.BlockId
	rpo      []ir.BlockId
	rponum   map[ir.BlockId]int
}

// reversePostOrder returns the blocks reachable from the entry in reverse
// post-order.
func reversePostOrder(c *cfg.CFG) []ir.BlockId {
	type frame struct {
		id   ir.BlockId
		next int
	}
	visited := map[ir.BlockId]bool{ir.Entry: true}
	stack := []frame{{id: ir.Entry}}
	var post []ir.BlockId
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := c.Succs(top.id)
		if top.next == len(succs) {
			post = append(post, top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		succ := succs[top.next]
		top.next++
		if !visited[succ] {
			visited[succ] = true
			stack = append(stack, frame{id: succ})
		}
	}
	for i, j := 0, len(post)-1; i < j; i, j = i+1, j-1 {
		post[i], post[j] = post[j], post[i]
	}
	return post
}

// Compute builds the dominator tree using Cooper, Harvey, and Kennedy's "A
// Simple, Fast Dominance Algorithm".
func Compute(c *cfg.CFG) *Tree {
	t := &Tree{
		idom:     map[ir.BlockId]ir.BlockId{},
		children: map[ir.BlockId][]ir.BlockId{},
		rpo:      reversePostOrder(c),
		rponum:   map[ir.BlockId]int{},
	}
	for i, id := range t.rpo {
		t.rponum[id] = i
	}

	intersect := func(b1, b2 ir.BlockId) ir.BlockId {
		for b1 != b2 {
			for t.rponum[b1] > t.rponum[b2] {
				b1 = t.idom[b1]
			}
			for t.rponum[b2] > t.rponum[b1] {
				b2 = t.idom[b2]
			}
		}
		return b1
	}

	// The entry is its own dominator while iterating.
	t.idom[ir.Entry] = ir.Entry
	for changed := true; changed; {
		changed = false
		for _, b := range t.rpo[1:] {
			var newidom ir.BlockId
			found := false
			for _, p := range c.Preds(b) {
				// Predecessors not yet processed, or not reachable at all,
				// have no idom yet.
				if _, ok := t.idom[p]; !ok {
					continue
				}
				if !found {
					newidom, found = p, true
					continue
				}
				newidom = intersect(p, newidom)
			}
			if !found {
				continue
			}
			if cur, ok := t.idom[b]; !ok || cur != newidom {
				t.idom[b] = newidom
				changed = true
			}
		}
	}
	delete(t.idom, ir.Entry)

	for _, b := range t.rpo {
		if p, ok := t.idom[b]; ok {
			t.children[p] = append(t.children[p], b)
		}
	}
	for p := range t.children {
		ir.SortIds(t.children[p])
	}
	return t
}

// Idom returns the immediate dominator of b. The entry and blocks not
// reachable from the entry have none.
func (t *Tree) Idom(b ir.BlockId) (ir.BlockId, bool) {
	ret, ok := t.idom[b]
	return ret, ok
}

// Children returns the blocks immediately dominated by b, sorted.
func (t *Tree) Children(b ir.BlockId) []ir.BlockId {
	return t.children[b]
}

// Reachable reports whether b is part of the tree.
func (t *Tree) Reachable(b ir.BlockId) bool {
	_, ok := t.rponum[b]
	return ok
}

// ReversePostOrder returns the tree's blocks in CFG reverse post-order.
func (t *Tree) ReversePostOrder() []ir.BlockId {
	return append([]ir.BlockId{}, t.rpo...)
}

// Dominates reports whether every path from the entry to b passes through
// a. Every block dominates itself.
func (t *Tree) Dominates(a, b ir.BlockId) bool {
	if a == b {
		return true
	}
	if !t.Reachable(a) || !t.Reachable(b) {
		return false
	}
	for cur, ok := t.idom[b]; ok; cur, ok = t.idom[cur] {
		if cur == a {
			return true
		}
	}
	return false
}

func (t *Tree) StrictlyDominates(a, b ir.BlockId) bool {
	return a != b && t.Dominates(a, b)
}
