package dom

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/ir"
)

type BackEdge struct {
	From, To ir.BlockId
}

// Loops holds the back edges found by a depth-first traversal from the entry
// and the loop headers they induce.
type Loops struct {
	back    []BackEdge
	backset mapset.Set[BackEdge]
	headers mapset.Set[ir.BlockId]
}

// ClassifyLoops walks the CFG depth-first from the entry. An edge (u, v) is
// a back edge iff v is on the active path when u is visited, which includes
// the self-loop u == v.
func ClassifyLoops(c *cfg.CFG) *Loops {
	type frame struct {
		id   ir.BlockId
		next int
	}
	l := &Loops{
		backset: mapset.NewThreadUnsafeSet[BackEdge](),
		headers: mapset.NewThreadUnsafeSet[ir.BlockId](),
	}
	visited := mapset.NewThreadUnsafeSet(ir.Entry)
	onpath := mapset.NewThreadUnsafeSet(ir.Entry)
	stack := []frame{{id: ir.Entry}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := c.Succs(top.id)
		if top.next == len(succs) {
			onpath.Remove(top.id)
			stack = stack[:len(stack)-1]
			continue
		}
		u, v := top.id, succs[top.next]
		top.next++
		if onpath.Contains(v) {
			e := BackEdge{From: u, To: v}
			l.back = append(l.back, e)
			l.backset.Add(e)
			l.headers.Add(v)
			continue
		}
		if visited.Add(v) {
			onpath.Add(v)
			stack = append(stack, frame{id: v})
		}
	}
	sort.Slice(l.back, func(i, j int) bool {
		if l.back[i].From != l.back[j].From {
			return l.back[i].From < l.back[j].From
		}
		return l.back[i].To < l.back[j].To
	})
	return l
}

func (l *Loops) BackEdges() []BackEdge {
	return append([]BackEdge{}, l.back...)
}

func (l *Loops) IsBackEdge(from, to ir.BlockId) bool {
	return l.backset.Contains(BackEdge{From: from, To: to})
}

// Headers returns the targets of all back edges, sorted.
func (l *Loops) Headers() []ir.BlockId {
	return ir.SortIds(l.headers.ToSlice())
}

func (l *Loops) IsHeader(b ir.BlockId) bool {
	return l.headers.Contains(b)
}
