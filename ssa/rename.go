package ssa

// Renaming is done one name at a time. For each name we walk the dominator
// tree depth-first from the entry while maintaining a stack of the versions
// reaching the current point. Definitions push, and leaving a block restores
// the stack to the depth it had when the block was entered. This means that
// sibling subtrees never see each other's definitions.
//
// The walk is iterative so that deep dominator trees do not exhaust the
// goroutine stack.

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/dom"
	"github.com/susji/minissa/ir"
)

type renamer struct {
	c     *cfg.CFG
	t     *dom.Tree
	l     *dom.Loops
	name  ir.Name
	next  int
	stack []int
}

func (r *renamer) top() int {
	if len(r.stack) == 0 {
		return ir.Undefined
	}
	return r.stack[len(r.stack)-1]
}

func (r *renamer) push() int {
	v := r.next
	r.next++
	r.stack = append(r.stack, v)
	return v
}

func (r *renamer) version(v int) *ir.Variable {
	return &ir.Variable{Name: r.name, Version: v}
}

func (r *renamer) ours(v *ir.Variable) bool {
	return v != nil && !v.Temp && v.Name == r.name
}

// seed makes the counter start past every version already defined for the
// name. Fresh input starts at zero.
func (r *renamer) seed() {
	r.next = 0
	for _, b := range r.c.Blocks() {
		for _, inst := range b.Instructions {
			switch inst.(type) {
			case *ir.Store, *ir.Phi:
				if d := inst.Dest(); r.ours(d) && d.Version >= r.next {
					r.next = d.Version + 1
				}
			}
		}
	}
}

func (r *renamer) block(b *ir.Block) {
	for _, inst := range b.Instructions {
		if phi, ok := inst.(*ir.Phi); ok {
			if r.ours(phi.To) {
				phi.To = r.version(r.push())
			}
			continue
		}
		for _, slot := range inst.Operands() {
			if v, ok := ir.AsVariable(*slot); ok && r.ours(v) {
				*slot = r.version(r.top())
			}
		}
		if st, ok := inst.(*ir.Store); ok && r.ours(st.To) {
			st.To = r.version(r.push())
		}
	}
}

func (r *renamer) fill(b ir.BlockId) error {
	for _, s := range r.c.Succs(b) {
		for _, phi := range r.c.Block(s).Phis() {
			if !r.ours(phi.To) {
				continue
			}
			j, ok := r.c.PredIndex(b, s)
			if !ok {
				return &InconsistentCfgError{Block: b, Succ: s}
			}
			if j >= len(phi.From) {
				return &InconsistentCfgError{Block: b, Succ: s, Name: r.name}
			}
			phi.From[j] = r.version(r.top())
		}
	}
	return nil
}

func (r *renamer) run() error {
	type frame struct {
		id    ir.BlockId
		depth int
		next  int
	}
	r.seed()
	r.stack = r.stack[:0]
	visited := mapset.NewThreadUnsafeSet[ir.BlockId]()

	enter := func(id ir.BlockId) (frame, error) {
		f := frame{id: id, depth: len(r.stack)}
		visited.Add(id)
		r.block(r.c.Block(id))
		return f, r.fill(id)
	}

	f, err := enter(ir.Entry)
	if err != nil {
		return err
	}
	frames := []frame{f}
	for len(frames) > 0 {
		cur := &frames[len(frames)-1]
		children := r.t.Children(cur.id)
		if cur.next == len(children) {
			r.stack = r.stack[:cur.depth]
			frames = frames[:len(frames)-1]
			continue
		}
		child := children[cur.next]
		cur.next++
		if r.l.IsHeader(child) && visited.Contains(child) {
			continue
		}
		f, err := enter(child)
		if err != nil {
			return err
		}
		frames = append(frames, f)
	}
	return nil
}

// Rename assigns versions to every non-temporary name of the live blocks,
// which must have their phis placed already. Blocks not reachable from the
// entry are left untouched.
//
// Rename is not idempotent: running it again over renamed blocks defines
// new versions for every name.
func Rename(c *cfg.CFG, t *dom.Tree, l *dom.Loops) error {
	r := &renamer{c: c, t: t, l: l}
	for _, name := range c.Blocks().Names() {
		r.name = name
		if err := r.run(); err != nil {
			return err
		}
	}
	return nil
}
