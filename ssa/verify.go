package ssa

import (
	"errors"

	"github.com/susji/minissa/ir"
)

var ErrUnversioned = errors.New("variable was never renamed")

type site struct {
	block ir.BlockId
	index int
}

type valuekey struct {
	name    ir.Name
	version int
}

// verifier checks the SSA invariants of a renamed block set. Like the
// contract checker, it keeps going after the first failure and collects
// everything it finds.
type verifier struct {
	s    *SSA
	defs map[valuekey]site
	errs []error
}

func (v *verifier) errorf(b ir.BlockId, inst ir.Instruction, err error) {
	v.errs = append(v.errs, &VerifyError{Block: b, Inst: inst, Wrapped: err})
}

func (v *verifier) reachable() ir.Blocks {
	var ret ir.Blocks
	for _, b := range v.s.Blocks() {
		if v.s.tree.Reachable(b.Id) {
			ret = append(ret, b)
		}
	}
	return ret
}

func (v *verifier) collect(blocks ir.Blocks) {
	for _, b := range blocks {
		for i, inst := range b.Instructions {
			d := inst.Dest()
			if d == nil || d.Temp {
				continue
			}
			if d.Version < 0 {
				v.errorf(b.Id, inst, ErrUnversioned)
				continue
			}
			key := valuekey{name: d.Name, version: d.Version}
			if _, ok := v.defs[key]; ok {
				v.errorf(b.Id, inst, ErrRedefined)
				continue
			}
			v.defs[key] = site{block: b.Id, index: i}
		}
	}
}

// lookup finds the definition of use. The second return value is false when
// there is nothing to check.
func (v *verifier) lookup(b ir.BlockId, inst ir.Instruction, use *ir.Variable) (site, bool) {
	switch use.Version {
	case ir.Undefined:
		return site{}, false
	case ir.Unversioned:
		v.errorf(b, inst, ErrUnversioned)
		return site{}, false
	}
	def, ok := v.defs[valuekey{name: use.Name, version: use.Version}]
	if !ok {
		v.errorf(b, inst, ErrNoDefinition)
	}
	return def, ok
}

func (v *verifier) uses(b *ir.Block) {
	for i, inst := range b.Instructions {
		if _, ok := inst.(*ir.Phi); ok {
			continue
		}
		for _, slot := range inst.Operands() {
			use, ok := ir.AsVariable(*slot)
			if !ok || use.Temp {
				continue
			}
			def, ok := v.lookup(b.Id, inst, use)
			if !ok {
				continue
			}
			if def.block == b.Id {
				if def.index >= i {
					v.errorf(b.Id, inst, ErrNotDominated)
				}
			} else if !v.s.tree.Dominates(def.block, b.Id) {
				v.errorf(b.Id, inst, ErrNotDominated)
			}
		}
	}
}

func (v *verifier) phis(b *ir.Block) {
	preds := v.s.cfg.Preds(b.Id)
	for _, phi := range b.Phis() {
		if len(phi.From) != len(preds) {
			v.errorf(b.Id, phi, ErrPhiArity)
			continue
		}
		for j, pred := range preds {
			if !v.s.tree.Reachable(pred) {
				continue
			}
			from := phi.From[j]
			switch {
			case from == nil:
				v.errorf(b.Id, phi, ErrPhiSlotEmpty)
				continue
			case !from.SameLocation(phi.To) || from.Temp:
				v.errorf(b.Id, phi, ErrPhiSlotMismatch)
				continue
			}
			def, ok := v.lookup(b.Id, phi, from)
			if ok && !v.s.tree.Dominates(def.block, pred) {
				v.errorf(b.Id, phi, ErrNotDominated)
			}
		}
	}
}

// Verify checks that a built SSA holds:
//
//   - every (name, version) is defined at most once
//   - every non-phi use is dominated by its definition
//   - every phi has one slot per predecessor, and the slot of a reachable
//     predecessor is defined on that predecessor's path
//
// Uses without a reaching definition are accepted, as are blocks which
// are not reachable from the entry.
func Verify(s *SSA) []error {
	v := &verifier{s: s, defs: map[valuekey]site{}}
	blocks := v.reachable()
	v.collect(blocks)
	for _, b := range blocks {
		v.phis(b)
		v.uses(b)
	}
	return v.errs
}
