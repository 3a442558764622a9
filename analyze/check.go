package analyze

import (
	"github.com/susji/minissa/ir"
)

func (s *Analyzer) checkBlock(b *ir.Block) {
	last := len(b.Instructions) - 1
	for i, inst := range b.Instructions {
		if inst == nil {
			s.errorf(b.Id, i, "%w: nil instruction", ErrNilOperand)
			continue
		}
		if _, ok := inst.(ir.Terminator); ok && i != last {
			s.errorf(b.Id, i, "%w: %s", ErrTerminatorNotLast, inst)
		}
		switch t := inst.(type) {
		case *ir.Phi:
			s.errorf(b.Id, i, "%w: %s", ErrPhiInInput, inst)
			continue
		case *ir.Store:
			s.checkStore(b.Id, i, t)
		case *ir.Load, *ir.Icmp, *ir.Add, *ir.Sub, *ir.Mul:
			s.checkTempDef(b.Id, i, inst)
		}
		s.checkOperands(b.Id, i, inst)
	}
}

func (s *Analyzer) checkVersion(b ir.BlockId, i int, v *ir.Variable) {
	if v.Version != ir.Unversioned {
		s.errorf(b, i, "%w: %s", ErrAlreadyVersioned, v)
	}
}

func (s *Analyzer) checkStore(b ir.BlockId, i int, st *ir.Store) {
	if st.To == nil {
		s.errorf(b, i, "%w: store destination", ErrNilOperand)
		return
	}
	if st.To.Temp {
		s.errorf(b, i, "%w: %s", ErrStoreToTemp, st)
		return
	}
	s.checkVersion(b, i, st.To)
}

func (s *Analyzer) checkTempDef(b ir.BlockId, i int, inst ir.Instruction) {
	to := inst.Dest()
	switch {
	case to == nil:
		s.errorf(b, i, "%w: destination of %s", ErrNilOperand, inst.Op())
	case !to.Temp:
		s.errorf(b, i, "%w: %s", ErrDestNotTemp, inst)
	default:
		if prev, ok := s.temps[to.Name]; ok {
			s.errorf(b, i, "%w: %s, first in block %d", ErrTempRedefined, to, prev)
			return
		}
		s.temps[to.Name] = b
	}
}

func (s *Analyzer) checkOperands(b ir.BlockId, i int, inst ir.Instruction) {
	for _, slot := range inst.Operands() {
		if *slot == nil {
			s.errorf(b, i, "%w: operand of %s", ErrNilOperand, inst.Op())
			continue
		}
		v, ok := (*slot).(*ir.Variable)
		if !ok {
			continue
		}
		if v == nil {
			s.errorf(b, i, "%w: operand of %s", ErrNilOperand, inst.Op())
			continue
		}
		if v.Temp {
			s.uses = append(s.uses, tempUse{block: b, index: i, name: v.Name})
			continue
		}
		s.checkVersion(b, i, v)
	}
}

func (s *Analyzer) checkTempUses() {
	for _, use := range s.uses {
		if _, ok := s.temps[use.name]; !ok {
			s.errorf(use.block, use.index, "%w: %%%s", ErrTempUndefined, use.name)
		}
	}
}
