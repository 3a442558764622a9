package ir

import "fmt"

// Clone returns a deep copy of the block set. No Variable is shared between
// the original and the copy.
func (bs Blocks) Clone() Blocks {
	ret := make(Blocks, len(bs))
	for i, b := range bs {
		ret[i] = b.Clone()
	}
	return ret
}

func (b *Block) Clone() *Block {
	ret := &Block{Id: b.Id, Instructions: make([]Instruction, len(b.Instructions))}
	for i, inst := range b.Instructions {
		ret.Instructions[i] = CloneInstruction(inst)
	}
	return ret
}

func cloneVar(v *Variable) *Variable {
	if v == nil {
		return nil
	}
	ret := *v
	return &ret
}

func cloneValue(v Value) Value {
	switch t := v.(type) {
	case *Variable:
		return cloneVar(t)
	default:
		return v
	}
}

func CloneInstruction(inst Instruction) Instruction {
	switch t := inst.(type) {
	case *Alloca:
		return &Alloca{Name: t.Name}
	case *Load:
		return &Load{From: cloneValue(t.From), To: cloneVar(t.To)}
	case *Store:
		return &Store{From: cloneValue(t.From), To: cloneVar(t.To)}
	case *Branch:
		return &Branch{Target: t.Target}
	case *CondBranch:
		return &CondBranch{Cond: cloneValue(t.Cond), Then: t.Then, Else: t.Else}
	case *Icmp:
		return &Icmp{Pred: t.Pred, Arg1: cloneValue(t.Arg1), Arg2: cloneValue(t.Arg2), To: cloneVar(t.To)}
	case *Add:
		return &Add{Left: cloneValue(t.Left), Right: cloneValue(t.Right), To: cloneVar(t.To)}
	case *Sub:
		return &Sub{Left: cloneValue(t.Left), Right: cloneValue(t.Right), To: cloneVar(t.To)}
	case *Mul:
		return &Mul{Left: cloneValue(t.Left), Right: cloneValue(t.Right), To: cloneVar(t.To)}
	case *Ret:
		return &Ret{With: cloneValue(t.With)}
	case *Phi:
		from := make([]*Variable, len(t.From))
		for i, v := range t.From {
			from[i] = cloneVar(v)
		}
		return &Phi{To: cloneVar(t.To), From: from}
	}
	panic(fmt.Sprintf("unknown instruction: %T", inst))
}
