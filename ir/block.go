package ir

import (
	"fmt"
	"sort"
	"strings"
)

// Block is a linear sequence of instructions. Only the last instruction may
// branch.
type Block struct {
	Id           BlockId
	Instructions []Instruction
}

type Blocks []*Block

func NewBlock(id BlockId) *Block {
	return &Block{Id: id}
}

func (b *Block) Append(inst Instruction) {
	b.Instructions = append(b.Instructions, inst)
}

// Terminator returns the last instruction of the block if it ends the block.
func (b *Block) Terminator() Terminator {
	if len(b.Instructions) == 0 {
		return nil
	}
	term, ok := b.Instructions[len(b.Instructions)-1].(Terminator)
	if !ok {
		return nil
	}
	return term
}

// InsertPhi places phi at the head of the block.
func (b *Block) InsertPhi(phi *Phi) {
	b.Instructions = append([]Instruction{phi}, b.Instructions...)
}

// Phis returns the phi instructions of the block in order.
func (b *Block) Phis() []*Phi {
	var ret []*Phi
	for _, inst := range b.Instructions {
		if phi, ok := inst.(*Phi); ok {
			ret = append(ret, phi)
		}
	}
	return ret
}

// PhiFor returns the phi defining name in the block, or nil.
func (b *Block) PhiFor(name Name) *Phi {
	for _, phi := range b.Phis() {
		if phi.To.Name == name {
			return phi
		}
	}
	return nil
}

func (b *Block) String() string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "block_%d:\n", b.Id)
	for _, inst := range b.Instructions {
		fmt.Fprintf(sb, "    %s\n", inst)
	}
	return sb.String()
}

// Lookup returns the block with the given id.
func (bs Blocks) Lookup(id BlockId) (*Block, bool) {
	for _, b := range bs {
		if b.Id == id {
			return b, true
		}
	}
	return nil, false
}

// Sorted returns a copy of the block slice ordered by id.
func (bs Blocks) Sorted() Blocks {
	ret := append(Blocks{}, bs...)
	sort.Slice(ret, func(i, j int) bool { return ret[i].Id < ret[j].Id })
	return ret
}

// Names returns the distinct non-temporary storage locations mentioned
// anywhere in the program, sorted.
func (bs Blocks) Names() []Name {
	seen := map[Name]struct{}{}
	add := func(v *Variable) {
		if v != nil && !v.Temp {
			seen[v.Name] = struct{}{}
		}
	}
	for _, b := range bs {
		for _, inst := range b.Instructions {
			add(inst.Dest())
			for _, op := range inst.Operands() {
				if v, ok := AsVariable(*op); ok {
					add(v)
				}
			}
			if phi, ok := inst.(*Phi); ok {
				for _, from := range phi.From {
					add(from)
				}
			}
		}
	}
	ret := make([]Name, 0, len(seen))
	for name := range seen {
		ret = append(ret, name)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

func (bs Blocks) String() string {
	sb := &strings.Builder{}
	for i, b := range bs.Sorted() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(b.String())
	}
	return sb.String()
}

// SortIds sorts ids ascending in place and returns them.
func SortIds(ids []BlockId) []BlockId {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
