package ir

import (
	"fmt"
	"strings"
)

func (i *Alloca) Op() Opcode     { return OpAlloca }
func (i *Load) Op() Opcode       { return OpLoad }
func (i *Store) Op() Opcode      { return OpStore }
func (i *Branch) Op() Opcode     { return OpBranch }
func (i *CondBranch) Op() Opcode { return OpCondBranch }
func (i *Icmp) Op() Opcode       { return OpIcmp }
func (i *Add) Op() Opcode        { return OpAdd }
func (i *Sub) Op() Opcode        { return OpSub }
func (i *Mul) Op() Opcode        { return OpMul }
func (i *Ret) Op() Opcode        { return OpRet }
func (i *Phi) Op() Opcode        { return OpPhi }

func (i *Alloca) Operands() []*Value     { return nil }
func (i *Load) Operands() []*Value       { return []*Value{&i.From} }
func (i *Store) Operands() []*Value      { return []*Value{&i.From} }
func (i *Branch) Operands() []*Value     { return nil }
func (i *CondBranch) Operands() []*Value { return []*Value{&i.Cond} }
func (i *Icmp) Operands() []*Value       { return []*Value{&i.Arg1, &i.Arg2} }
func (i *Add) Operands() []*Value        { return []*Value{&i.Left, &i.Right} }
func (i *Sub) Operands() []*Value        { return []*Value{&i.Left, &i.Right} }
func (i *Mul) Operands() []*Value        { return []*Value{&i.Left, &i.Right} }
func (i *Ret) Operands() []*Value        { return []*Value{&i.With} }
func (i *Phi) Operands() []*Value        { return nil }

func (i *Alloca) Dest() *Variable     { return nil }
func (i *Load) Dest() *Variable       { return i.To }
func (i *Store) Dest() *Variable      { return i.To }
func (i *Branch) Dest() *Variable     { return nil }
func (i *CondBranch) Dest() *Variable { return nil }
func (i *Icmp) Dest() *Variable       { return i.To }
func (i *Add) Dest() *Variable        { return i.To }
func (i *Sub) Dest() *Variable        { return i.To }
func (i *Mul) Dest() *Variable        { return i.To }
func (i *Ret) Dest() *Variable        { return nil }
func (i *Phi) Dest() *Variable        { return i.To }

func (i *Branch) Targets() []BlockId     { return []BlockId{i.Target} }
func (i *CondBranch) Targets() []BlockId { return []BlockId{i.Then, i.Else} }
func (i *Ret) Targets() []BlockId        { return nil }

func (i *Alloca) instruction()     {}
func (i *Load) instruction()       {}
func (i *Store) instruction()      {}
func (i *Branch) instruction()     {}
func (i *CondBranch) instruction() {}
func (i *Icmp) instruction()       {}
func (i *Add) instruction()        {}
func (i *Sub) instruction()        {}
func (i *Mul) instruction()        {}
func (i *Ret) instruction()        {}
func (i *Phi) instruction()        {}

func (i *Alloca) String() string {
	return fmt.Sprintf("ALLOCA %s", i.Name)
}

func (i *Load) String() string {
	return fmt.Sprintf("%s = LOAD %s", i.To, i.From)
}

func (i *Store) String() string {
	return fmt.Sprintf("STORE %s, %s", i.From, i.To)
}

func (i *Branch) String() string {
	return fmt.Sprintf("BR block_%d", i.Target)
}

func (i *CondBranch) String() string {
	return fmt.Sprintf("CONDBR %s, block_%d, block_%d", i.Cond, i.Then, i.Else)
}

func (i *Icmp) String() string {
	return fmt.Sprintf("%s = ICMP %s %s %s", i.To, i.Arg1, i.Pred, i.Arg2)
}

func (i *Add) String() string {
	return fmt.Sprintf("%s = ADD %s, %s", i.To, i.Left, i.Right)
}

func (i *Sub) String() string {
	return fmt.Sprintf("%s = SUB %s, %s", i.To, i.Left, i.Right)
}

func (i *Mul) String() string {
	return fmt.Sprintf("%s = MUL %s, %s", i.To, i.Left, i.Right)
}

func (i *Ret) String() string {
	return fmt.Sprintf("RET %s", i.With)
}

func (i *Phi) String() string {
	from := make([]string, len(i.From))
	for j, v := range i.From {
		if v == nil {
			from[j] = "?"
		} else {
			from[j] = v.String()
		}
	}
	return fmt.Sprintf("%s = PHI [%s]", i.To, strings.Join(from, ", "))
}

// NewPhi returns a phi for name with n empty source slots.
func NewPhi(name Name, n int) *Phi {
	return &Phi{To: NewVariable(name), From: make([]*Variable, n)}
}
