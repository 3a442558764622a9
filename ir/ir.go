// Package ir contains the full description of a program's intermediate
// representation. A program is a flat set of basic blocks, each being an
// ordered list of instructions, where the last instruction may be a
// terminator which names the successor blocks.
//
// We mostly ape a subset of the LLVM IR approach here: named storage
// locations are written with STORE and read by plain use, intermediate
// results live in single-assignment temporaries. Before SSA construction
// variables are Unversioned. After construction, every (name, version) pair
// is defined exactly once.
//
package ir

import "fmt"

type BlockId int

// Entry is always the first block to be executed.
const Entry BlockId = 0

const (
	// Undefined is the version given to uses which have no reaching
	// definition.
	Undefined = -1
	// Unversioned marks variables which have not been renamed yet.
	Unversioned = -2
)

type Opcode int

const (
	OpAlloca Opcode = iota
	OpLoad
	OpStore
	OpBranch
	OpCondBranch
	OpIcmp
	OpAdd
	OpSub
	OpMul
	OpRet
	OpPhi
)

var opnames = [...]string{
	"alloca",
	"load",
	"store",
	"branch",
	"condbranch",
	"icmp",
	"add",
	"sub",
	"mul",
	"ret",
	"phi",
}

func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opnames) {
		return fmt.Sprintf("opcode(%d)", int(op))
	}
	return opnames[op]
}

// Instruction is a closed sum type: only the types of this package implement
// it.
type Instruction interface {
	String() string
	Op() Opcode
	// Operands returns the addressable use slots of the instruction.
	// Destinations and phi sources are never included.
	Operands() []*Value
	// Dest returns the variable written by the instruction, if any.
	Dest() *Variable
	instruction()
}

// Terminator is an instruction which ends a basic block.
type Terminator interface {
	Instruction
	Targets() []BlockId
}

type Value interface {
	String() string
	IsValue()
}

// Name identifies a storage location regardless of its version.
type Name string

// Variable identifies an SSA value.
type Variable struct {
	Name    Name
	Version int
	Temp    bool
}

type Const struct {
	Value int64
}

type Alloca struct {
	Name Name
}

type Load struct {
	From Value
	To   *Variable
}

type Store struct {
	From Value
	To   *Variable
}

type Branch struct {
	Target BlockId
}

type CondBranch struct {
	Cond       Value
	Then, Else BlockId
}

type Pred int

const (
	PredGt Pred = iota
	PredLt
	PredGe
	PredLe
	PredEq
	PredNe
)

var prednames = [...]string{">", "<", ">=", "<=", "==", "!="}

func (p Pred) String() string {
	return prednames[p]
}

// Eval compares a and b.
func (p Pred) Eval(a, b int64) bool {
	switch p {
	case PredGt:
		return a > b
	case PredLt:
		return a < b
	case PredGe:
		return a >= b
	case PredLe:
		return a <= b
	case PredEq:
		return a == b
	case PredNe:
		return a != b
	}
	panic(fmt.Sprintf("unknown predicate %d", int(p)))
}

type Icmp struct {
	Pred       Pred
	Arg1, Arg2 Value
	To         *Variable
}

type Add struct {
	Left, Right Value
	To          *Variable
}

type Sub struct {
	Left, Right Value
	To          *Variable
}

type Mul struct {
	Left, Right Value
	To          *Variable
}

type Ret struct {
	With Value
}

// Phi selects From[i] when control arrives from the i'th predecessor, the
// predecessors being sorted by ascending block id. Slots are nil until
// renaming fills them.
type Phi struct {
	To   *Variable
	From []*Variable
}

func NewVariable(name Name) *Variable {
	return &Variable{Name: name, Version: Unversioned}
}

func NewTemp(name Name) *Variable {
	return &Variable{Name: name, Version: Unversioned, Temp: true}
}

// Location returns the storage location of the variable.
func (v *Variable) Location() Name {
	return v.Name
}

// SameLocation reports whether v and o refer to the same storage location.
func (v *Variable) SameLocation(o *Variable) bool {
	return v != nil && o != nil && v.Name == o.Name
}

// SameValue reports whether v and o denote the same SSA value.
func (v *Variable) SameValue(o *Variable) bool {
	return v.SameLocation(o) && v.Version == o.Version && v.Temp == o.Temp
}

func (v *Variable) String() string {
	if v.Temp || v.Version == Unversioned {
		return fmt.Sprintf("%%%s", v.Name)
	}
	if v.Version == Undefined {
		return fmt.Sprintf("%%%s_undef", v.Name)
	}
	return fmt.Sprintf("%%%s_%d", v.Name, v.Version)
}

func (c Const) String() string {
	return fmt.Sprintf("%d", c.Value)
}

func (v *Variable) IsValue() {}
func (c Const) IsValue()     {}

// AsVariable returns the variable behind v, if any.
func AsVariable(v Value) (*Variable, bool) {
	ret, ok := v.(*Variable)
	return ret, ok && ret != nil
}
