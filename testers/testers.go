// Package testers contains the fixtures shared by the package tests: source
// programs lowered into blocks, hand-built blocks for the classic shapes, and
// helpers to take them through construction.
package testers

import (
	"context"
	"testing"

	"github.com/susji/minissa/analyze"
	"github.com/susji/minissa/ir"
	"github.com/susji/minissa/lex"
	"github.com/susji/minissa/parse"
	"github.com/susji/minissa/ssa"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

// TB is the part of testing.TB that both *testing.T and *rapid.T provide.
type TB interface {
	Helper()
	Log(args ...any)
	Fatal(args ...any)
	Fail()
	FailNow()
}

// Blocks lowers code and fails the test on any lexing, parsing or contract
// error.
func Blocks(t TB, code string) ir.Blocks {
	t.Helper()
	toks, lexerrs := lex.Lex([]rune(code))
	assert.Assert(t, is.Len(lexerrs, 0))
	p := parse.New()
	if err := p.Parse(toks); err != nil {
		for _, perr := range p.Errors() {
			t.Log("parse:", perr)
		}
		t.Fatal(err)
	}
	aerrs := analyze.New(p.Fn()).Analyze(p.Blocks())
	assert.Assert(t, is.Len(aerrs, 0))
	return p.Blocks()
}

// Build constructs and verifies the SSA form of blocks.
func Build(t *testing.T, blocks ir.Blocks, opts ...ssa.Option) *ssa.SSA {
	t.Helper()
	opts = append([]ssa.Option{ssa.WithVerify(true)}, opts...)
	s, err := ssa.Build(context.Background(), blocks, opts...)
	assert.NilError(t, err)
	t.Logf("SSA:\n%s", s.Dump())
	return s
}

func v(name string) *ir.Variable {
	return ir.NewVariable(ir.Name(name))
}

func tmp(name string) *ir.Variable {
	return ir.NewTemp(ir.Name(name))
}

func block(id ir.BlockId, insts ...ir.Instruction) *ir.Block {
	return &ir.Block{Id: id, Instructions: insts}
}

// Diamond branches from block 0 to blocks 1 and 2, which store 1 and 2 into
// a respectively, and merge in block 3 returning a.
func Diamond() ir.Blocks {
	return ir.Blocks{
		block(0,
			&ir.Alloca{Name: "a"},
			&ir.CondBranch{Cond: ir.Const{Value: 1}, Then: 1, Else: 2}),
		block(1,
			&ir.Store{From: ir.Const{Value: 1}, To: v("a")},
			&ir.Branch{Target: 3}),
		block(2,
			&ir.Store{From: ir.Const{Value: 2}, To: v("a")},
			&ir.Branch{Target: 3}),
		block(3,
			&ir.Ret{With: v("a")}),
	}
}

// Loop counts i from 0 to 5 with block 1 as the loop header and block 2 as
// the body. It returns 5.
func Loop() ir.Blocks {
	return ir.Blocks{
		block(0,
			&ir.Alloca{Name: "i"},
			&ir.Store{From: ir.Const{Value: 0}, To: v("i")},
			&ir.Branch{Target: 1}),
		block(1,
			&ir.Icmp{Pred: ir.PredLt, Arg1: v("i"), Arg2: ir.Const{Value: 5}, To: tmp("c")},
			&ir.CondBranch{Cond: tmp("c"), Then: 2, Else: 3}),
		block(2,
			&ir.Add{Left: v("i"), Right: ir.Const{Value: 1}, To: tmp("n")},
			&ir.Store{From: tmp("n"), To: v("i")},
			&ir.Branch{Target: 1}),
		block(3,
			&ir.Ret{With: v("i")}),
	}
}

// Straight stores 1 and then 2 into a in one block and returns a.
func Straight() ir.Blocks {
	return ir.Blocks{
		block(0,
			&ir.Alloca{Name: "a"},
			&ir.Store{From: ir.Const{Value: 1}, To: v("a")},
			&ir.Store{From: ir.Const{Value: 2}, To: v("a")},
			&ir.Ret{With: v("a")}),
	}
}

// Nested is a loop with a conditional inside and a second variable which is
// only touched in one branch.
const Nested = `
i = 0
s = 0
while i < 10 do
	if i > 4 then
		s = s + i
	else
		t = i * 2
	end
	i = i + 1
end
return s
`

// Programs maps a name to a source program and the value it returns.
var Programs = map[string]struct {
	Code string
	Want int64
}{
	"straight": {"a = 1\na = a + 2\nreturn a\n", 3},
	"diamond": {`
c = 3
if c > 2 then
	a = 10
else
	a = 20
end
return a
`, 10},
	"loop": {`
i = 0
while i < 5 do
	i = i + 1
end
return i
`, 5},
	"nested": {Nested, 35},
	"factorial": {`
n = 6
r = 1
while n > 1 do
	r = r * n
	n = n - 1
end
return r
`, 720},
	"early return": {`
x = 7
if x >= 7 then
	return x
end
x = 0
return x
`, 7},
	"nested loops": {`
i = 0
s = 0
while i < 3 do
	j = 0
	while j < 4 do
		s = s + 1
		j = j + 1
	end
	i = i + 1
end
return s
`, 12},
}
