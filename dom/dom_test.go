package dom_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/dom"
	"github.com/susji/minissa/ir"
	"github.com/susji/minissa/testers"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"pgregory.net/rapid"
)

func ids(ids ...ir.BlockId) []ir.BlockId {
	return ids
}

type fataler interface {
	Fatal(args ...any)
}

func form(t fataler, blocks ir.Blocks, opts ...cfg.Option) (*cfg.CFG, *dom.Tree) {
	c, err := cfg.Form(blocks, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return c, dom.Compute(c)
}

func block(id ir.BlockId, term ir.Instruction) *ir.Block {
	return &ir.Block{Id: id, Instructions: []ir.Instruction{term}}
}

func br(dest ir.BlockId) ir.Instruction {
	return &ir.Branch{Target: dest}
}

func condbr(then, els ir.BlockId) ir.Instruction {
	return &ir.CondBranch{Cond: ir.Const{Value: 1}, Then: then, Else: els}
}

func ret() ir.Instruction {
	return &ir.Ret{With: ir.Const{Value: 0}}
}

func idom(t *testing.T, tree *dom.Tree, b ir.BlockId) ir.BlockId {
	t.Helper()
	ret, ok := tree.Idom(b)
	assert.Assert(t, ok, "block %d has no idom", b)
	return ret
}

func TestDiamond(t *testing.T) {
	c, tree := form(t, testers.Diamond())
	_, ok := tree.Idom(ir.Entry)
	assert.Assert(t, !ok)
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 1))
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 2))
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 3))
	assert.DeepEqual(t, ids(1, 2, 3), tree.Children(0))
	assert.Assert(t, tree.Dominates(0, 3))
	assert.Assert(t, !tree.Dominates(1, 3))
	assert.Assert(t, tree.Dominates(3, 3))
	assert.Assert(t, !tree.StrictlyDominates(3, 3))

	df := dom.ComputeFrontier(c, tree)
	assert.DeepEqual(t, ids(3), df.Of(1))
	assert.DeepEqual(t, ids(3), df.Of(2))
	assert.Assert(t, is.Len(df.Of(0), 0))
	assert.Assert(t, is.Len(df.Of(3), 0))
	assert.DeepEqual(t, ids(3), df.Iterated(ids(1, 2)))
}

func TestLoop(t *testing.T) {
	c, tree := form(t, testers.Loop())
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 1))
	assert.Equal(t, ir.BlockId(1), idom(t, tree, 2))
	assert.Equal(t, ir.BlockId(1), idom(t, tree, 3))
	assert.DeepEqual(t, ids(2, 3), tree.Children(1))

	df := dom.ComputeFrontier(c, tree)
	assert.DeepEqual(t, ids(1), df.Of(1))
	assert.DeepEqual(t, ids(1), df.Of(2))
	assert.Assert(t, is.Len(df.Of(3), 0))
	assert.Assert(t, df.Equal(dom.DirectFrontier(c, tree)))

	loops := dom.ClassifyLoops(c)
	assert.DeepEqual(t, []dom.BackEdge{{From: 2, To: 1}}, loops.BackEdges())
	assert.Assert(t, loops.IsBackEdge(2, 1))
	assert.Assert(t, !loops.IsBackEdge(1, 2))
	assert.DeepEqual(t, ids(1), loops.Headers())
	assert.Assert(t, loops.IsHeader(1))
	assert.Assert(t, !loops.IsHeader(0))
}

func TestLinear(t *testing.T) {
	c, tree := form(t, ir.Blocks{
		block(0, br(1)),
		block(1, br(2)),
		block(2, ret()),
	})
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 1))
	assert.Equal(t, ir.BlockId(1), idom(t, tree, 2))
	assert.DeepEqual(t, ids(0, 1, 2), tree.ReversePostOrder())
	df := dom.ComputeFrontier(c, tree)
	for _, b := range c.Nodes() {
		assert.Assert(t, is.Len(df.Of(b), 0))
	}
	assert.Assert(t, is.Len(dom.ClassifyLoops(c).BackEdges(), 0))
}

func TestSelfLoops(t *testing.T) {
	c, tree := form(t, ir.Blocks{
		block(0, br(1)),
		block(1, condbr(1, 2)),
		block(2, ret()),
	})
	loops := dom.ClassifyLoops(c)
	assert.DeepEqual(t, []dom.BackEdge{{From: 1, To: 1}}, loops.BackEdges())
	df := dom.ComputeFrontier(c, tree)
	assert.DeepEqual(t, ids(1), df.Of(1))

	// A loop back into the entry.
	c, tree = form(t, ir.Blocks{
		block(0, br(1)),
		block(1, condbr(0, 2)),
		block(2, ret()),
	})
	loops = dom.ClassifyLoops(c)
	assert.DeepEqual(t, []dom.BackEdge{{From: 1, To: 0}}, loops.BackEdges())
	assert.DeepEqual(t, ids(0), loops.Headers())
	df = dom.ComputeFrontier(c, tree)
	assert.DeepEqual(t, ids(0), df.Of(0))
	assert.DeepEqual(t, ids(0), df.Of(1))
	assert.Assert(t, df.Equal(dom.DirectFrontier(c, tree)))
}

func TestIrreducible(t *testing.T) {
	// Both 1 and 2 are entered from outside the cycle between them.
	c, tree := form(t, ir.Blocks{
		block(0, condbr(1, 2)),
		block(1, condbr(2, 3)),
		block(2, br(1)),
		block(3, ret()),
	})
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 1))
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 2))
	assert.Equal(t, ir.BlockId(1), idom(t, tree, 3))
	df := dom.ComputeFrontier(c, tree)
	assert.DeepEqual(t, ids(2), df.Of(1))
	assert.DeepEqual(t, ids(1), df.Of(2))
	assert.Assert(t, df.Equal(dom.DirectFrontier(c, tree)))
	assert.Equal(t, 1, len(dom.ClassifyLoops(c).BackEdges()))
}

func TestWeaklyConnected(t *testing.T) {
	c, tree := form(t, ir.Blocks{
		block(0, br(1)),
		block(1, ret()),
		block(2, br(1)),
	})
	assert.DeepEqual(t, ids(0, 1, 2), c.Nodes())
	assert.Assert(t, !tree.Reachable(2))
	_, ok := tree.Idom(2)
	assert.Assert(t, !ok)
	assert.Assert(t, tree.Dominates(2, 2))
	assert.Assert(t, !tree.Dominates(0, 2))
	assert.Assert(t, !tree.Dominates(2, 1))
	// 1 has two predecessors now, but only one of them is reachable.
	assert.Equal(t, ir.BlockId(0), idom(t, tree, 1))

	df := dom.ComputeFrontier(c, tree)
	assert.DeepEqual(t, ids(1), df.Of(2))
	assert.Assert(t, df.Equal(dom.DirectFrontier(c, tree)))
}

func TestProgramFrontiers(t *testing.T) {
	for name, prog := range testers.Programs {
		t.Run(name, func(t *testing.T) {
			c, tree := form(t, testers.Blocks(t, prog.Code))
			assert.Assert(t, dom.ComputeFrontier(c, tree).Equal(dom.DirectFrontier(c, tree)))
		})
	}
}

func TestDot(t *testing.T) {
	c, tree := form(t, testers.Loop())
	dot := tree.Dot(dom.ComputeFrontier(c, tree))
	assert.Assert(t, strings.HasPrefix(dot, "digraph D {\n"))
	assert.Assert(t, is.Contains(dot, "block_0 -> block_1;"))
	assert.Assert(t, is.Contains(dot, "block_1 -> block_3;"))
	assert.Assert(t, is.Contains(dot, "block_2 -> block_1 [style=dashed];"))
	assert.Assert(t, !strings.Contains(tree.Dot(nil), "dashed"))
}

// randomBlocks draws a block set where every block has a terminator
// targeting existing blocks.
func randomBlocks(t *rapid.T) ir.Blocks {
	n := rapid.IntRange(1, 12).Draw(t, "n")
	target := rapid.IntRange(0, n-1)
	blocks := ir.Blocks{}
	for i := 0; i < n; i++ {
		var term ir.Instruction
		switch rapid.IntRange(0, 2).Draw(t, fmt.Sprintf("kind%d", i)) {
		case 0:
			term = ret()
		case 1:
			term = br(ir.BlockId(target.Draw(t, fmt.Sprintf("dest%d", i))))
		default:
			term = condbr(
				ir.BlockId(target.Draw(t, fmt.Sprintf("then%d", i))),
				ir.BlockId(target.Draw(t, fmt.Sprintf("else%d", i))))
		}
		blocks = append(blocks, block(ir.BlockId(i), term))
	}
	return blocks
}

// reachableWithout returns the blocks reachable from the entry when the
// block without is removed from the graph.
func reachableWithout(c *cfg.CFG, without ir.BlockId) map[ir.BlockId]bool {
	seen := map[ir.BlockId]bool{}
	if without == ir.Entry {
		return seen
	}
	seen[ir.Entry] = true
	work := []ir.BlockId{ir.Entry}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		for _, s := range c.Succs(cur) {
			if s != without && !seen[s] {
				seen[s] = true
				work = append(work, s)
			}
		}
	}
	return seen
}

func TestRandomDominance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		blocks := randomBlocks(t)
		liveness := rapid.SampledFrom([]cfg.Liveness{cfg.LiveWeak, cfg.LiveForward}).Draw(t, "liveness")
		c, tree := form(t, blocks, cfg.WithLiveness(liveness))
		reachable := reachableWithout(c, -1)
		for _, a := range c.Nodes() {
			without := reachableWithout(c, a)
			for _, b := range c.Nodes() {
				want := a == b || (reachable[a] && reachable[b] && !without[b])
				if got := tree.Dominates(a, b); got != want {
					t.Fatalf("Dominates(%d, %d) = %v, want %v", a, b, got, want)
				}
			}
		}
		for _, b := range c.Nodes() {
			p, ok := tree.Idom(b)
			if ok != (reachable[b] && b != ir.Entry) {
				t.Fatalf("block %d: has idom %v, reachable %v", b, ok, reachable[b])
			}
			if ok && !tree.StrictlyDominates(p, b) {
				t.Fatalf("idom %d does not strictly dominate %d", p, b)
			}
		}
		if df, direct := dom.ComputeFrontier(c, tree), dom.DirectFrontier(c, tree); !df.Equal(direct) {
			for _, b := range c.Nodes() {
				t.Logf("block %d: %v vs. %v", b, df.Of(b), direct.Of(b))
			}
			t.Fatalf("frontiers differ")
		}
	})
}

func TestRandomBackEdges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c, tree := form(t, randomBlocks(t))
		loops := dom.ClassifyLoops(c)
		for _, e := range loops.BackEdges() {
			if !loops.IsHeader(e.To) {
				t.Fatalf("%v: target is not a header", e)
			}
			// The target of a back edge always reaches its source.
			if e.From != e.To && !c.Connect(e.To, e.From) {
				t.Fatalf("%v: no path back", e)
			}
			if !tree.Reachable(e.From) {
				t.Fatalf("%v: source unreachable", e)
			}
		}
		// Removing the back edges must leave the reachable graph acyclic.
		for _, b := range c.Nodes() {
			for _, s := range c.Succs(b) {
				if loops.IsBackEdge(b, s) || !tree.Reachable(b) {
					continue
				}
				if s == b {
					t.Fatalf("self loop %d not classified", b)
				}
			}
		}
	})
}
