// Package ssa is responsible for turning a flat set of basic blocks into
// static single assignment (SSA) form.
//
// While constructing, we have two noteworthy challenges:
//
//    1) Insert phi instructions at the points where control-flow merges
//       different definitions of a variable
//    2) Maintain variable versions (x_0, x_1, ... x_n) so that each version
//       is defined exactly once
//
// The first is solved by placing phis at the iterated dominance frontier of
// every variable's definition sites. The second is solved by a walk over the
// dominator tree, which keeps a stack of reaching versions per variable.
//
// Construction mutates the supplied blocks in place. A block set must be
// owned by exactly one construction at a time, and it must be constructed at
// most once: renaming an already renamed block set yields new versions all
// over again.
//
package ssa

import (
	"context"
	"fmt"
	"strings"

	"github.com/containerd/log"
	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/dom"
	"github.com/susji/minissa/ir"
)

type stage int

const (
	stageAnalyzed stage = iota
	stagePlaced
	stageRenamed
)

type options struct {
	liveness cfg.Liveness
	verify   bool
}

type Option func(*options)

// WithLiveness selects how the live block set is determined.
func WithLiveness(l cfg.Liveness) Option {
	return func(o *options) {
		o.liveness = l
	}
}

// WithVerify makes Build check the SSA invariants after renaming.
func WithVerify(verify bool) Option {
	return func(o *options) {
		o.verify = verify
	}
}

// SSA holds a block set under construction together with the analyses
// computed for it.
type SSA struct {
	cfg       *cfg.CFG
	tree      *dom.Tree
	df        dom.Frontier
	loops     *dom.Loops
	placement *Placement
	stage     stage
	opts      options
}

// New forms the CFG of blocks and computes the dominance analyses. No block
// is modified yet.
func New(ctx context.Context, blocks ir.Blocks, opts ...Option) (*SSA, error) {
	s := &SSA{}
	for _, opt := range opts {
		opt(&s.opts)
	}
	logger := log.G(ctx).WithField("phase", "analyze")

	c, err := cfg.Form(blocks, cfg.WithLiveness(s.opts.liveness))
	if err != nil {
		return nil, err
	}
	s.cfg = c
	logger.WithField("liveness", c.Liveness()).Debugf("%d of %d blocks live", len(c.Nodes()), len(blocks))

	s.tree = dom.Compute(c)
	s.loops = dom.ClassifyLoops(c)
	s.df = dom.ComputeFrontier(c, s.tree)
	logger.WithField("headers", s.loops.Headers()).Debugf("%d back edges", len(s.loops.BackEdges()))
	return s, nil
}

func (s *SSA) CFG() *cfg.CFG {
	return s.cfg
}

func (s *SSA) DomTree() *dom.Tree {
	return s.tree
}

func (s *SSA) Frontier() dom.Frontier {
	return s.df
}

func (s *SSA) Loops() *dom.Loops {
	return s.loops
}

// Placement returns the phi placement record, or nil before PlacePhis.
func (s *SSA) Placement() *Placement {
	return s.placement
}

// Blocks returns the live blocks in ascending order.
func (s *SSA) Blocks() ir.Blocks {
	return s.cfg.Blocks()
}

func (s *SSA) Renamed() bool {
	return s.stage == stageRenamed
}

// Dump lists every instruction of the live blocks with a running index.
func (s *SSA) Dump() string {
	b := &strings.Builder{}
	i := 0
	for _, block := range s.Blocks() {
		b.WriteString(fmt.Sprintf("block_%d:\n", block.Id))
		for _, inst := range block.Instructions {
			b.WriteString(fmt.Sprintf("[%03d] %s\n", i, inst))
			i++
		}
	}
	return b.String()
}
