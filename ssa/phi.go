package ssa

import (
	"sort"

	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/dom"
	"github.com/susji/minissa/ir"
)

// Placement records which blocks receive a phi for which name, together
// with the predecessors of the block at the time of placement.
type Placement struct {
	at map[ir.BlockId]map[ir.Name][]ir.BlockId
	n  int
}

func newPlacement() *Placement {
	return &Placement{at: map[ir.BlockId]map[ir.Name][]ir.BlockId{}}
}

func (p *Placement) add(b ir.BlockId, name ir.Name, preds []ir.BlockId) {
	names, ok := p.at[b]
	if !ok {
		names = map[ir.Name][]ir.BlockId{}
		p.at[b] = names
	}
	if _, ok := names[name]; !ok {
		p.n++
	}
	names[name] = append([]ir.BlockId{}, preds...)
}

// Blocks returns the blocks with at least one phi, sorted.
func (p *Placement) Blocks() []ir.BlockId {
	ret := make([]ir.BlockId, 0, len(p.at))
	for b := range p.at {
		ret = append(ret, b)
	}
	return ir.SortIds(ret)
}

// At returns the names with a phi in b, sorted.
func (p *Placement) At(b ir.BlockId) []ir.Name {
	ret := make([]ir.Name, 0, len(p.at[b]))
	for name := range p.at[b] {
		ret = append(ret, name)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i] < ret[j] })
	return ret
}

// Preds returns the predecessor list recorded for the phi of name in b.
func (p *Placement) Preds(b ir.BlockId, name ir.Name) ([]ir.BlockId, bool) {
	preds, ok := p.at[b][name]
	return preds, ok
}

// Len returns the number of placed phis.
func (p *Placement) Len() int {
	return p.n
}

// defsites maps every non-temporary name of the live blocks to the blocks
// storing into it. Names which are only used get an empty entry.
func defsites(c *cfg.CFG) map[ir.Name][]ir.BlockId {
	ret := map[ir.Name][]ir.BlockId{}
	for _, name := range c.Blocks().Names() {
		ret[name] = nil
	}
	for _, b := range c.Blocks() {
		for _, inst := range b.Instructions {
			st, ok := inst.(*ir.Store)
			if !ok || st.To == nil || st.To.Temp {
				continue
			}
			sites := ret[st.To.Name]
			if len(sites) == 0 || sites[len(sites)-1] != b.Id {
				ret[st.To.Name] = append(sites, b.Id)
			}
		}
	}
	return ret
}

// PlacePhis computes the iterated dominance frontier of every name's
// definition sites and inserts an empty phi at the head of each resulting
// block. The phis of a block are ordered by name.
func PlacePhis(c *cfg.CFG, df dom.Frontier) *Placement {
	p := newPlacement()
	for name, defs := range defsites(c) {
		for _, b := range df.Iterated(defs) {
			p.add(b, name, c.Preds(b))
		}
	}
	for _, b := range p.Blocks() {
		block := c.Block(b)
		names := p.At(b)
		for i := len(names) - 1; i >= 0; i-- {
			preds, _ := p.Preds(b, names[i])
			block.InsertPhi(ir.NewPhi(names[i], len(preds)))
		}
	}
	return p
}
