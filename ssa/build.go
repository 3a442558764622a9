package ssa

import (
	"context"
	"errors"

	"github.com/containerd/log"
	"github.com/susji/minissa/ir"
)

// PlacePhis inserts the phi instructions. It may be called only once.
func (s *SSA) PlacePhis(ctx context.Context) error {
	if s.stage != stageAnalyzed {
		return ErrAlreadyPlaced
	}
	s.placement = PlacePhis(s.cfg, s.df)
	s.stage = stagePlaced
	log.G(ctx).WithField("phase", "phi").Debugf("placed %d phis", s.placement.Len())
	return nil
}

// Rename assigns versions to every variable. It may be called only once,
// after PlacePhis.
func (s *SSA) Rename(ctx context.Context) error {
	switch s.stage {
	case stageAnalyzed:
		return ErrNotPlaced
	case stageRenamed:
		return ErrAlreadyRenamed
	}
	if err := Rename(s.cfg, s.tree, s.loops); err != nil {
		return err
	}
	s.stage = stageRenamed
	log.G(ctx).WithField("phase", "rename").Debugf("renamed %d variables", len(s.Blocks().Names()))
	return nil
}

// Build runs the whole construction on blocks: CFG forming, dominance
// analyses, phi placement and renaming. The blocks are mutated in place, and
// the caller must not touch them until Build returns. Blocks outside the
// live set are left untouched and are not part of the result.
//
// On failure the blocks may be partially rewritten and should be discarded.
func Build(ctx context.Context, blocks ir.Blocks, opts ...Option) (*SSA, error) {
	s, err := New(ctx, blocks, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.PlacePhis(ctx); err != nil {
		return nil, err
	}
	if err := s.Rename(ctx); err != nil {
		return nil, err
	}
	if s.opts.verify {
		if errs := Verify(s); len(errs) > 0 {
			for _, err := range errs {
				log.G(ctx).WithError(err).Warn("SSA invariant broken")
			}
			return s, errors.Join(errs...)
		}
	}
	return s, nil
}
