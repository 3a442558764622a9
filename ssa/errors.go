package ssa

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/susji/minissa/ir"
)

var (
	ErrAlreadyPlaced  = fmt.Errorf("phis already placed: %w", errdefs.ErrFailedPrecondition)
	ErrNotPlaced      = fmt.Errorf("phis not placed yet: %w", errdefs.ErrFailedPrecondition)
	ErrAlreadyRenamed = fmt.Errorf("variables already renamed: %w", errdefs.ErrFailedPrecondition)
)

var (
	ErrRedefined       = errors.New("value defined more than once")
	ErrNoDefinition    = errors.New("use of a value which is never defined")
	ErrNotDominated    = errors.New("use is not dominated by its definition")
	ErrPhiArity        = errors.New("phi slot count differs from predecessor count")
	ErrPhiSlotEmpty    = errors.New("phi slot for a reachable predecessor is empty")
	ErrPhiSlotMismatch = errors.New("phi slot refers to a different variable")
)

// InconsistentCfgError means that phi filling found a successor which does
// not list the current block as a predecessor, or a phi without a slot for
// it. Either indicates corrupted intermediate state.
type InconsistentCfgError struct {
	Block ir.BlockId
	Succ  ir.BlockId
	Name  ir.Name
}

func (e *InconsistentCfgError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("phi for %q in block %d has no slot for predecessor %d",
			e.Name, e.Succ, e.Block)
	}
	return fmt.Sprintf("block %d is not a predecessor of its successor %d", e.Block, e.Succ)
}

func (e *InconsistentCfgError) Unwrap() error {
	return errdefs.ErrInternal
}

// VerifyError describes a single broken SSA invariant.
type VerifyError struct {
	Block   ir.BlockId
	Inst    ir.Instruction
	Wrapped error
}

func (e *VerifyError) Error() string {
	return fmt.Sprintf("block %d: %s: %s", e.Block, e.Inst, e.Wrapped)
}

func (e *VerifyError) Unwrap() []error {
	return []error{e.Wrapped, errdefs.ErrInternal}
}
