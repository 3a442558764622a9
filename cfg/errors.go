package cfg

import (
	"errors"
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/susji/minissa/ir"
)

var (
	ErrUnknownSuccessor = errors.New("terminator names an unknown block")
	ErrDuplicateBlock   = errors.New("block id appears more than once")
)

// MissingEntryError means that the entry block was not supplied.
type MissingEntryError struct{}

func (e *MissingEntryError) Error() string {
	return fmt.Sprintf("entry block %d is missing", ir.Entry)
}

func (e *MissingEntryError) Unwrap() error {
	return errdefs.ErrNotFound
}

// MalformedBlockError means that the supplied block set cannot form a
// graph.
type MalformedBlockError struct {
	Block   ir.BlockId
	Target  ir.BlockId
	Wrapped error
}

func (e *MalformedBlockError) Error() string {
	if errors.Is(e.Wrapped, ErrUnknownSuccessor) {
		return fmt.Sprintf("block %d: %s: %d", e.Block, e.Wrapped, e.Target)
	}
	return fmt.Sprintf("block %d: %s", e.Block, e.Wrapped)
}

func (e *MalformedBlockError) Unwrap() []error {
	return []error{e.Wrapped, errdefs.ErrInvalidArgument}
}
