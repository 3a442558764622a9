package analyze

import (
	"fmt"

	"github.com/containerd/errdefs"
	"github.com/susji/minissa/ir"
)

// ContractError describes an input block set which does not satisfy what SSA
// construction expects from it. Index is -1 if the problem concerns the block
// as a whole.
type ContractError struct {
	Block   ir.BlockId
	Index   int
	Fn      string
	Wrapped error
}

func (e *ContractError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: block %d: %s", e.Fn, e.Block, e.Wrapped)
	}
	return fmt.Sprintf("%s: block %d: [%03d]: %s", e.Fn, e.Block, e.Index, e.Wrapped)
}

func (e *ContractError) Unwrap() []error {
	return []error{e.Wrapped, errdefs.ErrInvalidArgument}
}
