// package analyze is responsible for checking that a block set is fit for
// SSA construction. The construction itself trusts its input, so everything
// coming from outside the front end should pass through here first.
package analyze

import (
	"errors"
	"fmt"

	"github.com/susji/minissa/ir"
)

var (
	ErrTerminatorNotLast = errors.New("terminator is not the last instruction")
	ErrPhiInInput        = errors.New("phi in input")
	ErrDestNotTemp       = errors.New("destination is not a temporary")
	ErrStoreToTemp       = errors.New("store to a temporary")
	ErrTempRedefined     = errors.New("temporary defined more than once")
	ErrTempUndefined     = errors.New("temporary is never defined")
	ErrNilOperand        = errors.New("missing operand")
	ErrAlreadyVersioned  = errors.New("variable already has a version")
)

// Analyzer maintains the state while we go through the blocks.
type Analyzer struct {
	fn   string
	errs []error

	// temps maps every defined temporary to the block defining it.
	temps map[ir.Name]ir.BlockId
	// uses remembers temporary uses until all definitions are known.
	uses []tempUse
}

type tempUse struct {
	block ir.BlockId
	index int
	name  ir.Name
}

func (s *Analyzer) reset() {
	s.errs = []error{}
	s.temps = map[ir.Name]ir.BlockId{}
	s.uses = nil
}

func New(fn string) *Analyzer {
	ret := &Analyzer{fn: fn}
	ret.reset()
	return ret
}

func (s *Analyzer) errorf(b ir.BlockId, index int, format string, a ...interface{}) error {
	err := &ContractError{
		Block:   b,
		Index:   index,
		Fn:      s.fn,
		Wrapped: fmt.Errorf(format, a...),
	}
	s.errs = append(s.errs, err)
	return err
}

// Analyze checks every block and returns all problems found. The blocks are
// not modified.
func (s *Analyzer) Analyze(blocks ir.Blocks) []error {
	s.reset()
	for _, b := range blocks.Sorted() {
		s.checkBlock(b)
	}
	s.checkTempUses()
	return s.errs
}
