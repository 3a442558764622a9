// Package vm interprets a block set, either before or after SSA
// construction. Before construction, a variable names its storage location
// and stores overwrite it. After construction every version is a register of
// its own and phis select their value by the predecessor we arrived from.
//
// Both interpretations share the same register file: an unversioned
// variable is keyed by its name alone, which makes it behave like memory.
package vm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/containerd/log"
	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/ir"
)

const DefaultStepLimit = 1 << 20

var (
	ErrUndefined = errors.New("undefined value")
	ErrStepLimit = errors.New("step limit exceeded")
	ErrFellOff   = errors.New("block has no terminator")
)

type cell struct {
	val     int64
	defined bool
}

type VM struct {
	c     *cfg.CFG
	regs  map[ir.Variable]cell
	limit int
	steps int
}

type Option func(*VM)

// WithStepLimit bounds the number of executed non-phi instructions.
func WithStepLimit(limit int) Option {
	return func(vm *VM) {
		vm.limit = limit
	}
}

func New(c *cfg.CFG, opts ...Option) *VM {
	vm := &VM{
		c:     c,
		regs:  map[ir.Variable]cell{},
		limit: DefaultStepLimit,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Steps returns the number of instructions executed so far.
func (vm *VM) Steps() int {
	return vm.steps
}

func (vm *VM) value(v ir.Value) cell {
	switch t := v.(type) {
	case ir.Const:
		return cell{val: t.Value, defined: true}
	case *ir.Variable:
		if t == nil || t.Version == ir.Undefined {
			return cell{}
		}
		return vm.regs[*t]
	}
	return cell{}
}

func (vm *VM) set(to *ir.Variable, c cell) {
	vm.regs[*to] = c
}

func (vm *VM) binop(to *ir.Variable, left, right ir.Value, op func(a, b int64) int64) {
	l, r := vm.value(left), vm.value(right)
	if !l.defined || !r.defined {
		vm.set(to, cell{})
		return
	}
	vm.set(to, cell{val: op(l.val, r.val), defined: true})
}

// phis assigns every phi of b at once, using the slot of pred.
func (vm *VM) phis(b *ir.Block, pred ir.BlockId, entered bool) {
	phis := b.Phis()
	if len(phis) == 0 {
		return
	}
	j := -1
	if entered {
		if i, ok := vm.c.PredIndex(pred, b.Id); ok {
			j = i
		}
	}
	vals := make([]cell, len(phis))
	for i, phi := range phis {
		if j >= 0 && j < len(phi.From) && phi.From[j] != nil {
			vals[i] = vm.value(phi.From[j])
		}
	}
	for i, phi := range phis {
		vm.set(phi.To, vals[i])
	}
}

// exec runs the non-phi instructions of b. It returns the next block to run,
// or the returned value when done is true.
func (vm *VM) exec(ctx context.Context, b *ir.Block) (next ir.BlockId, ret int64, done bool, err error) {
	logger := log.G(ctx).WithField("block", b.Id)
	for _, inst := range b.Instructions {
		if _, ok := inst.(*ir.Phi); ok {
			logger.Tracef("%-10s | %s", inst.Op(), inst)
			continue
		}
		vm.steps++
		if vm.limit > 0 && vm.steps > vm.limit {
			return 0, 0, false, ErrStepLimit
		}
		logger.Tracef("%-10s | %s", inst.Op(), inst)
		switch t := inst.(type) {
		case *ir.Alloca:
		case *ir.Load:
			vm.set(t.To, vm.value(t.From))
		case *ir.Store:
			vm.set(t.To, vm.value(t.From))
		case *ir.Icmp:
			l, r := vm.value(t.Arg1), vm.value(t.Arg2)
			if !l.defined || !r.defined {
				vm.set(t.To, cell{})
				break
			}
			res := int64(0)
			if t.Pred.Eval(l.val, r.val) {
				res = 1
			}
			vm.set(t.To, cell{val: res, defined: true})
		case *ir.Add:
			vm.binop(t.To, t.Left, t.Right, func(a, b int64) int64 { return a + b })
		case *ir.Sub:
			vm.binop(t.To, t.Left, t.Right, func(a, b int64) int64 { return a - b })
		case *ir.Mul:
			vm.binop(t.To, t.Left, t.Right, func(a, b int64) int64 { return a * b })
		case *ir.Branch:
			return t.Target, 0, false, nil
		case *ir.CondBranch:
			cond := vm.value(t.Cond)
			if !cond.defined {
				return 0, 0, false, fmt.Errorf("block %d: %s: %w", b.Id, t.Cond, ErrUndefined)
			}
			if cond.val != 0 {
				return t.Then, 0, false, nil
			}
			return t.Else, 0, false, nil
		case *ir.Ret:
			with := vm.value(t.With)
			if !with.defined {
				return 0, 0, false, fmt.Errorf("block %d: %s: %w", b.Id, t.With, ErrUndefined)
			}
			return 0, with.val, true, nil
		default:
			panic(fmt.Sprintf("unknown instruction: %s", inst))
		}
	}
	return 0, 0, false, fmt.Errorf("block %d: %w", b.Id, ErrFellOff)
}

// Run executes the CFG from the entry until a return.
func (vm *VM) Run(ctx context.Context) (int64, error) {
	cur := vm.c.Entry()
	var pred ir.BlockId
	entered := false
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		vm.phis(cur, pred, entered)
		next, ret, done, err := vm.exec(ctx, cur)
		if err != nil {
			return 0, err
		}
		if done {
			log.G(ctx).WithField("steps", vm.steps).Debugf("returned %d", ret)
			return ret, nil
		}
		pred, entered = cur.Id, true
		cur = vm.c.Block(next)
		if cur == nil {
			return 0, fmt.Errorf("block %d is not live: %w", next, ErrFellOff)
		}
	}
}

// DumpRegs lists the register file sorted by variable.
func (vm *VM) DumpRegs() string {
	keys := make([]ir.Variable, 0, len(vm.regs))
	for k := range vm.regs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Name != keys[j].Name {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Version < keys[j].Version
	})
	b := &strings.Builder{}
	b.WriteString("# registers\n")
	for _, k := range keys {
		c := vm.regs[k]
		if !c.defined {
			b.WriteString(fmt.Sprintf("%10s = undef\n", k.String()))
			continue
		}
		b.WriteString(fmt.Sprintf("%10s = %d\n", k.String(), c.val))
	}
	return b.String()
}
