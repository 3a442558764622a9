package parse

import (
	"fmt"
	"strconv"

	"github.com/susji/minissa/ir"
	"github.com/susji/minissa/token"
)

var tok_to_pred = map[token.Kind]ir.Pred{
	token.Gt: ir.PredGt,
	token.Lt: ir.PredLt,
	token.Ge: ir.PredGe,
	token.Le: ir.PredLe,
	token.Eq: ir.PredEq,
	token.Ne: ir.PredNe,
}

// newBlock appends a fresh block. Block ids are given in creation order.
func (p *Parser) newBlock() *ir.Block {
	b := ir.NewBlock(ir.BlockId(len(p.blocks)))
	p.blocks = append(p.blocks, b)
	return b
}

// emit appends inst to the current block unless the block has already
// returned. Code after a return is unreachable and dropped.
func (p *Parser) emit(inst ir.Instruction) {
	if _, ok := p.returned[p.cur.Id]; ok {
		return
	}
	p.cur.Append(inst)
	if _, ok := inst.(*ir.Ret); ok {
		p.returned[p.cur.Id] = struct{}{}
	}
}

func (p *Parser) tmp() *ir.Variable {
	n := p.tmps[p.cur.Id]
	p.tmps[p.cur.Id]++
	return ir.NewTemp(ir.Name(fmt.Sprintf("tmp_%d_%d", p.cur.Id, n)))
}

func (p *Parser) declare(name ir.Name) {
	if _, ok := p.declared[name]; ok {
		return
	}
	p.declared[name] = struct{}{}
	p.emit(&ir.Alloca{Name: name})
}

func (p *Parser) endOfLine(toks *token.Tokens) error {
	tok := toks.Peek()
	if tok == nil {
		return nil
	}
	if tok.Kind() != token.Newline {
		return p.errorf(tok, "%w: expecting end of line, got %v", ErrUnexpected, tok)
	}
	p.pop(toks)
	return nil
}

// Operand parses "<id> | <decnum>". Each occurrence of a variable receives
// its own ir.Variable.
func (p *Parser) Operand(toks *token.Tokens) (ir.Value, error) {
	tok := toks.Peek()
	if tok == nil {
		return nil, p.errorf(nil, "%w: expecting operand", token.EOT)
	}
	switch tok.Kind() {
	case token.Id:
		p.pop(toks)
		return ir.NewVariable(ir.Name(tok.Value())), nil
	case token.DecNum:
		p.pop(toks)
		val, err := strconv.ParseInt(tok.Value(), 10, 64)
		if err != nil {
			return nil, p.errorf(tok, "%w: %w", ErrInvalidNum, err)
		}
		return ir.Const{Value: val}, nil
	}
	return nil, p.errorf(tok, "%w: expecting operand, got %v", ErrUnexpected, tok)
}

// Cond parses a comparison and lowers it into an ICMP of the current block.
func (p *Parser) Cond(toks *token.Tokens) (*ir.Icmp, error) {
	left, err := p.Operand(toks)
	if err != nil {
		return nil, err
	}
	optok := toks.Peek()
	if optok == nil {
		return nil, p.errorf(nil, "%w: expecting comparison", token.EOT)
	}
	pred, ok := tok_to_pred[optok.Kind()]
	if !ok {
		return nil, p.errorf(optok, "%w: expecting comparison, got %v", ErrUnexpected, optok)
	}
	p.pop(toks)
	right, err := p.Operand(toks)
	if err != nil {
		return nil, err
	}
	return &ir.Icmp{Pred: pred, Arg1: left, Arg2: right}, nil
}

// Stmts parses statements until one of ends or the end of tokens. The
// terminating token is returned but not consumed. Reaching the end of tokens
// is an error if ends were given.
func (p *Parser) Stmts(toks *token.Tokens, ends ...token.Kind) (*token.Token, error) {
	for {
		tok := toks.Peek()
		if tok == nil {
			if len(ends) > 0 {
				return nil, p.errorf(nil, "%w", ErrMissingEnd)
			}
			return nil, nil
		}
		if tok.Kind() == token.Newline {
			p.pop(toks)
			continue
		}
		for _, end := range ends {
			if tok.Kind() == end {
				return tok, nil
			}
		}
		if err := p.Stmt(toks); err != nil {
			// Skip the rest of the offending line.
			toks.Find(token.Newline)
			p.pop(toks)
		}
	}
}

func (p *Parser) Stmt(toks *token.Tokens) error {
	tok := toks.Peek()
	switch tok.Kind() {
	case token.Id:
		return p.Assign(toks)
	case token.If:
		return p.If(toks)
	case token.While:
		return p.While(toks)
	case token.Return:
		return p.Return(toks)
	}
	return p.errorf(tok, "%w: expecting statement, got %v", ErrUnexpected, tok)
}

var tok_to_arith = map[token.Kind]func(l, r ir.Value, to *ir.Variable) ir.Instruction{
	token.Plus: func(l, r ir.Value, to *ir.Variable) ir.Instruction {
		return &ir.Add{Left: l, Right: r, To: to}
	},
	token.Minus: func(l, r ir.Value, to *ir.Variable) ir.Instruction {
		return &ir.Sub{Left: l, Right: r, To: to}
	},
	token.Star: func(l, r ir.Value, to *ir.Variable) ir.Instruction {
		return &ir.Mul{Left: l, Right: r, To: to}
	},
}

// Assign lowers "x = a" into a STORE and "x = a op b" into an arithmetic
// instruction writing a temporary, which is then stored. The first
// assignment of a name is preceded by its ALLOCA.
func (p *Parser) Assign(toks *token.Tokens) error {
	lv, err := p.accept(toks, token.Id)
	if err != nil {
		return err
	}
	if _, err := p.accept(toks, token.Assign); err != nil {
		return err
	}
	left, err := p.Operand(toks)
	if err != nil {
		return err
	}
	var arith func(l, r ir.Value, to *ir.Variable) ir.Instruction
	var right ir.Value
	if optok := toks.Peek(); optok != nil {
		if f, ok := tok_to_arith[optok.Kind()]; ok {
			p.pop(toks)
			arith = f
			if right, err = p.Operand(toks); err != nil {
				return err
			}
		}
	}
	if err := p.endOfLine(toks); err != nil {
		return err
	}

	name := ir.Name(lv.Value())
	p.declare(name)
	if arith == nil {
		p.emit(&ir.Store{From: left, To: ir.NewVariable(name)})
		return nil
	}
	tmp := p.tmp()
	p.emit(arith(left, right, tmp))
	p.emit(&ir.Store{From: ir.NewTemp(tmp.Name), To: ir.NewVariable(name)})
	return nil
}

// If lowers a conditional into three fresh blocks: the true branch, the
// false branch and the merge block, created in this order.
func (p *Parser) If(toks *token.Tokens) error {
	if _, err := p.accept(toks, token.If); err != nil {
		return err
	}
	icmp, err := p.Cond(toks)
	if err != nil {
		return err
	}
	if _, err := p.accept(toks, token.Then); err != nil {
		return err
	}
	if err := p.endOfLine(toks); err != nil {
		return err
	}

	icmp.To = p.tmp()
	p.emit(icmp)
	tb, fb, mb := p.newBlock(), p.newBlock(), p.newBlock()
	p.emit(&ir.CondBranch{Cond: ir.NewTemp(icmp.To.Name), Then: tb.Id, Else: fb.Id})

	p.cur = tb
	end, err := p.Stmts(toks, token.Else, token.End)
	if err != nil {
		return err
	}
	p.emit(&ir.Branch{Target: mb.Id})

	p.cur = fb
	if end.Kind() == token.Else {
		p.pop(toks)
		if err := p.endOfLine(toks); err != nil {
			return err
		}
		if _, err := p.Stmts(toks, token.End); err != nil {
			return err
		}
	}
	if _, err := p.accept(toks, token.End); err != nil {
		return err
	}
	p.emit(&ir.Branch{Target: mb.Id})
	p.cur = mb
	return p.endOfLine(toks)
}

// While lowers a loop into a condition block, a body block and an exit
// block, created in this order.
func (p *Parser) While(toks *token.Tokens) error {
	if _, err := p.accept(toks, token.While); err != nil {
		return err
	}
	icmp, err := p.Cond(toks)
	if err != nil {
		return err
	}
	if _, err := p.accept(toks, token.Do); err != nil {
		return err
	}
	if err := p.endOfLine(toks); err != nil {
		return err
	}

	cb := p.newBlock()
	p.emit(&ir.Branch{Target: cb.Id})
	p.cur = cb
	icmp.To = p.tmp()
	p.emit(icmp)
	bb, eb := p.newBlock(), p.newBlock()
	p.emit(&ir.CondBranch{Cond: ir.NewTemp(icmp.To.Name), Then: bb.Id, Else: eb.Id})

	p.cur = bb
	if _, err := p.Stmts(toks, token.End); err != nil {
		return err
	}
	if _, err := p.accept(toks, token.End); err != nil {
		return err
	}
	p.emit(&ir.Branch{Target: cb.Id})
	p.cur = eb
	return p.endOfLine(toks)
}

func (p *Parser) Return(toks *token.Tokens) error {
	if _, err := p.accept(toks, token.Return); err != nil {
		return err
	}
	with, err := p.Operand(toks)
	if err != nil {
		return err
	}
	if err := p.endOfLine(toks); err != nil {
		return err
	}
	p.emit(&ir.Ret{With: with})
	return nil
}
