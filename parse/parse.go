// Package parse turns the tokens of the mini-language directly into basic
// blocks. There is no syntax tree: statements are lowered as soon as they
// are recognized, in the same manner as they appear in the source.
//
// The grammar is line-oriented:
//
//	<prog>   = { <stmt> | NL }
//	<stmt>   = <id> "=" <opnd> [ ("+" | "-" | "*") <opnd> ] NL
//	         | "if" <cond> "then" NL <body> [ "else" NL <body> ] "end" NL
//	         | "while" <cond> "do" NL <body> "end" NL
//	         | "return" <opnd> NL
//	<cond>   = <opnd> ("<" | ">" | "<=" | ">=" | "==" | "!=") <opnd>
//	<opnd>   = <id> | <decnum>
//
// The final NL of the program may be omitted.
package parse

import (
	"errors"
	"fmt"

	"github.com/susji/minissa/ir"
	"github.com/susji/minissa/token"
)

var (
	ErrParse      = errors.New("parsing met with error(s)")
	ErrMissingEnd = errors.New(`missing "end"`)
	ErrUnexpected = errors.New("unexpected token")
	ErrInvalidNum = errors.New("invalid number")
)

type Parser struct {
	fn     string
	errs   []error
	blocks ir.Blocks
	cur    *ir.Block
	// declared holds the names which have received their alloca.
	declared map[ir.Name]struct{}
	// returned marks the blocks which already end in a return.
	returned map[ir.BlockId]struct{}
	// tmps counts the temporaries created per block.
	tmps map[ir.BlockId]int
	last *token.Token
}

func (p *Parser) errorf(tok *token.Token, format string, a ...interface{}) error {
	if tok == nil {
		tok = p.last
	}
	err := &ParseError{
		Tok:     tok,
		Fn:      p.fn,
		Wrapped: fmt.Errorf(format, a...),
	}
	p.errs = append(p.errs, err)
	return err
}

func (p *Parser) Errors() []error {
	if len(p.errs) == 0 {
		return nil
	}
	return p.errs
}

// Blocks returns the lowered program ordered by block id.
func (p *Parser) Blocks() ir.Blocks {
	return p.blocks
}

func (p *Parser) Fn() string {
	return p.fn
}

func (p *Parser) pop(toks *token.Tokens) *token.Token {
	tok := toks.Pop()
	if tok != nil {
		p.last = tok
	}
	return tok
}

func (p *Parser) accept(toks *token.Tokens, kind token.Kind) (*token.Token, error) {
	tok, err := toks.Accept(kind)
	if err != nil {
		return nil, p.errorf(toks.Peek(), "%w: %w", ErrUnexpected, err)
	}
	p.last = tok
	return tok, nil
}

func (p *Parser) reset() {
	p.errs = []error{}
	p.blocks = ir.Blocks{}
	p.declared = map[ir.Name]struct{}{}
	p.returned = map[ir.BlockId]struct{}{}
	p.tmps = map[ir.BlockId]int{}
	p.last = nil
	p.cur = p.newBlock()
}

// Parse lowers the full token stream. Parsing continues after an error from
// the next line on so that several errors can be reported at once.
func (p *Parser) Parse(toks *token.Tokens) error {
	p.reset()
	p.Stmts(toks)
	if len(p.errs) > 0 {
		return ErrParse
	}
	return nil
}

func New() *Parser {
	return NewFile("<stdin>")
}

func NewFile(fn string) *Parser {
	return &Parser{fn: fn}
}
