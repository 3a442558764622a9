package token

import (
	"errors"
	"fmt"
	"strings"
)

var EOT = errors.New("end of tokens")

// Tokens implements a FIFO for individual tokens.
type Tokens struct {
	toks []Token
}

// Pos is the position of a token's first rune. Both are zero-based.
type Pos struct {
	Lineno, Col int
}

func (pos Pos) String() string {
	return fmt.Sprintf("%d:%d", pos.Lineno, pos.Col)
}

type Token struct {
	pos   Pos
	kind  Kind
	value string
}

func New(kind Kind, pos Pos, value string) Token {
	if !validkind(kind) {
		panic(fmt.Sprintf("invalid token kind: %v", kind))
	}
	return Token{
		kind:  kind,
		value: value,
		pos:   pos,
	}
}

type Kind int

const (
	Id Kind = iota
	DecNum
	Newline
	Assign
	Plus
	Minus
	Star
	Lt
	Gt
	Le
	Ge
	Eq // 10
	Ne
	If
	Then
	Else
	End
	While
	Do
	Return
	CommentOne
)

var toknames = [...]string{
	"id",
	"decnum",
	"newline",
	"=",
	"+",
	"-",
	"*",
	"<",
	">",
	"<=",
	">=",
	"==",
	"!=",
	"if",
	"then",
	"else",
	"end",
	"while",
	"do",
	"return",
	"//comment",
}

// Keywords maps the reserved words to their kinds.
var Keywords = map[string]Kind{
	"if":     If,
	"then":   Then,
	"else":   Else,
	"end":    End,
	"while":  While,
	"do":     Do,
	"return": Return,
}

func (k Kind) String() string {
	return toknames[k]
}

func validkind(kind Kind) bool {
	return kind >= 0 && int(kind) <= (len(toknames)-1)
}

func (tok *Token) String() string {
	switch tok.kind {
	case Id, DecNum:
		return tok.value
	case CommentOne:
		return fmt.Sprintf("// %s", tok.value)
	default:
		return fmt.Sprintf("%q", toknames[tok.kind])
	}
}

func (tok *Token) Value() string {
	return tok.value
}

func (tok *Token) Kind() Kind {
	return tok.kind
}

func (tok *Token) Lineno() int {
	return tok.pos.Lineno
}

func (tok *Token) Col() int {
	return tok.pos.Col
}

func (tok *Token) Pos() Pos {
	return tok.pos
}

func (toks *Tokens) Add(tok Token) *Tokens {
	toks.toks = append(toks.toks, tok)
	return toks
}

func (toks *Tokens) String() string {
	b := &strings.Builder{}
	for _, tok := range toks.toks {
		b.WriteString(
			fmt.Sprintf("[%d:%d] %s\n", tok.Lineno(), tok.Col(), tok.String()))
	}
	return b.String()
}

func (toks *Tokens) Len() int {
	return len(toks.toks)
}

func (toks *Tokens) Pop() *Token {
	if toks.Len() == 0 {
		return nil
	}
	var tok Token
	tok, toks.toks = toks.toks[0], toks.toks[1:]
	return &tok
}

// Peek returns the current token-to-be-parsed. It never returns comment
// tokens.
func (toks *Tokens) Peek() *Token {
	for {
		if toks.Len() == 0 {
			return nil
		}
		if toks.toks[0].Kind() != CommentOne {
			return &toks.toks[0]
		}
		toks.Pop()
	}
}

// Accept pops the current token if it is of the wanted kind.
func (toks *Tokens) Accept(kind Kind) (*Token, error) {
	cur := toks.Peek()
	if cur == nil {
		return nil, EOT
	}
	if cur.Kind() != kind {
		return nil, fmt.Errorf("expecting %q, got %v", toknames[kind], cur)
	}
	return toks.Pop(), nil
}

// Find discards tokens until one of the wanted kinds is current.
func (toks *Tokens) Find(kinds ...Kind) *Token {
	for {
		cur := toks.Peek()
		if cur == nil {
			return nil
		}
		for _, kind := range kinds {
			if cur.Kind() == kind {
				return cur
			}
		}
		toks.Pop()
	}
}
