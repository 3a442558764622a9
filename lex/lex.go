// Package lex turns source text of the mini-language into tokens. The
// language is line-oriented, so linefeeds are tokens of their own. Other
// whitespace is ignored.
package lex

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/susji/minissa/token"
)

var (
	ErrUnexpectedRune = errors.New("unexpected character")
	ErrIncomplete     = errors.New("incomplete operator")
)

type LexError struct {
	Pos     token.Pos
	Wrapped error
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Wrapped)
}

func (e *LexError) Unwrap() error {
	return e.Wrapped
}

type lexer struct {
	what   []rune
	at     int
	lineno int
	col    int
	toks   *token.Tokens
	errs   []error
}

func (l *lexer) peek(n int) (rune, bool) {
	if l.at+n >= len(l.what) {
		return 0, false
	}
	return l.what[l.at+n], true
}

func (l *lexer) advance() rune {
	r := l.what[l.at]
	l.at++
	if r == '\n' {
		l.lineno++
		l.col = 0
	} else {
		l.col++
	}
	return r
}

// while consumes runes as long as accept says so and returns them.
func (l *lexer) while(accept func(rune) bool) string {
	start := l.at
	for {
		r, ok := l.peek(0)
		if !ok || !accept(r) {
			break
		}
		l.advance()
	}
	return string(l.what[start:l.at])
}

func isIdStart(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdRest(r rune) bool {
	return isIdStart(r) || isDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// operators lists the punctuation in order of decreasing length so that
// "<=" wins over "<".
var operators = []struct {
	s    string
	kind token.Kind
}{
	{"<=", token.Le},
	{">=", token.Ge},
	{"==", token.Eq},
	{"!=", token.Ne},
	{"=", token.Assign},
	{"+", token.Plus},
	{"-", token.Minus},
	{"*", token.Star},
	{"<", token.Lt},
	{">", token.Gt},
}

func (l *lexer) operator(pos token.Pos) bool {
	for _, op := range operators {
		match := true
		for i, want := range op.s {
			if got, ok := l.peek(i); !ok || got != want {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		for range op.s {
			l.advance()
		}
		l.toks.Add(token.New(op.kind, pos, op.s))
		return true
	}
	return false
}

func (l *lexer) next() {
	pos := token.Pos{Lineno: l.lineno, Col: l.col}
	r, _ := l.peek(0)
	switch {
	case r == '\n':
		l.advance()
		l.toks.Add(token.New(token.Newline, pos, "\n"))
	case unicode.IsSpace(r):
		l.advance()
	case r == '/':
		if r2, ok := l.peek(1); ok && r2 == '/' {
			l.advance()
			l.advance()
			com := l.while(func(r rune) bool { return r != '\n' })
			l.toks.Add(token.New(token.CommentOne, pos, com))
			return
		}
		l.advance()
		l.errs = append(l.errs, &LexError{Pos: pos, Wrapped: fmt.Errorf("%w: %q", ErrUnexpectedRune, r)})
	case isDigit(r):
		l.toks.Add(token.New(token.DecNum, pos, l.while(isDigit)))
	case isIdStart(r):
		id := l.while(isIdRest)
		if kind, ok := token.Keywords[id]; ok {
			l.toks.Add(token.New(kind, pos, id))
			return
		}
		l.toks.Add(token.New(token.Id, pos, id))
	case l.operator(pos):
	case r == '!':
		l.advance()
		l.errs = append(l.errs, &LexError{Pos: pos, Wrapped: fmt.Errorf("%w: %q", ErrIncomplete, r)})
	default:
		l.advance()
		l.errs = append(l.errs, &LexError{Pos: pos, Wrapped: fmt.Errorf("%w: %q", ErrUnexpectedRune, r)})
	}
}

// Lex tokenizes what. Unknown characters are reported and skipped, so a
// single call may return both tokens and errors.
func Lex(what []rune) (*token.Tokens, []error) {
	l := &lexer{what: what, toks: &token.Tokens{}}
	for l.at < len(l.what) {
		l.next()
	}
	return l.toks, l.errs
}
