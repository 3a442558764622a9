package lex_test

import (
	"errors"
	"testing"

	"github.com/susji/minissa/lex"
	"github.com/susji/minissa/token"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func kinds(toks *token.Tokens) []token.Kind {
	ret := []token.Kind{}
	for toks.Len() > 0 {
		ret = append(ret, toks.Pop().Kind())
	}
	return ret
}

func TestLexKinds(t *testing.T) {
	type entry struct {
		give string
		want []token.Kind
	}

	table := []entry{
		{"x = 10", []token.Kind{token.Id, token.Assign, token.DecNum}},
		{"a=b+c", []token.Kind{token.Id, token.Assign, token.Id, token.Plus, token.Id}},
		{"x = a - 1 * 2", []token.Kind{
			token.Id, token.Assign, token.Id, token.Minus, token.DecNum, token.Star, token.DecNum}},
		{"if a <= b then", []token.Kind{token.If, token.Id, token.Le, token.Id, token.Then}},
		{"while i != 5 do\nend", []token.Kind{
			token.While, token.Id, token.Ne, token.DecNum, token.Do, token.Newline, token.End}},
		{"a >= b > c == d < e", []token.Kind{
			token.Id, token.Ge, token.Id, token.Gt, token.Id, token.Eq, token.Id, token.Lt, token.Id}},
		{"return x // done", []token.Kind{token.Return, token.Id, token.CommentOne}},
		{"ifx = 1", []token.Kind{token.Id, token.Assign, token.DecNum}},
	}

	for _, cur := range table {
		t.Run(cur.give, func(t *testing.T) {
			toks, errs := lex.Lex([]rune(cur.give))
			assert.Check(t, is.Len(errs, 0))
			assert.DeepEqual(t, cur.want, kinds(toks))
		})
	}
}

func TestLexPositions(t *testing.T) {
	toks, errs := lex.Lex([]rune("x = 1\n  return x"))
	assert.Check(t, is.Len(errs, 0))
	want := []token.Pos{
		{Lineno: 0, Col: 0},
		{Lineno: 0, Col: 2},
		{Lineno: 0, Col: 4},
		{Lineno: 0, Col: 5},
		{Lineno: 1, Col: 2},
		{Lineno: 1, Col: 9},
	}
	got := []token.Pos{}
	for toks.Len() > 0 {
		got = append(got, toks.Pop().Pos())
	}
	assert.DeepEqual(t, want, got)
}

func TestLexComment(t *testing.T) {
	toks, errs := lex.Lex([]rune("// only a comment"))
	assert.Check(t, is.Len(errs, 0))
	assert.Equal(t, 1, toks.Len())
	tok := toks.Pop()
	assert.Equal(t, token.CommentOne, tok.Kind())
	assert.Equal(t, " only a comment", tok.Value())
}

func TestLexFail(t *testing.T) {
	table := []struct {
		give string
		want error
	}{
		{"x = 1 $", lex.ErrUnexpectedRune},
		{"x = a / b", lex.ErrUnexpectedRune},
		{"if a ! b then", lex.ErrIncomplete},
	}

	for _, cur := range table {
		t.Run(cur.give, func(t *testing.T) {
			_, errs := lex.Lex([]rune(cur.give))
			assert.Assert(t, is.Len(errs, 1))
			assert.Check(t, errors.Is(errs[0], cur.want))
			var lerr *lex.LexError
			assert.Check(t, errors.As(errs[0], &lerr))
		})
	}
}
