package token_test

import (
	"testing"

	"github.com/susji/minissa/token"
	"gotest.tools/v3/assert"
)

func pos() token.Pos {
	return token.Pos{}
}

func TestTokensFind(t *testing.T) {
	toks := &token.Tokens{}
	toks.Add(token.New(token.DecNum, pos(), "1")).
		Add(token.New(token.DecNum, pos(), "2")).
		Add(token.New(token.Id, pos(), "one")).
		Add(token.New(token.CommentOne, pos(), "skipped")).
		Add(token.New(token.DecNum, pos(), "3")).
		Add(token.New(token.Id, pos(), "two")).
		Add(token.New(token.Newline, pos(), "\n"))

	first := toks.Find(token.Id)
	toks.Pop()
	second := toks.Find(token.Id)
	toks.Pop()
	third := toks.Find(token.Newline)
	toks.Pop()
	assert.Assert(t, toks.Peek() == nil)

	assert.Assert(t, first != nil)
	assert.Assert(t, second != nil)
	assert.Assert(t, third != nil)
	assert.Equal(t, "one", first.Value())
	assert.Equal(t, "two", second.Value())
	assert.Equal(t, token.Newline, third.Kind())
}

func TestTokensAccept(t *testing.T) {
	toks := &token.Tokens{}
	toks.Add(token.New(token.Id, token.Pos{Lineno: 2, Col: 4}, "x")).
		Add(token.New(token.Assign, pos(), "="))

	_, err := toks.Accept(token.Assign)
	assert.ErrorContains(t, err, `expecting "="`)
	tok, err := toks.Accept(token.Id)
	assert.NilError(t, err)
	assert.Equal(t, "2:4", tok.Pos().String())
	_, err = toks.Accept(token.Assign)
	assert.NilError(t, err)
	_, err = toks.Accept(token.Assign)
	assert.ErrorIs(t, err, token.EOT)
}
