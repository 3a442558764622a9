package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/susji/minissa/config"
	"github.com/susji/minissa/testers"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func source(t *testing.T, dir, name, code string) string {
	t.Helper()
	fn := filepath.Join(dir, name)
	assert.NilError(t, os.WriteFile(fn, []byte(code), 0o644))
	return fn
}

func TestTap(t *testing.T) {
	dir := t.TempDir()
	fn := source(t, dir, "nested.ssa", testers.Nested)
	c := config.Defaults()
	c.DotDir = dir
	c.Run = true
	c.Verify = true

	out := &bytes.Buffer{}
	assert.NilError(t, tap(context.Background(), c, false, fn, out))
	got := out.String()
	assert.Assert(t, is.Contains(got, "5 phis in 2 blocks"))
	assert.Assert(t, is.Contains(got, "before: returned 35"))
	assert.Assert(t, is.Contains(got, "after: returned 35"))
	assert.Assert(t, is.Contains(got, "PHI"))

	for _, kind := range []string{"cfg", "ssa", "dom"} {
		_, err := os.Stat(filepath.Join(dir, "nested_"+kind+".dot"))
		assert.NilError(t, err)
	}
}

func TestTapFails(t *testing.T) {
	dir := t.TempDir()
	c := config.Defaults()
	out := &bytes.Buffer{}

	err := tap(context.Background(), c, false, filepath.Join(dir, "none.ssa"), out)
	assert.ErrorContains(t, err, "cannot open")

	fn := source(t, dir, "bad.ssa", "while a < 1 do\n")
	assert.Assert(t, tap(context.Background(), c, false, fn, out) != nil)

	fn = source(t, dir, "lex.ssa", "a = 1 ! 2\n")
	assert.ErrorContains(t, tap(context.Background(), c, false, fn, out), "lexing failed")
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	a := source(t, dir, "a.ssa", "a = 1\nreturn a\n")
	b := source(t, dir, "b.ssa", "i = 0\nwhile i < 3 do\n\ti = i + 1\nend\nreturn i\n")

	cmd := newCommand()
	cmd.SetArgs([]string{"--verify", "-j", "2", "--liveness", "forward", a, b})
	assert.NilError(t, cmd.ExecuteContext(context.Background()))

	cmd = newCommand()
	cmd.SetArgs([]string{"--liveness", "sideways", a})
	assert.Assert(t, cmd.ExecuteContext(context.Background()) != nil)

	cmd = newCommand()
	cmd.SetArgs([]string{})
	assert.Assert(t, cmd.ExecuteContext(context.Background()) != nil)
}

func parsed(t *testing.T, args ...string) *options {
	t.Helper()
	opts := &options{}
	opts.set = pflag.NewFlagSet("ssagen", pflag.ContinueOnError)
	installFlags(opts.set, opts)
	assert.NilError(t, opts.set.Parse(args))
	return opts
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	conf := source(t, dir, "ssagen.toml", "verify = true\nrun = true\nlog_level = \"warn\"\n")

	c, err := resolve(parsed(t, "-c", conf))
	assert.NilError(t, err)
	assert.Assert(t, c.Verify)
	assert.Assert(t, c.Run)

	c, err = resolve(parsed(t, "-c", conf, "--verify=false", "--run=false", "-l", "debug"))
	assert.NilError(t, err)
	assert.Assert(t, !c.Verify)
	assert.Assert(t, !c.Run)
	assert.Equal(t, "debug", c.LogLevel)

	c, err = resolve(parsed(t, "--run"))
	assert.NilError(t, err)
	assert.Assert(t, c.Run)
	assert.Assert(t, !c.Verify)

	_, err = resolve(parsed(t, "-c", conf, "--jobs=-2"))
	assert.ErrorContains(t, err, "jobs must be positive")
}

func TestSetupLogging(t *testing.T) {
	level := logrus.GetLevel()
	t.Cleanup(func() { logrus.SetLevel(level) })

	c := config.Defaults()
	c.LogLevel = "debug"
	setupLogging(c)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}
