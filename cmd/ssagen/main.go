// ssagen reads programs of the small source language, lowers them into
// blocks and prints their SSA form. It is mainly intended for quick and dirty
// testing of the construction.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/containerd/log"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/susji/minissa/analyze"
	"github.com/susji/minissa/config"
	"github.com/susji/minissa/lex"
	"github.com/susji/minissa/parse"
	"github.com/susji/minissa/ssa"
	"github.com/susji/minissa/ssa/vm"
	"golang.org/x/sync/errgroup"
)

type options struct {
	configFile string
	dumptoks   bool
	flags      config.Config
	set        *pflag.FlagSet
}

func installFlags(flags *pflag.FlagSet, opts *options) {
	flags.StringVarP(&opts.configFile, "config", "c", "", "TOML configuration file")
	flags.BoolVar(&opts.dumptoks, "dumptoks", false, "dump lexed tokens")
	flags.StringVar(&opts.flags.Liveness, "liveness", "", "block liveness: weak or forward")
	flags.BoolVar(&opts.flags.Verify, "verify", false, "verify the SSA invariants")
	flags.StringVar(&opts.flags.DotDir, "dot", "", "write DOT renderings into this directory")
	flags.StringVarP(&opts.flags.LogLevel, "log-level", "l", "", "log level")
	flags.IntVarP(&opts.flags.Jobs, "jobs", "j", 0, "files processed in parallel")
	flags.BoolVar(&opts.flags.Run, "run", false, "interpret the program before and after construction")
	flags.IntVar(&opts.flags.StepLimit, "step-limit", 0, "instruction limit when interpreting")
}

func newCommand() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:           "ssagen [OPTIONS] FILE...",
		Short:         "Print the SSA form of source programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, args)
		},
	}
	installFlags(cmd.Flags(), opts)
	opts.set = cmd.Flags()
	return cmd
}

func setupLogging(c *config.Config) {
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: log.RFC3339NanoFixed,
		FullTimestamp:   true,
	})
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(c.Level())
}

// resolve loads the configuration file and lays the command line over it.
func resolve(opts *options) (*config.Config, error) {
	c, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if err := c.Override(&opts.flags); err != nil {
		return nil, err
	}
	// Override skips zero values, so false has to be applied by hand.
	if opts.set != nil {
		if opts.set.Changed("verify") {
			c.Verify = opts.flags.Verify
		}
		if opts.set.Changed("run") {
			c.Run = opts.flags.Run
		}
	}
	return c, nil
}

func run(ctx context.Context, opts *options, fns []string) error {
	c, err := resolve(opts)
	if err != nil {
		return err
	}
	setupLogging(c)
	if c.DotDir != "" {
		if err := os.MkdirAll(c.DotDir, 0o755); err != nil {
			return errors.Wrapf(err, "creating %s", c.DotDir)
		}
	}

	outs := make([]bytes.Buffer, len(fns))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Jobs)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			fctx := log.WithLogger(ctx, log.G(ctx).WithField("file", fn))
			return tap(fctx, c, opts.dumptoks, fn, &outs[i])
		})
	}
	err = g.Wait()
	for i := range outs {
		os.Stdout.Write(outs[i].Bytes())
	}
	return err
}

func note(out *bytes.Buffer, f string, va ...interface{}) {
	fmt.Fprintf(out, "[] "+f+"\n", va...)
}

func writeDot(c *config.Config, fn, kind, dot string) error {
	base := strings.TrimSuffix(filepath.Base(fn), filepath.Ext(fn))
	path := filepath.Join(c.DotDir, fmt.Sprintf("%s_%s.dot", base, kind))
	if err := os.WriteFile(path, []byte(dot), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func interpret(ctx context.Context, c *config.Config, s *ssa.SSA, out *bytes.Buffer, when string) {
	m := vm.New(s.CFG(), vm.WithStepLimit(c.StepLimit))
	ret, err := m.Run(ctx)
	if err != nil {
		note(out, "%s: %s after %d steps", when, err, m.Steps())
		return
	}
	note(out, "%s: returned %d after %d steps", when, ret, m.Steps())
}

// tap takes one file through the whole pipeline and writes its report to
// out.
func tap(ctx context.Context, c *config.Config, dumptoks bool, fn string, out *bytes.Buffer) error {
	src, err := os.ReadFile(fn)
	if err != nil {
		return errors.Wrapf(err, "cannot open %s", fn)
	}
	toks, lerrs := lex.Lex(bytes.Runes(src))
	if len(lerrs) > 0 {
		for _, lerr := range lerrs {
			log.G(ctx).WithError(lerr).Error("lexing")
		}
		return errors.Errorf("%s: lexing failed", fn)
	}
	if dumptoks {
		fmt.Fprintln(out, toks)
	}

	p := parse.NewFile(fn)
	if err := p.Parse(toks); err != nil {
		for _, perr := range p.Errors() {
			log.G(ctx).Error(perr)
		}
		return errors.Wrap(err, fn)
	}
	if aerrs := analyze.New(fn).Analyze(p.Blocks()); len(aerrs) > 0 {
		for _, aerr := range aerrs {
			log.G(ctx).Error(aerr)
		}
		return errors.Errorf("%s: %d contract violations", fn, len(aerrs))
	}

	s, err := ssa.New(ctx, p.Blocks(), ssa.WithLiveness(c.LivenessMode()))
	if err != nil {
		return errors.Wrap(err, fn)
	}
	note(out, "%s: %d live blocks, %d names", fn, len(s.Blocks()), len(s.Blocks().Names()))
	if c.DotDir != "" {
		if err := writeDot(c, fn, "cfg", s.CFG().Dot()); err != nil {
			return err
		}
	}
	if c.Run {
		// The program is interpreted on a copy; construction rewrites the
		// blocks in place.
		pre, err := ssa.New(ctx, s.Blocks().Clone(), ssa.WithLiveness(c.LivenessMode()))
		if err != nil {
			return errors.Wrap(err, fn)
		}
		interpret(ctx, c, pre, out, "before")
	}

	if err := s.PlacePhis(ctx); err != nil {
		return errors.Wrap(err, fn)
	}
	note(out, "%s: %d phis in %d blocks", fn, s.Placement().Len(), len(s.Placement().Blocks()))
	if err := s.Rename(ctx); err != nil {
		return errors.Wrap(err, fn)
	}
	fmt.Fprint(out, s.Dump())

	if c.Verify {
		verrs := ssa.Verify(s)
		for _, verr := range verrs {
			log.G(ctx).Error(verr)
		}
		if len(verrs) > 0 {
			return errors.Errorf("%s: %d SSA violations", fn, len(verrs))
		}
	}
	if c.Run {
		interpret(ctx, c, s, out, "after")
	}
	if c.DotDir != "" {
		if err := writeDot(c, fn, "ssa", s.CFG().Dot()); err != nil {
			return err
		}
		if err := writeDot(c, fn, "dom", s.DomTree().Dot(s.Frontier())); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	ctx := context.Background()
	if err := newCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %s\n", err)
		os.Exit(1)
	}
}
