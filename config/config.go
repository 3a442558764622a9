// Package config holds the settings of the ssagen driver. They are read from
// a TOML file, completed with defaults and finally overridden by flags.
package config

import (
	"os"

	"dario.cat/mergo"
	"github.com/containerd/errdefs"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/susji/minissa/cfg"
	"github.com/susji/minissa/ssa/vm"
)

// Config is the driver configuration. Zero fields mean "not set" and are
// filled from Defaults.
type Config struct {
	// Liveness selects which blocks take part in construction, either
	// "weak" or "forward".
	Liveness string `toml:"liveness"`
	// Verify checks the SSA invariants after construction.
	Verify bool `toml:"verify"`
	// DotDir is where the DOT renderings are written. Empty disables them.
	DotDir    string `toml:"dot_dir"`
	LogLevel  string `toml:"log_level"`
	Jobs      int    `toml:"jobs"`
	Run       bool   `toml:"run"`
	StepLimit int    `toml:"step_limit"`
}

// Defaults returns the configuration used when nothing else is given.
func Defaults() *Config {
	return &Config{
		Liveness:  cfg.LiveWeak.String(),
		LogLevel:  logrus.InfoLevel.String(),
		Jobs:      4,
		StepLimit: vm.DefaultStepLimit,
	}
}

// Load reads the TOML file at path and fills the missing settings from
// Defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "reading config %q", path)
		}
		if err := toml.Unmarshal(data, c); err != nil {
			return nil, errors.Wrapf(err, "parsing config %q", path)
		}
	}
	if err := mergo.Merge(c, Defaults()); err != nil {
		return nil, errors.Wrap(err, "applying defaults")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Override replaces the settings of c with every non-zero setting of o. A
// false boolean in o leaves c as it is.
func (c *Config) Override(o *Config) error {
	if err := mergo.Merge(c, o, mergo.WithOverride); err != nil {
		return errors.Wrap(err, "overriding config")
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if _, err := cfg.ParseLiveness(c.Liveness); err != nil {
		return errors.Wrap(errdefs.ErrInvalidArgument, err.Error())
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(errdefs.ErrInvalidArgument, err.Error())
	}
	if c.Jobs < 1 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "jobs must be positive, got %d", c.Jobs)
	}
	if c.StepLimit < 0 {
		return errors.Wrapf(errdefs.ErrInvalidArgument, "negative step limit %d", c.StepLimit)
	}
	return nil
}

// LivenessMode returns the parsed liveness setting.
func (c *Config) LivenessMode() cfg.Liveness {
	l, err := cfg.ParseLiveness(c.Liveness)
	if err != nil {
		return cfg.LiveWeak
	}
	return l
}

// Level returns the parsed log level.
func (c *Config) Level() logrus.Level {
	l, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return l
}
