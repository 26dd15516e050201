package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "CCLGEN"

type Config struct {
	Output   string `mapstructure:"output"`
	Seeds    int    `mapstructure:"seeds"`
	Dim      int    `mapstructure:"dim"`
	RandSeed uint64 `mapstructure:"rand-seed"`
	Strict   bool   `mapstructure:"strict"`
	Manifest bool   `mapstructure:"manifest"`
	Verify   bool   `mapstructure:"verify"`
	Replay   string `mapstructure:"replay"`
	Serve    bool   `mapstructure:"serve"`
	Addr     string `mapstructure:"addr"`
	Debug    bool   `mapstructure:"debug"`

	// flags given on the command line that --replay overrode
	ReplayOverrides []string `mapstructure:"-"`
}

// flags whose values a replayed manifest replaces
var replayedFlags = []string{"seeds", "dim", "rand-seed", "strict"}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("ccl-datagen", pflag.ContinueOnError)
	fs.String("config", "", "optional config file (yaml, json or toml)")
	fs.String("output", "ccl_test_gen_data.csv", "output csv path")
	fs.Int("seeds", DefaultSeeds, "number of clusters to grow")
	fs.Int("dim", DefaultDim, "grid extent, coordinates are in [0, dim]")
	fs.Uint64("rand-seed", 0, "random seed, 0 derives one from the clock")
	fs.Bool("strict", false, "fail when a cluster cannot grow instead of skipping the step")
	fs.Bool("manifest", false, "write a yaml manifest next to the output")
	fs.Bool("verify", false, "read the output back and check it against the generated points")
	fs.String("replay", "", "regenerate the run described by a manifest file")
	fs.Bool("serve", false, "serve generation over http instead of writing a file")
	fs.String("addr", ":8080", "listen address in serve mode")
	fs.Bool("debug", false, "debug logging")
	return fs
}

// LoadConfig resolves the configuration from flags, CCLGEN_* environment
// variables and an optional config file, in that order of precedence.
func LoadConfig(args []string) (*Config, error) {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Replay != "" {
		if err := cfg.applyManifest(cfg.Replay, fs); err != nil {
			return nil, err
		}
	}
	if cfg.RandSeed == 0 {
		cfg.RandSeed = uint64(time.Now().UnixNano())
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyManifest takes the generation parameters of a previous run. The output
// path still comes from the flags. Explicitly set flags that get replaced are
// listed in ReplayOverrides.
func (c *Config) applyManifest(path string, fs *pflag.FlagSet) error {
	m, err := ReadManifest(path)
	if err != nil {
		return err
	}
	if m.RandSeed == 0 {
		return fmt.Errorf("%w: manifest %s has no rand_seed", ErrInvalidOptions, path)
	}
	c.Seeds = m.Seeds
	c.Dim = m.Dim
	c.RandSeed = m.RandSeed
	c.Strict = m.Strict

	for _, name := range replayedFlags {
		if fs.Changed(name) {
			c.ReplayOverrides = append(c.ReplayOverrides, name)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := c.Options().validate(); err != nil {
		return err
	}
	if !c.Serve && c.Output == "" {
		return errors.New("output path is required")
	}
	return nil
}

func (c *Config) Options() Options {
	return Options{Seeds: c.Seeds, Dim: c.Dim, Strict: c.Strict}
}
