package main

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Run with
//		go run . --seeds 1500 --output ccl_test_gen_data.csv
// or serve generated files with
//		go run . --serve
//		curl -X POST "localhost:8080/generate?seeds=100&seed=42"

var logger *zap.SugaredLogger

// values are written with 6 decimals
const verifyTolerance = 1e-6

var ErrVerifyMismatch = errors.New("output does not match generated points")

func InitLogger(debug bool) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		log = zap.NewNop()
	}
	logger = log.Sugar()
}

func main() {
	os.Exit(execute(os.Args[1:]))
}

// execute runs the command and returns the process exit code. The logger is
// flushed before returning.
func execute(args []string) int {
	cfg, err := LoadConfig(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	InitLogger(cfg.Debug)
	defer logger.Sync()

	for _, name := range cfg.ReplayOverrides {
		logger.Warnf("--%s ignored, value taken from manifest %s", name, cfg.Replay)
	}

	if cfg.Serve {
		err = Serve(cfg)
	} else {
		err = run(cfg)
	}
	if err != nil {
		logger.Error(err.Error())
		return 1
	}
	return 0
}

// run generates one data set and writes it to cfg.Output.
func run(cfg *Config) error {
	logger.Debugf("generating %d clusters on a %d grid, rand seed %d", cfg.Seeds, cfg.Dim, cfg.RandSeed)
	acc, stats, err := Generate(NewRand(cfg.RandSeed), cfg.Options())
	if err != nil {
		return err
	}
	if stats.Skipped > 0 {
		logger.Warnf("%d growth steps skipped, clusters had no free neighbour", stats.Skipped)
	}

	if err = WriteCSVFile(cfg.Output, acc); err != nil {
		return err
	}
	logger.Infow("wrote hits",
		"output", cfg.Output,
		"points", stats.Points,
		"clusters", stats.Seeds,
		"steps", stats.Steps,
		"randSeed", cfg.RandSeed)

	if cfg.Manifest {
		path := ManifestPath(cfg.Output)
		if err = WriteManifest(path, NewManifest(cfg, stats)); err != nil {
			return err
		}
		logger.Debugf("manifest written to %s", path)
	}

	if cfg.Verify {
		return verifyOutput(cfg.Output, acc)
	}
	return nil
}

// verifyOutput reads path back and compares it with acc, allowing for the
// precision lost in formatting.
func verifyOutput(path string, acc Accumulator) error {
	got, err := ReadCSVFile(path)
	if err != nil {
		return err
	}
	if len(got) != len(acc) {
		return fmt.Errorf("%w: %d points in file, %d generated", ErrVerifyMismatch, len(got), len(acc))
	}
	for p, want := range acc {
		v, ok := got[p]
		if !ok {
			return fmt.Errorf("%w: point (%d, %d) missing", ErrVerifyMismatch, p.X, p.Y)
		}
		if math.Abs(v-want) > verifyTolerance {
			return fmt.Errorf("%w: point (%d, %d) has %f, expected %f", ErrVerifyMismatch, p.X, p.Y, v, want)
		}
	}
	logger.Infof("verified %d points in %s", len(got), path)
	return nil
}
