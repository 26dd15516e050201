package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	InitLogger(false)
	os.Exit(m.Run())
}

func TestRunWritesOutputAndManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Output:   filepath.Join(dir, "hits.csv"),
		Seeds:    50,
		Dim:      DefaultDim,
		RandSeed: 99,
		Manifest: true,
		Verify:   true,
	}
	require.NoError(t, run(cfg))

	got, err := ReadCSVFile(cfg.Output)
	require.NoError(t, err)
	want, stats, err := Generate(NewRand(99), cfg.Options())
	require.NoError(t, err)
	require.Len(t, got, len(want))

	m, err := ReadManifest(ManifestPath(cfg.Output))
	require.NoError(t, err)
	assert.Equal(t, cfg.Output, m.Output)
	assert.Equal(t, 50, m.Seeds)
	assert.Equal(t, DefaultDim, m.Dim)
	assert.Equal(t, uint64(99), m.RandSeed)
	assert.Equal(t, stats.Points, m.Points)
	assert.Equal(t, stats.Steps, m.Steps)
	assert.False(t, m.GeneratedAt.IsZero())
}

func TestRunSameSeedSameFile(t *testing.T) {
	dir := t.TempDir()
	first := &Config{Output: filepath.Join(dir, "a.csv"), Seeds: 100, Dim: DefaultDim, RandSeed: 5}
	second := &Config{Output: filepath.Join(dir, "b.csv"), Seeds: 100, Dim: DefaultDim, RandSeed: 5}
	require.NoError(t, run(first))
	require.NoError(t, run(second))

	a, err := os.ReadFile(first.Output)
	require.NoError(t, err)
	b, err := os.ReadFile(second.Output)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRunStrictFailure(t *testing.T) {
	cfg := &Config{Output: filepath.Join(t.TempDir(), "hits.csv"), Seeds: 5, Dim: 1, RandSeed: 1, Strict: true}
	assert.ErrorIs(t, run(cfg), ErrEmptyFrontier)
	_, err := os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(err))
}

func TestVerifyOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hits.csv")
	acc := Accumulator{{1, 2}: 5.25, {3, 4}: 0.125}
	require.NoError(t, WriteCSVFile(path, acc))

	assert.NoError(t, verifyOutput(path, acc))
	assert.ErrorIs(t, verifyOutput(path, Accumulator{{1, 2}: 5.25}), ErrVerifyMismatch)
	assert.ErrorIs(t, verifyOutput(path, Accumulator{{1, 2}: 5.25, {3, 5}: 0.125}), ErrVerifyMismatch)
	assert.ErrorIs(t, verifyOutput(path, Accumulator{{1, 2}: 5.26, {3, 4}: 0.125}), ErrVerifyMismatch)
}

func TestExecuteExitCodes(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "success", args: []string{"--output", filepath.Join(dir, "ok.csv"), "--seeds", "5", "--rand-seed", "3"}, want: 0},
		{name: "help", args: []string{"--help"}, want: 0},
		{name: "bad flag", args: []string{"--no-such-flag"}, want: 2},
		{name: "dim too large", args: []string{"--dim", "9223372036854775807"}, want: 2},
		{name: "strict failure", args: []string{"--output", filepath.Join(dir, "strict.csv"), "--dim", "1", "--strict", "--rand-seed", "3"}, want: 1},
		{name: "unwritable output", args: []string{"--output", filepath.Join(dir, "missing", "out.csv"), "--seeds", "1"}, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, execute(tt.args))
		})
	}
	InitLogger(false)
}
