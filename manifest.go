package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Manifest records how an output file was produced so the run can be repeated
// with the same random seed.
type Manifest struct {
	Output      string    `yaml:"output"`
	Seeds       int       `yaml:"seeds"`
	Dim         int       `yaml:"dim"`
	RandSeed    uint64    `yaml:"rand_seed"`
	Strict      bool      `yaml:"strict"`
	Points      int       `yaml:"points"`
	Steps       int       `yaml:"steps"`
	Skipped     int       `yaml:"skipped"`
	GeneratedAt time.Time `yaml:"generated_at"`
}

func NewManifest(cfg *Config, stats Stats) Manifest {
	return Manifest{
		Output:      cfg.Output,
		Seeds:       cfg.Seeds,
		Dim:         cfg.Dim,
		RandSeed:    cfg.RandSeed,
		Strict:      cfg.Strict,
		Points:      stats.Points,
		Steps:       stats.Steps,
		Skipped:     stats.Skipped,
		GeneratedAt: time.Now().UTC(),
	}
}

// ManifestPath is the sidecar location for an output file.
func ManifestPath(output string) string {
	return output + ".yaml"
}

func WriteManifest(path string, m Manifest) error {
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err = os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m := &Manifest{}
	if err = yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}
