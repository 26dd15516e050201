package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

const (
	DefaultDim   = 65535
	DefaultSeeds = 1500

	// coordinates and their neighbours stay within int32
	MaxDim = math.MaxInt32 - 1

	minBaseValue = 5.0
	maxBaseValue = 10.0
	minGrowValue = 0.05
	maxGrowSteps = 10
)

var (
	ErrInvalidOptions = errors.New("invalid generation options")
	ErrEmptyFrontier  = errors.New("cluster has no free neighbour inside the grid")
)

// Rand is the source of randomness used by Generate. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// NewRand creates a deterministic PCG source for the given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, 0))
}

type Point struct {
	X, Y int
}

// Accumulator maps a grid cell to the intensity summed over every cluster touching it.
type Accumulator map[Point]float64

func (a Accumulator) Add(p Point, v float64) {
	a[p] += v
}

// Points returns the keys ordered by X, then Y.
func (a Accumulator) Points() []Point {
	points := make([]Point, 0, len(a))
	for p := range a {
		points = append(points, p)
	}
	sortPoints(points)
	return points
}

// Cluster is one grown blob. Members[0] is the seed, the rest are in the order they were added.
type Cluster struct {
	Seed    Point
	Base    float64
	Members []Point
	Values  []float64
}

type Options struct {
	Seeds  int
	Dim    int
	Strict bool // fail with ErrEmptyFrontier instead of skipping the growth step

	// called once per finished cluster, may be nil
	OnCluster func(Cluster)
}

type Stats struct {
	Seeds   int
	Steps   int
	Skipped int
	Points  int
}

func (o Options) validate() error {
	if o.Seeds < 0 {
		return fmt.Errorf("%w: seeds must not be negative, got %d", ErrInvalidOptions, o.Seeds)
	}
	if o.Dim <= 0 {
		return fmt.Errorf("%w: dim must be positive, got %d", ErrInvalidOptions, o.Dim)
	}
	if o.Dim > MaxDim {
		return fmt.Errorf("%w: dim must be at most %d, got %d", ErrInvalidOptions, MaxDim, o.Dim)
	}
	return nil
}

// Generate seeds opts.Seeds random points in [0, dim] and grows each one into a
// 4-connected cluster of 1 to 11 cells, summing the drawn values per cell.
func Generate(rng Rand, opts Options) (Accumulator, Stats, error) {
	return GenerateContext(context.Background(), rng, opts)
}

// GenerateContext is Generate with cancellation checked between clusters.
func GenerateContext(ctx context.Context, rng Rand, opts Options) (Accumulator, Stats, error) {
	var stats Stats
	if err := opts.validate(); err != nil {
		return nil, stats, err
	}

	acc := make(Accumulator)
	for i := 0; i < opts.Seeds; i++ {
		select {
		case <-ctx.Done():
			return nil, stats, ctx.Err()
		default:
		}

		cluster, skipped, err := growCluster(rng, opts, acc)
		if err != nil {
			return nil, stats, fmt.Errorf("seed %d: %w", i, err)
		}
		stats.Seeds++
		stats.Steps += len(cluster.Members) - 1
		stats.Skipped += skipped
		if opts.OnCluster != nil {
			opts.OnCluster(cluster)
		}
	}
	stats.Points = len(acc)
	return acc, stats, nil
}

func growCluster(rng Rand, opts Options, acc Accumulator) (Cluster, int, error) {
	seed := Point{X: rng.IntN(opts.Dim + 1), Y: rng.IntN(opts.Dim + 1)}
	base := minBaseValue + (maxBaseValue-minBaseValue)*rng.Float64()
	acc.Add(seed, base)

	cluster := Cluster{
		Seed:    seed,
		Base:    base,
		Members: []Point{seed},
		Values:  []float64{base},
	}
	members := map[Point]struct{}{seed: {}}

	skipped := 0
	steps := 1 + rng.IntN(maxGrowSteps)
	for s := 0; s < steps; s++ {
		frontier := Frontier(members, opts.Dim)
		if len(frontier) == 0 {
			if opts.Strict {
				return cluster, skipped, fmt.Errorf("%w: seed (%d, %d), step %d", ErrEmptyFrontier, seed.X, seed.Y, s)
			}
			skipped++
			continue
		}

		p := frontier[rng.IntN(len(frontier))]
		v := minGrowValue + (base-minGrowValue)*rng.Float64()
		acc.Add(p, v)
		members[p] = struct{}{}
		cluster.Members = append(cluster.Members, p)
		cluster.Values = append(cluster.Values, v)
	}
	return cluster, skipped, nil
}

func sortPoints(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		if points[i].X != points[j].X {
			return points[i].X < points[j].X
		}
		return points[i].Y < points[j].Y
	})
}
