package evo

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"neuroflight/internal/genome"
)

var ErrGenomeLengthMismatch = errors.New("parent genomes differ in length")

// Crossover recombines two equal-length parent genomes into a new one.
type Crossover interface {
	Name() string
	Crossover(rng *rand.Rand, a, b genome.Genome) (genome.Genome, error)
}

// UniformCrossover flips a fair coin for every gene position.
type UniformCrossover struct{}

func (UniformCrossover) Name() string {
	return "uniform"
}

func (UniformCrossover) Crossover(rng *rand.Rand, a, b genome.Genome) (genome.Genome, error) {
	if err := checkParents(rng, a, b); err != nil {
		return nil, err
	}

	child := make(genome.Genome, a.Len())
	for i := range child {
		if rng.IntN(2) == 0 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
	}
	return child, nil
}

// SinglePointCrossover takes a prefix of a and the matching suffix of b.
type SinglePointCrossover struct{}

func (SinglePointCrossover) Name() string {
	return "single_point"
}

func (SinglePointCrossover) Crossover(rng *rand.Rand, a, b genome.Genome) (genome.Genome, error) {
	if err := checkParents(rng, a, b); err != nil {
		return nil, err
	}

	cut := rng.IntN(a.Len() + 1)
	child := make(genome.Genome, 0, a.Len())
	child = append(child, a[:cut]...)
	child = append(child, b[cut:]...)
	return child, nil
}

func checkParents(rng *rand.Rand, a, b genome.Genome) error {
	if rng == nil {
		return errNilRNG
	}
	if a.Len() != b.Len() {
		return fmt.Errorf("%w: %d vs %d", ErrGenomeLengthMismatch, a.Len(), b.Len())
	}
	return nil
}
