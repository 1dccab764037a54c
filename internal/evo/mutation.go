package evo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"neuroflight/internal/genome"
)

var (
	ErrInvalidChance      = errors.New("mutation chance must be within [0, 1]")
	ErrInvalidCoefficient = errors.New("mutation coefficient must be non-negative")
)

// Mutation perturbs a genome in place.
type Mutation interface {
	Name() string
	Mutate(rng *rand.Rand, g genome.Genome)
}

// GaussianMutation touches each gene with probability chance and shifts a
// touched gene by a signed offset of magnitude uniform in [0, coefficient].
//
// chance 0 leaves genomes untouched; coefficient 0 touches genes without
// changing them.
type GaussianMutation struct {
	chance      float32
	coefficient float32
}

func NewGaussianMutation(chance, coefficient float32) (GaussianMutation, error) {
	if math.IsNaN(float64(chance)) || chance < 0 || chance > 1 {
		return GaussianMutation{}, fmt.Errorf("%w: got %v", ErrInvalidChance, chance)
	}
	if math.IsNaN(float64(coefficient)) || coefficient < 0 {
		return GaussianMutation{}, fmt.Errorf("%w: got %v", ErrInvalidCoefficient, coefficient)
	}
	return GaussianMutation{chance: chance, coefficient: coefficient}, nil
}

func (GaussianMutation) Name() string {
	return "gaussian"
}

func (m GaussianMutation) Chance() float32 {
	return m.chance
}

func (m GaussianMutation) Coefficient() float32 {
	return m.coefficient
}

func (m GaussianMutation) Mutate(rng *rand.Rand, g genome.Genome) {
	for i := range g {
		if rng.Float32() >= m.chance {
			continue
		}
		sign := float32(1)
		if rng.IntN(2) == 0 {
			sign = -1
		}
		// Rounding the product before the add rules out fused multiply-add,
		// so a seed mutates identically on every architecture.
		g[i] += sign * float32(m.coefficient*rng.Float32())
	}
}
