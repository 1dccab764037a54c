package evo

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	ErrEmptyPopulation = errors.New("empty population")
	ErrInvalidFitness  = errors.New("fitness must be finite and non-negative")

	errNilRNG = errors.New("random source is required")
)

// Selector picks one parent out of a population without modifying it.
type Selector[I Individual] interface {
	Name() string
	Select(rng *rand.Rand, population []I) (I, error)
}

// RouletteWheelSelection picks individuals with probability proportional to
// their fitness. When every fitness is zero it falls back to a uniform pick.
type RouletteWheelSelection[I Individual] struct{}

func (RouletteWheelSelection[I]) Name() string {
	return "roulette_wheel"
}

func (RouletteWheelSelection[I]) Select(rng *rand.Rand, population []I) (I, error) {
	var zero I
	if rng == nil {
		return zero, errNilRNG
	}
	if len(population) == 0 {
		return zero, ErrEmptyPopulation
	}

	weights := make([]float64, len(population))
	total := 0.0
	for i, individual := range population {
		f := float64(individual.Fitness())
		if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return zero, fmt.Errorf("%w: individual %d has fitness %v", ErrInvalidFitness, i, f)
		}
		weights[i] = f
		total += f
	}
	if total == 0 {
		return population[rng.IntN(len(population))], nil
	}

	// Rounded before the loop so no platform fuses it into the first subtraction.
	target := float64(rng.Float64() * total)
	for i, w := range weights {
		target -= w
		if target < 0 {
			return population[i], nil
		}
	}

	// Rounding can leave target at a tiny non-negative value; the wheel ends
	// at the last individual that owns a slice of it.
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return population[i], nil
		}
	}
	return population[len(population)-1], nil
}

// TournamentSelection draws Size individuals uniformly with replacement and
// keeps the fittest.
type TournamentSelection[I Individual] struct {
	Size int
}

func (TournamentSelection[I]) Name() string {
	return "tournament"
}

func (s TournamentSelection[I]) Select(rng *rand.Rand, population []I) (I, error) {
	var zero I
	if rng == nil {
		return zero, errNilRNG
	}
	if len(population) == 0 {
		return zero, ErrEmptyPopulation
	}

	size := s.Size
	if size <= 0 {
		size = 3
	}

	best := population[rng.IntN(len(population))]
	for i := 1; i < size; i++ {
		candidate := population[rng.IntN(len(population))]
		if candidate.Fitness() > best.Fitness() {
			best = candidate
		}
	}
	return best, nil
}
