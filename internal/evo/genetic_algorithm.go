package evo

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var errMissingStrategy = errors.New("genetic algorithm requires selection, crossover, mutation and spawn")

// GeneticAlgorithm composes one selection, crossover and mutation strategy.
// It holds no state between calls to Evolve.
type GeneticAlgorithm[I Individual] struct {
	selection Selector[I]
	crossover Crossover
	mutation  Mutation
	spawn     Spawn[I]
}

func New[I Individual](selection Selector[I], crossover Crossover, mutation Mutation, spawn Spawn[I]) *GeneticAlgorithm[I] {
	return &GeneticAlgorithm[I]{
		selection: selection,
		crossover: crossover,
		mutation:  mutation,
		spawn:     spawn,
	}
}

func (ga *GeneticAlgorithm[I]) Selection() Selector[I] { return ga.selection }
func (ga *GeneticAlgorithm[I]) Crossover() Crossover   { return ga.crossover }
func (ga *GeneticAlgorithm[I]) Mutation() Mutation     { return ga.mutation }

// Evolve produces a same-sized offspring population along with statistics
// describing the fitness of the input population. Each child comes from two
// independently selected parents, which may be the same individual.
//
// Any error aborts the whole generation; no partial population is returned.
func (ga *GeneticAlgorithm[I]) Evolve(rng *rand.Rand, population []I) ([]I, Statistics, error) {
	if ga.selection == nil || ga.crossover == nil || ga.mutation == nil || ga.spawn == nil {
		return nil, Statistics{}, errMissingStrategy
	}
	if rng == nil {
		return nil, Statistics{}, errNilRNG
	}
	if len(population) == 0 {
		return nil, Statistics{}, ErrEmptyPopulation
	}

	stats, err := StatisticsOf(population)
	if err != nil {
		return nil, Statistics{}, err
	}

	offspring := make([]I, 0, len(population))
	for i := range population {
		parentA, err := ga.selection.Select(rng, population)
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("offspring %d: select first parent: %w", i, err)
		}
		parentB, err := ga.selection.Select(rng, population)
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("offspring %d: select second parent: %w", i, err)
		}

		child, err := ga.crossover.Crossover(rng, parentA.Genome(), parentB.Genome())
		if err != nil {
			return nil, Statistics{}, fmt.Errorf("offspring %d: %s crossover: %w", i, ga.crossover.Name(), err)
		}
		// Crossover may hand back a parent's own slice.
		child = child.Clone()
		ga.mutation.Mutate(rng, child)
		offspring = append(offspring, ga.spawn(child))
	}
	return offspring, stats, nil
}
