package evo

import (
	"math/rand/v2"

	"neuroflight/internal/genome"
)

func newTestRNG(seed uint64) *rand.Rand {
	var key [32]byte
	key[0] = byte(seed)
	key[1] = byte(seed >> 8)
	return rand.New(rand.NewChaCha8(key))
}

// testIndividual is either genome-backed, scoring the sum of its genes
// floored at zero, or fitness-only for selection tests.
type testIndividual struct {
	genome      genome.Genome
	fitness     float32
	fitnessOnly bool
}

func withGenome(values ...float32) testIndividual {
	return testIndividual{genome: genome.New(values...)}
}

func withFitness(fitness float32) testIndividual {
	return testIndividual{fitness: fitness, fitnessOnly: true}
}

func spawnTestIndividual(g genome.Genome) testIndividual {
	return testIndividual{genome: g}
}

func (i testIndividual) Fitness() float32 {
	if i.fitnessOnly {
		return i.fitness
	}
	return max(0, sumGenes(i.genome))
}

func sumGenes(g genome.Genome) float32 {
	var total float32
	for _, v := range g {
		total += v
	}
	return total
}

func (i testIndividual) Genome() genome.Genome {
	if i.fitnessOnly {
		panic("fitness-only test individual has no genome")
	}
	return i.genome
}

func fitnessOnlyPopulation(values ...float32) []testIndividual {
	population := make([]testIndividual, len(values))
	for i, f := range values {
		population[i] = withFitness(f)
	}
	return population
}
