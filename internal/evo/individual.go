package evo

import "neuroflight/internal/genome"

// Individual is anything the engine can score and breed from.
// Fitness must be non-negative and deterministic for a given state.
type Individual interface {
	Fitness() float32
	Genome() genome.Genome
}

// Spawn builds a fresh individual from an offspring genome. Spawned
// individuals report zero fitness until they are evaluated again.
type Spawn[I Individual] func(genome.Genome) I
