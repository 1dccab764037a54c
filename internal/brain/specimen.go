package brain

import (
	"neuroflight/internal/genome"
	"neuroflight/internal/nn"
)

// Specimen is the evolvable form of a brain. Its topology lives in run
// configuration, never in the genome.
type Specimen struct {
	fitness float32
	genome  genome.Genome
}

func SpecimenFromBrain(b *Brain, fitness float32) Specimen {
	return Specimen{fitness: fitness, genome: b.Genome()}
}

// NewSpecimen spawns an unevaluated specimen.
func NewSpecimen(g genome.Genome) Specimen {
	return Specimen{genome: g}
}

func (s Specimen) Fitness() float32 {
	return s.fitness
}

func (s Specimen) Genome() genome.Genome {
	return s.genome
}

func (s Specimen) WithFitness(fitness float32) Specimen {
	s.fitness = fitness
	return s
}

func (s Specimen) Brain(topology nn.Topology) (*Brain, error) {
	return FromGenome(topology, s.genome)
}
