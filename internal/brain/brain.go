// Package brain adapts neural networks to the evolutionary engine: a Brain
// wraps a network with its topology and a Specimen carries a brain genome
// through selection.
package brain

import (
	"fmt"
	"math/rand/v2"

	"neuroflight/internal/genome"
	"neuroflight/internal/nn"
)

// Topology returns the layer layout used for every brain: one hidden layer
// twice as wide as the input.
func Topology(inputs, outputs int) nn.Topology {
	return nn.Topology{inputs, 2 * inputs, outputs}
}

type Brain struct {
	network *nn.Network
}

func Random(rng *rand.Rand, topology nn.Topology) (*Brain, error) {
	network, err := nn.Random(rng, topology)
	if err != nil {
		return nil, fmt.Errorf("random brain: %w", err)
	}
	return &Brain{network: network}, nil
}

// FromGenome rebuilds a brain. The genome must hold exactly
// topology.ParameterCount() genes.
func FromGenome(topology nn.Topology, g genome.Genome) (*Brain, error) {
	network, err := nn.FromWeights(topology, g.All())
	if err != nil {
		return nil, fmt.Errorf("brain from genome: %w", err)
	}
	return &Brain{network: network}, nil
}

func (b *Brain) Genome() genome.Genome {
	return genome.Collect(b.network.Weights())
}

func (b *Brain) Topology() nn.Topology {
	return b.network.Topology()
}

// Think feeds sensor readings through the network.
func (b *Brain) Think(inputs []float32) ([]float32, error) {
	return b.network.Propagate(inputs)
}
