// Package nn implements layered feedforward networks whose parameters can be
// flattened into, and rebuilt from, a flat weight sequence.
package nn

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

var ErrDimensionMismatch = errors.New("input dimension mismatch")

type Network struct {
	topology Topology
	layers   []Layer
}

// Random builds a network whose biases and weights are drawn independently
// from [-1, 1]. Each neuron consumes its bias draw before its weights.
func Random(rng *rand.Rand, topology Topology) (*Network, error) {
	if rng == nil {
		return nil, errors.New("random source is required")
	}
	if err := topology.Validate(); err != nil {
		return nil, err
	}

	layers := make([]Layer, 0, len(topology)-1)
	for i := 1; i < len(topology); i++ {
		layers = append(layers, randomLayer(rng, topology[i-1], topology[i]))
	}
	return &Network{topology: slices.Clone(topology), layers: layers}, nil
}

func (n *Network) Topology() Topology {
	return slices.Clone(n.topology)
}

// Layers exposes the network structure. Callers must not modify it.
func (n *Network) Layers() []Layer {
	return n.layers
}

// Propagate feeds inputs through every layer in order.
func (n *Network) Propagate(inputs []float32) ([]float32, error) {
	if want := n.topology.Inputs(); len(inputs) != want {
		return nil, fmt.Errorf("%w: got %d inputs, first layer expects %d", ErrDimensionMismatch, len(inputs), want)
	}

	values := inputs
	for _, layer := range n.layers {
		values = layer.propagate(values)
	}
	return values, nil
}
