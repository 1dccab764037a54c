package nn

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	ErrTooFewWeights  = errors.New("not enough weights for topology")
	ErrTooManyWeights = errors.New("unconsumed weights after last layer")
)

// Weights yields every neuron's bias immediately followed by its weights,
// layer by layer. This ordering is the genome encoding FromWeights expects.
func (n *Network) Weights() iter.Seq[float32] {
	return func(yield func(float32) bool) {
		for _, layer := range n.layers {
			for _, neuron := range layer.Neurons {
				if !yield(neuron.Bias) {
					return
				}
				for _, w := range neuron.Weights {
					if !yield(w) {
						return
					}
				}
			}
		}
	}
}

// FromWeights rebuilds a network of the given shape, consuming exactly
// topology.ParameterCount() values.
func FromWeights(topology Topology, values iter.Seq[float32]) (*Network, error) {
	if err := topology.Validate(); err != nil {
		return nil, err
	}

	next, stop := iter.Pull(values)
	defer stop()

	layers := make([]Layer, 0, len(topology)-1)
	for i := 1; i < len(topology); i++ {
		layer, err := layerFromWeights(topology[i-1], topology[i], next)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i-1, err)
		}
		layers = append(layers, layer)
	}

	// Stop at the first extra value; values may be unbounded.
	if _, ok := next(); ok {
		return nil, ErrTooManyWeights
	}
	return &Network{topology: slices.Clone(topology), layers: layers}, nil
}

func layerFromWeights(inputs, outputs int, next func() (float32, bool)) (Layer, error) {
	neurons := make([]Neuron, outputs)
	for i := range neurons {
		neuron, err := neuronFromWeights(inputs, next)
		if err != nil {
			return Layer{}, fmt.Errorf("neuron %d: %w", i, err)
		}
		neurons[i] = neuron
	}
	return Layer{Neurons: neurons}, nil
}

func neuronFromWeights(inputs int, next func() (float32, bool)) (Neuron, error) {
	bias, ok := next()
	if !ok {
		return Neuron{}, fmt.Errorf("%w: missing bias", ErrTooFewWeights)
	}
	weights := make([]float32, inputs)
	for i := range weights {
		w, ok := next()
		if !ok {
			return Neuron{}, fmt.Errorf("%w: missing weight %d of %d", ErrTooFewWeights, i, inputs)
		}
		weights[i] = w
	}
	return Neuron{Bias: bias, Weights: weights}, nil
}
