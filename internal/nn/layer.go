package nn

import "math/rand/v2"

type Neuron struct {
	Bias    float32
	Weights []float32
}

func randomNeuron(rng *rand.Rand, inputs int) Neuron {
	bias := uniformWeight(rng)
	weights := make([]float32, inputs)
	for i := range weights {
		weights[i] = uniformWeight(rng)
	}
	return Neuron{Bias: bias, Weights: weights}
}

func (n Neuron) propagate(inputs []float32) float32 {
	total := n.Bias
	for i, w := range n.Weights {
		total += w * inputs[i]
	}
	return ReLU(total)
}

type Layer struct {
	Neurons []Neuron
}

func randomLayer(rng *rand.Rand, inputs, outputs int) Layer {
	neurons := make([]Neuron, outputs)
	for i := range neurons {
		neurons[i] = randomNeuron(rng, inputs)
	}
	return Layer{Neurons: neurons}
}

// InputSize is the weight-vector length shared by every neuron in the layer.
func (l Layer) InputSize() int {
	if len(l.Neurons) == 0 {
		return 0
	}
	return len(l.Neurons[0].Weights)
}

func (l Layer) propagate(inputs []float32) []float32 {
	out := make([]float32, len(l.Neurons))
	for i, neuron := range l.Neurons {
		out[i] = neuron.propagate(inputs)
	}
	return out
}

// uniformWeight draws from [-1, 1); the upper endpoint is excluded.
func uniformWeight(rng *rand.Rand) float32 {
	return rng.Float32()*2 - 1
}
