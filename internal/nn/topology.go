package nn

import (
	"errors"
	"fmt"
)

var ErrInvalidTopology = errors.New("invalid topology")

// Topology lists layer sizes from the external inputs to the outputs.
type Topology []int

func (t Topology) Validate() error {
	if len(t) < 2 {
		return fmt.Errorf("%w: need at least 2 layer sizes, got %d", ErrInvalidTopology, len(t))
	}
	for i, size := range t {
		if size <= 0 {
			return fmt.Errorf("%w: layer %d has size %d", ErrInvalidTopology, i, size)
		}
	}
	return nil
}

func (t Topology) Inputs() int {
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

func (t Topology) Outputs() int {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1]
}

// ParameterCount is the genome length a network of this shape encodes to:
// one bias plus one weight per input for every neuron.
func (t Topology) ParameterCount() int {
	total := 0
	for i := 1; i < len(t); i++ {
		total += t[i] * (t[i-1] + 1)
	}
	return total
}
