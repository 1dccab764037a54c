// Package scape holds the tasks a brain is scored on. Every scape reports a
// non-negative fitness so results can feed fitness-proportional selection.
package scape

import (
	"context"
	"errors"
	"fmt"
	"math"
)

var errOutputSize = errors.New("unexpected output size")

type Fitness float32

// Agent is anything that maps sensor readings to outputs; *brain.Brain
// satisfies it.
type Agent interface {
	Think(inputs []float32) ([]float32, error)
}

type Scape interface {
	Name() string
	// Inputs and Outputs describe the network shape the scape drives.
	Inputs() int
	Outputs() int
	Evaluate(ctx context.Context, agent Agent) (Fitness, error)
}

type sample struct {
	in   []float32
	want float32
}

// scoreSamples awards each sample 1 - |out - want|, floored at zero.
func scoreSamples(ctx context.Context, name string, agent Agent, samples []sample) (Fitness, error) {
	var total float64
	for i, s := range samples {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		out, err := agent.Think(s.in)
		if err != nil {
			return 0, fmt.Errorf("%s sample %d: %w", name, i, err)
		}
		if len(out) != 1 {
			return 0, fmt.Errorf("%s requires one output: %w: got %d", name, errOutputSize, len(out))
		}
		total += max(0, 1-math.Abs(float64(out[0]-s.want)))
	}
	return Fitness(total), nil
}
