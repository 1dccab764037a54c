package scape

import "context"

var xorSamples = []sample{
	{in: []float32{0, 0}, want: 0},
	{in: []float32{0, 1}, want: 1},
	{in: []float32{1, 0}, want: 1},
	{in: []float32{1, 1}, want: 0},
}

// XORScape scores an agent on the four XOR cases. A perfect agent scores 4.
type XORScape struct{}

func (XORScape) Name() string {
	return "xor"
}

func (XORScape) Inputs() int  { return 2 }
func (XORScape) Outputs() int { return 1 }

func (XORScape) Evaluate(ctx context.Context, agent Agent) (Fitness, error) {
	return scoreSamples(ctx, "xor", agent, xorSamples)
}
