package scape

import "context"

var regressionMimicSamples = []sample{
	{in: []float32{0}, want: 0},
	{in: []float32{0.25}, want: 0.25},
	{in: []float32{0.5}, want: 0.5},
	{in: []float32{0.75}, want: 0.75},
	{in: []float32{1}, want: 1},
}

// RegressionMimicScape evaluates a one-dimensional regression target y=x.
type RegressionMimicScape struct{}

func (RegressionMimicScape) Name() string {
	return "regression-mimic"
}

func (RegressionMimicScape) Inputs() int  { return 1 }
func (RegressionMimicScape) Outputs() int { return 1 }

func (RegressionMimicScape) Evaluate(ctx context.Context, agent Agent) (Fitness, error) {
	return scoreSamples(ctx, "regression-mimic", agent, regressionMimicSamples)
}
