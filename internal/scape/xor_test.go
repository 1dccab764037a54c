package scape

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroflight/internal/brain"
	"neuroflight/internal/genome"
)

type constantAgent struct {
	out []float32
	err error
}

func (a constantAgent) Think([]float32) ([]float32, error) {
	return a.out, a.err
}

// xorBrain solves XOR exactly with ReLU units:
// out = relu(relu(a+b) - 2*relu(a+b-1)).
func xorBrain(t *testing.T) *brain.Brain {
	t.Helper()
	g := genome.New(
		0, 1, 1,
		-1, 1, 1,
		0, 0, 0,
		0, 0, 0,
		0, 1, -2, 0, 0,
	)
	b, err := brain.FromGenome(brain.Topology(2, 1), g)
	require.NoError(t, err)
	return b
}

func TestXORScapePerfectAgent(t *testing.T) {
	fitness, err := XORScape{}.Evaluate(context.Background(), xorBrain(t))
	require.NoError(t, err)
	assert.InDelta(t, 4, float64(fitness), 1e-6)
}

func TestXORScapeConstantAgent(t *testing.T) {
	fitness, err := XORScape{}.Evaluate(context.Background(), constantAgent{out: []float32{0.5}})
	require.NoError(t, err)
	assert.InDelta(t, 2, float64(fitness), 1e-6)

	// Outputs far from every target floor at zero instead of going negative.
	fitness, err = XORScape{}.Evaluate(context.Background(), constantAgent{out: []float32{7}})
	require.NoError(t, err)
	assert.Zero(t, fitness)
}

func TestXORScapeErrors(t *testing.T) {
	ctx := context.Background()

	_, err := XORScape{}.Evaluate(ctx, constantAgent{out: []float32{0, 1}})
	assert.ErrorIs(t, err, errOutputSize)

	boom := errors.New("boom")
	_, err = XORScape{}.Evaluate(ctx, constantAgent{err: boom})
	assert.ErrorIs(t, err, boom)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = XORScape{}.Evaluate(cancelled, constantAgent{out: []float32{0}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegressionMimicScape(t *testing.T) {
	fitness, err := RegressionMimicScape{}.Evaluate(context.Background(), constantAgent{out: []float32{0.5}})
	require.NoError(t, err)
	// |0.5 - x| over 0, .25, .5, .75, 1 sums to 1.5.
	assert.InDelta(t, 3.5, float64(fitness), 1e-6)
}

func TestLookup(t *testing.T) {
	s, err := Lookup("scape_xor_sim")
	require.NoError(t, err)
	assert.Equal(t, "xor", s.Name())
	assert.Equal(t, 2, s.Inputs())
	assert.Equal(t, 1, s.Outputs())

	s, err = Lookup("regression_mimic")
	require.NoError(t, err)
	assert.Equal(t, "regression-mimic", s.Name())

	_, err = Lookup("flatland")
	assert.ErrorIs(t, err, ErrUnknownScape)

	assert.Equal(t, []string{"regression-mimic", "xor"}, Names())
}
