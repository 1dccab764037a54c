package genome

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesValues(t *testing.T) {
	values := []float32{1, 2, 3}
	g := New(values...)
	values[0] = 99

	require.Equal(t, 3, g.Len())
	assert.Equal(t, float32(1), g.At(0))
}

func TestCollectRoundTrip(t *testing.T) {
	g := New(0.5, -1.25, 3)
	back := Collect(g.All())

	assert.Equal(t, g, back)
}

func TestCollectEmptySequence(t *testing.T) {
	g := Collect(slices.Values([]float32{}))
	assert.Zero(t, g.Len())
}

func TestAllStopsEarly(t *testing.T) {
	g := New(1, 2, 3, 4)
	var seen []float32
	for v := range g.All() {
		seen = append(seen, v)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []float32{1, 2}, seen)
}

func TestCloneIsIndependent(t *testing.T) {
	g := New(1, 2)
	c := g.Clone()
	c[0] = 7

	assert.Equal(t, float32(1), g.At(0))
}
