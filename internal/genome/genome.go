// Package genome holds the flat gene sequence every evolved individual is
// encoded as.
package genome

import "iter"

// Genome is an ordered sequence of real-valued genes. Gene values are never
// validated; consumers check length compatibility.
type Genome []float32

// New copies values into a fresh genome.
func New(values ...float32) Genome {
	g := make(Genome, len(values))
	copy(g, values)
	return g
}

// Collect drains a finite sequence into a genome.
func Collect(seq iter.Seq[float32]) Genome {
	var g Genome
	for v := range seq {
		g = append(g, v)
	}
	return g
}

func (g Genome) Len() int {
	return len(g)
}

func (g Genome) At(i int) float32 {
	return g[i]
}

// All walks the genes in order without copying them.
func (g Genome) All() iter.Seq[float32] {
	return func(yield func(float32) bool) {
		for _, v := range g {
			if !yield(v) {
				return
			}
		}
	}
}

func (g Genome) Clone() Genome {
	return New(g...)
}
