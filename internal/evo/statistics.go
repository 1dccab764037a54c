package evo

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistics summarises the fitness of one population.
type Statistics struct {
	Size    int
	Min     float32
	Max     float32
	Average float32
	Median  float32
	// StdDev is the population standard deviation.
	StdDev float32
}

func NewStatistics(fitness []float32) (Statistics, error) {
	if len(fitness) == 0 {
		return Statistics{}, ErrEmptyPopulation
	}

	values := make([]float64, len(fitness))
	for i, f := range fitness {
		values[i] = float64(f)
	}
	mean, std := stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return Statistics{
		Size:    len(values),
		Min:     float32(floats.Min(values)),
		Max:     float32(floats.Max(values)),
		Average: float32(mean),
		Median:  float32(stat.Quantile(0.5, stat.Empirical, sorted, nil)),
		StdDev:  float32(std),
	}, nil
}

func StatisticsOf[I Individual](population []I) (Statistics, error) {
	fitness := make([]float32, len(population))
	for i, individual := range population {
		fitness[i] = individual.Fitness()
	}
	return NewStatistics(fitness)
}

func (s Statistics) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("size", s.Size),
		slog.Float64("min", float64(s.Min)),
		slog.Float64("max", float64(s.Max)),
		slog.Float64("avg", float64(s.Average)),
		slog.Float64("median", float64(s.Median)),
		slog.Float64("stddev", float64(s.StdDev)),
	)
}
