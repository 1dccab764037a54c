package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord describes one training run and how it ended.
type RunRecord struct {
	VersionedRecord
	ID                  string    `json:"id"`
	CreatedAtUTC        time.Time `json:"created_at_utc"`
	Scape               string    `json:"scape"`
	Seed                int64     `json:"seed"`
	PopulationSize      int       `json:"population_size"`
	Generations         int       `json:"generations"`
	Topology            []int     `json:"topology"`
	Selection           string    `json:"selection"`
	Crossover           string    `json:"crossover"`
	MutationChance      float32   `json:"mutation_chance"`
	MutationCoefficient float32   `json:"mutation_coefficient"`
	FinalBest           float32   `json:"final_best"`
	ResumedFrom         string    `json:"resumed_from,omitempty"`
}

// GenerationRecord holds the fitness statistics of one evaluated generation.
type GenerationRecord struct {
	VersionedRecord
	RunID      string  `json:"run_id"`
	Generation int     `json:"generation"`
	Min        float32 `json:"min"`
	Max        float32 `json:"max"`
	Average    float32 `json:"average"`
	Median     float32 `json:"median"`
	StdDev     float32 `json:"stddev"`
}

// PopulationSnapshot stores enough of a population to resume training:
// every genome with its last evaluated fitness.
type PopulationSnapshot struct {
	VersionedRecord
	RunID      string      `json:"run_id"`
	Generation int         `json:"generation"`
	Topology   []int       `json:"topology"`
	Genomes    [][]float32 `json:"genomes"`
	Fitness    []float32   `json:"fitness"`
}
