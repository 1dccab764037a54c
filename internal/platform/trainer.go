// Package platform runs the generation loop: evaluate every specimen on a
// scape, breed the next generation and persist what happened.
package platform

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"neuroflight/internal/brain"
	"neuroflight/internal/evo"
	"neuroflight/internal/genome"
	"neuroflight/internal/model"
	"neuroflight/internal/nn"
	"neuroflight/internal/scape"
	"neuroflight/internal/stats"
	"neuroflight/internal/storage"
)

var (
	ErrUnknownStrategy    = errors.New("unknown strategy")
	ErrSnapshotNotFound   = errors.New("population snapshot not found")
	ErrTopologyMismatch   = errors.New("snapshot topology does not match run")
	errStoreRequired      = errors.New("store is required")
	errScapeRequired      = errors.New("scape is required")
	errPopulationTooSmall = errors.New("population size must be positive")
)

type Config struct {
	Store   storage.Store
	Logger  *slog.Logger
	Metrics *stats.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

type Trainer struct {
	store   storage.Store
	logger  *slog.Logger
	metrics *stats.Metrics
	now     func() time.Time
}

func NewTrainer(cfg Config) *Trainer {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Trainer{
		store:   cfg.Store,
		logger:  logger,
		metrics: cfg.Metrics,
		now:     now,
	}
}

type RunConfig struct {
	// RunID is generated when empty.
	RunID          string
	Scape          scape.Scape
	Seed           int64
	PopulationSize int
	Generations    int
	// Hidden overrides the default hidden layer; see brain.Topology.
	Hidden              []int
	Selection           string
	TournamentSize      int
	Crossover           string
	MutationChance      float32
	MutationCoefficient float32
	// ResumeFrom continues from the last population stored for that run.
	ResumeFrom string
	CSV        *stats.CSVWriter
}

type RunResult struct {
	Run      model.RunRecord
	Topology nn.Topology
	// Generations holds one entry per evaluated generation, in order.
	Generations []evo.Statistics
	Best        brain.Specimen
	Final       []brain.Specimen
}

// NewRNG seeds a ChaCha8 generator from a configuration seed.
func NewRNG(seed int64) *rand.Rand {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], uint64(seed))
	return rand.New(rand.NewChaCha8(key))
}

// TopologyFor lays out a network for s: the scape's inputs, the hidden
// layers (or the default doubled layer) and the scape's outputs.
func TopologyFor(s scape.Scape, hidden []int) nn.Topology {
	if len(hidden) == 0 {
		return brain.Topology(s.Inputs(), s.Outputs())
	}
	topology := nn.Topology{s.Inputs()}
	topology = append(topology, hidden...)
	return append(topology, s.Outputs())
}

func NewSelector(name string, tournamentSize int) (evo.Selector[brain.Specimen], error) {
	switch name {
	case "", "roulette_wheel":
		return evo.RouletteWheelSelection[brain.Specimen]{}, nil
	case "tournament":
		return evo.TournamentSelection[brain.Specimen]{Size: tournamentSize}, nil
	default:
		return nil, fmt.Errorf("%w: selection %q", ErrUnknownStrategy, name)
	}
}

func NewCrossover(name string) (evo.Crossover, error) {
	switch name {
	case "", "uniform":
		return evo.UniformCrossover{}, nil
	case "single_point":
		return evo.SinglePointCrossover{}, nil
	default:
		return nil, fmt.Errorf("%w: crossover %q", ErrUnknownStrategy, name)
	}
}

func (t *Trainer) Run(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if t.store == nil {
		return RunResult{}, errStoreRequired
	}
	if cfg.Scape == nil {
		return RunResult{}, errScapeRequired
	}
	if cfg.Generations < 0 {
		return RunResult{}, fmt.Errorf("generations must be >= 0, got %d", cfg.Generations)
	}

	topology := TopologyFor(cfg.Scape, cfg.Hidden)
	if err := topology.Validate(); err != nil {
		return RunResult{}, err
	}
	ga, err := newAlgorithm(cfg)
	if err != nil {
		return RunResult{}, err
	}

	runID := cfg.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	rng := NewRNG(cfg.Seed)
	logger := t.logger.With("run_id", runID, "scape", cfg.Scape.Name())

	population, offset, err := t.initialPopulation(ctx, rng, cfg, topology)
	if err != nil {
		return RunResult{}, err
	}

	chance, coefficient := mutationSettings(ga.Mutation())
	record := model.RunRecord{
		VersionedRecord:     storage.CurrentVersion(),
		ID:                  runID,
		CreatedAtUTC:        t.now().UTC(),
		Scape:               cfg.Scape.Name(),
		Seed:                cfg.Seed,
		PopulationSize:      len(population),
		Generations:         cfg.Generations,
		Topology:            slices.Clone(topology),
		Selection:           ga.Selection().Name(),
		Crossover:           ga.Crossover().Name(),
		MutationChance:      chance,
		MutationCoefficient: coefficient,
		ResumedFrom:         cfg.ResumeFrom,
	}
	if err := t.store.SaveRun(ctx, record); err != nil {
		return RunResult{}, fmt.Errorf("save run %s: %w", runID, err)
	}
	logger.Info("run started",
		"population", len(population),
		"generations", cfg.Generations,
		"topology", []int(topology),
		"resumed_from", cfg.ResumeFrom,
	)

	result := RunResult{Topology: topology}
	for i := range cfg.Generations {
		if err := ctx.Err(); err != nil {
			return RunResult{}, fmt.Errorf("run %s stopped before generation %d: %w", runID, offset+i+1, err)
		}
		generation := offset + i + 1

		evaluated, err := evaluate(ctx, cfg.Scape, topology, population)
		if err != nil {
			return RunResult{}, fmt.Errorf("generation %d: %w", generation, err)
		}
		result.Best = fittest(result.Best, evaluated)

		offspring, generationStats, err := ga.Evolve(rng, evaluated)
		if err != nil {
			return RunResult{}, fmt.Errorf("generation %d: evolve: %w", generation, err)
		}
		if err := t.recordGeneration(ctx, cfg.CSV, runID, generation, generationStats); err != nil {
			return RunResult{}, err
		}
		logger.Info("generation evolved", "generation", generation, "fitness", generationStats)

		result.Generations = append(result.Generations, generationStats)
		population = offspring
	}

	// Offspring of the last generation are scored once more so the stored
	// snapshot carries real fitness values.
	final, err := evaluate(ctx, cfg.Scape, topology, population)
	if err != nil {
		return RunResult{}, fmt.Errorf("final evaluation: %w", err)
	}
	result.Best = fittest(result.Best, final)
	result.Final = final

	lastGeneration := offset + cfg.Generations
	if err := t.store.SavePopulation(ctx, snapshotOf(runID, lastGeneration, topology, final)); err != nil {
		return RunResult{}, fmt.Errorf("save population %s: %w", runID, err)
	}

	record.FinalBest = fittest(brain.Specimen{}, final).Fitness()
	if err := t.store.SaveRun(ctx, record); err != nil {
		return RunResult{}, fmt.Errorf("save run %s: %w", runID, err)
	}
	result.Run = record

	logger.Info("run finished", "final_best", record.FinalBest, "best_ever", result.Best.Fitness())
	return result, nil
}

func newAlgorithm(cfg RunConfig) (*evo.GeneticAlgorithm[brain.Specimen], error) {
	selector, err := NewSelector(cfg.Selection, cfg.TournamentSize)
	if err != nil {
		return nil, err
	}
	crossover, err := NewCrossover(cfg.Crossover)
	if err != nil {
		return nil, err
	}
	mutation, err := evo.NewGaussianMutation(cfg.MutationChance, cfg.MutationCoefficient)
	if err != nil {
		return nil, err
	}
	return evo.New[brain.Specimen](selector, crossover, mutation, brain.NewSpecimen), nil
}

// mutationSettings reads back the rate and magnitude a mutation was built with.
func mutationSettings(m evo.Mutation) (chance, coefficient float32) {
	if gaussian, ok := m.(evo.GaussianMutation); ok {
		return gaussian.Chance(), gaussian.Coefficient()
	}
	return 0, 0
}

// initialPopulation returns the starting specimens and the number of
// generations already run before them.
func (t *Trainer) initialPopulation(ctx context.Context, rng *rand.Rand, cfg RunConfig, topology nn.Topology) ([]brain.Specimen, int, error) {
	if cfg.ResumeFrom != "" {
		snapshot, ok, err := t.store.GetPopulation(ctx, cfg.ResumeFrom)
		if err != nil {
			return nil, 0, fmt.Errorf("load population %s: %w", cfg.ResumeFrom, err)
		}
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", ErrSnapshotNotFound, cfg.ResumeFrom)
		}
		if !slices.Equal(snapshot.Topology, []int(topology)) {
			return nil, 0, fmt.Errorf("%w: stored %v, want %v", ErrTopologyMismatch, snapshot.Topology, topology)
		}
		population := make([]brain.Specimen, len(snapshot.Genomes))
		for i, g := range snapshot.Genomes {
			population[i] = brain.NewSpecimen(genome.New(g...))
		}
		if len(population) == 0 {
			return nil, 0, errPopulationTooSmall
		}
		return population, snapshot.Generation, nil
	}

	if cfg.PopulationSize <= 0 {
		return nil, 0, errPopulationTooSmall
	}
	population := make([]brain.Specimen, cfg.PopulationSize)
	for i := range population {
		b, err := brain.Random(rng, topology)
		if err != nil {
			return nil, 0, err
		}
		population[i] = brain.SpecimenFromBrain(b, 0)
	}
	return population, 0, nil
}

func evaluate(ctx context.Context, s scape.Scape, topology nn.Topology, population []brain.Specimen) ([]brain.Specimen, error) {
	evaluated := make([]brain.Specimen, len(population))
	for i, specimen := range population {
		b, err := specimen.Brain(topology)
		if err != nil {
			return nil, fmt.Errorf("specimen %d: %w", i, err)
		}
		fitness, err := s.Evaluate(ctx, b)
		if err != nil {
			return nil, fmt.Errorf("evaluate specimen %d on %s: %w", i, s.Name(), err)
		}
		evaluated[i] = specimen.WithFitness(float32(fitness))
	}
	return evaluated, nil
}

func (t *Trainer) recordGeneration(ctx context.Context, csv *stats.CSVWriter, runID string, generation int, s evo.Statistics) error {
	record := model.GenerationRecord{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           runID,
		Generation:      generation,
		Min:             s.Min,
		Max:             s.Max,
		Average:         s.Average,
		Median:          s.Median,
		StdDev:          s.StdDev,
	}
	if err := t.store.AppendGeneration(ctx, record); err != nil {
		return fmt.Errorf("append generation %d: %w", generation, err)
	}
	if err := csv.Write(stats.RowFromRecord(record)); err != nil {
		return err
	}
	t.metrics.Observe(s)
	return nil
}

// fittest returns the fittest of best and population, preferring best on ties.
func fittest(best brain.Specimen, population []brain.Specimen) brain.Specimen {
	for _, specimen := range population {
		if best.Genome() == nil || specimen.Fitness() > best.Fitness() {
			best = specimen
		}
	}
	return best
}

func snapshotOf(runID string, generation int, topology nn.Topology, population []brain.Specimen) model.PopulationSnapshot {
	snapshot := model.PopulationSnapshot{
		VersionedRecord: storage.CurrentVersion(),
		RunID:           runID,
		Generation:      generation,
		Topology:        slices.Clone(topology),
		Genomes:         make([][]float32, len(population)),
		Fitness:         make([]float32, len(population)),
	}
	for i, specimen := range population {
		snapshot.Genomes[i] = specimen.Genome().Clone()
		snapshot.Fitness[i] = specimen.Fitness()
	}
	return snapshot
}
