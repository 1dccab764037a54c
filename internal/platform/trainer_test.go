package platform

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroflight/internal/evo"
	"neuroflight/internal/nn"
	"neuroflight/internal/scape"
	"neuroflight/internal/stats"
	"neuroflight/internal/storage"
)

var fixedNow = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

func newTestTrainer(t *testing.T, metrics *stats.Metrics) (*Trainer, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))
	trainer := NewTrainer(Config{
		Store:   store,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics: metrics,
		Now:     func() time.Time { return fixedNow },
	})
	return trainer, store
}

func xorRun(id string, generations int) RunConfig {
	return RunConfig{
		RunID:               id,
		Scape:               scape.XORScape{},
		Seed:                7,
		PopulationSize:      20,
		Generations:         generations,
		MutationChance:      0.1,
		MutationCoefficient: 0.3,
	}
}

func TestTrainerRunPersistsEveryGeneration(t *testing.T) {
	ctx := context.Background()
	trainer, store := newTestTrainer(t, nil)

	result, err := trainer.Run(ctx, xorRun("run-1", 5))
	require.NoError(t, err)

	require.Len(t, result.Generations, 5)
	assert.Equal(t, nn.Topology{2, 4, 1}, result.Topology)
	require.Len(t, result.Final, 20)
	for _, s := range result.Generations {
		assert.Equal(t, 20, s.Size)
		assert.GreaterOrEqual(t, result.Best.Fitness(), s.Max)
		assert.LessOrEqual(t, s.Max, float32(4))
	}

	run, ok, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "xor", run.Scape)
	assert.Equal(t, "roulette_wheel", run.Selection)
	assert.Equal(t, "uniform", run.Crossover)
	assert.Equal(t, float32(0.1), run.MutationChance)
	assert.Equal(t, float32(0.3), run.MutationCoefficient)
	assert.Equal(t, fixedNow, run.CreatedAtUTC)
	assert.Equal(t, result.Run, run)

	generations, ok, err := store.GetGenerations(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, generations, 5)
	for i, g := range generations {
		assert.Equal(t, i+1, g.Generation)
		assert.Equal(t, result.Generations[i].Max, g.Max)
	}

	snapshot, ok, err := store.GetPopulation(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5, snapshot.Generation)
	require.Len(t, snapshot.Genomes, 20)
	for _, g := range snapshot.Genomes {
		assert.Len(t, g, result.Topology.ParameterCount())
	}
	assert.Equal(t, slices.Max(snapshot.Fitness), run.FinalBest)
}

func TestTrainerRunIsDeterministicForSeed(t *testing.T) {
	first, _ := newTestTrainer(t, nil)
	second, _ := newTestTrainer(t, nil)

	a, err := first.Run(context.Background(), xorRun("same", 4))
	require.NoError(t, err)
	b, err := second.Run(context.Background(), xorRun("same", 4))
	require.NoError(t, err)

	assert.Equal(t, a.Generations, b.Generations)
	assert.Equal(t, a.Final, b.Final)
}

func TestTrainerResumeContinuesFromSnapshot(t *testing.T) {
	ctx := context.Background()
	trainer, store := newTestTrainer(t, nil)

	first, err := trainer.Run(ctx, xorRun("first", 3))
	require.NoError(t, err)

	cfg := xorRun("second", 2)
	cfg.ResumeFrom = "first"
	cfg.PopulationSize = 0
	second, err := trainer.Run(ctx, cfg)
	require.NoError(t, err)

	finalFitness := make([]float32, len(first.Final))
	for i, s := range first.Final {
		finalFitness[i] = s.Fitness()
	}
	require.Len(t, second.Generations, 2)
	assert.Equal(t, slices.Max(finalFitness), second.Generations[0].Max)
	assert.Equal(t, "first", second.Run.ResumedFrom)
	assert.Equal(t, 20, second.Run.PopulationSize)

	generations, _, err := store.GetGenerations(ctx, "second")
	require.NoError(t, err)
	require.Len(t, generations, 2)
	assert.Equal(t, 4, generations[0].Generation)
	assert.Equal(t, 5, generations[1].Generation)

	snapshot, _, err := store.GetPopulation(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, 5, snapshot.Generation)
}

func TestTrainerResumeErrors(t *testing.T) {
	ctx := context.Background()
	trainer, _ := newTestTrainer(t, nil)

	cfg := xorRun("orphan", 1)
	cfg.ResumeFrom = "missing"
	_, err := trainer.Run(ctx, cfg)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = trainer.Run(ctx, xorRun("base", 1))
	require.NoError(t, err)

	cfg = xorRun("reshaped", 1)
	cfg.ResumeFrom = "base"
	cfg.Hidden = []int{3}
	_, err = trainer.Run(ctx, cfg)
	assert.ErrorIs(t, err, ErrTopologyMismatch)
}

func TestTrainerRunWritesCSVAndMetrics(t *testing.T) {
	metrics := stats.NewMetrics()
	trainer, _ := newTestTrainer(t, metrics)

	path := filepath.Join(t.TempDir(), "generations.csv")
	csv, err := stats.NewCSVWriter(path)
	require.NoError(t, err)

	cfg := xorRun("csv", 3)
	cfg.CSV = csv
	cfg.Selection = "tournament"
	cfg.TournamentSize = 2
	cfg.Crossover = "single_point"
	cfg.Hidden = []int{4, 3}
	result, err := trainer.Run(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, csv.Close())
	assert.Equal(t, nn.Topology{2, 4, 3, 1}, result.Topology)
	assert.Equal(t, "tournament", result.Run.Selection)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := stats.ReadGenerationsCSV(f)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "csv", rows[0].RunID)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "neuroflight_generations_total 3"), rec.Body.String())
}

func TestTrainerRunWithoutGenerations(t *testing.T) {
	ctx := context.Background()
	trainer, store := newTestTrainer(t, nil)

	result, err := trainer.Run(ctx, xorRun("", 0))
	require.NoError(t, err)
	assert.Empty(t, result.Generations)
	assert.NotEmpty(t, result.Run.ID)

	snapshot, ok, err := store.GetPopulation(ctx, result.Run.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Zero(t, snapshot.Generation)
}

func TestTrainerRunStopsOnCancel(t *testing.T) {
	trainer, _ := newTestTrainer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := trainer.Run(ctx, xorRun("cancelled", 3))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTrainerRunRejectsBadConfig(t *testing.T) {
	trainer, _ := newTestTrainer(t, nil)
	ctx := context.Background()

	cfg := xorRun("bad", 1)
	cfg.Selection = "rank"
	_, err := trainer.Run(ctx, cfg)
	assert.ErrorIs(t, err, ErrUnknownStrategy)

	cfg = xorRun("bad", 1)
	cfg.MutationChance = 2
	_, err = trainer.Run(ctx, cfg)
	assert.ErrorIs(t, err, evo.ErrInvalidChance)

	cfg = xorRun("bad", 1)
	cfg.PopulationSize = 0
	_, err = trainer.Run(ctx, cfg)
	assert.Error(t, err)

	cfg = xorRun("bad", 1)
	cfg.Scape = nil
	_, err = trainer.Run(ctx, cfg)
	assert.Error(t, err)

	_, err = NewTrainer(Config{}).Run(ctx, xorRun("bad", 1))
	assert.Error(t, err)
}

func TestTopologyFor(t *testing.T) {
	assert.Equal(t, nn.Topology{1, 2, 1}, TopologyFor(scape.RegressionMimicScape{}, nil))
	assert.Equal(t, nn.Topology{2, 5, 1}, TopologyFor(scape.XORScape{}, []int{5}))
}
