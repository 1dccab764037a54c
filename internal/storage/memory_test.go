package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroflight/internal/model"
)

func newInitializedStore(t *testing.T, store Store) {
	t.Helper()
	require.NoError(t, store.Init(context.Background()), "init")
}

func generationRecord(runID string, generation int, best float32) model.GenerationRecord {
	return model.GenerationRecord{
		VersionedRecord: CurrentVersion(),
		RunID:           runID,
		Generation:      generation,
		Max:             best,
	}
}

// exerciseStore runs the same behavioural checks against any backend.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		run := model.RunRecord{
			VersionedRecord: CurrentVersion(),
			ID:              id,
			CreatedAtUTC:    base.Add(time.Duration(i) * time.Minute),
			Scape:           "xor",
			Topology:        []int{2, 4, 1},
		}
		require.NoError(t, store.SaveRun(ctx, run), "save run %s", id)
	}

	run, ok, err := store.GetRun(ctx, "run-b")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "run-b", run.ID)
	assert.Equal(t, []int{2, 4, 1}, run.Topology)

	_, ok, err = store.GetRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-c", runs[0].ID, "newest first")
	assert.Equal(t, "run-a", runs[2].ID)

	limited, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-c", limited[0].ID)

	for _, generation := range []int{1, 3, 2} {
		require.NoError(t, store.AppendGeneration(ctx, generationRecord("run-a", generation, float32(generation))))
	}
	generations, ok, err := store.GetGenerations(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, generations, 3)
	for i, g := range generations {
		assert.Equal(t, i+1, g.Generation, "generations come back in order")
	}

	require.NoError(t, store.AppendGeneration(ctx, generationRecord("run-a", 2, 20)))
	generations, _, err = store.GetGenerations(ctx, "run-a")
	require.NoError(t, err)
	require.Len(t, generations, 3, "a repeated generation replaces the stored one")
	assert.Equal(t, float32(20), generations[1].Max)

	_, ok, err = store.GetGenerations(ctx, "run-b")
	require.NoError(t, err)
	assert.False(t, ok)

	first := model.PopulationSnapshot{
		VersionedRecord: CurrentVersion(),
		RunID:           "run-a",
		Generation:      1,
		Topology:        []int{1, 2, 1},
		Genomes:         [][]float32{{1, 2, 3, 4, 5, 6, 7}},
		Fitness:         []float32{0.5},
	}
	require.NoError(t, store.SavePopulation(ctx, first))
	latest := first
	latest.Generation = 3
	latest.Fitness = []float32{0.75}
	require.NoError(t, store.SavePopulation(ctx, latest))

	snapshot, ok, err := store.GetPopulation(ctx, "run-a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, snapshot.Generation)
	assert.Equal(t, []float32{0.75}, snapshot.Fitness)
	assert.Equal(t, float32(7), snapshot.Genomes[0][6])
}

func TestMemoryStoreBehaviour(t *testing.T) {
	store := NewMemoryStore()
	newInitializedStore(t, store)
	exerciseStore(t, store)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	newInitializedStore(t, store)

	snapshot := model.PopulationSnapshot{
		VersionedRecord: CurrentVersion(),
		RunID:           "run-1",
		Genomes:         [][]float32{{1, 2}},
		Fitness:         []float32{1},
	}
	require.NoError(t, store.SavePopulation(ctx, snapshot))
	snapshot.Genomes[0][0] = 99

	loaded, _, err := store.GetPopulation(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, float32(1), loaded.Genomes[0][0], "store aliased caller slice")
	loaded.Genomes[0][1] = 99

	again, _, err := store.GetPopulation(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, float32(2), again.Genomes[0][1], "store handed out internal slice")
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	assert.Error(t, store.SaveRun(context.Background(), model.RunRecord{ID: "r"}))
}
