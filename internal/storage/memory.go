package storage

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"neuroflight/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	runs        map[string]model.RunRecord
	generations map[string][]model.GenerationRecord
	populations map[string]model.PopulationSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.runs = make(map[string]model.RunRecord)
	s.generations = make(map[string][]model.GenerationRecord)
	s.populations = make(map[string]model.PopulationSnapshot)
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run model.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	run.Topology = slices.Clone(run.Topology)
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (model.RunRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	if !ok {
		return model.RunRecord{}, false, nil
	}
	run.Topology = slices.Clone(run.Topology)
	return run, true, nil
}

func (s *MemoryStore) ListRuns(_ context.Context, limit int) ([]model.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.RunRecord, 0, len(s.runs))
	for _, run := range s.runs {
		run.Topology = slices.Clone(run.Topology)
		runs = append(runs, run)
	}
	sortRunsNewestFirst(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (s *MemoryStore) AppendGeneration(_ context.Context, record model.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	// One record per generation, kept in generation order; a repeat replaces.
	generations := s.generations[record.RunID]
	i, found := slices.BinarySearchFunc(generations, record.Generation, func(g model.GenerationRecord, generation int) int {
		return cmp.Compare(g.Generation, generation)
	})
	if found {
		generations[i] = record
	} else {
		generations = slices.Insert(generations, i, record)
	}
	s.generations[record.RunID] = generations
	return nil
}

func (s *MemoryStore) GetGenerations(_ context.Context, runID string) ([]model.GenerationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	generations, ok := s.generations[runID]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(generations), true, nil
}

func (s *MemoryStore) SavePopulation(_ context.Context, snapshot model.PopulationSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.populations[snapshot.RunID] = cloneSnapshot(snapshot)
	return nil
}

func (s *MemoryStore) GetPopulation(_ context.Context, runID string) (model.PopulationSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.populations[runID]
	if !ok {
		return model.PopulationSnapshot{}, false, nil
	}
	return cloneSnapshot(snapshot), true, nil
}

func cloneSnapshot(snapshot model.PopulationSnapshot) model.PopulationSnapshot {
	snapshot.Topology = slices.Clone(snapshot.Topology)
	snapshot.Fitness = slices.Clone(snapshot.Fitness)
	genomes := make([][]float32, len(snapshot.Genomes))
	for i, g := range snapshot.Genomes {
		genomes[i] = slices.Clone(g)
	}
	snapshot.Genomes = genomes
	return snapshot
}

func sortRunsNewestFirst(runs []model.RunRecord) {
	slices.SortStableFunc(runs, func(a, b model.RunRecord) int {
		if c := b.CreatedAtUTC.Compare(a.CreatedAtUTC); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
