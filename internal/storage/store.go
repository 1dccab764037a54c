package storage

import (
	"context"

	"neuroflight/internal/model"
)

// Store persists training runs: the run record itself, per-generation
// statistics and the latest population snapshot used for resuming.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.RunRecord) error
	GetRun(ctx context.Context, id string) (model.RunRecord, bool, error)
	// ListRuns returns runs newest first. limit <= 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)
	AppendGeneration(ctx context.Context, record model.GenerationRecord) error
	GetGenerations(ctx context.Context, runID string) ([]model.GenerationRecord, bool, error)
	SavePopulation(ctx context.Context, snapshot model.PopulationSnapshot) error
	GetPopulation(ctx context.Context, runID string) (model.PopulationSnapshot, bool, error)
}
