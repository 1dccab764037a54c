// Package neuroflight is the public entry point for training and inspecting
// evolved neural network runs.
package neuroflight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"neuroflight/internal/config"
	"neuroflight/internal/evo"
	"neuroflight/internal/model"
	"neuroflight/internal/nn"
	"neuroflight/internal/platform"
	"neuroflight/internal/scape"
	"neuroflight/internal/stats"
	"neuroflight/internal/storage"
)

const (
	defaultExportsDir = "exports"
	defaultDBPath     = "neuroflight.db"
	defaultRunsLimit  = 20
)

var ErrRunNotFound = errors.New("run not found")

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
	Logger     *slog.Logger
	// Metrics receives per-generation fitness when set.
	Metrics *stats.Metrics
}

type Client struct {
	store      storage.Store
	trainer    *platform.Trainer
	logger     *slog.Logger
	exportsDir string

	initOnce sync.Once
	initErr  error
}

type RunRequest struct {
	// Config defaults to config.Default() when nil.
	Config *config.Config
	// RunID is generated when empty.
	RunID string
}

type RunSummary struct {
	RunID string
	// OutputDir holds generations.csv and config.yaml; empty when output
	// is disabled.
	OutputDir string
	Topology  nn.Topology
	// PopulationSize is the size actually evolved; a resumed run takes it
	// from the stored snapshot.
	PopulationSize      int
	MutationChance      float32
	MutationCoefficient float32
	Generations         []evo.Statistics
	FinalBest           float32
	BestEver            float32
	Elapsed             time.Duration
}

type ExportRequest struct {
	RunID  string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	RunID     string
	Directory string
}

// ExportedRun is a run read back from an export directory.
type ExportedRun struct {
	Run         model.RunRecord
	Generations []stats.GenerationRow
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: store,
		trainer: platform.NewTrainer(platform.Config{
			Store:   store,
			Logger:  logger,
			Metrics: opts.Metrics,
		}),
		logger:     logger,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store. It is safe to call more than once; every other
// method calls it.
func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	cfg := req.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return RunSummary{}, err
	}
	target, err := scape.Lookup(cfg.Run.Scape)
	if err != nil {
		return RunSummary{}, err
	}

	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	var (
		outputDir string
		csv       *stats.CSVWriter
	)
	if cfg.Output.Dir != "" {
		outputDir = filepath.Join(cfg.Output.Dir, runID)
		csv, err = stats.NewCSVWriter(filepath.Join(outputDir, "generations.csv"))
		if err != nil {
			return RunSummary{}, err
		}
		defer csv.Close()
		if err := cfg.WriteYAML(filepath.Join(outputDir, "config.yaml")); err != nil {
			return RunSummary{}, err
		}
	}

	started := time.Now()
	result, err := c.trainer.Run(ctx, platform.RunConfig{
		RunID:               runID,
		Scape:               target,
		Seed:                cfg.Run.Seed,
		PopulationSize:      cfg.Population.Size,
		Generations:         cfg.Run.Generations,
		Hidden:              cfg.Network.Hidden,
		Selection:           cfg.Selection.Method,
		TournamentSize:      cfg.Selection.TournamentSize,
		Crossover:           cfg.Crossover.Method,
		MutationChance:      float32(cfg.Mutation.Chance),
		MutationCoefficient: float32(cfg.Mutation.Coefficient),
		ResumeFrom:          cfg.Run.Resume,
		CSV:                 csv,
	})
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:               result.Run.ID,
		OutputDir:           outputDir,
		Topology:            result.Topology,
		PopulationSize:      result.Run.PopulationSize,
		MutationChance:      result.Run.MutationChance,
		MutationCoefficient: result.Run.MutationCoefficient,
		Generations:         result.Generations,
		FinalBest:           result.Run.FinalBest,
		BestEver:            result.Best.Fitness(),
		Elapsed:             time.Since(started),
	}, nil
}

// Runs lists stored runs, newest first. limit <= 0 uses a default of 20.
func (c *Client) Runs(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRunsLimit
	}
	return c.store.ListRuns(ctx, limit)
}

func (c *Client) Generations(ctx context.Context, runID string) ([]model.GenerationRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if _, ok, err := c.store.GetRun(ctx, runID); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	generations, _, err := c.store.GetGenerations(ctx, runID)
	if err != nil {
		return nil, err
	}
	return generations, nil
}

// Export writes run.json, generations.csv and population.json for one run.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.RunID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either run id or latest")
	}
	if req.RunID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires run id or latest")
	}
	if err := c.Init(ctx); err != nil {
		return ExportSummary{}, err
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	runID := req.RunID
	if req.Latest {
		runs, err := c.store.ListRuns(ctx, 1)
		if err != nil {
			return ExportSummary{}, err
		}
		if len(runs) == 0 {
			return ExportSummary{}, errors.New("no runs available to export")
		}
		runID = runs[0].ID
	}

	run, ok, err := c.store.GetRun(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if !ok {
		return ExportSummary{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	generations, _, err := c.store.GetGenerations(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	artifacts := stats.RunArtifacts{Run: run, Generations: generations}
	snapshot, ok, err := c.store.GetPopulation(ctx, runID)
	if err != nil {
		return ExportSummary{}, err
	}
	if ok {
		artifacts.Population = &snapshot
	}

	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return ExportSummary{}, err
	}
	dir, err := stats.WriteRunArtifacts(req.OutDir, artifacts)
	if err != nil {
		return ExportSummary{}, err
	}
	c.logger.Info("run exported", "run_id", runID, "dir", dir)
	return ExportSummary{RunID: runID, Directory: filepath.Clean(dir)}, nil
}

// ReadExport loads a directory written by Export. It needs no store.
func ReadExport(dir string) (ExportedRun, error) {
	run, ok, err := stats.ReadRunRecord(dir)
	if err != nil {
		return ExportedRun{}, err
	}
	if !ok {
		return ExportedRun{}, fmt.Errorf("%w: no run.json in %s", ErrRunNotFound, dir)
	}
	generations, err := stats.ReadRunGenerations(dir)
	if err != nil {
		return ExportedRun{}, fmt.Errorf("read generations for %s: %w", run.ID, err)
	}
	return ExportedRun{Run: run, Generations: generations}, nil
}
