package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"neuroflight/internal/model"
)

const (
	runFile         = "run.json"
	generationsFile = "generations.csv"
	populationFile  = "population.json"
)

// RunArtifacts is everything exported for one run.
type RunArtifacts struct {
	Run         model.RunRecord
	Generations []model.GenerationRecord
	Population  *model.PopulationSnapshot
}

// WriteRunArtifacts writes run.json, generations.csv and, when present,
// population.json into baseDir/<run id> and returns that directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.ID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Run.ID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, runFile), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeFile(filepath.Join(runDir, generationsFile), func(w io.Writer) error {
		return WriteGenerationsCSV(w, artifacts.Generations)
	}); err != nil {
		return "", err
	}
	if artifacts.Population != nil {
		if err := writeJSON(filepath.Join(runDir, populationFile), artifacts.Population); err != nil {
			return "", err
		}
	}
	return runDir, nil
}

// ReadRunRecord loads run.json from an exported run directory.
func ReadRunRecord(runDir string) (model.RunRecord, bool, error) {
	data, err := os.ReadFile(filepath.Join(runDir, runFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, false, err
	}
	return run, true, nil
}

// ReadRunGenerations loads generations.csv from an exported run directory.
func ReadRunGenerations(runDir string) ([]GenerationRow, error) {
	in, err := os.Open(filepath.Join(runDir, generationsFile))
	if err != nil {
		return nil, err
	}
	defer in.Close()
	return ReadGenerationsCSV(in)
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

func writeFile(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
