//go:build sqlite

package main

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neuroflight/internal/model"
)

func TestSQLiteRunThenInspect(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store := []string{"--store", "sqlite", "--db-path", dbPath}

	_, err := execute(t, append(store, "run", "--run-id", "persisted", "--population", "5", "--generations", "3")...)
	require.NoError(t, err)

	out, err := execute(t, append(store, "runs", "--json")...)
	require.NoError(t, err)
	var runs []model.RunRecord
	require.NoError(t, json.Unmarshal([]byte(out.stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "persisted", runs[0].ID)

	out, err = execute(t, append(store, "generations", "persisted")...)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(out.stdout, "generation="))

	exportDir := t.TempDir()
	out, err = execute(t, append(store, "export", "--latest", "--out", exportDir)...)
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "exported run_id=persisted")
	assert.FileExists(t, filepath.Join(exportDir, "persisted", "population.json"))

	out, err = execute(t, "report", filepath.Join(exportDir, "persisted"))
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "run_id=persisted")
}

func TestSQLiteResumeCountsSnapshotPopulation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store := []string{"--store", "sqlite", "--db-path", dbPath}

	_, err := execute(t, append(store, "run", "--run-id", "base", "--population", "5", "--generations", "2")...)
	require.NoError(t, err)

	out, err := execute(t, append(store, "run", "--resume", "base", "--population", "9", "--generations", "1")...)
	require.NoError(t, err)
	assert.Contains(t, out.stdout, "evaluations=10")
	assert.Contains(t, out.stdout, "population=5 ")
}
