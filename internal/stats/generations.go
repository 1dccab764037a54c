package stats

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"neuroflight/internal/model"
)

// GenerationRow is one line of generations.csv.
type GenerationRow struct {
	RunID      string  `csv:"run_id"`
	Generation int     `csv:"generation"`
	Min        float32 `csv:"min"`
	Max        float32 `csv:"max"`
	Average    float32 `csv:"average"`
	Median     float32 `csv:"median"`
	StdDev     float32 `csv:"stddev"`
}

func RowFromRecord(record model.GenerationRecord) GenerationRow {
	return GenerationRow{
		RunID:      record.RunID,
		Generation: record.Generation,
		Min:        record.Min,
		Max:        record.Max,
		Average:    record.Average,
		Median:     record.Median,
		StdDev:     record.StdDev,
	}
}

// CSVWriter streams generation rows to a file as they are produced.
// A nil *CSVWriter discards everything, so callers need no guards when
// output is disabled.
type CSVWriter struct {
	file          *os.File
	headerWritten bool
}

// NewCSVWriter creates path and any missing parent directories. An empty
// path disables output and returns a nil writer.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	return &CSVWriter{file: f}, nil
}

func (w *CSVWriter) Write(row GenerationRow) error {
	if w == nil {
		return nil
	}

	records := []GenerationRow{row}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing generation: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing generation: %w", err)
	}
	return nil
}

func (w *CSVWriter) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// WriteGenerationsCSV writes a complete table, header included.
func WriteGenerationsCSV(out io.Writer, records []model.GenerationRecord) error {
	rows := make([]GenerationRow, len(records))
	for i, record := range records {
		rows[i] = RowFromRecord(record)
	}
	return gocsv.Marshal(rows, out)
}

// ReadGenerationsCSV parses a table written by CSVWriter or WriteGenerationsCSV.
func ReadGenerationsCSV(in io.Reader) ([]GenerationRow, error) {
	var rows []GenerationRow
	if err := gocsv.Unmarshal(in, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
