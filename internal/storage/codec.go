package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"neuroflight/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// CurrentVersion is stamped on every record written by this build.
func CurrentVersion() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeGeneration(g model.GenerationRecord) ([]byte, error) {
	return json.Marshal(g)
}

func DecodeGeneration(data []byte) (model.GenerationRecord, error) {
	var record model.GenerationRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.GenerationRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.GenerationRecord{}, err
	}
	return record, nil
}

func EncodePopulation(p model.PopulationSnapshot) ([]byte, error) {
	if len(p.Genomes) != len(p.Fitness) {
		return nil, fmt.Errorf("population snapshot has %d genomes but %d fitness values", len(p.Genomes), len(p.Fitness))
	}
	return json.Marshal(p)
}

func DecodePopulation(data []byte) (model.PopulationSnapshot, error) {
	var snapshot model.PopulationSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.PopulationSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.PopulationSnapshot{}, err
	}
	return snapshot, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
