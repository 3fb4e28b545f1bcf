package storage

import (
	"encoding/json"
	"errors"

	"loreweave/internal/growth"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeWorld(snapshot WorldSnapshot) ([]byte, error) {
	return json.Marshal(snapshot)
}

func DecodeWorld(data []byte) (WorldSnapshot, error) {
	var snapshot WorldSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return WorldSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return WorldSnapshot{}, err
	}
	return snapshot, nil
}

func EncodeStepDiagnostics(steps []growth.StepDiagnostics) ([]byte, error) {
	return json.Marshal(steps)
}

func DecodeStepDiagnostics(data []byte) ([]growth.StepDiagnostics, error) {
	var steps []growth.StepDiagnostics
	if err := json.Unmarshal(data, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func EncodeHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(record VersionedRecord) error {
	if record.SchemaVersion != CurrentSchemaVersion || record.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
