package storage

import (
	"context"

	"loreweave/internal/growth"
)

// Store defines persistence operations for world snapshots and the
// diagnostics a growth run produces.
type Store interface {
	Init(ctx context.Context) error
	SaveWorld(ctx context.Context, snapshot WorldSnapshot) error
	GetWorld(ctx context.Context, id string) (WorldSnapshot, bool, error)
	ListWorlds(ctx context.Context) ([]string, error)
	SaveStepDiagnostics(ctx context.Context, runID string, steps []growth.StepDiagnostics) error
	GetStepDiagnostics(ctx context.Context, runID string) ([]growth.StepDiagnostics, bool, error)
	SaveDeviationHistory(ctx context.Context, runID string, history []float64) error
	GetDeviationHistory(ctx context.Context, runID string) ([]float64, bool, error)
}
