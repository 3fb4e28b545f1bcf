// Package loreweave is the public facade over the world-growth engine:
// it wires the tracker, selectors and storage together and runs growth
// steps against a stored or fresh world.
package loreweave

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"loreweave/internal/dist"
	"loreweave/internal/growth"
	"loreweave/internal/storage"
	"loreweave/internal/world"
)

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store storage.Store
}

func NewClient(ctx context.Context, opts Options) (*Client, error) {
	store, err := storage.NewStore(opts.StoreKind, opts.DBPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Store exposes the underlying store for callers that persist their own
// records alongside runs.
func (c *Client) Store() storage.Store { return c.store }

// RunRequest describes one growth run. Zero-valued fields fall back to
// defaults: the built-in catalog, schema and targets, world id from a
// fresh uuid, run id equal to the world id.
type RunRequest struct {
	WorldID          string
	RunID            string
	Era              string
	Steps            int
	TemplatesPerStep int
	Seed             int64
	EraWeights       map[string]float64
	Targets          *dist.Targets
	Schema           *dist.Schema
	Catalog          []growth.Template
}

type RunResult struct {
	WorldID        string
	RunID          string
	Steps          []growth.StepDiagnostics
	FinalState     dist.State
	FinalDeviation dist.DeviationScore
	Converged      bool
}

// Run executes the requested growth steps, continuing from a stored
// snapshot when the world id is known, and persists the resulting
// snapshot, per-step diagnostics and overall deviation history.
func (c *Client) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	if req.Steps <= 0 {
		return RunResult{}, fmt.Errorf("steps must be > 0")
	}

	targets := dist.DefaultTargets()
	if req.Targets != nil {
		targets = *req.Targets
		targets.Validate()
	}
	schema := dist.DefaultSchema()
	if req.Schema != nil {
		schema = *req.Schema
	}
	catalog := req.Catalog
	if len(catalog) == 0 {
		catalog = growth.DefaultCatalog()
	}
	worldID := req.WorldID
	if worldID == "" {
		worldID = uuid.NewString()
	}
	runID := req.RunID
	if runID == "" {
		runID = worldID
	}

	g, err := c.loadOrCreateWorld(ctx, worldID)
	if err != nil {
		return RunResult{}, err
	}

	executor := growth.NewBasicExecutor(schema, rand.New(rand.NewSource(req.Seed)))
	runner, err := growth.NewRunner(growth.RunnerConfig{
		Targets:          targets,
		Schema:           schema,
		Catalog:          catalog,
		Executor:         executor,
		Era:              req.Era,
		EraWeights:       req.EraWeights,
		TemplatesPerStep: req.TemplatesPerStep,
		Seed:             req.Seed,
	})
	if err != nil {
		return RunResult{}, err
	}

	steps, err := runner.Run(ctx, g, req.Steps)
	if err != nil {
		return RunResult{}, err
	}

	if err := c.store.SaveWorld(ctx, storage.Snapshot(worldID, req.Era, g)); err != nil {
		return RunResult{}, fmt.Errorf("save world %s: %w", worldID, err)
	}
	if err := c.store.SaveStepDiagnostics(ctx, runID, steps); err != nil {
		return RunResult{}, fmt.Errorf("save diagnostics %s: %w", runID, err)
	}
	history := make([]float64, 0, len(steps))
	for _, step := range steps {
		history = append(history, step.Deviation.Overall)
	}
	if err := c.store.SaveDeviationHistory(ctx, runID, history); err != nil {
		return RunResult{}, fmt.Errorf("save deviation history %s: %w", runID, err)
	}

	tracker := runner.TemplateSelector().Tracker()
	finalState := tracker.MeasureState(g)
	finalDeviation := tracker.CalculateDeviation(finalState, req.Era)
	return RunResult{
		WorldID:        worldID,
		RunID:          runID,
		Steps:          steps,
		FinalState:     finalState,
		FinalDeviation: finalDeviation,
		Converged:      tracker.Converged(finalDeviation),
	}, nil
}

func (c *Client) loadOrCreateWorld(ctx context.Context, worldID string) (*world.Graph, error) {
	snapshot, ok, err := c.store.GetWorld(ctx, worldID)
	if err != nil {
		return nil, fmt.Errorf("load world %s: %w", worldID, err)
	}
	if !ok {
		return world.NewGraph(), nil
	}
	g, err := storage.Restore(snapshot)
	if err != nil {
		return nil, fmt.Errorf("restore world %s: %w", worldID, err)
	}
	return g, nil
}

// Measure loads a stored world and returns its measured state.
func (c *Client) Measure(ctx context.Context, worldID string) (dist.State, error) {
	g, targets, err := c.loadWorld(ctx, worldID)
	if err != nil {
		return dist.State{}, err
	}
	tracker := dist.NewTracker(targets, dist.DefaultSchema())
	return tracker.MeasureState(g), nil
}

// Deviation loads a stored world and scores it against the default
// targets for the given era.
func (c *Client) Deviation(ctx context.Context, worldID, era string) (dist.DeviationScore, error) {
	g, targets, err := c.loadWorld(ctx, worldID)
	if err != nil {
		return dist.DeviationScore{}, err
	}
	tracker := dist.NewTracker(targets, dist.DefaultSchema())
	return tracker.CalculateDeviation(tracker.MeasureState(g), era), nil
}

func (c *Client) loadWorld(ctx context.Context, worldID string) (*world.Graph, dist.Targets, error) {
	snapshot, ok, err := c.store.GetWorld(ctx, worldID)
	if err != nil {
		return nil, dist.Targets{}, fmt.Errorf("load world %s: %w", worldID, err)
	}
	if !ok {
		return nil, dist.Targets{}, fmt.Errorf("world not found: %s", worldID)
	}
	g, err := storage.Restore(snapshot)
	if err != nil {
		return nil, dist.Targets{}, fmt.Errorf("restore world %s: %w", worldID, err)
	}
	return g, dist.DefaultTargets(), nil
}

// Worlds lists stored world ids.
func (c *Client) Worlds(ctx context.Context) ([]string, error) {
	return c.store.ListWorlds(ctx)
}

// World fetches one stored snapshot.
func (c *Client) World(ctx context.Context, id string) (storage.WorldSnapshot, bool, error) {
	return c.store.GetWorld(ctx, id)
}

// StepDiagnostics fetches the per-step diagnostics of a stored run.
func (c *Client) StepDiagnostics(ctx context.Context, runID string) ([]growth.StepDiagnostics, bool, error) {
	return c.store.GetStepDiagnostics(ctx, runID)
}

// DeviationHistory fetches the overall deviation trace of a stored run.
func (c *Client) DeviationHistory(ctx context.Context, runID string) ([]float64, bool, error) {
	return c.store.GetDeviationHistory(ctx, runID)
}
