package growth

import (
	"context"
	"fmt"
	"math/rand"

	"loreweave/internal/dist"
	"loreweave/internal/world"
)

// TemplateExecutor applies one selected template's concrete effects to
// the graph. The declarative rule interpreter behind real content
// generation lives outside this module; BasicExecutor is a minimal
// built-in that follows the template's production profile literally.
type TemplateExecutor interface {
	Name() string
	Execute(g *world.Graph, tpl Template, targets *TargetSelector) error
}

// StepDiagnostics records what one growth step measured and did.
type StepDiagnostics struct {
	Step              int                 `json:"step"`
	Tick              int                 `json:"tick"`
	SelectedTemplates []string            `json:"selected_templates"`
	Deviation         dist.DeviationScore `json:"deviation"`
	EntityCount       int                 `json:"entity_count"`
	RelationshipCount int                 `json:"relationship_count"`
	Converged         bool                `json:"converged"`
}

// RunnerConfig assembles one growth loop.
type RunnerConfig struct {
	Targets          dist.Targets
	Schema           dist.Schema
	Catalog          []Template
	Executor         TemplateExecutor
	Era              string
	EraWeights       map[string]float64
	TemplatesPerStep int
	Seed             int64
}

// Runner drives the measure/select/execute cycle. Execution is strictly
// sequential: one step completes before the next begins.
type Runner struct {
	cfg       RunnerConfig
	templates *TemplateSelector
	targets   *TargetSelector

	step      int
	lastState dist.State
	measured  bool
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if len(cfg.Catalog) == 0 {
		return nil, fmt.Errorf("template catalog is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("template executor is required")
	}
	if cfg.TemplatesPerStep <= 0 {
		cfg.TemplatesPerStep = 3
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	templates, err := NewTemplateSelector(cfg.Catalog, cfg.Targets, cfg.Schema, rng)
	if err != nil {
		return nil, err
	}
	templates.SetEra(cfg.Era)
	return &Runner{
		cfg:       cfg,
		templates: templates,
		targets:   NewTargetSelector(),
	}, nil
}

// TemplateSelector exposes the selector for diagnostics callers.
func (r *Runner) TemplateSelector() *TemplateSelector { return r.templates }

// TargetSelector exposes the shared target selector, whose diversity
// tracking the surrounding loop resets at era boundaries.
func (r *Runner) TargetSelector() *TargetSelector { return r.targets }

// Step runs one growth cycle: measure (honoring the configured measure
// interval), select templates, execute them, advance the clock.
func (r *Runner) Step(g *world.Graph) (StepDiagnostics, error) {
	tracker := r.templates.Tracker()
	interval := tracker.Targets().Tuning.MeasureInterval
	if !r.measured || r.step%interval == 0 {
		r.lastState = tracker.MeasureState(g)
		tracker.Record(r.lastState)
		r.measured = true
	}
	deviation := tracker.CalculateDeviation(r.lastState, r.cfg.Era)

	selected := r.templates.SelectTemplates(g, r.cfg.Catalog, r.cfg.EraWeights, r.cfg.TemplatesPerStep)
	names := make([]string, 0, len(selected))
	for _, tpl := range selected {
		if err := r.cfg.Executor.Execute(g, tpl, r.targets); err != nil {
			return StepDiagnostics{}, fmt.Errorf("execute template %s: %w", tpl.ID, err)
		}
		names = append(names, tpl.ID)
	}
	g.AdvanceTick()

	r.step++
	return StepDiagnostics{
		Step:              r.step,
		Tick:              g.Tick(),
		SelectedTemplates: names,
		Deviation:         deviation,
		EntityCount:       g.EntityCount(),
		RelationshipCount: g.RelationshipCount(),
		Converged:         tracker.Converged(deviation),
	}, nil
}

// Run executes steps growth cycles, stopping early if the context is
// canceled.
func (r *Runner) Run(ctx context.Context, g *world.Graph, steps int) ([]StepDiagnostics, error) {
	out := make([]StepDiagnostics, 0, steps)
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		diag, err := r.Step(g)
		if err != nil {
			return out, err
		}
		out = append(out, diag)
	}
	return out, nil
}
