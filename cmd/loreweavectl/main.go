package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"

	"loreweave/internal/storage"
	"loreweave/internal/world"
	"loreweave/pkg/loreweave"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "run":
		return runRun(ctx, args[1:])
	case "measure":
		return runMeasure(ctx, args[1:])
	case "deviation":
		return runDeviation(ctx, args[1:])
	case "worlds":
		return runWorlds(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(reason string) error {
	return fmt.Errorf("%s\nusage: loreweavectl <run|measure|deviation|worlds|diagnostics> [flags]", reason)
}

func newClient(ctx context.Context, storeKind, dbPath string) (*loreweave.Client, error) {
	return loreweave.NewClient(ctx, loreweave.Options{StoreKind: storeKind, DBPath: dbPath})
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional run config JSON path")
	worldID := fs.String("world-id", "", "world snapshot id (new uuid when empty)")
	runID := fs.String("run-id", "", "explicit run id (defaults to world id)")
	era := fs.String("era", "", "active era name")
	steps := fs.Int("steps", 25, "growth steps to run")
	templatesPerStep := fs.Int("templates-per-step", 3, "templates drawn per step")
	seed := fs.Int64("seed", 1, "rng seed")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "loreweave.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req loreweave.RunRequest
	if *configPath != "" {
		loaded, err := loadRunRequestFromConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", *configPath, err)
		}
		req = loaded
	}
	if *worldID != "" {
		req.WorldID = *worldID
	}
	if *runID != "" {
		req.RunID = *runID
	}
	if *era != "" {
		req.Era = *era
	}
	if req.Steps == 0 {
		req.Steps = *steps
	}
	if req.TemplatesPerStep == 0 {
		req.TemplatesPerStep = *templatesPerStep
	}
	if req.Seed == 0 {
		req.Seed = *seed
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("world=%s run=%s steps=%d entities=%d relationships=%d\n",
		result.WorldID, result.RunID, len(result.Steps),
		result.FinalState.TotalEntities, result.FinalState.TotalRelationships)
	fmt.Printf(
		"deviation overall=%.3f entity=%.3f prominence=%.3f relationship=%.3f connectivity=%.3f converged=%t\n",
		result.FinalDeviation.Overall,
		result.FinalDeviation.Entity,
		result.FinalDeviation.Prominence,
		result.FinalDeviation.Relationship,
		result.FinalDeviation.Connectivity,
		result.Converged,
	)
	return nil
}

func runMeasure(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("measure", flag.ContinueOnError)
	worldID := fs.String("world-id", "", "world snapshot id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "loreweave.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *worldID == "" {
		return usageError("measure requires -world-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	state, err := client.Measure(ctx, *worldID)
	if err != nil {
		return err
	}

	fmt.Printf("world=%s tick=%d entities=%d relationships=%d\n",
		*worldID, state.Tick, state.TotalEntities, state.TotalRelationships)
	kinds := make([]string, 0, len(state.KindCounts))
	for kind := range state.KindCounts {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)
	for _, kind := range kinds {
		fmt.Printf("  %-12s count=%-4d ratio=%.3f\n", kind,
			state.KindCounts[world.Kind(kind)], state.KindRatios[world.Kind(kind)])
	}
	fmt.Printf("connectivity clusters=%d largest=%d avg_size=%.2f isolated=%.3f density=%.4f\n",
		state.Connectivity.ClusterCount,
		state.Connectivity.LargestCluster,
		state.Connectivity.AverageClusterSize,
		state.Connectivity.IsolatedRatio,
		state.Connectivity.Density,
	)
	return nil
}

func runDeviation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("deviation", flag.ContinueOnError)
	worldID := fs.String("world-id", "", "world snapshot id")
	era := fs.String("era", "", "era whose targets apply")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "loreweave.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *worldID == "" {
		return usageError("deviation requires -world-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	score, err := client.Deviation(ctx, *worldID, *era)
	if err != nil {
		return err
	}

	fmt.Printf("world=%s era=%q overall=%.3f\n", *worldID, *era, score.Overall)
	fmt.Printf("  entity=%.3f prominence=%.3f relationship=%.3f connectivity=%.3f\n",
		score.Entity, score.Prominence, score.Relationship, score.Connectivity)
	for _, component := range score.Components {
		fmt.Printf("  %-12s %-18s actual=%-8.3f target=%-8.3f off=%.3f\n",
			component.Dimension, component.Key, component.Actual, component.Target, component.Deviation)
	}
	return nil
}

func runWorlds(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("worlds", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "loreweave.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ids, err := client.Worlds(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "loreweave.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("diagnostics requires -run-id")
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	steps, ok, err := client.StepDiagnostics(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("run not found: %s", *runID)
	}

	fmt.Printf("%-6s %-6s %-10s %-10s %-8s %s\n", "step", "tick", "entities", "rels", "overall", "templates")
	for _, step := range steps {
		fmt.Printf("%-6d %-6d %-10d %-10d %-8.3f %v\n",
			step.Step, step.Tick, step.EntityCount, step.RelationshipCount,
			step.Deviation.Overall, step.SelectedTemplates)
	}
	return nil
}
