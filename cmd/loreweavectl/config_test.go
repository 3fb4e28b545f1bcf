package main

import (
	"os"
	"path/filepath"
	"testing"

	"loreweave/internal/world"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunRequestFromConfig(t *testing.T) {
	path := writeConfig(t, `{
		"world_id": "midgard",
		"era": "second_age",
		"steps": 25,
		"templates_per_step": 4,
		"seed": 99,
		"era_weights": {"forge_alliance": 2.5, "hermit_retreat": -1},
		"targets": {
			"total_entities": 80,
			"kind_ratios": {"character": 0.5, "location": 0.5},
			"density": 0.08,
			"adjustment_speed": 0.7
		}
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.WorldID != "midgard" || req.Era != "second_age" {
		t.Fatalf("unexpected identifiers: %+v", req)
	}
	if req.Steps != 25 || req.TemplatesPerStep != 4 || req.Seed != 99 {
		t.Fatalf("unexpected run shape: %+v", req)
	}
	if req.EraWeights["forge_alliance"] != 2.5 || req.EraWeights["hermit_retreat"] != -1 {
		t.Fatalf("unexpected era weights: %v", req.EraWeights)
	}
	if req.Targets == nil {
		t.Fatal("expected targets to be set")
	}
	if req.Targets.Global.TotalEntities != 80 {
		t.Fatalf("expected total 80, got %d", req.Targets.Global.TotalEntities)
	}
	if req.Targets.Global.KindRatios[world.KindCharacter] != 0.5 {
		t.Fatalf("expected character ratio 0.5, got %f", req.Targets.Global.KindRatios[world.KindCharacter])
	}
	if req.Targets.Global.Connectivity.Density != 0.08 {
		t.Fatalf("expected density 0.08, got %f", req.Targets.Global.Connectivity.Density)
	}
	if req.Targets.Tuning.AdjustmentSpeed != 0.7 {
		t.Fatalf("expected adjustment speed 0.7, got %f", req.Targets.Tuning.AdjustmentSpeed)
	}
	// Untouched tuning keeps its default.
	if req.Targets.Tuning.MeasureInterval != 1 {
		t.Fatalf("expected default measure interval, got %d", req.Targets.Tuning.MeasureInterval)
	}
}

func TestLoadRunRequestIgnoresUnknownAndMalformed(t *testing.T) {
	path := writeConfig(t, `{
		"world_id": 42,
		"steps": "soon",
		"flavor": "salty",
		"era_weights": {"forge_alliance": "heavy"}
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.WorldID != "" {
		t.Fatalf("malformed world id must be dropped, got %q", req.WorldID)
	}
	if req.Steps != 0 {
		t.Fatalf("malformed steps must be dropped, got %d", req.Steps)
	}
	if len(req.EraWeights) != 0 {
		t.Fatalf("malformed weights must be dropped, got %v", req.EraWeights)
	}
	if req.Targets != nil {
		t.Fatal("absent targets must stay nil")
	}
}

func TestLoadRunRequestValidatesTargets(t *testing.T) {
	path := writeConfig(t, `{
		"targets": {"adjustment_speed": 7, "measure_interval": -3}
	}`)

	req, err := loadRunRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if req.Targets.Tuning.AdjustmentSpeed != 0.5 {
		t.Fatalf("out-of-range speed must be reset, got %f", req.Targets.Tuning.AdjustmentSpeed)
	}
	if req.Targets.Tuning.MeasureInterval != 1 {
		t.Fatalf("negative interval must be reset, got %d", req.Targets.Tuning.MeasureInterval)
	}
}

func TestLoadRunRequestErrors(t *testing.T) {
	if _, err := loadRunRequestFromConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
	path := writeConfig(t, "{not json")
	if _, err := loadRunRequestFromConfig(path); err == nil {
		t.Fatal("expected an error for malformed json")
	}
}
