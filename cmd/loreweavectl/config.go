package main

import (
	"encoding/json"
	"os"

	"loreweave/internal/dist"
	"loreweave/internal/world"
	"loreweave/pkg/loreweave"
)

// loadRunRequestFromConfig reads a tolerant JSON run config: recognized
// keys are applied, unknown keys are ignored, malformed values fall back
// to defaults downstream.
func loadRunRequestFromConfig(path string) (loreweave.RunRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loreweave.RunRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return loreweave.RunRequest{}, err
	}

	var req loreweave.RunRequest
	if v, ok := asString(raw["world_id"]); ok {
		req.WorldID = v
	}
	if v, ok := asString(raw["run_id"]); ok {
		req.RunID = v
	}
	if v, ok := asString(raw["era"]); ok {
		req.Era = v
	}
	if v, ok := asInt(raw["steps"]); ok {
		req.Steps = v
	}
	if v, ok := asInt(raw["templates_per_step"]); ok {
		req.TemplatesPerStep = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if weights, ok := raw["era_weights"].(map[string]any); ok {
		req.EraWeights = make(map[string]float64, len(weights))
		for id, value := range weights {
			if w, ok := asFloat64(value); ok {
				req.EraWeights[id] = w
			}
		}
	}
	if targetsMap, ok := raw["targets"].(map[string]any); ok {
		targets := dist.DefaultTargets()
		applyTargetOverrides(&targets, targetsMap)
		req.Targets = &targets
	}
	return req, nil
}

// applyTargetOverrides patches the default targets with the recognized
// subset of configurable values.
func applyTargetOverrides(targets *dist.Targets, raw map[string]any) {
	if v, ok := asInt(raw["total_entities"]); ok {
		targets.Global.TotalEntities = v
	}
	if v, ok := asFloat64(raw["total_tolerance"]); ok {
		targets.Global.TotalTolerance = v
	}
	if ratios, ok := raw["kind_ratios"].(map[string]any); ok {
		kindRatios := make(map[world.Kind]float64, len(ratios))
		for kind, value := range ratios {
			if r, ok := asFloat64(value); ok {
				kindRatios[world.Kind(kind)] = r
			}
		}
		targets.Global.KindRatios = kindRatios
	}
	if v, ok := asFloat64(raw["density"]); ok {
		targets.Global.Connectivity.Density = v
	}
	if v, ok := asFloat64(raw["max_isolated_ratio"]); ok {
		targets.Global.Connectivity.MaxIsolatedRatio = v
	}
	if v, ok := asFloat64(raw["deviation_sensitivity"]); ok {
		targets.Tuning.DeviationSensitivity = v
	}
	if v, ok := asFloat64(raw["adjustment_speed"]); ok {
		targets.Tuning.AdjustmentSpeed = v
	}
	if v, ok := asFloat64(raw["convergence_threshold"]); ok {
		targets.Tuning.ConvergenceThreshold = v
	}
	if v, ok := asInt(raw["measure_interval"]); ok {
		targets.Tuning.MeasureInterval = v
	}
	targets.Validate()
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
