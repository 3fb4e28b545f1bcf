package dist

import (
	"fmt"
	"math"
	"sort"

	"loreweave/internal/world"
)

// Schema declares the content types the domain knows about, so that the
// tracker can pre-seed metrics for content that does not exist yet.
type Schema struct {
	Subtypes          map[world.Kind][]string `json:"subtypes"`
	RelationshipKinds []string                `json:"relationship_kinds"`
}

// DefaultSchema covers the built-in kinds and relationship vocabulary.
func DefaultSchema() Schema {
	return Schema{
		Subtypes: map[world.Kind][]string{
			world.KindCharacter: {"npc", "hero", "ruler"},
			world.KindFaction:   {"guild", "cult", "house"},
			world.KindLocation:  {"settlement", "wilds", "ruin"},
			world.KindArtifact:  {"relic", "text"},
			world.KindEvent:     {"battle", "founding"},
		},
		RelationshipKinds: []string{
			world.RelAlliedWith,
			world.RelRivalOf,
			world.RelMemberOf,
			world.RelLocatedIn,
			world.RelRules,
			world.RelKnows,
		},
	}
}

// State is one measurement of the graph's statistical shape.
type State struct {
	Tick               int                          `json:"tick"`
	TotalEntities      int                          `json:"total_entities"`
	KindCounts         map[world.Kind]int           `json:"kind_counts"`
	KindRatios         map[world.Kind]float64       `json:"kind_ratios"`
	SubtypeCounts      map[string]int               `json:"subtype_counts"`
	ProminenceCounts   map[world.Prominence]int     `json:"prominence_counts"`
	ProminenceRatios   map[world.Prominence]float64 `json:"prominence_ratios"`
	TotalRelationships int                          `json:"total_relationships"`
	RelationshipCounts map[string]int               `json:"relationship_counts"`
	RelationshipRatios map[string]float64           `json:"relationship_ratios"`
	Connectivity       world.ConnectivityMetrics    `json:"connectivity"`
}

// DeviationComponent names one specific ratio or count that is off target.
type DeviationComponent struct {
	Dimension string  `json:"dimension"`
	Key       string  `json:"key"`
	Actual    float64 `json:"actual"`
	Target    float64 `json:"target"`
	Deviation float64 `json:"deviation"`
}

// DeviationScore is the controller's view of how far the world is from
// its targets. The per-dimension scores are non-negative and already
// scaled by that dimension's correction strength; the signed maps carry
// direction for weight adjustment (negative means under target).
type DeviationScore struct {
	Entity       float64 `json:"entity"`
	Prominence   float64 `json:"prominence"`
	Relationship float64 `json:"relationship"`
	Connectivity float64 `json:"connectivity"`
	Overall      float64 `json:"overall"`

	KindDeviation        map[world.Kind]float64       `json:"kind_deviation"`
	ProminenceDeviation  map[world.Prominence]float64 `json:"prominence_deviation"`
	RelationshipPressure map[string]float64           `json:"relationship_pressure"`
	DensityGap           float64                      `json:"density_gap"`
	ClusterGap           float64                      `json:"cluster_gap"`
	IsolatedExcess       float64                      `json:"isolated_excess"`

	Components []DeviationComponent `json:"components,omitempty"`
}

// Tracker measures the graph and maintains per-subtype population metrics.
type Tracker struct {
	targets Targets
	schema  Schema
	window  int
	metrics map[string]*PopulationMetric
}

// NewTracker validates the targets and pre-seeds one metric per declared
// subtype and relationship kind plus the connectivity pressure signals.
func NewTracker(targets Targets, schema Schema) *Tracker {
	targets.Validate()
	t := &Tracker{
		targets: targets,
		schema:  schema,
		window:  DefaultHistoryWindow,
		metrics: make(map[string]*PopulationMetric),
	}
	for kind, subtypes := range schema.Subtypes {
		for _, subtype := range subtypes {
			key := subtypeKey(kind, subtype)
			t.metrics[key] = NewPopulationMetric(key, t.subtypeTarget(targets.Global, kind, subtype), t.window)
		}
	}
	for _, relKind := range schema.RelationshipKinds {
		key := relationshipKey(relKind)
		t.metrics[key] = NewPopulationMetric(key, 0, t.window)
	}
	t.metrics[pressureDensityKey] = NewPopulationMetric(pressureDensityKey, targets.Global.Connectivity.Density, t.window)
	t.metrics[pressureIsolationKey] = NewPopulationMetric(pressureIsolationKey, targets.Global.Connectivity.MaxIsolatedRatio, t.window)
	return t
}

const (
	pressureDensityKey   = "pressure/density"
	pressureIsolationKey = "pressure/isolation"
)

func subtypeKey(kind world.Kind, subtype string) string {
	return fmt.Sprintf("entity/%s/%s", kind, subtype)
}

func relationshipKey(kind string) string {
	return "relationship/" + kind
}

// subtypeTarget splits a kind's entity budget evenly across its declared
// subtypes.
func (t *Tracker) subtypeTarget(global GlobalTargets, kind world.Kind, subtype string) float64 {
	ratio := global.KindRatios[kind]
	subtypes := len(t.schema.Subtypes[kind])
	if ratio <= 0 || subtypes == 0 || global.TotalEntities <= 0 {
		return 0
	}
	return ratio * float64(global.TotalEntities) / float64(subtypes)
}

// Targets returns the validated configuration the tracker runs against.
func (t *Tracker) Targets() Targets { return t.targets }

// Metric returns the tracked metric for key, if any.
func (t *Tracker) Metric(key string) (*PopulationMetric, bool) {
	m, ok := t.metrics[key]
	return m, ok
}

// MetricKeys returns every tracked key in sorted order.
func (t *Tracker) MetricKeys() []string {
	keys := make([]string, 0, len(t.metrics))
	for key := range t.metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MeasureState counts the graph. An empty graph yields an all-zero state
// with zero ratios, never an error or NaN.
func (t *Tracker) MeasureState(g *world.Graph) State {
	state := State{
		Tick:               g.Tick(),
		KindCounts:         make(map[world.Kind]int),
		KindRatios:         make(map[world.Kind]float64),
		SubtypeCounts:      make(map[string]int),
		ProminenceCounts:   make(map[world.Prominence]int),
		ProminenceRatios:   make(map[world.Prominence]float64),
		RelationshipCounts: make(map[string]int),
		RelationshipRatios: make(map[string]float64),
	}

	for _, entity := range g.Entities() {
		if entity.Status != world.StatusActive {
			continue
		}
		state.TotalEntities++
		state.KindCounts[entity.Kind]++
		state.ProminenceCounts[entity.Prominence]++
		if entity.Subtype != "" {
			state.SubtypeCounts[subtypeKey(entity.Kind, entity.Subtype)]++
		}
	}
	if state.TotalEntities > 0 {
		total := float64(state.TotalEntities)
		for kind, count := range state.KindCounts {
			state.KindRatios[kind] = float64(count) / total
		}
		for level, count := range state.ProminenceCounts {
			state.ProminenceRatios[level] = float64(count) / total
		}
	}

	for _, rel := range g.ActiveRelationships() {
		state.TotalRelationships++
		state.RelationshipCounts[rel.Kind]++
	}
	if state.TotalRelationships > 0 {
		total := float64(state.TotalRelationships)
		for kind, count := range state.RelationshipCounts {
			state.RelationshipRatios[kind] = float64(count) / total
		}
	}

	state.Connectivity = world.Connectivity(g)
	return state
}

// Record feeds a measurement into the population metrics, lazily creating
// entries for subtypes and relationship kinds first seen in the wild.
// Every tracked key receives exactly one observation per call.
func (t *Tracker) Record(state State) {
	for key, metric := range t.metrics {
		switch {
		case key == pressureDensityKey:
			metric.Observe(state.Connectivity.Density)
		case key == pressureIsolationKey:
			metric.Observe(state.Connectivity.IsolatedRatio)
		default:
			metric.Observe(float64(t.observedCount(state, key)))
		}
	}
	for key := range state.SubtypeCounts {
		if _, tracked := t.metrics[key]; !tracked {
			metric := NewPopulationMetric(key, 0, t.window)
			metric.Observe(float64(state.SubtypeCounts[key]))
			t.metrics[key] = metric
		}
	}
	for kind, count := range state.RelationshipCounts {
		key := relationshipKey(kind)
		if _, tracked := t.metrics[key]; !tracked {
			metric := NewPopulationMetric(key, 0, t.window)
			metric.Observe(float64(count))
			t.metrics[key] = metric
		}
	}
}

func (t *Tracker) observedCount(state State, key string) int {
	if count, ok := state.SubtypeCounts[key]; ok {
		return count
	}
	for kind, count := range state.RelationshipCounts {
		if relationshipKey(kind) == key {
			return count
		}
	}
	return 0
}

// CalculateDeviation scores the state against the targets for the active
// era. All dimension scores are non-negative; the signed maps preserve
// direction for the template selector.
func (t *Tracker) CalculateDeviation(state State, era string) DeviationScore {
	global := t.targets.ForEra(era)
	correction := t.targets.Tuning.Correction

	score := DeviationScore{
		KindDeviation:        make(map[world.Kind]float64),
		ProminenceDeviation:  make(map[world.Prominence]float64),
		RelationshipPressure: make(map[string]float64),
	}

	score.Entity = t.entityDeviation(state, global, &score) * correction.Entity
	score.Prominence = t.prominenceDeviation(state, global, &score) * correction.Prominence
	score.Relationship = t.relationshipDeviation(state, global, &score) * correction.Relationship
	score.Connectivity = t.connectivityDeviation(state, global, &score) * correction.Connectivity
	score.Overall = score.Entity + score.Prominence + score.Relationship + score.Connectivity
	return score
}

func (t *Tracker) entityDeviation(state State, global GlobalTargets, score *DeviationScore) float64 {
	dev := 0.0

	if global.TotalEntities > 0 {
		target := float64(global.TotalEntities)
		totalDev := math.Abs(float64(state.TotalEntities)-target) / target
		if excess := totalDev - global.TotalTolerance; excess > 0 {
			dev += excess
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "entity", Key: "total",
				Actual: float64(state.TotalEntities), Target: target, Deviation: excess,
			})
		}
	}

	for _, kind := range unionKinds(global.KindRatios, state.KindRatios) {
		target := global.KindRatios[kind]
		actual := state.KindRatios[kind]
		signed := actual - target
		score.KindDeviation[kind] = signed
		if excess := math.Abs(signed) - global.KindTolerance; excess > 0 {
			dev += excess
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "entity", Key: string(kind),
				Actual: actual, Target: target, Deviation: excess,
			})
		}
	}
	return dev
}

func (t *Tracker) prominenceDeviation(state State, global GlobalTargets, score *DeviationScore) float64 {
	dev := 0.0
	for _, level := range world.Prominences() {
		target := global.ProminenceRatios[level]
		actual := state.ProminenceRatios[level]
		signed := actual - target
		score.ProminenceDeviation[level] = signed
		if target == 0 && actual == 0 {
			continue
		}
		step := math.Abs(signed)
		dev += step
		if step > 0 {
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "prominence", Key: level.String(),
				Actual: actual, Target: target, Deviation: step,
			})
		}
	}
	return dev
}

func (t *Tracker) relationshipDeviation(state State, global GlobalTargets, score *DeviationScore) float64 {
	dev := 0.0
	diversity := global.Diversity

	distinct := len(state.RelationshipCounts)
	if distinct < diversity.MinDistinctKinds {
		missing := float64(diversity.MinDistinctKinds-distinct) / float64(diversity.MinDistinctKinds)
		dev += missing
		score.Components = append(score.Components, DeviationComponent{
			Dimension: "relationship", Key: "distinct_kinds",
			Actual: float64(distinct), Target: float64(diversity.MinDistinctKinds), Deviation: missing,
		})
		for _, kind := range t.schema.RelationshipKinds {
			if _, present := state.RelationshipCounts[kind]; !present {
				score.RelationshipPressure[kind] += missing
			}
		}
	}

	for kind, ratio := range state.RelationshipRatios {
		if excess := ratio - diversity.MaxKindRatio; excess > 0 {
			dev += excess
			score.RelationshipPressure[kind] -= excess
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "relationship", Key: kind,
				Actual: ratio, Target: diversity.MaxKindRatio, Deviation: excess,
			})
		} else if shortfall := diversity.MinPresentKindRatio - ratio; shortfall > 0 {
			dev += shortfall
			score.RelationshipPressure[kind] += shortfall
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "relationship", Key: kind,
				Actual: ratio, Target: diversity.MinPresentKindRatio, Deviation: shortfall,
			})
		}
	}
	return dev
}

func (t *Tracker) connectivityDeviation(state State, global GlobalTargets, score *DeviationScore) float64 {
	dev := 0.0
	conn := state.Connectivity
	targets := global.Connectivity

	score.DensityGap = targets.Density - conn.Density
	if targets.Density > 0 {
		step := math.Abs(score.DensityGap) / targets.Density
		dev += step
		if step > 0 {
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "connectivity", Key: "density",
				Actual: conn.Density, Target: targets.Density, Deviation: step,
			})
		}
	}

	switch {
	case conn.ClusterCount < targets.ClusterCountMin:
		score.ClusterGap = float64(targets.ClusterCountMin - conn.ClusterCount)
		dev += score.ClusterGap / float64(targets.ClusterCountMin)
		score.Components = append(score.Components, DeviationComponent{
			Dimension: "connectivity", Key: "cluster_count",
			Actual: float64(conn.ClusterCount), Target: float64(targets.ClusterCountMin),
			Deviation: score.ClusterGap / float64(targets.ClusterCountMin),
		})
	case conn.ClusterCount > targets.ClusterCountMax:
		score.ClusterGap = -float64(conn.ClusterCount - targets.ClusterCountMax)
		dev += -score.ClusterGap / float64(targets.ClusterCountMax)
		score.Components = append(score.Components, DeviationComponent{
			Dimension: "connectivity", Key: "cluster_count",
			Actual: float64(conn.ClusterCount), Target: float64(targets.ClusterCountMax),
			Deviation: -score.ClusterGap / float64(targets.ClusterCountMax),
		})
	}

	if conn.ClusterCount > 0 {
		if conn.AverageClusterSize < targets.AvgClusterSizeMin && targets.AvgClusterSizeMin > 0 {
			step := (targets.AvgClusterSizeMin - conn.AverageClusterSize) / targets.AvgClusterSizeMin
			dev += step
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "connectivity", Key: "avg_cluster_size",
				Actual: conn.AverageClusterSize, Target: targets.AvgClusterSizeMin, Deviation: step,
			})
		} else if conn.AverageClusterSize > targets.AvgClusterSizeMax && targets.AvgClusterSizeMax > 0 {
			step := (conn.AverageClusterSize - targets.AvgClusterSizeMax) / targets.AvgClusterSizeMax
			dev += step
			score.Components = append(score.Components, DeviationComponent{
				Dimension: "connectivity", Key: "avg_cluster_size",
				Actual: conn.AverageClusterSize, Target: targets.AvgClusterSizeMax, Deviation: step,
			})
		}
	}

	score.IsolatedExcess = conn.IsolatedRatio - targets.MaxIsolatedRatio
	if score.IsolatedExcess > 0 {
		dev += score.IsolatedExcess
		score.Components = append(score.Components, DeviationComponent{
			Dimension: "connectivity", Key: "isolated_ratio",
			Actual: conn.IsolatedRatio, Target: targets.MaxIsolatedRatio, Deviation: score.IsolatedExcess,
		})
	} else {
		score.IsolatedExcess = 0
	}
	return dev
}

// Converged reports whether the overall deviation has dropped below the
// configured convergence threshold.
func (t *Tracker) Converged(score DeviationScore) bool {
	return score.Overall <= t.targets.Tuning.ConvergenceThreshold
}

func unionKinds(a map[world.Kind]float64, b map[world.Kind]float64) []world.Kind {
	seen := make(map[world.Kind]struct{}, len(a)+len(b))
	for kind := range a {
		seen[kind] = struct{}{}
	}
	for kind := range b {
		seen[kind] = struct{}{}
	}
	kinds := make([]world.Kind, 0, len(seen))
	for kind := range seen {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
