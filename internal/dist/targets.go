package dist

import "loreweave/internal/world"

// RelationshipDiversity constrains the mix of relationship kinds: no one
// kind may dominate, enough distinct kinds must exist, and any kind that
// is present should not be vanishingly rare.
type RelationshipDiversity struct {
	MaxKindRatio        float64 `json:"max_kind_ratio"`
	MinDistinctKinds    int     `json:"min_distinct_kinds"`
	MinPresentKindRatio float64 `json:"min_present_kind_ratio"`
}

// ConnectivityTargets describes the preferred shape of the world graph.
type ConnectivityTargets struct {
	ClusterCountMin    int     `json:"cluster_count_min"`
	ClusterCountMax    int     `json:"cluster_count_max"`
	AvgClusterSizeMin  float64 `json:"avg_cluster_size_min"`
	AvgClusterSizeMax  float64 `json:"avg_cluster_size_max"`
	Density            float64 `json:"density"`
	MaxIsolatedRatio   float64 `json:"max_isolated_ratio"`
}

// GlobalTargets holds the author-specified statistical shape of the world.
type GlobalTargets struct {
	TotalEntities    int                           `json:"total_entities"`
	TotalTolerance   float64                       `json:"total_tolerance"`
	KindRatios       map[world.Kind]float64        `json:"kind_ratios"`
	KindTolerance    float64                       `json:"kind_tolerance"`
	ProminenceRatios map[world.Prominence]float64  `json:"prominence_ratios"`
	Diversity        RelationshipDiversity         `json:"diversity"`
	Connectivity     ConnectivityTargets           `json:"connectivity"`
}

// CorrectionStrength scales how hard each deviation dimension pushes back.
type CorrectionStrength struct {
	Entity       float64 `json:"entity"`
	Prominence   float64 `json:"prominence"`
	Relationship float64 `json:"relationship"`
	Connectivity float64 `json:"connectivity"`
}

// Tuning holds the controller parameters shared by the tracker and the
// template selector.
type Tuning struct {
	AdjustmentSpeed      float64            `json:"adjustment_speed"`
	DeviationSensitivity float64            `json:"deviation_sensitivity"`
	MinTemplateWeight    float64            `json:"min_template_weight"`
	MaxTemplateWeight    float64            `json:"max_template_weight"`
	ConvergenceThreshold float64            `json:"convergence_threshold"`
	MeasureInterval      int                `json:"measure_interval"`
	Correction           CorrectionStrength `json:"correction"`
}

// Targets is the full configuration tree: global targets, per-era
// overrides merged leaf-wise on top of them, and controller tuning.
type Targets struct {
	Global       GlobalTargets            `json:"global"`
	EraOverrides map[string]GlobalTargets `json:"era_overrides,omitempty"`
	Tuning       Tuning                   `json:"tuning"`
}

// DefaultTargets returns a usable configuration for a mid-sized world.
func DefaultTargets() Targets {
	t := Targets{
		Global: GlobalTargets{
			TotalEntities:  150,
			TotalTolerance: 0.1,
			KindRatios: map[world.Kind]float64{
				world.KindCharacter: 0.4,
				world.KindFaction:   0.15,
				world.KindLocation:  0.25,
				world.KindArtifact:  0.1,
				world.KindEvent:     0.1,
			},
			KindTolerance: 0.05,
			ProminenceRatios: map[world.Prominence]float64{
				world.ProminenceForgotten:  0.15,
				world.ProminenceMarginal:   0.35,
				world.ProminenceRecognized: 0.3,
				world.ProminenceRenowned:   0.15,
				world.ProminenceMythic:     0.05,
			},
		},
	}
	t.Validate()
	return t
}

// Validate applies defaults and clamps contradictory settings in place.
// Configuration problems are corrected rather than returned as errors so
// a long generation run keeps making progress.
func (t *Targets) Validate() {
	validateGlobal(&t.Global)
	for era, override := range t.EraOverrides {
		// Overrides are partial; only range contradictions are fixed here.
		clampRanges(&override)
		t.EraOverrides[era] = override
	}

	tuning := &t.Tuning
	if tuning.AdjustmentSpeed <= 0 || tuning.AdjustmentSpeed > 1 {
		tuning.AdjustmentSpeed = 0.5
	}
	if tuning.DeviationSensitivity <= 0 {
		tuning.DeviationSensitivity = 1.0
	}
	if tuning.MinTemplateWeight <= 0 {
		tuning.MinTemplateWeight = 0.05
	}
	if tuning.MaxTemplateWeight <= 0 {
		tuning.MaxTemplateWeight = 10.0
	}
	if tuning.MinTemplateWeight > tuning.MaxTemplateWeight {
		tuning.MinTemplateWeight, tuning.MaxTemplateWeight = tuning.MaxTemplateWeight, tuning.MinTemplateWeight
	}
	if tuning.ConvergenceThreshold <= 0 {
		tuning.ConvergenceThreshold = 0.1
	}
	if tuning.MeasureInterval <= 0 {
		tuning.MeasureInterval = 1
	}
	if tuning.Correction.Entity <= 0 {
		tuning.Correction.Entity = 1.0
	}
	if tuning.Correction.Prominence <= 0 {
		tuning.Correction.Prominence = 1.0
	}
	if tuning.Correction.Relationship <= 0 {
		tuning.Correction.Relationship = 1.0
	}
	if tuning.Correction.Connectivity <= 0 {
		tuning.Correction.Connectivity = 1.0
	}
}

func validateGlobal(g *GlobalTargets) {
	if g.TotalEntities < 0 {
		g.TotalEntities = 0
	}
	if g.TotalTolerance <= 0 {
		g.TotalTolerance = 0.1
	}
	if g.KindTolerance <= 0 {
		g.KindTolerance = 0.05
	}
	if g.Diversity.MaxKindRatio <= 0 || g.Diversity.MaxKindRatio > 1 {
		g.Diversity.MaxKindRatio = 0.4
	}
	if g.Diversity.MinDistinctKinds <= 0 {
		g.Diversity.MinDistinctKinds = 3
	}
	if g.Diversity.MinPresentKindRatio <= 0 || g.Diversity.MinPresentKindRatio > 1 {
		g.Diversity.MinPresentKindRatio = 0.05
	}
	if g.Connectivity.ClusterCountMin <= 0 {
		g.Connectivity.ClusterCountMin = 2
	}
	if g.Connectivity.ClusterCountMax <= 0 {
		g.Connectivity.ClusterCountMax = 6
	}
	if g.Connectivity.AvgClusterSizeMin <= 0 {
		g.Connectivity.AvgClusterSizeMin = 3
	}
	if g.Connectivity.AvgClusterSizeMax <= 0 {
		g.Connectivity.AvgClusterSizeMax = 12
	}
	if g.Connectivity.Density <= 0 || g.Connectivity.Density > 1 {
		g.Connectivity.Density = 0.05
	}
	if g.Connectivity.MaxIsolatedRatio < 0 || g.Connectivity.MaxIsolatedRatio > 1 {
		g.Connectivity.MaxIsolatedRatio = 0.2
	}
	clampRanges(g)
}

func clampRanges(g *GlobalTargets) {
	if g.Connectivity.ClusterCountMax > 0 && g.Connectivity.ClusterCountMin > g.Connectivity.ClusterCountMax {
		g.Connectivity.ClusterCountMin, g.Connectivity.ClusterCountMax = g.Connectivity.ClusterCountMax, g.Connectivity.ClusterCountMin
	}
	if g.Connectivity.AvgClusterSizeMax > 0 && g.Connectivity.AvgClusterSizeMin > g.Connectivity.AvgClusterSizeMax {
		g.Connectivity.AvgClusterSizeMin, g.Connectivity.AvgClusterSizeMax = g.Connectivity.AvgClusterSizeMax, g.Connectivity.AvgClusterSizeMin
	}
}

// ForEra returns the global targets with the era's overrides applied.
// The merge is shallow and leaf-wise: a set override field (non-zero
// scalar, non-nil map, non-zero nested struct) replaces the corresponding
// global field wholesale.
func (t Targets) ForEra(era string) GlobalTargets {
	merged := t.Global
	override, ok := t.EraOverrides[era]
	if !ok {
		return merged
	}
	if override.TotalEntities > 0 {
		merged.TotalEntities = override.TotalEntities
	}
	if override.TotalTolerance > 0 {
		merged.TotalTolerance = override.TotalTolerance
	}
	if override.KindRatios != nil {
		merged.KindRatios = override.KindRatios
	}
	if override.KindTolerance > 0 {
		merged.KindTolerance = override.KindTolerance
	}
	if override.ProminenceRatios != nil {
		merged.ProminenceRatios = override.ProminenceRatios
	}
	if override.Diversity != (RelationshipDiversity{}) {
		merged.Diversity = override.Diversity
	}
	if override.Connectivity != (ConnectivityTargets{}) {
		merged.Connectivity = override.Connectivity
	}
	return merged
}
