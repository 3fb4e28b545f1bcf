package growth

import (
	"fmt"
	"math/rand"

	"loreweave/internal/dist"
	"loreweave/internal/world"
)

// TemplateSelector turns deviation scores into corrected selection
// weights over the template catalog and performs the weighted draws for
// one growth step.
type TemplateSelector struct {
	catalog []Template
	tracker *dist.Tracker
	tuning  dist.Tuning
	era     string
	rng     *rand.Rand
}

// NewTemplateSelector builds a selector over the catalog. The random
// source is injected so runs are reproducible from a seed.
func NewTemplateSelector(catalog []Template, targets dist.Targets, schema dist.Schema, rng *rand.Rand) (*TemplateSelector, error) {
	if rng == nil {
		return nil, fmt.Errorf("random source is required")
	}
	targets.Validate()
	tracker := dist.NewTracker(targets, schema)
	return &TemplateSelector{
		catalog: catalog,
		tracker: tracker,
		tuning:  tracker.Targets().Tuning,
		rng:     rng,
	}, nil
}

// Catalog returns the full template catalog the selector was built with.
func (s *TemplateSelector) Catalog() []Template {
	out := make([]Template, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// SetEra switches the active era used for target lookup.
func (s *TemplateSelector) SetEra(era string) { s.era = era }

// State measures the graph; a diagnostics pass-through over the tracker.
func (s *TemplateSelector) State(g *world.Graph) dist.State {
	return s.tracker.MeasureState(g)
}

// Deviation measures the graph and scores it against the active era's
// targets; a diagnostics pass-through over the tracker.
func (s *TemplateSelector) Deviation(g *world.Graph) dist.DeviationScore {
	return s.tracker.CalculateDeviation(s.tracker.MeasureState(g), s.era)
}

// Tracker exposes the underlying tracker for the surrounding loop.
func (s *TemplateSelector) Tracker() *dist.Tracker { return s.tracker }

// CalculateGuidedWeights computes the deviation-corrected weight for each
// available template. The base weight is the era weight (1.0 when absent);
// a negative era weight marks the template ineligible. Each declared
// effect multiplies in a correction factor: content below target boosts,
// content above target suppresses, scaled by deviation sensitivity and the
// dimension's correction strength. The corrected weight is blended with
// the base by the adjustment speed and clamped into the configured range.
// Templates without a profile keep their base weight. Entries with final
// weight <= 0 are excluded from any draw pool.
func (s *TemplateSelector) CalculateGuidedWeights(g *world.Graph, available []Template, eraWeights map[string]float64) []WeightedTemplate {
	score := s.Deviation(g)
	out := make([]WeightedTemplate, 0, len(available))
	for _, tpl := range available {
		base := 1.0
		if w, ok := eraWeights[tpl.ID]; ok {
			base = w
		}
		if base < 0 {
			out = append(out, WeightedTemplate{Template: tpl, Base: base, Weight: 0})
			continue
		}

		weight := base
		if tpl.Profile != nil {
			corrected := base
			for _, effect := range tpl.Profile.Effects {
				corrected *= s.effectFactor(effect, score)
			}
			speed := s.tuning.AdjustmentSpeed
			weight = base*(1-speed) + corrected*speed
			if weight < s.tuning.MinTemplateWeight {
				weight = s.tuning.MinTemplateWeight
			}
			if weight > s.tuning.MaxTemplateWeight {
				weight = s.tuning.MaxTemplateWeight
			}
		}
		out = append(out, WeightedTemplate{Template: tpl, Base: base, Weight: weight})
	}
	return out
}

// effectFactor converts one declared effect plus the current deviation
// into a multiplicative correction, always positive.
func (s *TemplateSelector) effectFactor(effect Effect, score dist.DeviationScore) float64 {
	sensitivity := s.tuning.DeviationSensitivity
	correction := s.tuning.Correction

	adjust := 0.0
	switch e := effect.(type) {
	case KindEffect:
		// Signed deviation is negative when the kind is under target, so
		// producing it should be boosted.
		adjust = -score.KindDeviation[e.Kind] * sensitivity * correction.Entity * kindScale
	case ProminenceEffect:
		adjust = -score.ProminenceDeviation[e.Level] * sensitivity * correction.Prominence * kindScale
	case RelationshipEffect:
		adjust = score.RelationshipPressure[e.Kind] * sensitivity * correction.Relationship * relationshipScale
	case ShapeEffect:
		adjust = s.shapeAdjust(e.Shape, score) * sensitivity * correction.Connectivity
	}

	factor := 1 + adjust
	if factor < minEffectFactor {
		factor = minEffectFactor
	}
	return factor
}

func (s *TemplateSelector) shapeAdjust(shape Shape, score dist.DeviationScore) float64 {
	switch shape {
	case ShapeDensify:
		// DensityGap is positive when the graph is too sparse.
		if score.DensityGap == 0 {
			return 0
		}
		target := s.tracker.Targets().ForEra(s.era).Connectivity.Density
		if target <= 0 {
			return 0
		}
		return score.DensityGap / target
	case ShapeCluster:
		// ClusterGap is positive when more clusters are wanted.
		return score.ClusterGap * clusterScale
	case ShapeBridge:
		return -score.ClusterGap * clusterScale
	case ShapeIsolate:
		return -score.IsolatedExcess * isolateScale
	default:
		return 0
	}
}

const (
	// Ratio deviations live in [-1,1]; kindScale brings a full-ratio miss
	// to a meaningful weight swing.
	kindScale         = 2.0
	relationshipScale = 2.0
	clusterScale      = 0.5
	isolateScale      = 4.0
	minEffectFactor   = 0.1
)

// SelectTemplates performs count independent weighted draws with
// replacement over the eligible pool, so one template may appear several
// times in the result. When no template is eligible the result is empty;
// slots are omitted, never filled with placeholders.
func (s *TemplateSelector) SelectTemplates(g *world.Graph, available []Template, eraWeights map[string]float64, count int) []Template {
	if count <= 0 || len(available) == 0 {
		return nil
	}
	weighted := s.CalculateGuidedWeights(g, available, eraWeights)
	pool := make([]WeightedTemplate, 0, len(weighted))
	total := 0.0
	for _, item := range weighted {
		if item.Weight <= 0 {
			continue
		}
		pool = append(pool, item)
		total += item.Weight
	}
	if len(pool) == 0 || total <= 0 {
		return nil
	}

	selected := make([]Template, 0, count)
	for i := 0; i < count; i++ {
		pick := s.rng.Float64() * total
		acc := 0.0
		chosen := pool[len(pool)-1].Template
		for _, item := range pool {
			acc += item.Weight
			if pick <= acc {
				chosen = item.Template
				break
			}
		}
		selected = append(selected, chosen)
	}
	return selected
}
