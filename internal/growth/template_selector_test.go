package growth

import (
	"math/rand"
	"testing"

	"loreweave/internal/dist"
	"loreweave/internal/world"
)

func newSelector(t *testing.T, catalog []Template, seed int64) *TemplateSelector {
	t.Helper()
	selector, err := NewTemplateSelector(catalog, dist.DefaultTargets(), dist.DefaultSchema(), rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}
	return selector
}

func kindTemplate(id string, kind world.Kind) Template {
	return Template{
		ID:      id,
		Name:    id,
		Profile: &ProductionProfile{Effects: []Effect{KindEffect{Kind: kind}}},
	}
}

// skewedGraph is heavy on characters and starved of locations relative to
// the default ratios.
func skewedGraph() *world.Graph {
	g := world.NewGraph()
	for i := 0; i < 80; i++ {
		g.CreateEntity(world.EntityDraft{Kind: world.KindCharacter, Subtype: "npc"})
	}
	for i := 0; i < 5; i++ {
		g.CreateEntity(world.EntityDraft{Kind: world.KindLocation, Subtype: "settlement"})
	}
	return g
}

func TestNewTemplateSelectorRequiresRand(t *testing.T) {
	if _, err := NewTemplateSelector(nil, dist.DefaultTargets(), dist.DefaultSchema(), nil); err == nil {
		t.Fatal("expected an error for a nil random source")
	}
}

func TestGuidedWeightsFollowDeviation(t *testing.T) {
	catalog := []Template{
		kindTemplate("more_characters", world.KindCharacter),
		kindTemplate("more_locations", world.KindLocation),
	}
	selector := newSelector(t, catalog, 1)

	weighted := selector.CalculateGuidedWeights(skewedGraph(), catalog, nil)
	byID := make(map[string]WeightedTemplate, len(weighted))
	for _, item := range weighted {
		byID[item.Template.ID] = item
	}

	chars := byID["more_characters"]
	locs := byID["more_locations"]
	if chars.Weight >= chars.Base {
		t.Fatalf("over-represented kind must be suppressed: weight %f base %f", chars.Weight, chars.Base)
	}
	if locs.Weight <= locs.Base {
		t.Fatalf("under-represented kind must be boosted: weight %f base %f", locs.Weight, locs.Base)
	}
	if chars.Weight >= locs.Weight {
		t.Fatalf("expected location template above character template, got %f vs %f", chars.Weight, locs.Weight)
	}
}

func TestGuidedWeightsEraWeights(t *testing.T) {
	catalog := []Template{
		kindTemplate("banned", world.KindCharacter),
		{ID: "unprofiled", Name: "unprofiled"},
	}
	selector := newSelector(t, catalog, 1)

	weighted := selector.CalculateGuidedWeights(skewedGraph(), catalog, map[string]float64{
		"banned":     -1,
		"unprofiled": 3.5,
	})
	for _, item := range weighted {
		switch item.Template.ID {
		case "banned":
			if item.Weight != 0 {
				t.Fatalf("negative era weight must make the template ineligible, got %f", item.Weight)
			}
		case "unprofiled":
			if item.Weight != 3.5 {
				t.Fatalf("template without a profile keeps its base weight, got %f", item.Weight)
			}
		}
	}
}

func TestGuidedWeightsClamped(t *testing.T) {
	targets := dist.DefaultTargets()
	targets.Tuning.MinTemplateWeight = 0.5
	targets.Tuning.MaxTemplateWeight = 1.5
	targets.Tuning.AdjustmentSpeed = 1.0
	selector, err := NewTemplateSelector(nil, targets, dist.DefaultSchema(), rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	catalog := []Template{
		kindTemplate("more_characters", world.KindCharacter),
		kindTemplate("more_locations", world.KindLocation),
	}
	weighted := selector.CalculateGuidedWeights(skewedGraph(), catalog, nil)
	for _, item := range weighted {
		if item.Weight < 0.5 || item.Weight > 1.5 {
			t.Fatalf("weight %f for %s escapes the configured range", item.Weight, item.Template.ID)
		}
	}
}

func TestSelectTemplatesWeightedDraw(t *testing.T) {
	catalog := []Template{
		kindTemplate("more_characters", world.KindCharacter),
		kindTemplate("more_locations", world.KindLocation),
	}
	selector := newSelector(t, catalog, 42)

	counts := make(map[string]int)
	g := skewedGraph()
	for i := 0; i < 50; i++ {
		for _, tpl := range selector.SelectTemplates(g, catalog, nil, 4) {
			counts[tpl.ID]++
		}
	}
	if total := counts["more_characters"] + counts["more_locations"]; total != 200 {
		t.Fatalf("expected 200 draws, got %d", total)
	}
	// The location template carries roughly twice the weight of the
	// character template on this graph; the draw should reflect that.
	if counts["more_locations"] <= counts["more_characters"] {
		t.Fatalf("expected the heavier template to dominate: %+v", counts)
	}
}

func TestSelectTemplatesEmptyPool(t *testing.T) {
	catalog := []Template{kindTemplate("banned", world.KindCharacter)}
	selector := newSelector(t, catalog, 7)

	selected := selector.SelectTemplates(world.NewGraph(), catalog, map[string]float64{"banned": -1}, 3)
	if len(selected) != 0 {
		t.Fatalf("expected an empty result for an all-ineligible pool, got %d", len(selected))
	}
	if selector.SelectTemplates(world.NewGraph(), nil, nil, 3) != nil {
		t.Fatal("expected nil for an empty catalog")
	}
}

func TestSelectTemplatesWithReplacement(t *testing.T) {
	catalog := []Template{kindTemplate("only", world.KindCharacter)}
	selector := newSelector(t, catalog, 3)

	selected := selector.SelectTemplates(world.NewGraph(), catalog, nil, 5)
	if len(selected) != 5 {
		t.Fatalf("expected 5 draws with replacement, got %d", len(selected))
	}
	for _, tpl := range selected {
		if tpl.ID != "only" {
			t.Fatalf("unexpected template %s", tpl.ID)
		}
	}
}
