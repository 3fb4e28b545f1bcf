package growth

import (
	"fmt"
	"testing"

	"loreweave/internal/world"
)

func addCharacter(t *testing.T, g *world.Graph, id string) *world.Entity {
	t.Helper()
	entity := &world.Entity{ID: id, Kind: world.KindCharacter}
	if err := g.AddEntity(entity); err != nil {
		t.Fatalf("add entity %s: %v", id, err)
	}
	return entity
}

// linkPeers attaches n knows relationships to id, each against a fresh
// filler location so the character candidate pool stays fixed.
func linkPeers(t *testing.T, g *world.Graph, id string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		peer := g.CreateEntity(world.EntityDraft{Kind: world.KindLocation})
		if _, err := g.AddRelationship(world.RelKnows, id, peer.ID, 0.5); err != nil {
			t.Fatalf("link %s: %v", id, err)
		}
	}
}

func TestSelectTargetsPenalizesHighDegree(t *testing.T) {
	g := world.NewGraph()
	links := map[string]int{"a": 2, "b": 1, "c": 4, "d": 7}
	for _, id := range []string{"a", "b", "c", "d"} {
		addCharacter(t, g, id)
		linkPeers(t, g, id, links[id])
	}

	selector := NewTargetSelector()
	selection := selector.SelectTargets(g, world.KindCharacter, 4, Bias{})
	if len(selection.Existing) != 4 {
		t.Fatalf("expected 4 targets, got %d", len(selection.Existing))
	}
	// a, b and c sit under the degree cap and tie at the base score, so
	// they order by id; d pays the penalty and comes last.
	want := []string{"a", "b", "c", "d"}
	for i, id := range want {
		if selection.Existing[i].ID != id {
			t.Fatalf("rank %d: expected %s, got %s", i, id, selection.Existing[i].ID)
		}
	}
	if selection.Diagnostics.WorstScore >= selection.Diagnostics.BestScore {
		t.Fatalf("expected the hub to score below the rest: %+v", selection.Diagnostics)
	}
}

func TestSelectTargetsPreferenceBoosts(t *testing.T) {
	g := world.NewGraph()
	addCharacter(t, g, "plain")
	favored := addCharacter(t, g, "favored")
	favored.Subtype = "hero"
	favored.Tags = map[string]string{"cursed": "birthright"}

	selector := NewTargetSelector()
	selection := selector.SelectTargets(g, world.KindCharacter, 2, Bias{
		PreferSubtypes: []string{"hero"},
		PreferTags:     []string{"cursed", "blessed"},
	})
	if selection.Existing[0].ID != "favored" {
		t.Fatalf("expected boosted candidate first, got %s", selection.Existing[0].ID)
	}
	// Two matched dimensions boost twice; extra matches within a dimension
	// do not stack.
	if selection.Diagnostics.BestScore != 4 {
		t.Fatalf("expected best score 4, got %f", selection.Diagnostics.BestScore)
	}
}

func TestSelectTargetsPenalizedKinds(t *testing.T) {
	g := world.NewGraph()
	addCharacter(t, g, "joiner")
	addCharacter(t, g, "loner")
	guild := g.CreateEntity(world.EntityDraft{Kind: world.KindFaction})
	if _, err := g.AddRelationship(world.RelMemberOf, "joiner", guild.ID, 1); err != nil {
		t.Fatalf("add membership: %v", err)
	}

	selector := NewTargetSelector()
	selection := selector.SelectTargets(g, world.KindCharacter, 2, Bias{
		PenalizedKinds: []string{world.RelMemberOf},
	})
	if selection.Existing[0].ID != "loner" {
		t.Fatalf("expected unaffiliated candidate first, got %s", selection.Existing[0].ID)
	}
	if selection.Diagnostics.WorstScore != 0.5 {
		t.Fatalf("expected one membership to halve the score, got %f", selection.Diagnostics.WorstScore)
	}
}

func TestSelectTargetsHardFilters(t *testing.T) {
	g := world.NewGraph()
	addCharacter(t, g, "busy")
	addCharacter(t, g, "entangled")
	addCharacter(t, g, "free")
	addCharacter(t, g, "anchor")
	linkPeers(t, g, "busy", 3)
	if _, err := g.AddRelationship(world.RelAlliedWith, "anchor", "entangled", 1); err != nil {
		t.Fatalf("add alliance: %v", err)
	}

	selector := NewTargetSelector()
	selection := selector.SelectTargets(g, world.KindCharacter, 5, Bias{
		MaxTotalRelationships: 3,
		ExcludeRelatedTo:      "anchor",
	})
	ids := make(map[string]bool)
	for _, entity := range selection.Existing {
		ids[entity.ID] = true
	}
	if ids["busy"] {
		t.Fatal("candidate at the relationship cap must be filtered out")
	}
	if ids["entangled"] {
		t.Fatal("candidate related to the excluded entity must be filtered out")
	}
	if !ids["free"] {
		t.Fatalf("expected the free candidate to remain, got %+v", selection.Existing)
	}
	if selection.Diagnostics.Evaluated != 2 {
		t.Fatalf("filtered candidates must not be evaluated, got %d", selection.Diagnostics.Evaluated)
	}
}

func TestSelectTargetsZeroThresholdNeverCreates(t *testing.T) {
	g := world.NewGraph()
	addCharacter(t, g, "only")

	calls := 0
	selector := NewTargetSelector()
	selection := selector.SelectTargets(g, world.KindCharacter, 2, Bias{
		Create: &CreationOptions{
			Factory: func(ctx CreationContext) *world.EntityDraft {
				calls++
				return &world.EntityDraft{}
			},
			Threshold: 0,
		},
	})
	if calls != 0 || len(selection.Created) != 0 {
		t.Fatalf("zero threshold must disable creation, factory called %d times", calls)
	}
	if selection.Diagnostics.CreationTriggered {
		t.Fatal("creation must not be reported as triggered")
	}
}

func TestSelectTargetsCreatesWhenSaturated(t *testing.T) {
	g := world.NewGraph()
	addCharacter(t, g, "hub")
	linkPeers(t, g, "hub", 9)

	selector := NewTargetSelector()
	bias := Bias{
		Create: &CreationOptions{
			Factory: func(ctx CreationContext) *world.EntityDraft {
				return &world.EntityDraft{Subtype: "npc"}
			},
			Threshold: 10, // everything reads as saturated
		},
	}
	selection := selector.SelectTargets(g, world.KindCharacter, 4, bias)
	if !selection.Diagnostics.CreationTriggered {
		t.Fatal("expected creation to trigger below threshold")
	}
	// Default cap is half the request, rounded up.
	if len(selection.Created) != 2 {
		t.Fatalf("expected 2 created entities, got %d", len(selection.Created))
	}
	for _, entity := range selection.Created {
		if entity.Kind != world.KindCharacter {
			t.Fatalf("draft without kind must be completed, got %s", entity.Kind)
		}
	}
	if total := len(selection.Existing) + len(selection.Created); total > 4 {
		t.Fatalf("selection exceeds requested count: %d", total)
	}
}

func TestSelectTargetsCreationCap(t *testing.T) {
	g := world.NewGraph()

	selector := NewTargetSelector()
	selection := selector.SelectTargets(g, world.KindFaction, 5, Bias{
		Create: &CreationOptions{
			Factory: func(ctx CreationContext) *world.EntityDraft {
				return &world.EntityDraft{}
			},
			Threshold:  1,
			MaxCreated: 1,
		},
	})
	if len(selection.Created) != 1 {
		t.Fatalf("expected creation capped at 1, got %d", len(selection.Created))
	}
	if selection.Diagnostics.Reason == "" {
		t.Fatal("expected a creation reason for an empty pool")
	}
}

func TestSelectTargetsNilFactoryYieldsEmptySelection(t *testing.T) {
	selector := NewTargetSelector()
	selection := selector.SelectTargets(world.NewGraph(), world.KindArtifact, 3, Bias{})
	if len(selection.Existing) != 0 || len(selection.Created) != 0 {
		t.Fatalf("expected empty selection, got %+v", selection)
	}
	d := selection.Diagnostics
	if d.Evaluated != 0 || d.BestScore != 0 || d.WorstScore != 0 || d.AvgScore != 0 {
		t.Fatalf("expected zeroed diagnostics, got %+v", d)
	}
}

func TestDiversityTracking(t *testing.T) {
	g := world.NewGraph()
	addCharacter(t, g, "a")
	addCharacter(t, g, "b")

	selector := NewTargetSelector()
	bias := Bias{TrackingID: "run-1"}

	first := selector.SelectTargets(g, world.KindCharacter, 1, bias)
	if first.Existing[0].ID != "a" {
		t.Fatalf("expected id tiebreak to pick a, got %s", first.Existing[0].ID)
	}
	if selector.SelectionCount("run-1", "a") != 1 {
		t.Fatalf("expected recorded selection for a, got %d", selector.SelectionCount("run-1", "a"))
	}

	second := selector.SelectTargets(g, world.KindCharacter, 1, bias)
	if second.Existing[0].ID != "b" {
		t.Fatalf("expected diversity penalty to rotate to b, got %s", second.Existing[0].ID)
	}

	selector.ResetDiversityTracking("run-1")
	third := selector.SelectTargets(g, world.KindCharacter, 1, bias)
	if third.Existing[0].ID != "a" {
		t.Fatalf("expected reset to restore the original ordering, got %s", third.Existing[0].ID)
	}

	// Tracking state is per id; another id is unaffected by the first.
	other := selector.SelectTargets(g, world.KindCharacter, 1, Bias{TrackingID: "run-2"})
	if other.Existing[0].ID != "a" {
		t.Fatalf("expected independent tracking per id, got %s", other.Existing[0].ID)
	}
	selector.ResetDiversityTracking("")
	if selector.SelectionCount("run-2", "a") != 0 {
		t.Fatal("expected empty id reset to clear every tracking id")
	}
}

func TestDiagnosticsScoreOrdering(t *testing.T) {
	g := world.NewGraph()
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("c%d", i)
		addCharacter(t, g, id)
		linkPeers(t, g, id, i*2)
	}

	selector := NewTargetSelector()
	selection := selector.SelectTargets(g, world.KindCharacter, 3, Bias{})
	d := selection.Diagnostics
	if d.Evaluated != 5 {
		t.Fatalf("expected 5 evaluated candidates, got %d", d.Evaluated)
	}
	if !(d.WorstScore <= d.AvgScore && d.AvgScore <= d.BestScore) {
		t.Fatalf("expected worst <= avg <= best, got %+v", d)
	}
}
