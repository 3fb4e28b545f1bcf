package growth

import (
	"math/rand"

	"loreweave/internal/dist"
	"loreweave/internal/world"
)

// BasicExecutor is a minimal template executor that follows a template's
// production profile literally: kind effects create entities, relationship
// effects pick endpoints through the target selector and connect them,
// shape effects nudge the graph's topology. It stands in for the external
// rule interpreter in the CLI and in tests.
type BasicExecutor struct {
	schema dist.Schema
	rng    *rand.Rand
}

func NewBasicExecutor(schema dist.Schema, rng *rand.Rand) *BasicExecutor {
	return &BasicExecutor{schema: schema, rng: rng}
}

func (e *BasicExecutor) Name() string { return "basic" }

func (e *BasicExecutor) Execute(g *world.Graph, tpl Template, targets *TargetSelector) error {
	if tpl.Profile == nil {
		return nil
	}

	prominence := world.ProminenceMarginal
	for _, effect := range tpl.Profile.Effects {
		if p, ok := effect.(ProminenceEffect); ok {
			prominence = p.Level
			break
		}
	}

	for _, effect := range tpl.Profile.Effects {
		switch ef := effect.(type) {
		case KindEffect:
			e.createEntity(g, ef.Kind, prominence)
		case RelationshipEffect:
			e.connect(g, targets, ef.Kind)
		case ShapeEffect:
			e.shape(g, targets, ef.Shape, prominence)
		case ProminenceEffect:
			// Consumed above; prominence alone creates nothing.
		}
	}
	return nil
}

func (e *BasicExecutor) createEntity(g *world.Graph, kind world.Kind, prominence world.Prominence) *world.Entity {
	return g.CreateEntity(world.EntityDraft{
		Kind:       kind,
		Subtype:    e.pickSubtype(kind),
		Prominence: prominence,
	})
}

func (e *BasicExecutor) pickSubtype(kind world.Kind) string {
	subtypes := e.schema.Subtypes[kind]
	if len(subtypes) == 0 {
		return ""
	}
	return subtypes[e.rng.Intn(len(subtypes))]
}

// connect picks one endpoint of each kind the relationship expects and
// links them, creating endpoints when candidates are saturated.
func (e *BasicExecutor) connect(g *world.Graph, targets *TargetSelector, relKind string) {
	sourceKind, targetKind := endpointKinds(relKind)

	source := e.pickOne(g, targets, sourceKind, Bias{
		TrackingID: "executor/" + relKind,
		Create:     NewCreationOptions(e.draftFactory(sourceKind)),
	})
	if source == nil {
		return
	}
	target := e.pickOne(g, targets, targetKind, Bias{
		TrackingID:       "executor/" + relKind,
		ExcludeRelatedTo: source.ID,
		ExcludeKind:      relKind,
		Create:           NewCreationOptions(e.draftFactory(targetKind)),
	})
	if target == nil || target.ID == source.ID {
		return
	}
	strength := 0.3 + e.rng.Float64()*0.7
	_, _ = g.AddRelationship(relKind, source.ID, target.ID, strength)
}

func (e *BasicExecutor) pickOne(g *world.Graph, targets *TargetSelector, kind world.Kind, bias Bias) *world.Entity {
	selection := targets.SelectTargets(g, kind, 1, bias)
	if len(selection.Existing) > 0 {
		return selection.Existing[0]
	}
	if len(selection.Created) > 0 {
		return selection.Created[0]
	}
	return nil
}

func (e *BasicExecutor) draftFactory(kind world.Kind) Factory {
	return func(CreationContext) *world.EntityDraft {
		return &world.EntityDraft{
			Kind:       kind,
			Subtype:    e.pickSubtype(kind),
			Prominence: world.ProminenceMarginal,
		}
	}
}

func (e *BasicExecutor) shape(g *world.Graph, targets *TargetSelector, shape Shape, prominence world.Prominence) {
	switch shape {
	case ShapeDensify:
		// Another edge between already-connected population.
		e.connect(g, targets, world.RelKnows)
	case ShapeCluster:
		// Seed a small cluster around a fresh location.
		location := e.createEntity(g, world.KindLocation, prominence)
		for i := 0; i < 2; i++ {
			inhabitant := e.createEntity(g, world.KindCharacter, world.ProminenceMarginal)
			_, _ = g.AddRelationship(world.RelLocatedIn, inhabitant.ID, location.ID, 0.8)
		}
	case ShapeBridge:
		// Link two factions that have no tie yet.
		a := e.pickOne(g, targets, world.KindFaction, Bias{
			Create: NewCreationOptions(e.draftFactory(world.KindFaction)),
		})
		if a == nil {
			return
		}
		b := e.pickOne(g, targets, world.KindFaction, Bias{
			ExcludeRelatedTo: a.ID,
			Create:           NewCreationOptions(e.draftFactory(world.KindFaction)),
		})
		if b == nil || b.ID == a.ID {
			return
		}
		_, _ = g.AddRelationship(world.RelAlliedWith, a.ID, b.ID, 0.5)
	case ShapeIsolate:
		e.createEntity(g, world.KindCharacter, world.ProminenceForgotten)
	}
}

// endpointKinds maps a relationship kind to the entity kinds it usually
// connects, source first.
func endpointKinds(relKind string) (world.Kind, world.Kind) {
	switch relKind {
	case world.RelMemberOf:
		return world.KindCharacter, world.KindFaction
	case world.RelLocatedIn:
		return world.KindCharacter, world.KindLocation
	case world.RelAlliedWith, world.RelRivalOf:
		return world.KindFaction, world.KindFaction
	case world.RelRules:
		return world.KindFaction, world.KindLocation
	case world.RelOwns:
		return world.KindCharacter, world.KindArtifact
	default:
		return world.KindCharacter, world.KindCharacter
	}
}
