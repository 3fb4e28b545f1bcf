package world

import "testing"

func TestCreateEntityDefaults(t *testing.T) {
	g := NewGraph()
	g.AdvanceTick()
	g.AdvanceTick()

	entity := g.CreateEntity(EntityDraft{Kind: KindCharacter, Subtype: "npc"})
	if entity.ID == "" {
		t.Fatal("expected generated entity id")
	}
	if entity.Status != StatusActive {
		t.Fatalf("expected active status, got %s", entity.Status)
	}
	if entity.CreatedTick != 2 || entity.UpdatedTick != 2 {
		t.Fatalf("expected creation at tick 2, got created=%d updated=%d", entity.CreatedTick, entity.UpdatedTick)
	}
	if g.EntityCount() != 1 {
		t.Fatalf("expected 1 entity, got %d", g.EntityCount())
	}
}

func TestAddEntityRejectsDuplicates(t *testing.T) {
	g := NewGraph()
	if err := g.AddEntity(&Entity{ID: "a", Kind: KindFaction}); err != nil {
		t.Fatalf("add entity: %v", err)
	}
	if err := g.AddEntity(&Entity{ID: "a", Kind: KindFaction}); err == nil {
		t.Fatal("expected duplicate id error")
	}
	if err := g.AddEntity(&Entity{}); err == nil {
		t.Fatal("expected missing id error")
	}
}

func TestAddRelationshipMaintainsLinks(t *testing.T) {
	g := NewGraph()
	a := g.CreateEntity(EntityDraft{Kind: KindCharacter})
	b := g.CreateEntity(EntityDraft{Kind: KindFaction})

	rel, err := g.AddRelationship(RelMemberOf, a.ID, b.ID, 0.7)
	if err != nil {
		t.Fatalf("add relationship: %v", err)
	}
	if a.ActiveLinkCount() != 1 || b.ActiveLinkCount() != 1 {
		t.Fatalf("expected links on both endpoints, got %d and %d", a.ActiveLinkCount(), b.ActiveLinkCount())
	}
	if !g.Related(a.ID, b.ID, RelMemberOf) {
		t.Fatal("expected entities to be related")
	}
	if g.Related(a.ID, b.ID, RelRivalOf) {
		t.Fatal("unexpected relation under different kind")
	}

	g.ArchiveRelationship(rel)
	if g.RelationshipCount() != 0 {
		t.Fatalf("expected no active relationships, got %d", g.RelationshipCount())
	}
	if a.ActiveLinkCount() != 0 {
		t.Fatal("archived relationship should not count as active link")
	}
	if len(g.Relationships()) != 1 {
		t.Fatal("archived relationship should remain recorded")
	}
}

func TestAddRelationshipValidation(t *testing.T) {
	g := NewGraph()
	a := g.CreateEntity(EntityDraft{Kind: KindCharacter})

	if _, err := g.AddRelationship(RelKnows, a.ID, "missing", 0.5); err == nil {
		t.Fatal("expected missing endpoint error")
	}
	if _, err := g.AddRelationship(RelKnows, a.ID, a.ID, 0.5); err == nil {
		t.Fatal("expected self-relationship error")
	}

	b := g.CreateEntity(EntityDraft{Kind: KindCharacter})
	rel, err := g.AddRelationship(RelKnows, a.ID, b.ID, 3.5)
	if err != nil {
		t.Fatalf("add relationship: %v", err)
	}
	if rel.Strength != 1 {
		t.Fatalf("expected strength clamped to 1, got %f", rel.Strength)
	}
}

func TestEntitiesByKindSkipsHistorical(t *testing.T) {
	g := NewGraph()
	a := g.CreateEntity(EntityDraft{Kind: KindCharacter})
	g.CreateEntity(EntityDraft{Kind: KindCharacter})
	g.CreateEntity(EntityDraft{Kind: KindLocation})

	if err := g.UpdateEntity(a.ID, func(e *Entity) { e.Status = StatusHistorical }); err != nil {
		t.Fatalf("update entity: %v", err)
	}
	characters := g.EntitiesByKind(KindCharacter)
	if len(characters) != 1 {
		t.Fatalf("expected 1 active character, got %d", len(characters))
	}
}
