package storage

import (
	"errors"
	"testing"

	"loreweave/internal/world"
)

func buildWorld(t *testing.T) *world.Graph {
	t.Helper()
	g := world.NewGraph()
	g.SetTick(12)
	hero := g.CreateEntity(world.EntityDraft{Kind: world.KindCharacter, Subtype: "hero", Prominence: world.ProminenceRenowned})
	town := g.CreateEntity(world.EntityDraft{Kind: world.KindLocation, Subtype: "settlement"})
	rel, err := g.AddRelationship(world.RelLocatedIn, hero.ID, town.ID, 0.8)
	if err != nil {
		t.Fatalf("add relationship: %v", err)
	}
	g.ArchiveRelationship(rel)
	if _, err := g.AddRelationship(world.RelKnows, hero.ID, town.ID, 0.4); err != nil {
		t.Fatalf("add relationship: %v", err)
	}
	return g
}

func TestWorldSnapshotRoundTrip(t *testing.T) {
	g := buildWorld(t)
	snapshot := Snapshot("world-1", "first_age", g)

	data, err := EncodeWorld(snapshot)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeWorld(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	restored, err := Restore(decoded)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Tick() != 12 {
		t.Fatalf("expected tick 12, got %d", restored.Tick())
	}
	if restored.EntityCount() != g.EntityCount() {
		t.Fatalf("entity count mismatch: %d vs %d", restored.EntityCount(), g.EntityCount())
	}
	if len(restored.Relationships()) != 2 {
		t.Fatalf("expected 2 relationships, got %d", len(restored.Relationships()))
	}
	if len(restored.ActiveRelationships()) != 1 {
		t.Fatalf("archived relationship must stay archived, got %d active", len(restored.ActiveRelationships()))
	}

	// Link lists are rebuilt, not deserialized.
	for _, entity := range restored.Entities() {
		original, ok := g.Entity(entity.ID)
		if !ok {
			t.Fatalf("unexpected entity %s", entity.ID)
		}
		if len(entity.Links) != len(original.Links) {
			t.Fatalf("links not rebuilt for %s: %d vs %d", entity.ID, len(entity.Links), len(original.Links))
		}
	}
}

func TestDecodeWorldVersionMismatch(t *testing.T) {
	snapshot := Snapshot("world-1", "", world.NewGraph())
	snapshot.CodecVersion = CurrentCodecVersion + 1

	data, err := EncodeWorld(snapshot)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeWorld(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeWorldRejectsGarbage(t *testing.T) {
	if _, err := DecodeWorld([]byte("not json")); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestRestoreRejectsDanglingRelationship(t *testing.T) {
	snapshot := Snapshot("world-1", "", buildWorld(t))
	snapshot.Relationships = append(snapshot.Relationships, world.Relationship{
		Kind: world.RelKnows, SourceID: "missing", TargetID: snapshot.Entities[0].ID,
	})
	if _, err := Restore(snapshot); err == nil {
		t.Fatal("expected an error for a dangling relationship")
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	history := []float64{3.2, 2.1, 1.4, 0.9}
	data, err := EncodeHistory(history)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeHistory(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(history) {
		t.Fatalf("length mismatch: %d vs %d", len(decoded), len(history))
	}
	for i := range history {
		if decoded[i] != history[i] {
			t.Fatalf("value %d mismatch: %f vs %f", i, decoded[i], history[i])
		}
	}
}
