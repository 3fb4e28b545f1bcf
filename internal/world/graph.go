package world

import (
	"fmt"

	"github.com/google/uuid"
)

// Graph is the mutable entity/relationship store with a logical clock.
// One growth step runs strictly before the next, so Graph performs no
// locking; it must not be shared across goroutines.
type Graph struct {
	tick          int
	entities      map[string]*Entity
	order         []string
	relationships []*Relationship
}

func NewGraph() *Graph {
	return &Graph{entities: make(map[string]*Entity)}
}

// Tick returns the current logical time.
func (g *Graph) Tick() int { return g.tick }

// AdvanceTick moves the logical clock forward by one.
func (g *Graph) AdvanceTick() { g.tick++ }

// SetTick restores the clock, used when loading a snapshot.
func (g *Graph) SetTick(tick int) {
	if tick < 0 {
		tick = 0
	}
	g.tick = tick
}

// CreateEntity mints a new active entity from the draft and registers it.
func (g *Graph) CreateEntity(draft EntityDraft) *Entity {
	entity := &Entity{
		ID:          uuid.NewString(),
		Kind:        draft.Kind,
		Subtype:     draft.Subtype,
		Status:      StatusActive,
		Prominence:  draft.Prominence,
		Culture:     draft.Culture,
		Tags:        draft.Tags,
		CreatedTick: g.tick,
		UpdatedTick: g.tick,
	}
	g.register(entity)
	return entity
}

// AddEntity registers an externally built entity, for example one restored
// from a snapshot. The ID must be set and unused.
func (g *Graph) AddEntity(entity *Entity) error {
	if entity == nil || entity.ID == "" {
		return fmt.Errorf("entity id is required")
	}
	if _, exists := g.entities[entity.ID]; exists {
		return fmt.Errorf("entity already exists: %s", entity.ID)
	}
	if entity.Status == "" {
		entity.Status = StatusActive
	}
	g.register(entity)
	return nil
}

func (g *Graph) register(entity *Entity) {
	g.entities[entity.ID] = entity
	g.order = append(g.order, entity.ID)
}

// Entity returns the entity with the given id.
func (g *Graph) Entity(id string) (*Entity, bool) {
	entity, ok := g.entities[id]
	return entity, ok
}

// Entities returns every entity in insertion order.
func (g *Graph) Entities() []*Entity {
	out := make([]*Entity, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.entities[id])
	}
	return out
}

// EntitiesByKind returns active entities of the given kind in insertion order.
func (g *Graph) EntitiesByKind(kind Kind) []*Entity {
	out := make([]*Entity, 0)
	for _, id := range g.order {
		entity := g.entities[id]
		if entity.Kind == kind && entity.Status == StatusActive {
			out = append(out, entity)
		}
	}
	return out
}

// EntityCount returns the number of registered entities.
func (g *Graph) EntityCount() int { return len(g.entities) }

// UpdateEntity applies fn to the entity and stamps its update tick.
func (g *Graph) UpdateEntity(id string, fn func(*Entity)) error {
	entity, ok := g.entities[id]
	if !ok {
		return fmt.Errorf("entity not found: %s", id)
	}
	fn(entity)
	entity.UpdatedTick = g.tick
	return nil
}

// AddRelationship creates an active relationship between two existing
// entities. Strength is clamped into [0,1] rather than rejected.
func (g *Graph) AddRelationship(kind, sourceID, targetID string, strength float64) (*Relationship, error) {
	source, ok := g.entities[sourceID]
	if !ok {
		return nil, fmt.Errorf("relationship source not found: %s", sourceID)
	}
	target, ok := g.entities[targetID]
	if !ok {
		return nil, fmt.Errorf("relationship target not found: %s", targetID)
	}
	if sourceID == targetID {
		return nil, fmt.Errorf("relationship endpoints must differ: %s", sourceID)
	}
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}

	rel := &Relationship{
		Kind:        kind,
		SourceID:    sourceID,
		TargetID:    targetID,
		Strength:    strength,
		Status:      StatusActive,
		CreatedTick: g.tick,
	}
	g.relationships = append(g.relationships, rel)
	source.Links = append(source.Links, rel)
	target.Links = append(target.Links, rel)
	source.UpdatedTick = g.tick
	target.UpdatedTick = g.tick
	return rel, nil
}

// ArchiveRelationship marks the relationship historical. The record and
// both denormalized link entries stay in place for history queries.
func (g *Graph) ArchiveRelationship(rel *Relationship) {
	if rel == nil {
		return
	}
	rel.Status = StatusHistorical
}

// Relationships returns every relationship, active and historical.
func (g *Graph) Relationships() []*Relationship {
	out := make([]*Relationship, len(g.relationships))
	copy(out, g.relationships)
	return out
}

// ActiveRelationships returns the active relationships only.
func (g *Graph) ActiveRelationships() []*Relationship {
	out := make([]*Relationship, 0, len(g.relationships))
	for _, rel := range g.relationships {
		if rel.Status == StatusActive {
			out = append(out, rel)
		}
	}
	return out
}

// RelationshipCount returns the number of active relationships.
func (g *Graph) RelationshipCount() int {
	return len(g.ActiveRelationships())
}

// Related reports whether a and b share an active relationship in either
// direction. A non-empty kind restricts the check to that kind.
func (g *Graph) Related(aID, bID, kind string) bool {
	entity, ok := g.entities[aID]
	if !ok {
		return false
	}
	for _, rel := range entity.Links {
		if rel.Status != StatusActive {
			continue
		}
		if kind != "" && rel.Kind != kind {
			continue
		}
		if rel.Other(aID) == bID {
			return true
		}
	}
	return false
}

// RelatedIDs returns the ids of entities sharing an active relationship of
// the given kind with id, where id is the relationship source. An empty
// kind matches every kind.
func (g *Graph) RelatedIDs(id, kind string) []string {
	entity, ok := g.entities[id]
	if !ok {
		return nil
	}
	out := make([]string, 0)
	for _, rel := range entity.Links {
		if rel.Status != StatusActive || rel.SourceID != id {
			continue
		}
		if kind != "" && rel.Kind != kind {
			continue
		}
		out = append(out, rel.TargetID)
	}
	return out
}
