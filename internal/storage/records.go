package storage

import (
	"fmt"

	"loreweave/internal/world"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// WorldSnapshot is a persistable copy of a world graph. Entities and
// relationships are stored flat; the denormalized per-entity link lists
// are rebuilt on load.
type WorldSnapshot struct {
	VersionedRecord
	ID            string               `json:"id"`
	Era           string               `json:"era,omitempty"`
	Tick          int                  `json:"tick"`
	Entities      []world.Entity       `json:"entities"`
	Relationships []world.Relationship `json:"relationships"`
}

// Snapshot copies the graph into a storable record.
func Snapshot(id, era string, g *world.Graph) WorldSnapshot {
	snapshot := WorldSnapshot{
		VersionedRecord: VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:   id,
		Era:  era,
		Tick: g.Tick(),
	}
	for _, entity := range g.Entities() {
		snapshot.Entities = append(snapshot.Entities, *entity)
	}
	for _, rel := range g.Relationships() {
		snapshot.Relationships = append(snapshot.Relationships, *rel)
	}
	return snapshot
}

// Restore rebuilds a world graph from a snapshot.
func Restore(snapshot WorldSnapshot) (*world.Graph, error) {
	g := world.NewGraph()
	g.SetTick(snapshot.Tick)
	for i := range snapshot.Entities {
		entity := snapshot.Entities[i]
		entity.Links = nil
		if err := g.AddEntity(&entity); err != nil {
			return nil, fmt.Errorf("restore entity: %w", err)
		}
	}
	for _, record := range snapshot.Relationships {
		rel, err := g.AddRelationship(record.Kind, record.SourceID, record.TargetID, record.Strength)
		if err != nil {
			return nil, fmt.Errorf("restore relationship: %w", err)
		}
		rel.Distance = record.Distance
		rel.Status = record.Status
		rel.CreatedTick = record.CreatedTick
	}
	return g, nil
}
