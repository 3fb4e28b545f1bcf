package growth

import "loreweave/internal/world"

// Effect is one declared production tendency of a template. The set of
// variants is closed: KindEffect, ProminenceEffect, RelationshipEffect
// and ShapeEffect. Weight adjustment switches over these exhaustively.
type Effect interface {
	effect()
}

// KindEffect declares that the template tends to produce entities of Kind.
type KindEffect struct {
	Kind world.Kind
}

// ProminenceEffect declares that the template tends to produce entities
// at the given prominence level.
type ProminenceEffect struct {
	Level world.Prominence
}

// RelationshipEffect declares that the template tends to create
// relationships of Kind.
type RelationshipEffect struct {
	Kind string
}

// Shape names a graph-shape tendency.
type Shape string

const (
	// ShapeDensify adds edges inside existing clusters.
	ShapeDensify Shape = "densify"
	// ShapeCluster seeds or grows small clusters.
	ShapeCluster Shape = "cluster"
	// ShapeBridge links previously separate clusters.
	ShapeBridge Shape = "bridge"
	// ShapeIsolate introduces unconnected entities.
	ShapeIsolate Shape = "isolate"
)

// ShapeEffect declares a graph-shape tendency of the template.
type ShapeEffect struct {
	Shape Shape
}

func (KindEffect) effect()         {}
func (ProminenceEffect) effect()   {}
func (RelationshipEffect) effect() {}
func (ShapeEffect) effect()        {}

// ProductionProfile is the declared statistical footprint of a template.
type ProductionProfile struct {
	Effects []Effect
}

// Template is one generative action. Execution of its concrete rules is
// the caller's business; the selector only consumes ID and Profile. A nil
// Profile means the template gets its base weight with no correction.
type Template struct {
	ID          string
	Name        string
	Description string
	Profile     *ProductionProfile
}

// WeightedTemplate pairs a template with its era base weight and the
// deviation-corrected final weight.
type WeightedTemplate struct {
	Template Template
	Base     float64
	Weight   float64
}
