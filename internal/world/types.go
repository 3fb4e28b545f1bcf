package world

// Kind is the coarse category of an entity.
type Kind string

const (
	KindCharacter Kind = "character"
	KindFaction   Kind = "faction"
	KindLocation  Kind = "location"
	KindArtifact  Kind = "artifact"
	KindEvent     Kind = "event"
)

// Status marks whether a record is part of the living world or archived.
type Status string

const (
	StatusActive     Status = "active"
	StatusHistorical Status = "historical"
)

// Prominence is the ordinal importance scale for an entity.
type Prominence int

const (
	ProminenceForgotten Prominence = iota
	ProminenceMarginal
	ProminenceRecognized
	ProminenceRenowned
	ProminenceMythic
)

var prominenceNames = []string{"forgotten", "marginal", "recognized", "renowned", "mythic"}

func (p Prominence) String() string {
	if p < ProminenceForgotten || p > ProminenceMythic {
		return "unknown"
	}
	return prominenceNames[p]
}

// Prominences lists every level in ascending order.
func Prominences() []Prominence {
	return []Prominence{
		ProminenceForgotten,
		ProminenceMarginal,
		ProminenceRecognized,
		ProminenceRenowned,
		ProminenceMythic,
	}
}

// Common relationship kinds. Templates may introduce kinds beyond this set;
// the tracker discovers them lazily.
const (
	RelAlliedWith  = "allied_with"
	RelRivalOf     = "rival_of"
	RelMemberOf    = "member_of"
	RelLocatedIn   = "located_in"
	RelRules       = "rules"
	RelKnows       = "knows"
	RelDescendedOf = "descended_of"
	RelOwns        = "owns"
)

// Entity is a node in the world graph. Links is a denormalized view of
// every relationship touching the entity, in either direction; it is
// maintained by Graph and excluded from encoding, which stores
// relationships once at the graph level.
type Entity struct {
	ID          string            `json:"id"`
	Kind        Kind              `json:"kind"`
	Subtype     string            `json:"subtype,omitempty"`
	Status      Status            `json:"status"`
	Prominence  Prominence        `json:"prominence"`
	Culture     string            `json:"culture,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
	Links       []*Relationship   `json:"-"`
	CreatedTick int               `json:"created_tick"`
	UpdatedTick int               `json:"updated_tick"`
}

// ActiveLinkCount returns the number of non-archived relationships
// touching the entity.
func (e *Entity) ActiveLinkCount() int {
	n := 0
	for _, rel := range e.Links {
		if rel.Status == StatusActive {
			n++
		}
	}
	return n
}

// HasTag reports whether the entity carries the tag key, with any value.
func (e *Entity) HasTag(key string) bool {
	_, ok := e.Tags[key]
	return ok
}

// Relationship is a directed, typed, strength-weighted edge. Strength is
// kept in [0,1]; Distance is an optional spatial or semantic separation.
type Relationship struct {
	Kind        string  `json:"kind"`
	SourceID    string  `json:"source_id"`
	TargetID    string  `json:"target_id"`
	Strength    float64 `json:"strength"`
	Distance    float64 `json:"distance,omitempty"`
	Status      Status  `json:"status"`
	CreatedTick int     `json:"created_tick"`
}

// Other returns the endpoint of the relationship that is not id.
func (r *Relationship) Other(id string) string {
	if r.SourceID == id {
		return r.TargetID
	}
	return r.SourceID
}

// EntityDraft carries the caller-specified fields for a new entity.
// Zero-valued fields get defaults: Status becomes active, Prominence
// stays forgotten.
type EntityDraft struct {
	Kind       Kind
	Subtype    string
	Prominence Prominence
	Culture    string
	Tags       map[string]string
}
