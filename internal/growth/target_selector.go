package growth

import (
	"fmt"
	"math"
	"sort"

	"loreweave/internal/world"
)

const (
	// DefaultPreferenceBoost multiplies a candidate's score once per
	// matched preference dimension.
	DefaultPreferenceBoost = 2.0
	// DefaultSaturationThreshold is the top score below which creation is
	// considered, applied by NewCreationOptions. A zero threshold disables
	// saturation-triggered creation outright, since scores never go
	// negative.
	DefaultSaturationThreshold = 0.1
	// generalHubCap is the link count beyond which every candidate pays a
	// degree penalty, independent of any configured penalized kinds.
	generalHubCap = 5
)

// CreationContext is handed to the factory once per slot to be filled by
// a new entity.
type CreationContext struct {
	Kind       world.Kind
	Requested  int
	BestScore  float64
	Candidates []ScoredCandidate
}

// Factory builds a draft for a new entity when existing candidates are
// saturated. A nil return skips the slot; a draft with a missing kind is
// completed with the requested kind.
type Factory func(ctx CreationContext) *world.EntityDraft

// CreationOptions configures saturation-triggered entity creation.
type CreationOptions struct {
	Factory Factory
	// Threshold is the saturation cutoff compared against the best
	// candidate score. Zero disables saturation-triggered creation.
	Threshold float64
	// MaxCreated caps new entities per call; <= 0 means ceil(count/2).
	MaxCreated int
}

// NewCreationOptions returns creation options with the documented
// defaults applied.
func NewCreationOptions(factory Factory) *CreationOptions {
	return &CreationOptions{Factory: factory, Threshold: DefaultSaturationThreshold}
}

// Bias enumerates every recognized selection preference, penalty and
// filter; the zero value applies none of them.
type Bias struct {
	// Preferences: a match in a dimension multiplies the score by
	// PreferenceBoost once, regardless of how many entries matched.
	PreferSubtypes   []string
	PreferTags       []string
	PreferProminence []world.Prominence
	// SameLocationAs boosts candidates located in the referenced entity
	// or sharing a location with it.
	SameLocationAs string

	// PreferenceBoost defaults to 2.0 when <= 0.
	PreferenceBoost float64

	// PenalizedKinds lists relationship kinds whose count on a candidate
	// feeds the avoidance penalty 1/(1+n^HubPenaltyStrength).
	PenalizedKinds []string
	// HubPenaltyStrength defaults to 1.0 when <= 0.
	HubPenaltyStrength float64

	// TrackingID enables diversity tracking: prior selections under the
	// same id penalize a candidate by 1/(1+prior^DiversityStrength).
	TrackingID string
	// DiversityStrength defaults to 1.0 when <= 0.
	DiversityStrength float64

	// Hard filters, applied before ranking.
	MaxTotalRelationships int
	ExcludeRelatedTo      string
	ExcludeKind           string

	// Create enables factory-backed creation when candidates are
	// saturated. Nil means never create.
	Create *CreationOptions
}

// ScoredCandidate is one ranked candidate.
type ScoredCandidate struct {
	Entity *world.Entity
	Score  float64
}

// SelectionDiagnostics reports what the selector saw, for every call.
type SelectionDiagnostics struct {
	Evaluated         int     `json:"evaluated"`
	BestScore         float64 `json:"best_score"`
	WorstScore        float64 `json:"worst_score"`
	AvgScore          float64 `json:"avg_score"`
	CreationTriggered bool    `json:"creation_triggered"`
	Reason            string  `json:"reason,omitempty"`
}

// Selection is the result of one SelectTargets call.
type Selection struct {
	Existing    []*world.Entity
	Created     []*world.Entity
	Diagnostics SelectionDiagnostics
}

// TargetSelector scores and ranks existing entities for a template to
// connect, suppressing hub formation, and creates new entities through a
// caller-supplied factory when every candidate is saturated. The only
// long-lived state is the per-tracking-id selection counters, owned by
// the instance and cleared through ResetDiversityTracking.
type TargetSelector struct {
	selectionCounts map[string]map[string]int
}

func NewTargetSelector() *TargetSelector {
	return &TargetSelector{selectionCounts: make(map[string]map[string]int)}
}

// SelectTargets picks up to count entities of kind from the graph,
// best-scoring first. Absence of candidates yields a zero-valued
// selection, not an error.
func (s *TargetSelector) SelectTargets(g *world.Graph, kind world.Kind, count int, bias Bias) Selection {
	if g == nil || count <= 0 {
		return Selection{}
	}

	candidates := g.EntitiesByKind(kind)
	ranked := s.rankCandidates(g, candidates, bias)

	diagnostics := summarizeScores(ranked)
	if len(ranked) == 0 {
		if bias.Create == nil || bias.Create.Factory == nil {
			return Selection{Diagnostics: diagnostics}
		}
		diagnostics.CreationTriggered = true
		diagnostics.Reason = fmt.Sprintf("no usable %s candidates", kind)
		created := s.create(g, kind, count, bias, ranked, 0)
		return Selection{Created: created, Diagnostics: diagnostics}
	}

	best := ranked[0].Score
	var created []*world.Entity
	if bias.Create != nil && bias.Create.Factory != nil && best < bias.Create.Threshold {
		diagnostics.CreationTriggered = true
		diagnostics.Reason = fmt.Sprintf("best score %.3f below threshold %.3f", best, bias.Create.Threshold)
		created = s.create(g, kind, count, bias, ranked, best)
	}

	remaining := count - len(created)
	existing := make([]*world.Entity, 0, remaining)
	for _, candidate := range ranked {
		if len(existing) >= remaining {
			break
		}
		existing = append(existing, candidate.Entity)
	}

	if bias.TrackingID != "" {
		s.recordSelections(bias.TrackingID, existing)
	}
	return Selection{Existing: existing, Created: created, Diagnostics: diagnostics}
}

func (s *TargetSelector) rankCandidates(g *world.Graph, candidates []*world.Entity, bias Bias) []ScoredCandidate {
	ranked := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		if bias.MaxTotalRelationships > 0 && len(candidate.Links) >= bias.MaxTotalRelationships {
			continue
		}
		if bias.ExcludeRelatedTo != "" && g.Related(candidate.ID, bias.ExcludeRelatedTo, bias.ExcludeKind) {
			continue
		}
		ranked = append(ranked, ScoredCandidate{
			Entity: candidate,
			Score:  s.scoreCandidate(g, candidate, bias),
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score == ranked[j].Score {
			return ranked[i].Entity.ID < ranked[j].Entity.ID
		}
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// scoreCandidate computes the multiplicative score: preference boosts,
// the configured avoidance penalty, the unconditional high-degree
// penalty, and the diversity penalty. Never negative.
func (s *TargetSelector) scoreCandidate(g *world.Graph, candidate *world.Entity, bias Bias) float64 {
	score := 1.0
	boost := bias.PreferenceBoost
	if boost <= 0 {
		boost = DefaultPreferenceBoost
	}

	if matchesAny(candidate.Subtype, bias.PreferSubtypes) {
		score *= boost
	}
	if hasAnyTag(candidate, bias.PreferTags) {
		score *= boost
	}
	for _, level := range bias.PreferProminence {
		if candidate.Prominence == level {
			score *= boost
			break
		}
	}
	if bias.SameLocationAs != "" && coLocated(g, candidate.ID, bias.SameLocationAs) {
		score *= boost
	}

	if len(bias.PenalizedKinds) > 0 {
		strength := bias.HubPenaltyStrength
		if strength <= 0 {
			strength = 1.0
		}
		penalized := 0
		for _, rel := range candidate.Links {
			if rel.Status != world.StatusActive {
				continue
			}
			if matchesAny(rel.Kind, bias.PenalizedKinds) {
				penalized++
			}
		}
		if penalized > 0 {
			score *= 1 / (1 + math.Pow(float64(penalized), strength))
		}
	}

	if links := candidate.ActiveLinkCount(); links > generalHubCap {
		score *= 1 / (1 + math.Sqrt(float64(links-generalHubCap)))
	}

	if bias.TrackingID != "" {
		prior := s.selectionCounts[bias.TrackingID][candidate.ID]
		if prior > 0 {
			strength := bias.DiversityStrength
			if strength <= 0 {
				strength = 1.0
			}
			score *= 1 / (1 + math.Pow(float64(prior), strength))
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

// create invokes the factory once per open slot, up to the configured or
// default cap. Nil drafts are tolerated and skip the slot; a draft
// without a kind is completed with the requested kind.
func (s *TargetSelector) create(g *world.Graph, kind world.Kind, count int, bias Bias, ranked []ScoredCandidate, bestScore float64) []*world.Entity {
	maxCreated := bias.Create.MaxCreated
	if maxCreated <= 0 {
		maxCreated = (count + 1) / 2
	}
	if maxCreated > count {
		maxCreated = count
	}

	ctx := CreationContext{
		Kind:       kind,
		Requested:  count,
		BestScore:  bestScore,
		Candidates: ranked,
	}
	created := make([]*world.Entity, 0, maxCreated)
	for i := 0; i < maxCreated; i++ {
		draft := bias.Create.Factory(ctx)
		if draft == nil {
			continue
		}
		if draft.Kind == "" {
			draft.Kind = kind
		}
		created = append(created, g.CreateEntity(*draft))
	}
	return created
}

func (s *TargetSelector) recordSelections(trackingID string, selected []*world.Entity) {
	counts := s.selectionCounts[trackingID]
	if counts == nil {
		counts = make(map[string]int)
		s.selectionCounts[trackingID] = counts
	}
	for _, entity := range selected {
		counts[entity.ID]++
	}
}

// ResetDiversityTracking clears the selection history for one tracking
// id, or for all of them when the id is empty. The simulation loop calls
// this at natural boundaries such as era transitions.
func (s *TargetSelector) ResetDiversityTracking(trackingID string) {
	if trackingID == "" {
		s.selectionCounts = make(map[string]map[string]int)
		return
	}
	delete(s.selectionCounts, trackingID)
}

// SelectionCount reports how often an entity was selected under a
// tracking id.
func (s *TargetSelector) SelectionCount(trackingID, entityID string) int {
	return s.selectionCounts[trackingID][entityID]
}

func summarizeScores(ranked []ScoredCandidate) SelectionDiagnostics {
	diagnostics := SelectionDiagnostics{Evaluated: len(ranked)}
	if len(ranked) == 0 {
		return diagnostics
	}
	total := 0.0
	worst := ranked[0].Score
	best := ranked[0].Score
	for _, candidate := range ranked {
		total += candidate.Score
		if candidate.Score < worst {
			worst = candidate.Score
		}
		if candidate.Score > best {
			best = candidate.Score
		}
	}
	diagnostics.BestScore = best
	diagnostics.WorstScore = worst
	diagnostics.AvgScore = total / float64(len(ranked))
	return diagnostics
}

func matchesAny(value string, options []string) bool {
	for _, option := range options {
		if value == option {
			return true
		}
	}
	return false
}

func hasAnyTag(entity *world.Entity, tags []string) bool {
	for _, tag := range tags {
		if entity.HasTag(tag) {
			return true
		}
	}
	return false
}

// coLocated reports whether the candidate is located in the reference
// entity, or shares a located-in target with it.
func coLocated(g *world.Graph, candidateID, referenceID string) bool {
	if g.Related(candidateID, referenceID, world.RelLocatedIn) {
		return true
	}
	candidateLocations := g.RelatedIDs(candidateID, world.RelLocatedIn)
	if len(candidateLocations) == 0 {
		return false
	}
	referenceLocations := g.RelatedIDs(referenceID, world.RelLocatedIn)
	for _, a := range candidateLocations {
		for _, b := range referenceLocations {
			if a == b {
				return true
			}
		}
	}
	return false
}
