package growth

import "loreweave/internal/world"

// DefaultCatalog returns the built-in generative templates. Each declares
// the statistical footprint the selector corrects against; concrete
// execution is the executor's business.
func DefaultCatalog() []Template {
	return []Template{
		{
			ID:          "introduce_character",
			Name:        "Introduce a character",
			Description: "A new figure enters the world.",
			Profile: &ProductionProfile{Effects: []Effect{
				KindEffect{Kind: world.KindCharacter},
				ProminenceEffect{Level: world.ProminenceMarginal},
			}},
		},
		{
			ID:          "found_faction",
			Name:        "Found a faction",
			Description: "Characters organize into a named group.",
			Profile: &ProductionProfile{Effects: []Effect{
				KindEffect{Kind: world.KindFaction},
				RelationshipEffect{Kind: world.RelMemberOf},
				ShapeEffect{Shape: ShapeCluster},
			}},
		},
		{
			ID:          "establish_settlement",
			Name:        "Establish a settlement",
			Description: "A new place appears and draws inhabitants.",
			Profile: &ProductionProfile{Effects: []Effect{
				KindEffect{Kind: world.KindLocation},
				RelationshipEffect{Kind: world.RelLocatedIn},
				ShapeEffect{Shape: ShapeCluster},
			}},
		},
		{
			ID:          "forge_alliance",
			Name:        "Forge an alliance",
			Description: "Two factions bind their fates together.",
			Profile: &ProductionProfile{Effects: []Effect{
				RelationshipEffect{Kind: world.RelAlliedWith},
				ShapeEffect{Shape: ShapeBridge},
			}},
		},
		{
			ID:          "kindle_rivalry",
			Name:        "Kindle a rivalry",
			Description: "Old grievances surface between factions.",
			Profile: &ProductionProfile{Effects: []Effect{
				RelationshipEffect{Kind: world.RelRivalOf},
			}},
		},
		{
			ID:          "weave_acquaintance",
			Name:        "Weave an acquaintance",
			Description: "Characters cross paths and remember it.",
			Profile: &ProductionProfile{Effects: []Effect{
				RelationshipEffect{Kind: world.RelKnows},
				ShapeEffect{Shape: ShapeDensify},
			}},
		},
		{
			ID:          "spread_legend",
			Name:        "Spread a legend",
			Description: "A renowned figure steps into myth.",
			Profile: &ProductionProfile{Effects: []Effect{
				KindEffect{Kind: world.KindCharacter},
				ProminenceEffect{Level: world.ProminenceRenowned},
			}},
		},
		{
			ID:          "forge_relic",
			Name:        "Forge a relic",
			Description: "An artifact of note is made and claimed.",
			Profile: &ProductionProfile{Effects: []Effect{
				KindEffect{Kind: world.KindArtifact},
				RelationshipEffect{Kind: world.RelOwns},
			}},
		},
		{
			ID:          "hermit_retreat",
			Name:        "A hermit retreats",
			Description: "Someone withdraws beyond the world's edges.",
			Profile: &ProductionProfile{Effects: []Effect{
				ShapeEffect{Shape: ShapeIsolate},
			}},
		},
		{
			ID:          "chronicle_event",
			Name:        "Chronicle an event",
			Description: "The record grows without steering pressure.",
		},
	}
}
