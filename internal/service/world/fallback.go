package world

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zhouzirui/z-dungeon/backend/internal/model/game"
)

// FallbackWorld is the fixed setting used when generation fails. Each call
// returns a fresh value.
func FallbackWorld() game.World {
	return game.World{
		WorldName:  "The Forgotten Realms",
		CurrentEra: "The Age of Heroes",
		Geography: map[string]any{
			"continents": []any{"mainland"},
			"features":   []any{"mountains", "forests", "rivers"},
		},
		Kingdoms: []any{
			map[string]any{"name": "Kingdom of Light", "type": "human kingdom"},
			map[string]any{"name": "Elvenwood", "type": "elven realm"},
		},
		Factions: []any{
			map[string]any{"name": "The Adventurer's Guild", "type": "mercenary"},
			map[string]any{"name": "The Arcane Order", "type": "mages"},
		},
		Conflicts:        []any{"ancient evil awakening", "political tensions"},
		Tone:             "epic fantasy",
		StartingLocation: "a small village",
		ImmediateHooks:   []string{"mysterious disappearances"},
	}
}

// FallbackLocation describes an unremarkable place of the given type.
func FallbackLocation(locationType string) game.Location {
	return game.Location{
		Name:                "The " + titleCase(locationType),
		Description:         "A typical " + locationType,
		NPCs:                []any{},
		LocationsOfInterest: []any{},
		Events:              []any{},
		Atmosphere:          "mysterious",
		Secrets:             []any{},
	}
}

// FallbackEncounter is a quiet exploration scene rated at the party level.
func FallbackEncounter(partyLevel int) game.Encounter {
	return game.Encounter{
		Type:            "exploration",
		Description:     "You discover something interesting...",
		ChallengeRating: float64(partyLevel),
		Participants:    []any{},
		Environment:     map[string]any{},
		Rewards:         map[string]any{"xp": 100},
		Consequences:    []any{},
	}
}

// Casers carry state, so each call builds its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
