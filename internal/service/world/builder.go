// Package world generates the campaign setting, locations, encounters and
// lore from the language model, falling back to fixed content whenever the
// model output cannot be used.
package world

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/zhouzirui/z-dungeon/backend/internal/model/game"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
)

// ErrParse is returned by the decoders when model output is unusable.
var ErrParse = ai.ErrParse

var (
	worldKeys     = []string{"world_name", "current_era", "geography", "kingdoms", "factions", "conflicts", "tone", "starting_location", "immediate_hooks"}
	locationKeys  = []string{"name", "description", "npcs", "locations_of_interest", "events", "atmosphere", "secrets"}
	encounterKeys = []string{"type", "description", "challenge_rating", "participants", "environment", "rewards", "consequences"}
)

// Builder turns model replies into world content.
type Builder struct {
	client ai.Invoker
	opts   []ai.Option
}

// NewBuilder creates a builder. opts apply to every model call it makes.
func NewBuilder(client ai.Invoker, opts ...ai.Option) (*Builder, error) {
	if client == nil {
		return nil, errors.New("model client is required")
	}
	return &Builder{client: client, opts: opts}, nil
}

// GenerateWorld creates the campaign setting. It never fails: any model or
// parse error yields FallbackWorld.
func (b *Builder) GenerateWorld(ctx context.Context) game.World {
	content, err := b.client.Invoke(ctx, worldPrompt, b.opts...)
	if err != nil {
		log.Printf("[world] world generation failed, use fallback: %v", err)
		return FallbackWorld()
	}

	w, err := DecodeWorld(content)
	if err != nil {
		log.Printf("[world] world output parse failed, use fallback: %v", err)
		return FallbackWorld()
	}

	log.Printf("[world] generated world %q", w.WorldName)
	return w
}

// GenerateLocation creates a place of locationType, grounded on hints.
func (b *Builder) GenerateLocation(ctx context.Context, locationType string, hints map[string]any) game.Location {
	locationType = strings.TrimSpace(locationType)
	if locationType == "" {
		locationType = "place"
	}

	content, err := b.client.Invoke(ctx, locationPrompt(locationType, hints), b.opts...)
	if err != nil {
		log.Printf("[world] location generation failed, use fallback: %v", err)
		return FallbackLocation(locationType)
	}

	loc, err := DecodeLocation(content)
	if err != nil {
		log.Printf("[world] location output parse failed, use fallback: %v", err)
		return FallbackLocation(locationType)
	}
	return loc
}

// GenerateEncounter creates a challenge at location for a party of partyLevel.
func (b *Builder) GenerateEncounter(ctx context.Context, location string, partyLevel int) game.Encounter {
	if partyLevel < 1 {
		partyLevel = 1
	}

	content, err := b.client.Invoke(ctx, encounterPrompt(location, partyLevel), b.opts...)
	if err != nil {
		log.Printf("[world] encounter generation failed, use fallback: %v", err)
		return FallbackEncounter(partyLevel)
	}

	enc, err := DecodeEncounter(content)
	if err != nil {
		log.Printf("[world] encounter output parse failed, use fallback: %v", err)
		return FallbackEncounter(partyLevel)
	}
	return enc
}

// ExpandLore returns free prose about topic. Errors are not masked.
func (b *Builder) ExpandLore(ctx context.Context, topic string, existing map[string]any) (string, error) {
	return b.client.Invoke(ctx, lorePrompt(topic, existing), b.opts...)
}

type worldPayload struct {
	WorldName        string         `json:"world_name"`
	CurrentEra       string         `json:"current_era"`
	Geography        map[string]any `json:"geography"`
	Kingdoms         []any          `json:"kingdoms"`
	Factions         []any          `json:"factions"`
	Conflicts        []any          `json:"conflicts"`
	Tone             string         `json:"tone"`
	StartingLocation string         `json:"starting_location"`
	ImmediateHooks   []any          `json:"immediate_hooks"`
}

// DecodeWorld reads a world object out of model output.
func DecodeWorld(content string) (game.World, error) {
	var p worldPayload
	if err := ai.DecodeObject(content, &p, worldKeys...); err != nil {
		return game.World{}, err
	}
	if strings.TrimSpace(p.WorldName) == "" || strings.TrimSpace(p.StartingLocation) == "" {
		return game.World{}, fmt.Errorf("%w: blank world name or starting location", ErrParse)
	}
	return game.World{
		WorldName:        p.WorldName,
		CurrentEra:       p.CurrentEra,
		Geography:        p.Geography,
		Kingdoms:         p.Kingdoms,
		Factions:         p.Factions,
		Conflicts:        p.Conflicts,
		Tone:             p.Tone,
		StartingLocation: p.StartingLocation,
		ImmediateHooks:   stringsOf(p.ImmediateHooks),
	}, nil
}

type locationPayload struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	NPCs                []any  `json:"npcs"`
	LocationsOfInterest []any  `json:"locations_of_interest"`
	Events              []any  `json:"events"`
	Atmosphere          string `json:"atmosphere"`
	Secrets             []any  `json:"secrets"`
}

// DecodeLocation reads a location object out of model output.
func DecodeLocation(content string) (game.Location, error) {
	var p locationPayload
	if err := ai.DecodeObject(content, &p, locationKeys...); err != nil {
		return game.Location{}, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return game.Location{}, fmt.Errorf("%w: blank location name", ErrParse)
	}
	return game.Location(p), nil
}

type encounterPayload struct {
	Type            string         `json:"type"`
	Description     string         `json:"description"`
	ChallengeRating float64        `json:"challenge_rating"`
	Participants    []any          `json:"participants"`
	Environment     map[string]any `json:"environment"`
	Rewards         map[string]any `json:"rewards"`
	Consequences    []any          `json:"consequences"`
}

// DecodeEncounter reads an encounter object out of model output.
func DecodeEncounter(content string) (game.Encounter, error) {
	var p encounterPayload
	if err := ai.DecodeObject(content, &p, encounterKeys...); err != nil {
		return game.Encounter{}, err
	}
	return game.Encounter(p), nil
}

// stringsOf flattens hook entries; objects are kept as compact JSON.
func stringsOf(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			data, err := json.Marshal(v)
			if err != nil {
				continue
			}
			out = append(out, string(data))
		}
	}
	return out
}
