package world

import (
	"encoding/json"
	"fmt"
)

const worldPrompt = `You are a JSON generator. Create a rich fantasy world for a D&D campaign strictly formatted as valid JSON. Include the following keys with detailed values:

1. world_name: string - Name of the world
2. current_era: string - Current era/age
3. geography: object - Major geographical features and continents
4. kingdoms: array - Major kingdoms/empires with name and type
5. factions: array - Guilds, religious orders, arcane institutions
6. conflicts: array - Plot hooks, political tensions, ancient threats
7. tone: string - Overall mood (hopeful, dark, epic, etc.)
8. starting_location: string - Starting town or village
9. immediate_hooks: array of strings - Adventure hooks or events

Return only the JSON object. Do not include any explanations or text outside the JSON object.`

func locationPrompt(locationType string, hints map[string]any) string {
	return fmt.Sprintf(`You are a JSON generator. Create a detailed %s for a D&D campaign strictly formatted as valid JSON.

Context: %s

Include the following keys with detailed values:
1. name: string - Name of the location
2. description: string - Detailed description
3. npcs: array - Notable NPCs (3-5) with name and role
4. locations_of_interest: array - Points of interest (5-7)
5. events: array - Current events or hooks
6. atmosphere: string - Atmosphere and sensory details
7. secrets: array - Secrets or hidden elements

Return only the JSON object. Do not include any explanations or text outside the JSON object.`, locationType, indentJSON(hints))
}

func encounterPrompt(location string, partyLevel int) string {
	return fmt.Sprintf(`You are a JSON generator. Create an engaging encounter for a level %d party at %s strictly formatted as valid JSON.

Include the following keys with detailed values:
1. type: string - Encounter type (combat, social, exploration, puzzle)
2. description: string - Detailed description of the encounter
3. challenge_rating: number - Challenge level appropriate for the party
4. participants: array - NPCs or monsters involved
5. environment: object - Environmental factors
6. rewards: object - Rewards for success
7. consequences: array - Consequences for failure or choices

Return only the JSON object. Do not include any explanations or text outside the JSON object.`, partyLevel, location)
}

func lorePrompt(topic string, existing map[string]any) string {
	return fmt.Sprintf(`Expand on the following topic in the game world:

Topic: %s
Existing Lore: %s

Provide rich, detailed lore that maintains consistency with existing world-building.
Include historical context, cultural significance, and potential adventure hooks.`, topic, indentJSON(existing))
}

func indentJSON(v map[string]any) string {
	if len(v) == 0 {
		return "{}"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
