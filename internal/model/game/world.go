package game

// World is the generated campaign setting. Geography, kingdoms, factions and
// conflicts are opaque model output kept for display.
type World struct {
	WorldName        string         `json:"worldName"`
	CurrentEra       string         `json:"currentEra"`
	Geography        map[string]any `json:"geography"`
	Kingdoms         []any          `json:"kingdoms"`
	Factions         []any          `json:"factions"`
	Conflicts        []any          `json:"conflicts"`
	Tone             string         `json:"tone"`
	StartingLocation string         `json:"startingLocation"`
	ImmediateHooks   []string       `json:"immediateHooks"`
}

// Location is a generated place of interest.
type Location struct {
	Name                string `json:"name"`
	Description         string `json:"description"`
	NPCs                []any  `json:"npcs"`
	LocationsOfInterest []any  `json:"locationsOfInterest"`
	Events              []any  `json:"events"`
	Atmosphere          string `json:"atmosphere"`
	Secrets             []any  `json:"secrets"`
}

// Encounter is a generated scene challenge.
type Encounter struct {
	Type            string         `json:"type"`
	Description     string         `json:"description"`
	ChallengeRating float64        `json:"challengeRating"`
	Participants    []any          `json:"participants"`
	Environment     map[string]any `json:"environment"`
	Rewards         map[string]any `json:"rewards"`
	Consequences    []any          `json:"consequences"`
}
