package game

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultPlayerName    = "Adventurer"
	DefaultPlayerConcept = "A brave hero"
)

// PlayerCharacter is the player's avatar. Level and HP are fixed at creation.
type PlayerCharacter struct {
	Name    string `json:"name"`
	Concept string `json:"concept"`
	Level   int    `json:"level"`
	HP      int    `json:"hp"`
	Race    string `json:"race"`
	Class   string `json:"class"`
}

// NewPlayerCharacter builds a level 1 human adventurer, filling blank fields.
func NewPlayerCharacter(name, concept string) PlayerCharacter {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultPlayerName
	}
	concept = strings.TrimSpace(concept)
	if concept == "" {
		concept = DefaultPlayerConcept
	}
	return PlayerCharacter{
		Name:    name,
		Concept: concept,
		Level:   1,
		HP:      10,
		Race:    "human",
		Class:   "adventurer",
	}
}

// Session is one player's in-progress game.
type Session struct {
	ID              string
	PlayerCharacter PlayerCharacter
	World           World
	CurrentLocation string
	VoiceEnabled    bool
	Party           []PlayerCharacter
	ActiveQuests    []string
	CreatedAt       time.Time

	inventory map[string]struct{}
}

// NewSession creates an empty session with the given id.
func NewSession(id string, pc PlayerCharacter) *Session {
	return &Session{
		ID:              id,
		PlayerCharacter: pc,
		Party:           []PlayerCharacter{},
		ActiveQuests:    []string{},
		CreatedAt:       time.Now().UTC(),
		inventory:       map[string]struct{}{},
	}
}

// AddItem puts an item into the inventory. Blank ids are ignored.
func (s *Session) AddItem(item string) {
	item = strings.TrimSpace(item)
	if item == "" {
		return
	}
	if s.inventory == nil {
		s.inventory = map[string]struct{}{}
	}
	s.inventory[item] = struct{}{}
}

// RemoveItem drops an item and reports whether it was held.
func (s *Session) RemoveItem(item string) bool {
	if _, ok := s.inventory[item]; !ok {
		return false
	}
	delete(s.inventory, item)
	return true
}

// Items returns the inventory in sorted order.
func (s *Session) Items() []string {
	items := make([]string, 0, len(s.inventory))
	for item := range s.inventory {
		items = append(items, item)
	}
	sort.Strings(items)
	return items
}

// ActiveNPC is the scene view of an NPC.
type ActiveNPC struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Location     string `json:"location,omitempty"`
	Relationship string `json:"relationship"`
}

// Snapshot is the JSON view of a session returned to clients.
type Snapshot struct {
	ID              string            `json:"id"`
	World           World             `json:"world"`
	CurrentLocation string            `json:"currentLocation"`
	PlayerCharacter PlayerCharacter   `json:"playerCharacter"`
	Party           []PlayerCharacter `json:"party"`
	Inventory       []string          `json:"inventory"`
	ActiveQuests    []string          `json:"activeQuests"`
	VoiceEnabled    bool              `json:"voiceEnabled"`
	ActiveNPCs      []ActiveNPC       `json:"activeNpcs"`
}

// Snapshot copies the session into its client view.
func (s *Session) Snapshot(active []ActiveNPC) Snapshot {
	if active == nil {
		active = []ActiveNPC{}
	}
	return Snapshot{
		ID:              s.ID,
		World:           s.World,
		CurrentLocation: s.CurrentLocation,
		PlayerCharacter: s.PlayerCharacter,
		Party:           append([]PlayerCharacter{}, s.Party...),
		Inventory:       s.Items(),
		ActiveQuests:    append([]string{}, s.ActiveQuests...),
		VoiceEnabled:    s.VoiceEnabled,
		ActiveNPCs:      active,
	}
}
