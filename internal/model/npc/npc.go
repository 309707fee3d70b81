package npc

import (
	"maps"
	"time"
)

const (
	MinRelationship = -10
	MaxRelationship = 10
)

// Personality drives how an NPC speaks. Level, HP, Race and Class are
// optional stat hints; zero values mean "not given".
type Personality struct {
	Demeanor      string   `json:"demeanor"`
	SpeechPattern string   `json:"speechPattern"`
	Values        []string `json:"values"`
	Fears         []string `json:"fears"`
	Goals         []string `json:"goals"`
	Level         int      `json:"level,omitempty"`
	HP            int      `json:"hp,omitempty"`
	Race          string   `json:"race,omitempty"`
	Class         string   `json:"class,omitempty"`
}

// WithDefaults fills every absent trait with its neutral default.
func (p Personality) WithDefaults() Personality {
	if p.Demeanor == "" {
		p.Demeanor = "neutral"
	}
	if p.SpeechPattern == "" {
		p.SpeechPattern = "normal"
	}
	if len(p.Values) == 0 {
		p.Values = []string{"survival"}
	}
	if len(p.Fears) == 0 {
		p.Fears = []string{"unknown"}
	}
	if len(p.Goals) == 0 {
		p.Goals = []string{"live peacefully"}
	}
	return p
}

// Stats are the NPC's game numbers.
type Stats struct {
	Level int    `json:"level"`
	HP    int    `json:"hp"`
	Race  string `json:"race"`
	Class string `json:"class"`
}

// StatsFrom reads stat hints from the personality, defaulting to a level 1
// human commoner with 10 hp.
func StatsFrom(p Personality) Stats {
	stats := Stats{Level: 1, HP: 10, Race: "human", Class: "commoner"}
	if p.Level > 0 {
		stats.Level = p.Level
	}
	if p.HP > 0 {
		stats.HP = p.HP
	}
	if p.Race != "" {
		stats.Race = p.Race
	}
	if p.Class != "" {
		stats.Class = p.Class
	}
	return stats
}

// NPC is a non-player character with memory and per-player relationships.
type NPC struct {
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	Personality       Personality    `json:"personality"`
	Stats             Stats          `json:"stats"`
	Background        string         `json:"background,omitempty"`
	Secrets           []string       `json:"secrets,omitempty"`
	CurrentMotivation string         `json:"currentMotivation,omitempty"`
	Memory            *Memory        `json:"-"`
	Relationships     map[string]int `json:"relationships"`
	CurrentLocation   string         `json:"currentLocation,omitempty"`
	LastInteraction   time.Time      `json:"lastInteraction"`
}

// New builds an NPC with defaulted personality, derived stats and an empty
// memory bounded to memoryLimit turns.
func New(name, description string, personality Personality, memoryLimit int) *NPC {
	return &NPC{
		Name:            name,
		Description:     description,
		Personality:     personality.WithDefaults(),
		Stats:           StatsFrom(personality),
		Memory:          NewMemory(memoryLimit),
		Relationships:   map[string]int{},
		LastInteraction: time.Now().UTC(),
	}
}

// Relationship returns the score toward playerID; unknown players score 0.
func (n *NPC) Relationship(playerID string) int {
	return n.Relationships[playerID]
}

// AdjustRelationship moves the score by delta, clamped to [-10, 10].
func (n *NPC) AdjustRelationship(playerID string, delta int) int {
	if n.Relationships == nil {
		n.Relationships = map[string]int{}
	}
	// saturate first so extreme deltas cannot overflow the sum
	span := MaxRelationship - MinRelationship
	delta = max(-span, min(span, delta))
	score := ClampRelationship(n.Relationships[playerID] + delta)
	n.Relationships[playerID] = score
	return score
}

// RelationshipStatus names the band of the score toward playerID.
func (n *NPC) RelationshipStatus(playerID string) string {
	return StatusFor(n.Relationship(playerID))
}

// Clone returns a deep copy safe to hand out of a registry.
func (n *NPC) Clone() *NPC {
	if n == nil {
		return nil
	}
	cp := *n
	cp.Personality.Values = append([]string(nil), n.Personality.Values...)
	cp.Personality.Fears = append([]string(nil), n.Personality.Fears...)
	cp.Personality.Goals = append([]string(nil), n.Personality.Goals...)
	cp.Secrets = append([]string(nil), n.Secrets...)
	cp.Relationships = maps.Clone(n.Relationships)
	if cp.Relationships == nil {
		cp.Relationships = map[string]int{}
	}
	cp.Memory = n.Memory.Clone()
	return &cp
}

// ClampRelationship bounds a score to [-10, 10].
func ClampRelationship(score int) int {
	return max(MinRelationship, min(MaxRelationship, score))
}

// Relationship bands, strongest first.
const (
	StatusLoyalFriend = "loyal friend"
	StatusFriendly    = "friendly"
	StatusCordial     = "cordial"
	StatusNeutral     = "neutral"
	StatusSuspicious  = "suspicious"
	StatusHostile     = "hostile"
)

// StatusFor maps a relationship score to its band.
func StatusFor(score int) string {
	switch {
	case score >= 8:
		return StatusLoyalFriend
	case score >= 5:
		return StatusFriendly
	case score >= 1:
		return StatusCordial
	case score >= -1:
		return StatusNeutral
	case score >= -5:
		return StatusSuspicious
	default:
		return StatusHostile
	}
}
