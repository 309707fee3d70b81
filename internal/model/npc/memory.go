package npc

import "time"

const (
	SpeakerPlayer = "player"
	SpeakerNPC    = "npc"
)

// Turn is one line of a conversation.
type Turn struct {
	Speaker string    `json:"speaker"`
	Text    string    `json:"text"`
	At      time.Time `json:"at"`
}

// Memory keeps the most recent turns, oldest first, dropping from the front
// once the limit is reached.
type Memory struct {
	limit int
	turns []Turn
}

// NewMemory returns an empty memory holding at most limit turns (minimum 1).
func NewMemory(limit int) *Memory {
	if limit < 1 {
		limit = 1
	}
	return &Memory{limit: limit, turns: make([]Turn, 0, limit)}
}

// Append records turns in order, evicting the oldest beyond the limit.
func (m *Memory) Append(turns ...Turn) {
	m.turns = append(m.turns, turns...)
	if overflow := len(m.turns) - m.limit; overflow > 0 {
		m.turns = append(m.turns[:0:0], m.turns[overflow:]...)
	}
}

// Recent returns up to n of the newest turns, oldest first.
func (m *Memory) Recent(n int) []Turn {
	if m == nil || n <= 0 {
		return nil
	}
	start := len(m.turns) - n
	if start < 0 {
		start = 0
	}
	return append([]Turn(nil), m.turns[start:]...)
}

// Turns returns every remembered turn.
func (m *Memory) Turns() []Turn {
	if m == nil {
		return nil
	}
	return append([]Turn(nil), m.turns...)
}

// Len is the number of remembered turns.
func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	return len(m.turns)
}

// Limit is the configured bound.
func (m *Memory) Limit() int {
	if m == nil {
		return 0
	}
	return m.limit
}

// Clone copies the memory.
func (m *Memory) Clone() *Memory {
	if m == nil {
		return nil
	}
	return &Memory{limit: m.limit, turns: append(make([]Turn, 0, m.limit), m.turns...)}
}
