package npc

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustRelationshipClamps(t *testing.T) {
	tests := []struct {
		name  string
		start int
		delta int
		want  int
	}{
		{name: "near max", start: 9, delta: 5, want: 10},
		{name: "near min", start: -9, delta: -5, want: -10},
		{name: "huge positive", start: 0, delta: 1000, want: 10},
		{name: "huge negative", start: 3, delta: -1000, want: -10},
		{name: "inside range", start: 2, delta: 3, want: 5},
		{name: "max int", start: 5, delta: math.MaxInt, want: 10},
		{name: "min int", start: -5, delta: math.MinInt, want: -10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			n := New("Mira", "a herbalist", Personality{}, 10)
			n.Relationships["player"] = tc.start
			assert.Equal(t, tc.want, n.AdjustRelationship("player", tc.delta))
			assert.Equal(t, tc.want, n.Relationship("player"))
		})
	}
}

func TestAdjustRelationshipAlwaysInRange(t *testing.T) {
	n := New("Mira", "a herbalist", Personality{}, 10)
	for _, delta := range []int{7, 7, -30, 4, 4, 4, 4, -2, 19, -11, -11} {
		score := n.AdjustRelationship("player", delta)
		assert.GreaterOrEqual(t, score, MinRelationship)
		assert.LessOrEqual(t, score, MaxRelationship)
	}
}

func TestStatusFor(t *testing.T) {
	cases := map[int]string{
		10:  StatusLoyalFriend,
		8:   StatusLoyalFriend,
		7:   StatusFriendly,
		5:   StatusFriendly,
		4:   StatusCordial,
		1:   StatusCordial,
		0:   StatusNeutral,
		-1:  StatusNeutral,
		-2:  StatusSuspicious,
		-5:  StatusSuspicious,
		-6:  StatusHostile,
		-10: StatusHostile,
	}
	for score, want := range cases {
		assert.Equal(t, want, StatusFor(score), "score %d", score)
	}
}

func TestNewAppliesPersonalityDefaultsAndStats(t *testing.T) {
	n := New("Bram", "a guard", Personality{Demeanor: "gruff", Race: "dwarf", Level: 3}, 10)

	assert.Equal(t, "gruff", n.Personality.Demeanor)
	assert.Equal(t, "normal", n.Personality.SpeechPattern)
	assert.Equal(t, []string{"survival"}, n.Personality.Values)
	assert.Equal(t, []string{"unknown"}, n.Personality.Fears)
	assert.Equal(t, []string{"live peacefully"}, n.Personality.Goals)
	assert.Equal(t, Stats{Level: 3, HP: 10, Race: "dwarf", Class: "commoner"}, n.Stats)
	assert.Equal(t, StatusNeutral, n.RelationshipStatus("anyone"))
}

func TestMemoryKeepsMostRecentTurns(t *testing.T) {
	const limit = 6
	m := NewMemory(limit)
	for i := 0; i < limit+5; i++ {
		m.Append(Turn{Speaker: SpeakerPlayer, Text: fmt.Sprintf("turn %d", i)})
	}

	require.Equal(t, limit, m.Len())
	turns := m.Turns()
	assert.Equal(t, "turn 5", turns[0].Text)
	assert.Equal(t, "turn 10", turns[limit-1].Text)

	recent := m.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "turn 9", recent[0].Text)
	assert.Equal(t, "turn 10", recent[1].Text)
	assert.Len(t, m.Recent(100), limit)
}

func TestMemoryMinimumLimit(t *testing.T) {
	m := NewMemory(0)
	m.Append(Turn{Text: "a"}, Turn{Text: "b"})
	assert.Equal(t, 1, m.Limit())
	assert.Equal(t, []Turn{{Text: "b"}}, m.Turns())
}

func TestCloneIsIndependent(t *testing.T) {
	n := New("Mira", "a herbalist", Personality{Values: []string{"herbs"}}, 4)
	n.Memory.Append(Turn{Speaker: SpeakerPlayer, Text: "hi"})
	n.AdjustRelationship("player", 2)

	cp := n.Clone()
	cp.Memory.Append(Turn{Speaker: SpeakerNPC, Text: "hello"})
	cp.AdjustRelationship("player", 5)
	cp.Personality.Values[0] = "gold"

	assert.Equal(t, 1, n.Memory.Len())
	assert.Equal(t, 2, n.Relationship("player"))
	assert.Equal(t, "herbs", n.Personality.Values[0])
}
