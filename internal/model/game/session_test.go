package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlayerCharacterDefaults(t *testing.T) {
	pc := NewPlayerCharacter("  ", "")
	assert.Equal(t, "Adventurer", pc.Name)
	assert.Equal(t, "A brave hero", pc.Concept)
	assert.Equal(t, 1, pc.Level)
	assert.Equal(t, 10, pc.HP)
	assert.Equal(t, "human", pc.Race)
	assert.Equal(t, "adventurer", pc.Class)

	pc = NewPlayerCharacter("Thorin", "dwarf fighter")
	assert.Equal(t, "Thorin", pc.Name)
	assert.Equal(t, "dwarf fighter", pc.Concept)
}

func TestSessionInventoryIsASet(t *testing.T) {
	s := NewSession("s1", NewPlayerCharacter("Thorin", ""))
	s.AddItem("rope")
	s.AddItem("lantern")
	s.AddItem("rope")
	s.AddItem(" ")

	assert.Equal(t, []string{"lantern", "rope"}, s.Items())
	assert.True(t, s.RemoveItem("rope"))
	assert.False(t, s.RemoveItem("rope"))
	assert.Equal(t, []string{"lantern"}, s.Items())
}

func TestSnapshotShape(t *testing.T) {
	s := NewSession("s1", NewPlayerCharacter("Thorin", "dwarf fighter"))
	s.World = World{WorldName: "Eldoria", StartingLocation: "Oakvale"}
	s.CurrentLocation = "Oakvale"

	data, err := json.Marshal(s.Snapshot(nil))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"world", "currentLocation", "playerCharacter", "party", "inventory", "activeQuests", "voiceEnabled"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, []any{}, decoded["inventory"])
	assert.Equal(t, []any{}, decoded["party"])
	assert.Equal(t, "Oakvale", decoded["currentLocation"])
}
