package npc_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/zhouzirui/z-dungeon/backend/internal/model/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/testkit/fakemodel"
)

func TestSceneAddIgnoresUnknownAndDuplicates(t *testing.T) {
	r := newRegistry(t, fakemodel.Static("unused"), 10)
	r.CreateNPC("Mira", "a herbalist", model.Personality{})
	scene := r.NewScene()

	scene.Add("Ghost")
	scene.Add("Mira")
	scene.Add("Mira")

	assert.Equal(t, []string{"Mira"}, scene.Names())
	assert.True(t, scene.Contains("Mira"))
	assert.False(t, scene.Contains("Ghost"))

	scene.Remove("Mira")
	scene.Remove("Mira")
	assert.Empty(t, scene.Names())
}

func TestScenesAreIndependent(t *testing.T) {
	r := newRegistry(t, fakemodel.Static("unused"), 10)
	r.CreateNPC("Mira", "a herbalist", model.Personality{})

	a, b := r.NewScene(), r.NewScene()
	a.Add("Mira")

	assert.True(t, a.Contains("Mira"))
	assert.False(t, b.Contains("Mira"))
}

func TestSceneActive(t *testing.T) {
	r := newRegistry(t, fakemodel.Static("unused"), 10)
	r.CreateNPC("Mira", "a herbalist", model.Personality{})
	require.NoError(t, r.SetLocation("Mira", "Oakvale"))
	_, err := r.UpdateRelationship("Mira", "p1", 6)
	require.NoError(t, err)

	scene := r.NewScene()
	scene.Add("Mira")

	active := scene.Active("p1")
	require.Len(t, active, 1)
	assert.Equal(t, "Mira", active[0].Name)
	assert.Equal(t, "a herbalist", active[0].Description)
	assert.Equal(t, "Oakvale", active[0].Location)
	assert.Equal(t, "friendly", active[0].Relationship)
}

func TestRandomEncounterRotatesRoles(t *testing.T) {
	var calls int
	m := fakemodel.New(func(context.Context, string) (string, error) {
		calls++
		return fmt.Sprintf(`{"name":"Stranger %d","description":"someone new","personality":{}}`, calls), nil
	})
	r := newRegistry(t, m, 10)
	scene := r.NewScene()

	for i, role := range npc.EncounterRoles[:3] {
		line, err := scene.RandomEncounter(context.Background(), "the crossroads")
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("You encounter Stranger %d, someone new", i+1), line)
		assert.Contains(t, m.LastPrompt(), "Role: "+role)
	}

	assert.Equal(t, []string{"Stranger 1", "Stranger 2", "Stranger 3"}, scene.Names())
	got, ok := r.Get("Stranger 2")
	require.True(t, ok)
	assert.Equal(t, "the crossroads", got.CurrentLocation)
}

func TestRandomEncounterFallback(t *testing.T) {
	r := newRegistry(t, fakemodel.Static("not json"), 10)
	scene := r.NewScene()

	line, err := scene.RandomEncounter(context.Background(), "Oakvale")
	require.NoError(t, err)
	assert.Equal(t, "You encounter Generic NPC, A merchant at Oakvale", line)
	assert.Equal(t, []string{"Generic NPC"}, scene.Names())
}
