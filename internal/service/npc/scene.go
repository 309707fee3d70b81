package npc

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/zhouzirui/z-dungeon/backend/internal/model/game"
)

// EncounterRoles is the rotation used for random encounters.
var EncounterRoles = []string{"merchant", "traveler", "guard", "villager", "mysterious stranger", "bard", "priest", "thief"}

// Scene is the set of NPCs present around one player.
type Scene struct {
	registry *Registry

	mu    sync.Mutex
	names []string
}

// NewScene returns an empty scene backed by registry.
func (r *Registry) NewScene() *Scene {
	return &Scene{registry: r}
}

// Add brings a registered NPC into the scene. Unknown names and duplicates
// are ignored.
func (s *Scene) Add(name string) {
	if !s.registry.Contains(name) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.names, name) {
		s.names = append(s.names, name)
	}
}

// Remove takes an NPC out of the scene.
func (s *Scene) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names = slices.DeleteFunc(s.names, func(n string) bool { return n == name })
}

// Contains reports whether name is in the scene.
func (s *Scene) Contains(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.names, name)
}

// Names lists the scene in arrival order.
func (s *Scene) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.names)
}

// Active describes every NPC in the scene as seen by playerID.
func (s *Scene) Active(playerID string) []game.ActiveNPC {
	names := s.Names()
	out := make([]game.ActiveNPC, 0, len(names))
	for _, name := range names {
		n, ok := s.registry.Get(name)
		if !ok {
			continue
		}
		out = append(out, game.ActiveNPC{
			Name:         n.Name,
			Description:  n.Description,
			Location:     n.CurrentLocation,
			Relationship: n.RelationshipStatus(playerID),
		})
	}
	return out
}

// RandomEncounter generates an NPC at location, adds it to the scene and
// describes the meeting. Roles rotate with the registry size.
func (s *Scene) RandomEncounter(ctx context.Context, location string) (string, error) {
	role := EncounterRoles[s.registry.Len()%len(EncounterRoles)]

	n := s.registry.GenerateNPC(ctx, location, role)
	if err := s.registry.SetLocation(n.Name, location); err != nil {
		return "", err
	}
	s.Add(n.Name)

	return fmt.Sprintf("You encounter %s, %s", n.Name, n.Description), nil
}
