package session

import (
	"fmt"
	"strings"

	"github.com/zhouzirui/z-dungeon/backend/internal/model/game"
)

const (
	CommandHelp      = "help"
	CommandStatus    = "status"
	CommandInventory = "inventory"
	CommandQuit      = "quit"
)

// Commands lists the built-in commands with their descriptions, in help order.
var Commands = [][2]string{
	{CommandHelp, "Show available commands"},
	{CommandStatus, "Show character and world status"},
	{CommandInventory, "Check inventory"},
	{CommandQuit, "Exit the game"},
}

// HelpText renders the command list.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Available Commands:")
	for _, c := range Commands {
		fmt.Fprintf(&b, "\n  %s - %s", c[0], c[1])
	}
	return b.String()
}

// StatusText renders the character and world summary.
func StatusText(s game.Snapshot) string {
	pc := s.PlayerCharacter
	voice := "Disabled"
	if s.VoiceEnabled {
		voice = "Enabled"
	}
	return fmt.Sprintf(`Character: %s
  Level: %d
  HP: %d
  Race: %s
  Class: %s
  Location: %s
  Voice Mode: %s

%s
  Era: %s
  Tone: %s`,
		pc.Name, pc.Level, pc.HP, pc.Race, pc.Class, s.CurrentLocation, voice,
		s.World.WorldName, s.World.CurrentEra, s.World.Tone,
	)
}

// InventoryText renders the carried items.
func InventoryText(items []string) string {
	if len(items) == 0 {
		return "Inventory: (empty)"
	}
	return "Inventory: " + strings.Join(items, ", ")
}

func narrativePrompt(worldName string, pc game.PlayerCharacter, location, input string) string {
	return fmt.Sprintf(`You are an AI Dungeon Master for a D&D-style RPG.

World: %s
Player Character: %s - %s
Current Location: %s

Player says: %s

Respond as the Dungeon Master, describing what happens next in an engaging,
narrative style. Include sensory details, NPC interactions, and adventure hooks.
Keep the story immersive and maintain D&D conventions.`,
		worldName, pc.Name, pc.Concept, location, input)
}
