package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zhouzirui/z-dungeon/backend/internal/model/game"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")).Padding(0, 1)
	dmStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	dmLabel      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
	commandStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	noticeStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("241"))
	promptStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("214")).Padding(0, 1)
)

func renderIntro(s game.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "World: %s\n", s.World.WorldName)
	fmt.Fprintf(&b, "Era: %s\n", s.World.CurrentEra)
	fmt.Fprintf(&b, "You are %s, %s.\n", s.PlayerCharacter.Name, s.PlayerCharacter.Concept)
	fmt.Fprintf(&b, "You stand in %s.", s.CurrentLocation)
	if s.VoiceEnabled {
		b.WriteString("\nVoice narration is on.")
	}
	b.WriteString("\n\nType 'help' for commands.")
	return boxStyle.Render(b.String())
}

func renderReply(r session.Reply) string {
	switch {
	case r.Done:
		return titleStyle.Render(r.Text)
	case r.Command != "":
		return commandStyle.Render(r.Text)
	}
	line := dmLabel.Render("DM:") + " " + dmStyle.Render(r.Text)
	if r.Audio != "" {
		line += "\n" + noticeStyle.Render("♪ "+r.Audio)
	}
	return line
}
