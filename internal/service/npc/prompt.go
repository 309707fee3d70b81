package npc

import (
	"fmt"
	"strings"

	model "github.com/zhouzirui/z-dungeon/backend/internal/model/npc"
)

// historyWindow is how many remembered turns go into a dialogue prompt.
const historyWindow = 5

var dialogueRules = []string{
	"Embody these traits fully, with fitting dialect, mannerisms and emotional responses",
	"Remember past interactions and stay consistent with them",
	"Answer only as yourself; never narrate for the player",
}

// personalityPrompt describes who the NPC is.
func personalityPrompt(n *model.NPC) string {
	p := n.Personality.WithDefaults()
	return fmt.Sprintf(`You are %s, %s.

Personality traits:
- Demeanor: %s
- Speech pattern: %s
- Values: %s
- Fears: %s
- Goals: %s

Rules:
- %s`,
		n.Name,
		n.Description,
		p.Demeanor,
		p.SpeechPattern,
		strings.Join(p.Values, ", "),
		strings.Join(p.Fears, ", "),
		strings.Join(p.Goals, ", "),
		strings.Join(dialogueRules, "\n- "),
	)
}

func dialoguePrompt(n *model.NPC, history []model.Turn, playerInput string) string {
	return fmt.Sprintf(`%s

Previous conversation:
%s

Player says: %s

Respond as %s, staying in character and considering your personality traits.`,
		personalityPrompt(n),
		formatHistory(n.Name, history),
		playerInput,
		n.Name,
	)
}

func formatHistory(name string, turns []model.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		text := strings.TrimSpace(turn.Text)
		if text == "" {
			continue
		}
		speaker := "Player"
		if turn.Speaker == model.SpeakerNPC {
			speaker = name
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(speaker)
		b.WriteString(": ")
		b.WriteString(text)
	}
	if b.Len() == 0 {
		return "None"
	}
	return b.String()
}

func generatePrompt(location, role string) string {
	return fmt.Sprintf(`You are a JSON generator. Create a detailed NPC for a D&D campaign.

Location: %s
Role: %s

Include:
- Full name and title
- Physical description
- Personality traits (demeanor, speech pattern, values, fears, goals)
- Background story
- Current motivations
- Secrets or hidden knowledge

Return only a JSON object with the keys: name (string), description (string),
personality (object with demeanor, speech_pattern, values, fears, goals and
optional level, hp, race, class), background (string), secrets (array),
current_motivation (string).`, location, role)
}
