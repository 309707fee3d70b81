// Package npc keeps the non-player characters of the running process and
// drives their dialogue through the language model.
package npc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	model "github.com/zhouzirui/z-dungeon/backend/internal/model/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
)

var (
	// ErrNPCNotPresent means no NPC of that name exists.
	ErrNPCNotPresent = errors.New("npc not present")
	// ErrEmptyInput rejects dialogue with nothing said.
	ErrEmptyInput = errors.New("player input is required")
)

// DefaultMemoryLength is the number of turns each NPC remembers.
const DefaultMemoryLength = 10

// NotPresentMessage is the reply when talking to an unknown NPC.
func NotPresentMessage(name string) string {
	return fmt.Sprintf("%s is not present.", name)
}

// Config controls registry behaviour.
type Config struct {
	MemoryLength    int
	GenerateOptions []ai.Option
	DialogueOptions []ai.Option
}

// Registry stores NPCs by name. It is safe for concurrent use; model calls
// are made without holding the lock.
type Registry struct {
	client ai.Invoker
	cfg    Config

	mu   sync.RWMutex
	npcs map[string]*model.NPC
}

// NewRegistry creates an empty registry.
func NewRegistry(client ai.Invoker, cfg Config) (*Registry, error) {
	if client == nil {
		return nil, errors.New("model client is required")
	}
	if cfg.MemoryLength <= 0 {
		cfg.MemoryLength = DefaultMemoryLength
	}
	return &Registry{
		client: client,
		cfg:    cfg,
		npcs:   make(map[string]*model.NPC),
	}, nil
}

// CreateNPC registers an NPC, replacing any existing one of the same name.
func (r *Registry) CreateNPC(name, description string, personality model.Personality) *model.NPC {
	n := model.New(name, description, personality, r.cfg.MemoryLength)

	r.mu.Lock()
	r.npcs[name] = n
	r.mu.Unlock()

	return n.Clone()
}

type dossierPayload struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	Personality       personalityPayload `json:"personality"`
	Background        string             `json:"background"`
	Secrets           flexList           `json:"secrets"`
	CurrentMotivation string             `json:"current_motivation"`
}

type personalityPayload struct {
	Demeanor      string   `json:"demeanor"`
	SpeechPattern string   `json:"speech_pattern"`
	Values        flexList `json:"values"`
	Fears         flexList `json:"fears"`
	Goals         flexList `json:"goals"`
	Level         int      `json:"level"`
	HP            int      `json:"hp"`
	Race          string   `json:"race"`
	Class         string   `json:"class"`
}

// flexList accepts either a JSON array or a single string.
type flexList []string

func (l *flexList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			*l = flexList{single}
		} else {
			*l = flexList{}
		}
		return nil
	}

	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	out := make(flexList, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			raw, err := json.Marshal(v)
			if err != nil {
				return err
			}
			out = append(out, string(raw))
		}
	}
	*l = out
	return nil
}

// FallbackPersonality is given to NPCs whose dossier could not be generated.
func FallbackPersonality() model.Personality {
	return model.Personality{
		Demeanor:      "helpful",
		SpeechPattern: "normal",
		Values:        []string{"honesty", "kindness"},
		Fears:         []string{"danger"},
		Goals:         []string{"help others"},
	}
}

// GenerateNPC asks the model for a new NPC suited to location and role and
// registers it. Unusable output registers "Generic NPC" instead.
func (r *Registry) GenerateNPC(ctx context.Context, location, role string) *model.NPC {
	content, err := r.client.Invoke(ctx, generatePrompt(location, role), r.cfg.GenerateOptions...)
	if err == nil {
		var p dossierPayload
		err = ai.DecodeObject(content, &p, "name", "description", "personality")
		if err == nil && strings.TrimSpace(p.Name) == "" {
			err = fmt.Errorf("%w: blank npc name", ai.ErrParse)
		}
		if err == nil {
			return r.register(p)
		}
	}

	log.Printf("[npc] npc generation failed, use fallback: %v", err)
	return r.CreateNPC("Generic NPC", fmt.Sprintf("A %s at %s", role, location), FallbackPersonality())
}

func (r *Registry) register(p dossierPayload) *model.NPC {
	personality := model.Personality{
		Demeanor:      p.Personality.Demeanor,
		SpeechPattern: p.Personality.SpeechPattern,
		Values:        p.Personality.Values,
		Fears:         p.Personality.Fears,
		Goals:         p.Personality.Goals,
		Level:         p.Personality.Level,
		HP:            p.Personality.HP,
		Race:          p.Personality.Race,
		Class:         p.Personality.Class,
	}

	n := model.New(strings.TrimSpace(p.Name), p.Description, personality, r.cfg.MemoryLength)
	n.Background = p.Background
	n.Secrets = p.Secrets
	n.CurrentMotivation = p.CurrentMotivation

	r.mu.Lock()
	r.npcs[n.Name] = n
	r.mu.Unlock()

	log.Printf("[npc] generated npc %q", n.Name)
	return n.Clone()
}

// Get returns a copy of the named NPC.
func (r *Registry) Get(name string) (*model.NPC, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.npcs[name]
	if !ok {
		return nil, false
	}
	return n.Clone(), true
}

// Names lists registered NPCs in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.npcs))
	for name := range r.npcs {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// List returns copies of every NPC, sorted by name.
func (r *Registry) List() []*model.NPC {
	r.mu.RLock()
	out := make([]*model.NPC, 0, len(r.npcs))
	for _, n := range r.npcs {
		out = append(out, n.Clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len is the number of registered NPCs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.npcs)
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.npcs[name]
	return ok
}

// SetLocation records where the NPC currently is.
func (r *Registry) SetLocation(name, location string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.npcs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNPCNotPresent, name)
	}
	n.CurrentLocation = location
	return nil
}

// UpdateRelationship shifts the NPC's score toward playerID by delta and
// returns the clamped result.
func (r *Registry) UpdateRelationship(name, playerID string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.npcs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNPCNotPresent, name)
	}
	return n.AdjustRelationship(playerID, delta), nil
}

// RelationshipStatus names the NPC's attitude toward playerID.
func (r *Registry) RelationshipStatus(name, playerID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.npcs[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNPCNotPresent, name)
	}
	return n.RelationshipStatus(playerID), nil
}

// Interact sends playerInput to the named NPC and returns its in-character
// reply. An unknown name returns NotPresentMessage with ErrNPCNotPresent and
// makes no model call. Memory is only updated when the model answers.
func (r *Registry) Interact(ctx context.Context, name, playerInput string) (string, error) {
	playerInput = strings.TrimSpace(playerInput)

	r.mu.Lock()
	n, ok := r.npcs[name]
	if !ok {
		r.mu.Unlock()
		return NotPresentMessage(name), ErrNPCNotPresent
	}
	if playerInput == "" {
		r.mu.Unlock()
		return "", ErrEmptyInput
	}
	n.LastInteraction = time.Now().UTC()
	input := dialoguePrompt(n, n.Memory.Recent(historyWindow), playerInput)
	r.mu.Unlock()

	reply, err := r.client.Invoke(ctx, input, r.cfg.DialogueOptions...)
	if err != nil {
		log.Printf("[npc] dialogue with %q failed: %v", name, err)
		return "", err
	}

	now := time.Now().UTC()
	r.mu.Lock()
	if current, ok := r.npcs[name]; ok && current == n {
		n.Memory.Append(
			model.Turn{Speaker: model.SpeakerPlayer, Text: playerInput, At: now},
			model.Turn{Speaker: model.SpeakerNPC, Text: reply, At: now},
		)
	}
	r.mu.Unlock()

	return reply, nil
}
