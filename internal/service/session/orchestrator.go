// Package session runs one player's game: setup, the command loop and the
// narrative turns sent to the language model.
package session

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/z-dungeon/backend/internal/model/game"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/world"
)

const (
	UnavailableMessage = "The AI Dungeon Master is currently unavailable. Please try again later."
	WelcomeMessage     = "Welcome to your adventure!"
	FarewellMessage    = "Thank you for playing! Farewell, adventurer!"

	NarrativeTimeout     = 20 * time.Second
	NarrativeMaxAttempts = 3
	NarrativeRetryDelay  = 4 * time.Second
)

// Voice speaks text aloud. Speak returns the path of the produced audio file.
type Voice interface {
	Speak(ctx context.Context, text string) (string, error)
	SelfTest(ctx context.Context) bool
}

// Deps are the collaborators an orchestrator needs. Voice is optional.
type Deps struct {
	Client ai.Invoker
	World  *world.Builder
	NPCs   *npc.Registry
	Voice  Voice

	// NarrativeOptions override the 20s / 3 attempts / 4s narrative policy.
	NarrativeOptions []ai.Option
	// Notify receives retry notices for narrative turns.
	Notify func(ai.RetryNotice)
}

func (d Deps) validate() error {
	switch {
	case d.Client == nil:
		return fmt.Errorf("%w: model client", ErrMissingDependency)
	case d.World == nil:
		return fmt.Errorf("%w: world builder", ErrMissingDependency)
	case d.NPCs == nil:
		return fmt.Errorf("%w: npc registry", ErrMissingDependency)
	}
	return nil
}

// SetupRequest describes the player's character and voice preference.
type SetupRequest struct {
	Name    string `json:"name"`
	Concept string `json:"concept"`
	Voice   bool   `json:"voice"`
}

// Reply is the outcome of one player input.
type Reply struct {
	Text    string `json:"response"`
	Audio   string `json:"audio"`
	Command string `json:"command,omitempty"`
	Done    bool   `json:"done,omitempty"`
}

// Orchestrator owns one game session. Turns are serialized; reads such as
// Snapshot never wait on a model call.
type Orchestrator struct {
	id        string
	deps      Deps
	narrative []ai.Option
	scene     *npc.Scene

	turn sync.Mutex

	mu      sync.RWMutex
	state   State
	session *game.Session
}

// New wires the collaborators and leaves the orchestrator awaiting Setup.
func New(deps Deps) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	narrative := []ai.Option{
		ai.WithTimeout(NarrativeTimeout),
		ai.WithMaxAttempts(NarrativeMaxAttempts),
		ai.WithRetryDelay(NarrativeRetryDelay),
	}
	narrative = append(narrative, deps.NarrativeOptions...)
	if deps.Notify != nil {
		narrative = append(narrative, ai.WithRetryNotifier(deps.Notify))
	}

	return &Orchestrator{
		id:        uuid.NewString(),
		deps:      deps,
		narrative: narrative,
		scene:     deps.NPCs.NewScene(),
		state:     StateSetup,
	}, nil
}

// ID identifies the session.
func (o *Orchestrator) ID() string {
	return o.id
}

// State reports the lifecycle stage.
func (o *Orchestrator) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.state
}

// Setup creates the player character, generates the world and starts play.
// Voice is only enabled when a collaborator exists, the player asked for it
// and its self-test passes.
func (o *Orchestrator) Setup(ctx context.Context, req SetupRequest) (game.Snapshot, error) {
	o.turn.Lock()
	defer o.turn.Unlock()

	if state := o.State(); state != StateSetup {
		if state == StateTerminated {
			return game.Snapshot{}, ErrTerminated
		}
		return game.Snapshot{}, ErrAlreadySetUp
	}

	s := game.NewSession(o.id, game.NewPlayerCharacter(req.Name, req.Concept))

	if req.Voice && o.deps.Voice != nil {
		if o.deps.Voice.SelfTest(ctx) {
			s.VoiceEnabled = true
		} else {
			log.Printf("[session] %s voice self-test failed, continuing with text only", o.id)
		}
	}

	s.World = o.deps.World.GenerateWorld(ctx)
	s.CurrentLocation = s.World.StartingLocation

	o.mu.Lock()
	o.session = s
	o.state = StateActive
	o.mu.Unlock()

	log.Printf("[session] %s started in %q as %q", o.id, s.World.WorldName, s.PlayerCharacter.Name)

	if s.VoiceEnabled {
		o.speak(ctx, WelcomeMessage)
	}
	return o.Snapshot(), nil
}

// Handle dispatches one line of player input. Commands are matched after
// trimming and case folding; everything else is a narrative turn.
func (o *Orchestrator) Handle(ctx context.Context, input string) (Reply, error) {
	o.turn.Lock()
	defer o.turn.Unlock()

	if err := o.requireActive(); err != nil {
		return Reply{}, err
	}

	cmd := strings.ToLower(strings.TrimSpace(input))
	switch cmd {
	case CommandHelp:
		return Reply{Text: HelpText(), Command: cmd}, nil
	case CommandStatus:
		return Reply{Text: StatusText(o.Snapshot()), Command: cmd}, nil
	case CommandInventory:
		return Reply{Text: InventoryText(o.Snapshot().Inventory), Command: cmd}, nil
	case CommandQuit:
		reply := o.terminate(ctx)
		reply.Command = cmd
		return reply, nil
	}

	text := o.ProcessInput(ctx, input)
	return Reply{Text: text, Audio: o.speakIfEnabled(ctx, text)}, nil
}

// ProcessInput asks the model to narrate the outcome of input. It never
// fails; when the model cannot answer the fixed unavailability message is
// returned.
func (o *Orchestrator) ProcessInput(ctx context.Context, input string) string {
	o.mu.RLock()
	s := o.session
	if s == nil {
		o.mu.RUnlock()
		return UnavailableMessage
	}
	prompt := narrativePrompt(s.World.WorldName, s.PlayerCharacter, s.CurrentLocation, input)
	o.mu.RUnlock()

	reply, err := o.deps.Client.Invoke(ctx, prompt, o.narrative...)
	if err != nil {
		log.Printf("[session] %s narrative turn failed: %v", o.id, err)
		return UnavailableMessage
	}
	return reply
}

// Terminate ends the game and says farewell when voice is on.
func (o *Orchestrator) Terminate(ctx context.Context) Reply {
	o.turn.Lock()
	defer o.turn.Unlock()
	return o.terminate(ctx)
}

func (o *Orchestrator) terminate(ctx context.Context) Reply {
	o.mu.Lock()
	if o.state == StateTerminated {
		o.mu.Unlock()
		return Reply{Text: FarewellMessage, Done: true}
	}
	o.state = StateTerminated
	voice := o.session != nil && o.session.VoiceEnabled
	o.mu.Unlock()

	log.Printf("[session] %s terminated", o.id)

	reply := Reply{Text: FarewellMessage, Done: true}
	if voice {
		reply.Audio = o.speak(ctx, FarewellMessage)
	}
	return reply
}

// Snapshot returns the client view of the session.
func (o *Orchestrator) Snapshot() game.Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.session == nil {
		return game.Snapshot{ID: o.id}
	}
	return o.session.Snapshot(o.scene.Active(o.id))
}

// Encounter meets a random NPC at the current location.
func (o *Orchestrator) Encounter(ctx context.Context) (Reply, error) {
	o.turn.Lock()
	defer o.turn.Unlock()

	if err := o.requireActive(); err != nil {
		return Reply{}, err
	}

	text, err := o.scene.RandomEncounter(ctx, o.location())
	if err != nil {
		return Reply{}, err
	}
	return Reply{Text: text, Audio: o.speakIfEnabled(ctx, text)}, nil
}

// Talk sends input to an NPC in the scene.
func (o *Orchestrator) Talk(ctx context.Context, name, input string) (Reply, error) {
	o.turn.Lock()
	defer o.turn.Unlock()

	if err := o.requireActive(); err != nil {
		return Reply{}, err
	}
	if !o.scene.Contains(name) {
		return Reply{Text: npc.NotPresentMessage(name)}, npc.ErrNPCNotPresent
	}

	text, err := o.deps.NPCs.Interact(ctx, name, input)
	if err != nil {
		return Reply{Text: text}, err
	}
	return Reply{Text: text, Audio: o.speakIfEnabled(ctx, text)}, nil
}

// AdjustRelationship shifts how an NPC in the scene regards this player.
func (o *Orchestrator) AdjustRelationship(name string, delta int) (int, string, error) {
	if err := o.requireActive(); err != nil {
		return 0, "", err
	}
	if !o.scene.Contains(name) {
		return 0, "", fmt.Errorf("%w: %s", npc.ErrNPCNotPresent, name)
	}
	score, err := o.deps.NPCs.UpdateRelationship(name, o.id, delta)
	if err != nil {
		return 0, "", err
	}
	status, err := o.deps.NPCs.RelationshipStatus(name, o.id)
	if err != nil {
		return 0, "", err
	}
	return score, status, nil
}

// AddItem puts item into the inventory and returns the inventory afterwards.
func (o *Orchestrator) AddItem(item string) ([]string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, ErrEmptyItem
	}
	if err := o.requireActive(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.session.AddItem(item)
	return o.session.Items(), nil
}

// RemoveItem drops item from the inventory and returns the inventory afterwards.
func (o *Orchestrator) RemoveItem(item string) ([]string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return nil, ErrEmptyItem
	}
	if err := o.requireActive(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.RemoveItem(item) {
		return nil, fmt.Errorf("%w: %s", ErrItemNotHeld, item)
	}
	return o.session.Items(), nil
}

// Location generates a place of locationType and moves the player there.
func (o *Orchestrator) Location(ctx context.Context, locationType string) (game.Location, error) {
	o.turn.Lock()
	defer o.turn.Unlock()

	if err := o.requireActive(); err != nil {
		return game.Location{}, err
	}

	o.mu.RLock()
	hints := map[string]any{
		"world":           o.session.World.WorldName,
		"tone":            o.session.World.Tone,
		"currentLocation": o.session.CurrentLocation,
	}
	o.mu.RUnlock()

	loc := o.deps.World.GenerateLocation(ctx, locationType, hints)

	o.mu.Lock()
	o.session.CurrentLocation = loc.Name
	o.mu.Unlock()
	return loc, nil
}

// Challenge generates an encounter at the current location scaled to the
// player's level.
func (o *Orchestrator) Challenge(ctx context.Context) (game.Encounter, error) {
	o.turn.Lock()
	defer o.turn.Unlock()

	if err := o.requireActive(); err != nil {
		return game.Encounter{}, err
	}

	o.mu.RLock()
	location, level := o.session.CurrentLocation, o.session.PlayerCharacter.Level
	o.mu.RUnlock()

	return o.deps.World.GenerateEncounter(ctx, location, level), nil
}

// Lore expands on topic against the generated world.
func (o *Orchestrator) Lore(ctx context.Context, topic string) (string, error) {
	o.turn.Lock()
	defer o.turn.Unlock()

	if err := o.requireActive(); err != nil {
		return "", err
	}

	o.mu.RLock()
	w := o.session.World
	o.mu.RUnlock()

	existing := map[string]any{
		"worldName":  w.WorldName,
		"currentEra": w.CurrentEra,
		"kingdoms":   w.Kingdoms,
		"factions":   w.Factions,
		"conflicts":  w.Conflicts,
		"tone":       w.Tone,
	}
	return o.deps.World.ExpandLore(ctx, topic, existing)
}

func (o *Orchestrator) requireActive() error {
	switch o.State() {
	case StateActive:
		return nil
	case StateTerminated:
		return ErrTerminated
	default:
		return ErrNotSetUp
	}
}

func (o *Orchestrator) location() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.session.CurrentLocation
}

func (o *Orchestrator) speakIfEnabled(ctx context.Context, text string) string {
	o.mu.RLock()
	enabled := o.session != nil && o.session.VoiceEnabled
	o.mu.RUnlock()
	if !enabled {
		return ""
	}
	return o.speak(ctx, text)
}

func (o *Orchestrator) speak(ctx context.Context, text string) string {
	if o.deps.Voice == nil {
		return ""
	}
	path, err := o.deps.Voice.Speak(ctx, text)
	if err != nil {
		log.Printf("[session] %s speech synthesis failed: %v", o.id, err)
		return ""
	}
	return path
}
