package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-dungeon/backend/internal/handler"
	"github.com/zhouzirui/z-dungeon/backend/internal/handler/game"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/npc"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
	"github.com/zhouzirui/z-dungeon/backend/internal/service/world"
	"github.com/zhouzirui/z-dungeon/backend/internal/testkit/fakemodel"
)

func dungeonMaster() *fakemodel.Model {
	return fakemodel.New(func(_ context.Context, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "world_name"):
			return `{"world_name":"Eldoria","current_era":"The Ember Age","geography":{},"kingdoms":[],"factions":[],"conflicts":[],"tone":"heroic","starting_location":"Oakvale","immediate_hooks":[]}`, nil
		case strings.Contains(prompt, "Create a detailed NPC"):
			return `{"name":"Old Mira","description":"a herbalist","personality":{"demeanor":"warm"}}`, nil
		case strings.HasPrefix(prompt, "You are Old Mira"):
			return "Fresh herbs, traveler?", nil
		case strings.Contains(prompt, "Topic:"):
			return "The Ember Age began when the mountains burned.", nil
		default:
			return "You see a crackling hearth and a wary innkeeper.", nil
		}
	})
}

func newServer(t *testing.T, staticDir string) http.Handler {
	t.Helper()
	client, err := ai.NewClient(context.Background(), dungeonMaster(),
		ai.WithTimeout(time.Second),
		ai.WithMaxAttempts(1),
		ai.WithRetryDelay(0),
	)
	require.NoError(t, err)
	builder, err := world.NewBuilder(client)
	require.NoError(t, err)
	registry, err := npc.NewRegistry(client, npc.Config{})
	require.NoError(t, err)

	store, err := session.NewStore(session.Deps{
		Client:           client,
		World:            builder,
		NPCs:             registry,
		NarrativeOptions: []ai.Option{ai.WithRetryDelay(0)},
	})
	require.NoError(t, err)
	return handler.NewRouter(store, staticDir)
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	out := map[string]any{}
	if resp.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out), resp.Body.String())
	}
	return resp.Code, out
}

func TestStartThenInput(t *testing.T) {
	h := newServer(t, "")

	code, body := do(t, h, http.MethodPost, "/start", map[string]string{"name": "Thorin", "concept": "dwarf fighter"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Game started", body["message"])
	assert.NotEmpty(t, body["sessionId"])

	state := body["gameState"].(map[string]any)
	assert.Equal(t, "Oakvale", state["currentLocation"])
	assert.Equal(t, false, state["voiceEnabled"])
	assert.Equal(t, "Thorin", state["playerCharacter"].(map[string]any)["name"])
	assert.Equal(t, "Eldoria", state["world"].(map[string]any)["worldName"])

	code, body = do(t, h, http.MethodPost, "/input", map[string]string{"input": "look around"})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["response"])
	assert.Equal(t, "", body["audio"])
}

func TestStartDefaultsWithEmptyBody(t *testing.T) {
	h := newServer(t, "")

	code, body := do(t, h, http.MethodPost, "/start", nil)
	require.Equal(t, http.StatusOK, code)
	pc := body["gameState"].(map[string]any)["playerCharacter"].(map[string]any)
	assert.Equal(t, "Adventurer", pc["name"])
	assert.Equal(t, "A brave hero", pc["concept"])
}

func TestStatusBeforeStart(t *testing.T) {
	h := newServer(t, "")

	code, body := do(t, h, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Game not started", body["error"])

	code, body = do(t, h, http.MethodPost, "/input", map[string]string{"input": "hello"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Game not started", body["error"])
}

func TestInputRequiresText(t *testing.T) {
	h := newServer(t, "")
	do(t, h, http.MethodPost, "/start", nil)

	code, _ := do(t, h, http.MethodPost, "/input", map[string]string{"input": "  "})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSessionResolution(t *testing.T) {
	h := newServer(t, "")

	_, first := do(t, h, http.MethodPost, "/start", map[string]string{"name": "Thorin"})
	_, second := do(t, h, http.MethodPost, "/start", map[string]string{"name": "Lyra"})
	firstID := first["sessionId"].(string)

	name := func(body map[string]any) string {
		return body["gameState"].(map[string]any)["playerCharacter"].(map[string]any)["name"].(string)
	}

	_, body := do(t, h, http.MethodGet, "/status", nil)
	assert.Equal(t, "Lyra", name(body))

	_, body = do(t, h, http.MethodGet, "/status?sessionId="+firstID, nil)
	assert.Equal(t, "Thorin", name(body))

	_, body = do(t, h, http.MethodGet, "/status", nil, "X-Session-ID", firstID)
	assert.Equal(t, "Thorin", name(body))

	code, body := do(t, h, http.MethodGet, "/status?sessionId=missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "session not found", body["error"])

	code, body = do(t, h, http.MethodPost, "/input", map[string]string{"sessionId": second["sessionId"].(string), "input": "status"})
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body["response"], "Character: Lyra")
}

func TestQuitThenAbandon(t *testing.T) {
	h := newServer(t, "")
	_, started := do(t, h, http.MethodPost, "/start", nil)
	id := started["sessionId"].(string)

	code, body := do(t, h, http.MethodPost, "/input", map[string]string{"input": "quit"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, session.FarewellMessage, body["response"])

	code, body = do(t, h, http.MethodPost, "/input", map[string]string{"input": "look"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "game is over", body["error"])

	code, _ = do(t, h, http.MethodDelete, "/session", map[string]string{"sessionId": id})
	assert.Equal(t, http.StatusOK, code)

	code, _ = do(t, h, http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestNPCRoutes(t *testing.T) {
	h := newServer(t, "")
	do(t, h, http.MethodPost, "/start", nil)

	code, body := do(t, h, http.MethodGet, "/npcs", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["npcs"])

	code, body = do(t, h, http.MethodPost, "/npcs/encounter", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "You encounter Old Mira, a herbalist", body["response"])

	code, body = do(t, h, http.MethodPost, "/npcs/Old%20Mira/talk", map[string]string{"input": "What do you sell?"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Fresh herbs, traveler?", body["response"])
	assert.Equal(t, "", body["audio"])

	code, body = do(t, h, http.MethodPost, "/npcs/Gandalf/talk", map[string]string{"input": "Hello"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Gandalf is not present.", body["error"])

	code, body = do(t, h, http.MethodPost, "/npcs/Old%20Mira/relationship", map[string]int{"delta": 6})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(6), body["relationship"])
	assert.Equal(t, "friendly", body["status"])

	code, body = do(t, h, http.MethodGet, "/npcs", nil)
	require.Equal(t, http.StatusOK, code)
	npcs := body["npcs"].([]any)
	require.Len(t, npcs, 1)
	assert.Equal(t, "Old Mira", npcs[0].(map[string]any)["name"])
	assert.Equal(t, "friendly", npcs[0].(map[string]any)["relationship"])
}

func TestInventoryRoutes(t *testing.T) {
	h := newServer(t, "")
	do(t, h, http.MethodPost, "/start", nil)

	code, body := do(t, h, http.MethodPost, "/inventory", map[string]string{"item": "healing potion"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"healing potion"}, body["inventory"])

	code, body = do(t, h, http.MethodPost, "/input", map[string]string{"input": "inventory"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Inventory: healing potion", body["response"])

	code, body = do(t, h, http.MethodDelete, "/inventory/healing%20potion", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["inventory"])

	code, _ = do(t, h, http.MethodDelete, "/inventory/healing%20potion", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, h, http.MethodPost, "/inventory", map[string]string{"item": " "})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestWorldRoutes(t *testing.T) {
	h := newServer(t, "")
	do(t, h, http.MethodPost, "/start", nil)

	code, body := do(t, h, http.MethodPost, "/world/location", map[string]string{"type": "haunted crypt"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "The Haunted Crypt", body["location"].(map[string]any)["name"])
	assert.Equal(t, "The Haunted Crypt", body["gameState"].(map[string]any)["currentLocation"])

	code, body = do(t, h, http.MethodPost, "/world/encounter", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "exploration", body["encounter"].(map[string]any)["type"])

	code, body = do(t, h, http.MethodPost, "/world/lore", map[string]string{"topic": "the Ember Age"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "The Ember Age began when the mountains burned.", body["lore"])

	code, _ = do(t, h, http.MethodPost, "/world/lore", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestStaticAudioIsServed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	audio := filepath.Join(dir, "audio", "tts_1.mp3")
	require.NoError(t, os.MkdirAll(filepath.Dir(audio), 0o755))
	require.NoError(t, os.WriteFile(audio, []byte("ID3"), 0o644))
	h := newServer(t, dir)

	body := game.ReplyBody(dir, session.Reply{Text: "A bell tolls.", Audio: filepath.ToSlash(audio)})
	require.Equal(t, "/static/audio/tts_1.mp3", body.Audio)

	req := httptest.NewRequest(http.MethodGet, body.Audio, nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ID3", resp.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	h := newServer(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/input", nil)
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, "*", resp.Header().Get("Access-Control-Allow-Origin"))
}
