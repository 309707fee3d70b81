package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "STATIC_DIR", "NPC_MEMORY_LENGTH", "AI_RETRY_DELAY", "AI_MAX_ATTEMPTS", "SPEECH_APP_ID", "SPEECH_ACCESS_TOKEN", "SPEECH_API_KEY"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "static", cfg.Server.StaticDir)
	assert.Equal(t, DefaultGameConfig(), cfg.Game)
	assert.False(t, cfg.Speech.Enabled)
	assert.Equal(t, "static/audio", cfg.Speech.AudioDir)
}

func TestLoadGameOverrides(t *testing.T) {
	t.Setenv("NPC_MEMORY_LENGTH", "4")
	t.Setenv("AI_RETRY_DELAY", "250ms")
	t.Setenv("AI_GENERATION_TIMEOUT", "90")
	t.Setenv("AI_MAX_ATTEMPTS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Game.NPCMemoryLength)
	assert.Equal(t, 250*time.Millisecond, cfg.Game.RetryDelay)
	assert.Equal(t, 90*time.Second, cfg.Game.GenerationTimeout)
	assert.Equal(t, 5, cfg.Game.MaxAttempts)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port with space", key: "PORT", value: "80 80"},
		{name: "memory length", key: "NPC_MEMORY_LENGTH", value: "ten"},
		{name: "retry delay", key: "AI_RETRY_DELAY", value: "soon"},
		{name: "speech toggle", key: "SPEECH_ENABLED", value: "maybe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestAIConfigValidate(t *testing.T) {
	err := AIConfig{}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingCredential))

	err = AIConfig{Model: "doubao"}.Validate()
	assert.True(t, errors.Is(err, ErrMissingCredential))

	assert.NoError(t, AIConfig{Model: "doubao", APIKey: "key"}.Validate())
	assert.NoError(t, AIConfig{Model: "doubao", AccessKey: "ak", SecretKey: "sk"}.Validate())
}

func TestSpeechEnabledRequiresCredentials(t *testing.T) {
	t.Setenv("SPEECH_APP_ID", "app")
	t.Setenv("SPEECH_ACCESS_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Speech.Enabled)

	t.Setenv("SPEECH_ENABLED", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.Speech.Enabled)
}
