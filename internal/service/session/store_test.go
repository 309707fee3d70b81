package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-dungeon/backend/internal/service/session"
)

func TestStoreLifecycle(t *testing.T) {
	store, err := session.NewStore(newDeps(t, dungeonMaster(), nil))
	require.NoError(t, err)

	_, err = store.Latest()
	assert.ErrorIs(t, err, session.ErrNoActiveSession)

	first, err := store.Start(context.Background(), session.SetupRequest{Name: "Thorin"})
	require.NoError(t, err)
	second, err := store.Start(context.Background(), session.SetupRequest{Name: "Lyra"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 2, store.Len())

	latest, err := store.Latest()
	require.NoError(t, err)
	assert.Same(t, second, latest)

	got, err := store.Resolve(first.ID())
	require.NoError(t, err)
	assert.Same(t, first, got)

	got, err = store.Resolve("  ")
	require.NoError(t, err)
	assert.Same(t, second, got)

	_, err = store.Get("missing")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	reply, err := store.Abandon(context.Background(), second.ID())
	require.NoError(t, err)
	assert.Equal(t, session.FarewellMessage, reply.Text)
	assert.Equal(t, session.StateTerminated, second.State())
	assert.Equal(t, 1, store.Len())

	_, err = store.Latest()
	assert.ErrorIs(t, err, session.ErrNoActiveSession)

	_, err = store.Abandon(context.Background(), second.ID())
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestStoreSessionsAreIsolated(t *testing.T) {
	store, err := session.NewStore(newDeps(t, dungeonMaster(), nil))
	require.NoError(t, err)

	var wg sync.WaitGroup
	players := []string{"Thorin", "Lyra", "Kael", "Mira"}
	ids := make([]string, len(players))
	for i, name := range players {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			o, err := store.Start(context.Background(), session.SetupRequest{Name: name})
			if !assert.NoError(t, err) {
				return
			}
			ids[i] = o.ID()
			_, err = o.Handle(context.Background(), "look")
			assert.NoError(t, err)
		}(i, name)
	}
	wg.Wait()

	require.Equal(t, len(players), store.Len())
	for i, id := range ids {
		o, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, players[i], o.Snapshot().PlayerCharacter.Name)
	}
}
