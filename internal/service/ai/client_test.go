package ai_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/z-dungeon/backend/internal/service/ai"
	"github.com/zhouzirui/z-dungeon/backend/internal/testkit/fakemodel"
)

func newClient(t *testing.T, m *fakemodel.Model) *ai.Client {
	t.Helper()
	client, err := ai.NewClient(context.Background(), m)
	require.NoError(t, err)
	return client
}

func TestInvokeReturnsModelReply(t *testing.T) {
	m := fakemodel.Static("The tavern door creaks open.")
	client := newClient(t, m)

	got, err := client.Invoke(context.Background(), "look around")
	require.NoError(t, err)
	assert.Equal(t, "The tavern door creaks open.", got)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, "look around", m.LastPrompt())
}

func TestInvokePromptWithBracesIsSentVerbatim(t *testing.T) {
	m := fakemodel.Static("ok")
	client := newClient(t, m)

	_, err := client.Invoke(context.Background(), `Example: {"world_name": "x"}`)
	require.NoError(t, err)
	assert.Equal(t, `Example: {"world_name": "x"}`, m.LastPrompt())
}

func TestInvokeRejectsEmptyPrompt(t *testing.T) {
	m := fakemodel.Static("unused")
	client := newClient(t, m)

	_, err := client.Invoke(context.Background(), "   ")
	assert.ErrorIs(t, err, ai.ErrEmptyPrompt)
	assert.Zero(t, m.Calls())
}

func TestInvokeRetriesTimeoutsThenGivesUp(t *testing.T) {
	m := fakemodel.Hanging()
	client := newClient(t, m)

	const retryDelay = 30 * time.Millisecond

	var (
		mu      sync.Mutex
		notices []ai.RetryNotice
	)
	start := time.Now()
	_, err := client.Invoke(context.Background(), "hello",
		ai.WithTimeout(10*time.Millisecond),
		ai.WithMaxAttempts(3),
		ai.WithRetryDelay(retryDelay),
		ai.WithRetryNotifier(func(n ai.RetryNotice) {
			mu.Lock()
			notices = append(notices, n)
			mu.Unlock()
		}),
	)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, ai.IsTimeout(err))
	assert.False(t, ai.IsProviderError(err))
	assert.Equal(t, 3, m.Calls())
	assert.GreaterOrEqual(t, elapsed, 2*retryDelay)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, notices, 2)
	assert.Equal(t, 1, notices[0].Attempt)
	assert.Equal(t, 2, notices[1].Attempt)
	assert.Equal(t, 3, notices[1].MaxAttempts)
	assert.Contains(t, notices[0].String(), "retrying (1/3)")
}

func TestInvokeTimesOutModelThatIgnoresContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	m := fakemodel.New(func(context.Context, string) (string, error) {
		<-release
		return "too late", nil
	})
	client := newClient(t, m)

	_, err := client.Invoke(context.Background(), "hello",
		ai.WithTimeout(10*time.Millisecond),
		ai.WithMaxAttempts(1),
	)
	assert.ErrorIs(t, err, ai.ErrTimeout)
}

func TestInvokeSucceedsAfterTimeout(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	m := fakemodel.New(func(ctx context.Context, _ string) (string, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "second time lucky", nil
	})
	client := newClient(t, m)

	got, err := client.Invoke(context.Background(), "hello",
		ai.WithTimeout(10*time.Millisecond),
		ai.WithRetryDelay(time.Millisecond),
	)
	require.NoError(t, err)
	assert.Equal(t, "second time lucky", got)
	assert.Equal(t, 2, m.Calls())
}

func TestInvokeDoesNotRetryProviderErrors(t *testing.T) {
	cause := errors.New("invalid api key")
	m := fakemodel.Failing(cause)
	client := newClient(t, m)

	_, err := client.Invoke(context.Background(), "hello", ai.WithRetryDelay(time.Millisecond))
	require.Error(t, err)
	assert.True(t, ai.IsProviderError(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, ai.IsTimeout(err))
	assert.Equal(t, 1, m.Calls())
}

func TestInvokeStopsWhenCallerCancels(t *testing.T) {
	m := fakemodel.Hanging()
	client := newClient(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(15 * time.Millisecond)
		cancel()
	}()

	_, err := client.Invoke(ctx, "hello",
		ai.WithTimeout(time.Second),
		ai.WithMaxAttempts(3),
	)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, m.Calls())
}

func TestNewClientRequiresModel(t *testing.T) {
	_, err := ai.NewClient(context.Background(), nil)
	assert.Error(t, err)
}
