package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const (
	DefaultTimeout     = 20 * time.Second
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 4 * time.Second
)

// RetryNotice describes a retry that is about to happen.
type RetryNotice struct {
	Attempt     int
	MaxAttempts int
	Delay       time.Duration
}

// String renders the notice for a player-facing UI.
func (n RetryNotice) String() string {
	return fmt.Sprintf("Timeout waiting for AI response, retrying (%d/%d)...", n.Attempt, n.MaxAttempts)
}

// Option adjusts a single Invoke call or, passed to NewClient, the client defaults.
type Option func(*callOptions)

type callOptions struct {
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	notify      func(RetryNotice)
}

// WithTimeout bounds each individual attempt.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMaxAttempts sets the total number of attempts, including the first.
func WithMaxAttempts(n int) Option {
	return func(o *callOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the pause between a timed-out attempt and the next one.
func WithRetryDelay(d time.Duration) Option {
	return func(o *callOptions) {
		if d >= 0 {
			o.retryDelay = d
		}
	}
}

// WithRetryNotifier receives a notice before every retry.
func WithRetryNotifier(fn func(RetryNotice)) Option {
	return func(o *callOptions) {
		if fn != nil {
			o.notify = fn
		}
	}
}

func logRetry(n RetryNotice) {
	log.Printf("[ai] timeout waiting for model response, retrying (%d/%d) in %s", n.Attempt, n.MaxAttempts, n.Delay)
}

// Client sends single prompts to a chat model with a per-attempt timeout and
// a bounded number of sequential retries on timeout.
type Client struct {
	chain    compose.Runnable[map[string]any, *schema.Message]
	defaults callOptions
}

// NewClient compiles the prompt chain around chatModel.
func NewClient(ctx context.Context, chatModel model.BaseChatModel, opts ...Option) (*Client, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.UserMessage("{prompt}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile prompt chain: %w", err)
	}

	defaults := callOptions{
		timeout:     DefaultTimeout,
		maxAttempts: DefaultMaxAttempts,
		retryDelay:  DefaultRetryDelay,
		notify:      logRetry,
	}
	for _, opt := range opts {
		opt(&defaults)
	}

	return &Client{chain: runnable, defaults: defaults}, nil
}

// Invoke sends input to the model and returns the full reply text.
//
// A timed-out attempt is retried after the retry delay until the attempt
// budget is spent, then ErrTimeout is returned. Any other failure aborts at
// once with a *ProviderError. Attempts never overlap.
func (c *Client) Invoke(ctx context.Context, input string, opts ...Option) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", ErrEmptyPrompt
	}

	o := c.defaults
	for _, opt := range opts {
		opt(&o)
	}

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		content, err := c.attempt(ctx, input, o.timeout)
		if err == nil {
			return content, nil
		}

		if !errors.Is(err, errAttemptTimeout) {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			log.Printf("[ai] model call failed on attempt %d: %v", attempt, err)
			return "", &ProviderError{Err: err}
		}

		if attempt == o.maxAttempts {
			break
		}

		o.notify(RetryNotice{Attempt: attempt, MaxAttempts: o.maxAttempts, Delay: o.retryDelay})

		timer := time.NewTimer(o.retryDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrTimeout, o.maxAttempts)
}

type attemptResult struct {
	msg *schema.Message
	err error
}

// attempt runs one chain invocation. The model runs in its own goroutine so a
// provider that ignores ctx still cannot hold the caller past the deadline.
func (c *Client) attempt(ctx context.Context, input string, timeout time.Duration) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan attemptResult, 1)
	go func() {
		msg, err := c.chain.Invoke(attemptCtx, map[string]any{"prompt": input})
		done <- attemptResult{msg: msg, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if ctx.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
				return "", errAttemptTimeout
			}
			return "", res.err
		}
		if res.msg == nil {
			return "", errors.New("model returned no message")
		}
		return res.msg.Content, nil
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", errAttemptTimeout
	}
}

// Invoker is the part of Client that generators depend on.
type Invoker interface {
	Invoke(ctx context.Context, input string, opts ...Option) (string, error)
}

var _ Invoker = (*Client)(nil)
