// Package fakemodel provides scripted eino chat models for tests.
package fakemodel

import (
	"context"
	"errors"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Reply computes the model answer for the prompt text of one call.
type Reply func(ctx context.Context, prompt string) (string, error)

// Model is a model.BaseChatModel whose answers come from a Reply func.
type Model struct {
	reply Reply

	mu      sync.Mutex
	prompts []string
}

var _ model.BaseChatModel = (*Model)(nil)

// New returns a model answering with fn.
func New(fn Reply) *Model {
	return &Model{reply: fn}
}

// Static always answers with content.
func Static(content string) *Model {
	return New(func(context.Context, string) (string, error) {
		return content, nil
	})
}

// Sequence answers with each reply in turn and repeats the last one.
func Sequence(replies ...string) *Model {
	var (
		mu   sync.Mutex
		next int
	)
	return New(func(context.Context, string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(replies) == 0 {
			return "", nil
		}
		idx := next
		if idx >= len(replies) {
			idx = len(replies) - 1
		}
		next++
		return replies[idx], nil
	})
}

// Failing always returns err.
func Failing(err error) *Model {
	return New(func(context.Context, string) (string, error) {
		return "", err
	})
}

// Hanging blocks until the call context is done.
func Hanging() *Model {
	return New(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
}

// Generate implements model.BaseChatModel.
func (m *Model) Generate(ctx context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	text := lastUserText(input)

	m.mu.Lock()
	m.prompts = append(m.prompts, text)
	m.mu.Unlock()

	content, err := m.reply(ctx, text)
	if err != nil {
		return nil, err
	}
	return schema.AssistantMessage(content, nil), nil
}

// Stream implements model.BaseChatModel. Streaming is not scripted.
func (m *Model) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("fakemodel: streaming not supported")
}

// Calls returns how many times Generate ran.
func (m *Model) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns the prompt text of every call so far.
func (m *Model) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// LastPrompt returns the most recent prompt, or "".
func (m *Model) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.prompts) == 0 {
		return ""
	}
	return m.prompts[len(m.prompts)-1]
}

func lastUserText(input []*schema.Message) string {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i] != nil && input[i].Role == schema.User {
			return input[i].Content
		}
	}
	return ""
}
