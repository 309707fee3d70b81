package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrTimeout means every attempt ran out of time.
	ErrTimeout = errors.New("model call timed out")
	// ErrEmptyPrompt rejects calls that have nothing to send.
	ErrEmptyPrompt = errors.New("prompt is required")

	errAttemptTimeout = errors.New("attempt deadline exceeded")
)

// ProviderError wraps a non-timeout failure reported by the model provider.
// These are never retried.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model provider error: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTimeout reports whether err is the exhausted-retries timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsProviderError reports whether err came from the provider itself.
func IsProviderError(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr)
}
