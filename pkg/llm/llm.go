package llm

import (
	"context"
	"errors"
	"fmt"
)

// LLM is the single capability the engine needs from a language model
// provider: turn a prompt into completion text.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithOptions(ctx context.Context, prompt string, opts Options) (string, error)
}

// Options carries per-call generation and safety configuration. Safety
// thresholds are passed through to the provider unchanged; they are not
// engine logic.
type Options struct {
	Temperature     float64
	MaxOutputTokens int
	// BlockThreshold applies to the harassment, hate-speech, sexually
	// explicit and dangerous-content categories. Empty means the
	// provider default.
	BlockThreshold string
}

// DefaultOptions block medium-and-above harmful content and keep the
// model deterministic enough for schema-shaped replies.
func DefaultOptions() Options {
	return Options{
		Temperature:     0.3,
		MaxOutputTokens: 4096,
		BlockThreshold:  "BLOCK_MEDIUM_AND_ABOVE",
	}
}

// Typed failures surfaced by providers. Everything above this layer
// classifies with errors.Is / errors.As.
var (
	// ErrRateLimited is a transient 429; retrying later may succeed.
	ErrRateLimited = errors.New("rate limited")
	// ErrQuotaExceeded is the daily cap; recovery is hours away.
	ErrQuotaExceeded = errors.New("quota exceeded")
	// ErrSafetyBlocked means the provider refused to answer.
	ErrSafetyBlocked = errors.New("blocked by safety filter")
	// ErrEmptyResponse means the provider returned no usable text.
	ErrEmptyResponse = errors.New("empty response")
)

// ProviderError is any other provider-side failure.
type ProviderError struct {
	Status int
	Detail string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("provider error: %s", e.Detail)
}
