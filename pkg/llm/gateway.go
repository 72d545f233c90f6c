package llm

import (
	"context"
	"strings"
	"sync/atomic"
)

// Gateway is the single chokepoint in front of the provider. It bounds
// the number of in-flight completions with a slot semaphore, defaulting
// to one slot so bursts of analyzer calls serialize instead of tripping
// the provider's rate limit.
type Gateway struct {
	llm   LLM
	slots chan struct{}

	totalCalls int64
}

// NewGateway wraps an LLM with a fully serialized call queue.
func NewGateway(llm LLM) *Gateway {
	return NewGatewayWithWidth(llm, 1)
}

// NewGatewayWithWidth allows up to width overlapping completions.
func NewGatewayWithWidth(llm LLM, width int) *Gateway {
	if width < 1 {
		width = 1
	}
	return &Gateway{
		llm:   llm,
		slots: make(chan struct{}, width),
	}
}

// GenerateCompletion acquires a slot, runs the completion, and releases
// the slot. Blocks while the queue is full; honors ctx cancellation
// while waiting.
func (g *Gateway) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	return g.GenerateWithOptions(ctx, prompt, DefaultOptions())
}

// GenerateWithOptions is GenerateCompletion with explicit generation and
// safety options.
func (g *Gateway) GenerateWithOptions(ctx context.Context, prompt string, opts Options) (string, error) {
	select {
	case g.slots <- struct{}{}:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { <-g.slots }()

	atomic.AddInt64(&g.totalCalls, 1)

	text, err := g.llm.CompleteWithOptions(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// TotalCalls reports how many completions have been issued through this
// gateway.
func (g *Gateway) TotalCalls() int64 {
	return atomic.LoadInt64(&g.totalCalls)
}
