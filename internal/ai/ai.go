package ai

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotConfigured = errors.New("upstream AI credentials are not configured")
	ErrEmptyResponse = errors.New("empty upstream response")
)

// CompletionRequest is a single-turn prompt sent to the upstream model.
type CompletionRequest struct {
	// Operation labels the request in logs and metrics.
	Operation   string
	Prompt      string
	Temperature float32
	TopP        float32
	// NoCache forces a live upstream call even behind a CachedCompleter.
	NoCache bool
}

// Completer returns the raw text the upstream model produced for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type RateLimitError struct {
	RetryAfter time.Duration
}

func (r RateLimitError) Error() string {
	if r.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", r.RetryAfter)
	}
	return "rate limited"
}
