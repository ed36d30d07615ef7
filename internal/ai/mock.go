package ai

import (
	"context"
	"sync"
)

// MockCompleter replays canned responses. With no responses left it returns Err,
// or ErrNotConfigured when Err is nil, which makes it the fallback-only completer
// used when no credentials are configured.
type MockCompleter struct {
	Responses []string
	Err       error

	mu    sync.Mutex
	calls []CompletionRequest
}

func (m *MockCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(m.Responses) == 0 {
		if m.Err != nil {
			return "", m.Err
		}
		return "", ErrNotConfigured
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return resp, nil
}

// Calls returns the requests seen so far.
func (m *MockCompleter) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// FuncCompleter adapts a function to the Completer interface.
type FuncCompleter func(ctx context.Context, req CompletionRequest) (string, error)

func (f FuncCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
