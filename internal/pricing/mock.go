package pricing

import (
	"context"
	"fmt"
	"sync"
)

// MockCompleter is a scripted Completer for testing the cascade without
// OpenAI calls. Responses are consumed in order; once the script is
// exhausted the last entry repeats.
type MockCompleter struct {
	mu        sync.Mutex
	responses []MockResponse
	calls     []ChatRequest
}

// MockResponse is one scripted completion result.
type MockResponse struct {
	Content string
	Err     error
}

// NewMockCompleter creates a completer that replays the given responses.
func NewMockCompleter(responses ...MockResponse) *MockCompleter {
	return &MockCompleter{responses: responses}
}

// Model returns a fixed test model name.
func (m *MockCompleter) Model() string {
	return "mock-model"
}

// Complete records the request and returns the next scripted response.
func (m *MockCompleter) Complete(ctx context.Context, req ChatRequest) (string, Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if len(m.responses) == 0 {
		return "", Usage{}, fmt.Errorf("mock completer has no scripted responses")
	}

	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	resp := m.responses[idx]
	if resp.Err != nil {
		return "", Usage{}, resp.Err
	}

	usage := Usage{PromptTokens: 100, CompletionTokens: 50, TotalTokens: 150}
	return resp.Content, usage, nil
}

// Calls returns the requests issued so far.
func (m *MockCompleter) Calls() []ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]ChatRequest, len(m.calls))
	copy(calls, m.calls)
	return calls
}
