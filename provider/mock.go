package provider

import (
	"context"
	"sync"
)

// MockProvider is a mock chat model for testing.
type MockProvider struct {
	// Replies are returned in order; the last one repeats once exhausted.
	Replies []string
	// Err, when set, is returned instead of a reply.
	Err error

	mu          sync.Mutex
	callCount   int
	lastRequest *CompletionRequest
}

// NewMockProvider creates a mock that answers with the given replies.
func NewMockProvider(replies ...string) *MockProvider {
	return &MockProvider{Replies: replies}
}

// Complete returns the next canned reply.
func (m *MockProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.callCount++
	m.lastRequest = &req

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) == 0 {
		return "", nil
	}

	idx := m.callCount - 1
	if idx >= len(m.Replies) {
		idx = len(m.Replies) - 1
	}
	return m.Replies[idx], nil
}

// CallCount returns the number of Complete calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

// Reset resets the call count and last request.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastRequest = nil
}

// Verify MockProvider implements ChatModel
var _ ChatModel = (*MockProvider)(nil)
