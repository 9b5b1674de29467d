package integration

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockProvider produces deterministic numbered-list completions for testing.
// It answers with exactly the requested line count unless the tag appears in
// shortTags, in which case every response comes up one line short.
type MockProvider struct {
	mu        sync.Mutex
	count     int
	shortTags map[string]bool
	calls     int
}

// NewMockProvider creates a provider that emits count lines per completion.
func NewMockProvider(count int) *MockProvider {
	return &MockProvider{count: count, shortTags: make(map[string]bool)}
}

// FailShort makes every completion whose prompt mentions the tag's answer
// text come back one line short.
func (m *MockProvider) FailShort(marker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shortTags[marker] = true
}

// Complete returns a numbered list derived from the prompt.
func (m *MockProvider) Complete(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	n := m.count
	for marker := range m.shortTags {
		if strings.Contains(prompt, marker) {
			n--
			break
		}
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "%d. paraphrased question %d\n", i, i)
	}
	return b.String(), nil
}

// Calls reports the total number of completions served.
func (m *MockProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Name identifies the provider.
func (m *MockProvider) Name() string { return "mock" }

// Model identifies the model.
func (m *MockProvider) Model() string { return "mock-v1" }

// Close is a no-op.
func (m *MockProvider) Close() error { return nil }
