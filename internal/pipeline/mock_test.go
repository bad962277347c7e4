package pipeline

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// mockQuerier routes each request through a caller-supplied function and
// counts calls. Safe for the per-page fan-out.
type mockQuerier struct {
	mu    sync.Mutex
	calls int
	fn    func(prompt string, pdf []byte) (string, error)
}

func (m *mockQuerier) QueryDocument(_ context.Context, prompt string, pdf []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(prompt, pdf)
}

func (m *mockQuerier) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// promptPayload returns the field-data section of a prompt. Routing on
// the whole prompt is wrong: the fixed instruction text carries literal
// example field names, so every page's prompt would match them.
func promptPayload(prompt string) string {
	const open, close = "<PA_FORM_DATA>", "</PA_FORM_DATA>"
	start := strings.Index(prompt, open)
	end := strings.Index(prompt, close)
	if start < 0 || end < start {
		return prompt
	}
	return prompt[start+len(open) : end]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
