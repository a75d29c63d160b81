package llm

import (
	"context"
	"sync"
)

// Mock is an in-memory Client for tests and offline runs. Responses are
// served in FIFO order; when the queue is empty a fixed reply or the
// respond callback is used instead.
type Mock struct {
	mu      sync.Mutex
	queue   []string
	reply   string
	err     error
	respond func(system, user string) (string, error)
	calls   []MockCall
}

// MockCall records one Complete invocation for assertions.
type MockCall struct {
	System string
	User   string
}

// NewMock creates a mock client that echoes a canned acknowledgement.
func NewMock() *Mock {
	return &Mock{reply: "ok"}
}

// Enqueue appends responses served to subsequent Complete calls.
func (m *Mock) Enqueue(responses ...string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, responses...)
	return m
}

// SetReply fixes the fallback response used once the queue drains.
func (m *Mock) SetReply(reply string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reply = reply
	return m
}

// SetError makes every Complete call fail with err.
func (m *Mock) SetError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Respond installs a callback that computes responses from the prompts.
func (m *Mock) Respond(fn func(system, user string) (string, error)) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = fn
	return m
}

// Calls returns a copy of every recorded invocation.
func (m *Mock) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Complete implements Client.
func (m *Mock) Complete(ctx context.Context, system, user string, opts ...CallOption) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{System: system, User: user})
	if m.err != nil {
		return "", m.err
	}
	if m.respond != nil {
		return m.respond(system, user)
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.reply, nil
}
