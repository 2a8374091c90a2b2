package mailer

import (
	"context"
	"sync"
)

type Mock struct {
	mu   sync.Mutex
	Err  error
	sent []Email
}

func (m *Mock) Send(ctx context.Context, e Email) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.sent = append(m.sent, e)
	return nil
}

func (m *Mock) Sent() []Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Email, len(m.sent))
	copy(out, m.sent)
	return out
}
