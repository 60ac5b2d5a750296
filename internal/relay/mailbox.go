package relay

import (
	"context"
	"sync"

	"securejoin/internal/domain"
)

// Mailbox is the relay's per-user FIFO queue of envelopes.
type Mailbox interface {
	Push(ctx context.Context, user domain.Username, env domain.Envelope) error
	// Peek returns up to limit queued envelopes without removing them;
	// limit <= 0 returns all.
	Peek(ctx context.Context, user domain.Username, limit int) ([]domain.Envelope, error)
	// Drop removes the first count envelopes.
	Drop(ctx context.Context, user domain.Username, count int) error
}

// MemoryMailbox keeps queues in process memory.
type MemoryMailbox struct {
	mu     sync.Mutex
	queues map[domain.Username][]domain.Envelope
}

// NewMemoryMailbox returns an empty MemoryMailbox.
func NewMemoryMailbox() *MemoryMailbox {
	return &MemoryMailbox{queues: make(map[domain.Username][]domain.Envelope)}
}

// Push appends env to user's queue.
func (m *MemoryMailbox) Push(_ context.Context, user domain.Username, env domain.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[user] = append(m.queues[user], env)
	return nil
}

// Peek returns a copy of the head of user's queue.
func (m *MemoryMailbox) Peek(_ context.Context, user domain.Username, limit int) ([]domain.Envelope, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[user]
	if limit > 0 && limit < len(q) {
		q = q[:limit]
	}
	return append([]domain.Envelope(nil), q...), nil
}

// Drop removes up to count envelopes from the head of user's queue.
func (m *MemoryMailbox) Drop(_ context.Context, user domain.Username, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.queues[user]
	if count >= len(q) {
		delete(m.queues, user)
		return nil
	}
	if count > 0 {
		m.queues[user] = append([]domain.Envelope(nil), q[count:]...)
	}
	return nil
}

// Local is a RelayClient backed directly by a Mailbox.
type Local struct {
	Box Mailbox
}

// SendMessage pushes env into the recipient's queue.
func (l Local) SendMessage(ctx context.Context, env domain.Envelope) error {
	return l.Box.Push(ctx, env.To, env)
}

// FetchMessages peeks at username's queue.
func (l Local) FetchMessages(ctx context.Context, username domain.Username, limit int) ([]domain.Envelope, error) {
	return l.Box.Peek(ctx, username, limit)
}

// AckMessages drops count envelopes from username's queue.
func (l Local) AckMessages(ctx context.Context, username domain.Username, count int) error {
	return l.Box.Drop(ctx, username, count)
}

var (
	_ Mailbox            = (*MemoryMailbox)(nil)
	_ domain.RelayClient = Local{}
)
