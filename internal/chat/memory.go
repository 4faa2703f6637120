package chat

import (
	"sync"

	"github.com/devaloi/noteboard/internal/domain"
)

// memoryHistory is the bounded in-process fallback buffer, oldest first.
// It holds at most HistoryCap messages and drops the oldest on overflow.
type memoryHistory struct {
	mu   sync.Mutex
	msgs []domain.ChatMessage
}

func (m *memoryHistory) append(msg domain.ChatMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	if len(m.msgs) > HistoryCap {
		m.msgs = m.msgs[len(m.msgs)-HistoryCap:]
	}
}

// tail returns a copy of the last limit messages, oldest first.
func (m *memoryHistory) tail(limit int) []domain.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := m.msgs
	if limit >= 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return out
}
