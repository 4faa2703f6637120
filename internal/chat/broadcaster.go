package chat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/devaloi/noteboard/internal/domain"
)

// Broadcaster fans messages out to every live connection and keeps the
// history cache in sync.
type Broadcaster struct {
	registry *Registry
	history  *History
	log      zerolog.Logger
}

// NewBroadcaster creates a broadcaster over the given registry and history.
func NewBroadcaster(registry *Registry, history *History, log zerolog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, history: history, log: log}
}

// Broadcast delivers msg to every registered connection except exclude.
// Delivery runs over a registry snapshot; connections whose send fails are
// collected during the pass and batch-removed from the registry afterwards.
// A failed recipient never aborts delivery to the rest.
func (b *Broadcaster) Broadcast(msg domain.ChatMessage, exclude ConnID) {
	data, err := domain.Encode(msg)
	if err != nil {
		b.log.Error().Err(err).Msg("encode broadcast message")
		return
	}

	var dead []ConnID
	for _, e := range b.registry.Snapshot() {
		if e.ID == exclude {
			continue
		}
		if err := e.Conn.Send(data); err != nil {
			b.log.Warn().Err(err).Uint64("conn_id", uint64(e.ID)).Str("nickname", e.Nickname).
				Msg("broadcast send failed, pruning connection")
			dead = append(dead, e.ID)
		}
	}
	for _, id := range dead {
		b.registry.Unregister(id)
	}
}

// RecordAndBroadcast appends msg to history and broadcasts it. Both happen
// exactly once per accepted message; neither failure blocks the other.
func (b *Broadcaster) RecordAndBroadcast(ctx context.Context, msg domain.ChatMessage, exclude ConnID) {
	b.history.Append(ctx, msg)
	b.Broadcast(msg, exclude)
}
