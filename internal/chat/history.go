package chat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/devaloi/noteboard/internal/domain"
)

const (
	// HistoryCap bounds the retained history in both backings.
	HistoryCap = 100

	// ReplayWindow is how many messages a joining client receives.
	ReplayWindow = 20

	historyKey = "chat:history"
)

// History is the durable-with-fallback recent-message cache. All durable
// store failures degrade to the in-memory buffer or an empty read; they are
// never surfaced to the protocol layer.
type History struct {
	durable DurableStore // nil when no durable store is configured
	mem     memoryHistory
	log     zerolog.Logger
}

// NewHistory creates a history cache. durable may be nil.
func NewHistory(durable DurableStore, log zerolog.Logger) *History {
	return &History{durable: durable, log: log}
}

// connected probes the durable store. Errors count as "not connected" and
// are never propagated.
func (h *History) connected(ctx context.Context) bool {
	if h.durable == nil {
		return false
	}
	return h.durable.Ping(ctx) == nil
}

// Append records msg. With a live durable store the message is pushed to the
// front of the list and the list trimmed to HistoryCap; on any failure the
// message is written to the in-memory buffer instead. At most one backing
// receives the message per call.
func (h *History) Append(ctx context.Context, msg domain.ChatMessage) {
	if h.connected(ctx) {
		data, err := domain.Encode(msg)
		if err == nil {
			if err = h.durable.PushFront(ctx, historyKey, string(data)); err == nil {
				if err := h.durable.Trim(ctx, historyKey, 0, HistoryCap-1); err != nil {
					h.log.Error().Err(err).Str("op", "trim").Str("key", historyKey).
						Msg("history trim failed")
				}
				return
			}
		}
		h.log.Error().Err(err).Str("op", "push_front").Str("key", historyKey).
			Msg("durable history write failed, falling back to memory")
	}
	h.mem.append(msg)
}

// Recent returns up to limit messages in chronological order, oldest of the
// selected window first. A decode failure of a single stored record skips
// that record only.
func (h *History) Recent(ctx context.Context, limit int) []domain.ChatMessage {
	if h.connected(ctx) {
		raw, err := h.durable.Range(ctx, historyKey, 0, int64(limit)-1)
		if err != nil {
			h.log.Error().Err(err).Str("op", "range").Str("key", historyKey).
				Msg("durable history read failed, falling back to memory")
			return h.mem.tail(limit)
		}
		out := make([]domain.ChatMessage, 0, len(raw))
		for i := len(raw) - 1; i >= 0; i-- {
			m, err := domain.DecodeChatMessage([]byte(raw[i]))
			if err != nil {
				h.log.Error().Err(err).Str("key", historyKey).Msg("skipping undecodable history record")
				continue
			}
			out = append(out, m)
		}
		return out
	}
	return h.mem.tail(limit)
}
