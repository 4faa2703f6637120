package chat

import (
	"context"
	"testing"

	"github.com/devaloi/noteboard/internal/domain"
	"github.com/devaloi/noteboard/internal/testutil"
)

func setupBroadcaster() (*Registry, *History, *Broadcaster) {
	r := NewRegistry()
	h := NewHistory(nil, nop())
	return r, h, NewBroadcaster(r, h, nop())
}

func TestBroadcastReachesAll(t *testing.T) {
	t.Parallel()
	r, _, b := setupBroadcaster()

	c1 := testutil.NewMockConn()
	c2 := testutil.NewMockConn()
	r.Register(c1, "alice")
	r.Register(c2, "bob")

	b.Broadcast(domain.NewUserMessage("alice", "hello"), NoExclude)

	for i, c := range []*testutil.MockConn{c1, c2} {
		if len(c.Messages()) != 1 {
			t.Errorf("conn %d: expected 1 message, got %d", i, len(c.Messages()))
		}
	}
}

func TestBroadcastExclusion(t *testing.T) {
	t.Parallel()
	r, _, b := setupBroadcaster()

	c1 := testutil.NewMockConn()
	c2 := testutil.NewMockConn()
	id1 := r.Register(c1, "alice")
	r.Register(c2, "bob")

	b.Broadcast(domain.NewUserMessage("alice", "hello"), id1)

	if len(c1.Messages()) != 0 {
		t.Errorf("excluded conn received %d messages", len(c1.Messages()))
	}
	if len(c2.Messages()) != 1 {
		t.Errorf("expected 1 message for other conn, got %d", len(c2.Messages()))
	}
}

func TestBroadcastPrunesDeadConnections(t *testing.T) {
	t.Parallel()
	r, _, b := setupBroadcaster()

	healthy := testutil.NewMockConn()
	dead := testutil.NewMockConn()
	dead.Fail()
	r.Register(healthy, "alice")
	deadID := r.Register(dead, "bob")

	b.Broadcast(domain.NewUserMessage("alice", "hello"), NoExclude)

	// The failed recipient must be gone; the healthy one still delivered to.
	if len(healthy.Messages()) != 1 {
		t.Errorf("healthy conn: expected 1 message, got %d", len(healthy.Messages()))
	}
	for _, e := range r.Snapshot() {
		if e.ID == deadID {
			t.Error("dead connection still present in registry after broadcast")
		}
	}
	if r.Count() != 1 {
		t.Errorf("expected 1 live entry, got %d", r.Count())
	}

	// No further deliveries are attempted to the pruned connection.
	b.Broadcast(domain.NewUserMessage("alice", "again"), NoExclude)
	if len(healthy.Messages()) != 2 {
		t.Errorf("healthy conn: expected 2 messages, got %d", len(healthy.Messages()))
	}
}

func TestRecordAndBroadcast(t *testing.T) {
	t.Parallel()
	r, h, b := setupBroadcaster()
	ctx := context.Background()

	c := testutil.NewMockConn()
	r.Register(c, "alice")

	b.RecordAndBroadcast(ctx, domain.NewUserMessage("alice", "hello"), NoExclude)

	if len(c.Messages()) != 1 {
		t.Errorf("expected 1 delivered message, got %d", len(c.Messages()))
	}
	recent := h.Recent(ctx, 10)
	if len(recent) != 1 || recent[0].Text != "hello" {
		t.Errorf("expected 1 history entry 'hello', got %v", recent)
	}
}

func TestBroadcastEmptyRegistryStillRecords(t *testing.T) {
	t.Parallel()
	_, h, b := setupBroadcaster()
	ctx := context.Background()

	b.RecordAndBroadcast(ctx, domain.NewSystemMessage("nobody here"), NoExclude)

	if len(h.Recent(ctx, 10)) != 1 {
		t.Error("expected history append even with no recipients")
	}
}
