package integration

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/devaloi/noteboard/internal/auth"
	"github.com/devaloi/noteboard/internal/chat"
	"github.com/devaloi/noteboard/internal/domain"
	"github.com/devaloi/noteboard/internal/handler"
	"github.com/devaloi/noteboard/internal/store"
	"github.com/devaloi/noteboard/internal/testutil"
)

func setupServer(t *testing.T, durable chat.DurableStore) *httptest.Server {
	t.Helper()
	s, err := store.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	registry := chat.NewRegistry()
	history := chat.NewHistory(durable, zerolog.Nop())
	bcast := chat.NewBroadcaster(registry, history, zerolog.Nop())
	tokens := auth.NewManager("integration-secret", time.Hour)

	h, err := handler.New(s, tokens, auth.NewThrottle(), registry, bcast, history, zerolog.Nop())
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	server := httptest.NewServer(h.Routes())
	t.Cleanup(server.Close)
	return server
}

func dialChat(t *testing.T, serverURL, nickname string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws/anon-chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", nickname, err)
	}
	handshake, _ := json.Marshal(map[string]string{"nickname": nickname})
	if err := conn.WriteMessage(websocket.TextMessage, handshake); err != nil {
		t.Fatalf("handshake %s: %v", nickname, err)
	}
	return conn
}

func readMsg(t *testing.T, conn *websocket.Conn) domain.ChatMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	msg, err := domain.DecodeChatMessage(data)
	if err != nil {
		t.Fatalf("decode %q: %v", data, err)
	}
	return msg
}

// readUntilText reads until a frame with the given text arrives.
func readUntilText(t *testing.T, conn *websocket.Conn, text string, maxReads int) domain.ChatMessage {
	t.Helper()
	for i := 0; i < maxReads; i++ {
		msg := readMsg(t, conn)
		if msg.Text == text {
			return msg
		}
	}
	t.Fatalf("did not see %q in %d reads", text, maxReads)
	return domain.ChatMessage{}
}

func TestJoinAnnouncement(t *testing.T) {
	t.Parallel()
	server := setupServer(t, nil)

	alice := dialChat(t, server.URL, "alice")
	defer alice.Close()

	msg := readMsg(t, alice)
	if msg.Type != domain.KindSystem {
		t.Errorf("expected system message, got %q", msg.Type)
	}
	if msg.Nickname != nil {
		t.Errorf("system messages must carry a null nickname, got %v", *msg.Nickname)
	}
	if msg.Text != "alice присоединился к чату" {
		t.Errorf("unexpected join text %q", msg.Text)
	}
}

func TestChatLifecycle(t *testing.T) {
	t.Parallel()
	server := setupServer(t, nil)

	// Alice joins an empty room and sees only her own join.
	alice := dialChat(t, server.URL, "alice")
	defer alice.Close()
	readUntilText(t, alice, "alice присоединился к чату", 3)

	// Bob joins. His first frame is the replayed history (alice's join),
	// then his own join announcement.
	bob := dialChat(t, server.URL, "bob")
	first := readMsg(t, bob)
	if first.Text != "alice присоединился к чату" {
		t.Errorf("expected replayed alice join first, got %q", first.Text)
	}
	readUntilText(t, bob, "bob присоединился к чату", 3)
	readUntilText(t, alice, "bob присоединился к чату", 3)

	// Alice speaks; both sides receive it with her nickname.
	frame, _ := json.Marshal(map[string]string{"text": "hi"})
	if err := alice.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, conn := range []*websocket.Conn{alice, bob} {
		msg := readUntilText(t, conn, "hi", 5)
		if msg.Type != domain.KindMessage {
			t.Errorf("expected message kind, got %q", msg.Type)
		}
		if msg.Nickname == nil || *msg.Nickname != "alice" {
			t.Errorf("expected nickname alice, got %v", msg.Nickname)
		}
	}

	// Bob disconnects; alice sees the leave announcement.
	bob.Close()
	leave := readUntilText(t, alice, "bob покинул чат", 5)
	if leave.Type != domain.KindSystem {
		t.Errorf("expected system leave, got %q", leave.Type)
	}

	// A fresh connection replays the full transcript in order.
	carol := dialChat(t, server.URL, "carol")
	defer carol.Close()
	want := []string{
		"alice присоединился к чату",
		"bob присоединился к чату",
		"hi",
		"bob покинул чат",
	}
	for _, text := range want {
		if msg := readMsg(t, carol); msg.Text != text {
			t.Fatalf("replay: expected %q, got %q", text, msg.Text)
		}
	}
}

func TestReplayFromDurableStore(t *testing.T) {
	t.Parallel()
	durable := testutil.NewFakeDurable()
	server := setupServer(t, durable)

	// Pre-populate the durable store newest-first, the way the history
	// layer writes it.
	for i := 1; i <= 3; i++ {
		msg := domain.NewUserMessage("seed", fmt.Sprintf("old %d", i))
		data, _ := domain.Encode(msg)
		durable.Inject("chat:history", string(data))
	}

	alice := dialChat(t, server.URL, "alice")
	defer alice.Close()

	// Replay arrives oldest-first before the join announcement.
	for i := 1; i <= 3; i++ {
		msg := readMsg(t, alice)
		if want := fmt.Sprintf("old %d", i); msg.Text != want {
			t.Fatalf("expected %q, got %q", want, msg.Text)
		}
	}
	readUntilText(t, alice, "alice присоединился к чату", 3)
}

func TestEmptyNicknameRejectedEndToEnd(t *testing.T) {
	t.Parallel()
	server := setupServer(t, nil)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/anon-chat"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	handshake, _ := json.Marshal(map[string]string{"nickname": "   "})
	conn.WriteMessage(websocket.TextMessage, handshake)

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Errorf("expected close 1008, got %v", err)
	}
}
