package domain

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestChatMessageRoundTrip(t *testing.T) {
	t.Parallel()
	nick := "alice"
	original := ChatMessage{
		Type:      KindMessage,
		Timestamp: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		Nickname:  &nick,
		Text:      "hello world",
	}

	data, err := Encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeChatMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.Type != original.Type {
		t.Errorf("type: got %q, want %q", decoded.Type, original.Type)
	}
	if !decoded.Timestamp.Equal(original.Timestamp) {
		t.Errorf("timestamp: got %v, want %v", decoded.Timestamp, original.Timestamp)
	}
	if decoded.Nickname == nil || *decoded.Nickname != "alice" {
		t.Errorf("nickname: got %v, want alice", decoded.Nickname)
	}
	if decoded.Text != original.Text {
		t.Errorf("text: got %q, want %q", decoded.Text, original.Text)
	}
}

func TestSystemMessageNicknameNull(t *testing.T) {
	t.Parallel()
	data, err := Encode(NewSystemMessage("server restarting"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, field := range []string{"type", "timestamp", "nickname", "text"} {
		if _, ok := raw[field]; !ok {
			t.Errorf("expected field %q in wire format", field)
		}
	}
	if string(raw["nickname"]) != "null" {
		t.Errorf("expected null nickname, got %s", raw["nickname"])
	}
}

func TestWireTimestampISO8601(t *testing.T) {
	t.Parallel()
	data, err := Encode(NewUserMessage("bob", "hi"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := time.Parse(time.RFC3339Nano, raw["timestamp"]); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", raw["timestamp"], err)
	}
	if !strings.HasSuffix(raw["timestamp"], "Z") {
		t.Errorf("timestamp %q is not UTC", raw["timestamp"])
	}
}

func TestJoinLeaveMessages(t *testing.T) {
	t.Parallel()
	join := JoinMessage("alice")
	if join.Type != KindSystem {
		t.Errorf("join type: got %q, want %q", join.Type, KindSystem)
	}
	if join.Nickname != nil {
		t.Error("join message must not carry a nickname field value")
	}
	if join.Text != "alice присоединился к чату" {
		t.Errorf("join text: got %q", join.Text)
	}

	leave := LeaveMessage("bob")
	if leave.Text != "bob покинул чат" {
		t.Errorf("leave text: got %q", leave.Text)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	t.Parallel()
	if _, err := DecodeChatMessage([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
