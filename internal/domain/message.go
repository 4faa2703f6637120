package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds.
const (
	KindMessage = "message"
	KindSystem  = "system"
)

// ChatMessage is the wire and storage representation of a single chat event.
// System messages carry the nickname inside the text and serialize nickname
// as null.
type ChatMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Nickname  *string   `json:"nickname"`
	Text      string    `json:"text"`
}

// HandshakeFrame is the first frame a client sends on a chat connection.
type HandshakeFrame struct {
	Nickname string `json:"nickname"`
}

// TextFrame is a steady-state client frame.
type TextFrame struct {
	Text string `json:"text"`
}

// NewUserMessage builds a user-authored chat message stamped with the
// current UTC time.
func NewUserMessage(nickname, text string) ChatMessage {
	return ChatMessage{
		Type:      KindMessage,
		Timestamp: time.Now().UTC(),
		Nickname:  &nickname,
		Text:      text,
	}
}

// NewSystemMessage builds a synthetic system message with a null nickname.
func NewSystemMessage(text string) ChatMessage {
	return ChatMessage{
		Type:      KindSystem,
		Timestamp: time.Now().UTC(),
		Text:      text,
	}
}

// JoinMessage announces that nickname entered the chat.
func JoinMessage(nickname string) ChatMessage {
	return NewSystemMessage(fmt.Sprintf("%s присоединился к чату", nickname))
}

// LeaveMessage announces that nickname left the chat.
func LeaveMessage(nickname string) ChatMessage {
	return NewSystemMessage(fmt.Sprintf("%s покинул чат", nickname))
}

// Encode serializes a value to JSON bytes.
func Encode(v any) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeChatMessage deserializes JSON bytes into a ChatMessage.
func DecodeChatMessage(data []byte) (ChatMessage, error) {
	var m ChatMessage
	err := json.Unmarshal(data, &m)
	return m, err
}
