package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/devaloi/noteboard/internal/chat"
	"github.com/devaloi/noteboard/internal/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// ErrClosed is returned by Send once the session has torn down or its
// outbound buffer is full; the broadcaster treats both as a dead connection.
var ErrClosed = errors.New("client: connection closed")

// Client is a single WebSocket chat session. It owns the handshake, the
// steady-state read loop and the teardown sequence.
type Client struct {
	conn     *websocket.Conn
	registry *chat.Registry
	bcast    *chat.Broadcaster
	history  *chat.History
	log      zerolog.Logger

	id       chat.ConnID
	nickname string
	send     chan []byte
	done     chan struct{}
	once     sync.Once
}

// New creates a session over an upgraded connection.
func New(conn *websocket.Conn, registry *chat.Registry, bcast *chat.Broadcaster, history *chat.History, log zerolog.Logger) *Client {
	return &Client{
		conn:     conn,
		registry: registry,
		bcast:    bcast,
		history:  history,
		log:      log,
		send:     make(chan []byte, 256),
		done:     make(chan struct{}),
	}
}

// Send queues data for delivery to the peer. It fails when the session is
// gone or the peer stopped draining its buffer.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClosed
	default:
		return ErrClosed
	}
}

// Run drives the session from handshake through teardown. It blocks until
// the connection closes.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer c.teardown(ctx)

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	if !c.handshake(ctx) {
		return
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Str("nickname", c.nickname).Msg("read error")
			}
			return
		}

		var frame domain.TextFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		text := strings.TrimSpace(frame.Text)
		if text == "" {
			continue
		}
		c.bcast.RecordAndBroadcast(ctx, domain.NewUserMessage(c.nickname, text), chat.NoExclude)
	}
}

// handshake reads the nickname frame and, on success, registers the
// connection, replays recent history and announces the join. An empty
// nickname closes the connection with a policy-violation code and leaves
// no state behind.
func (c *Client) handshake(ctx context.Context) bool {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return false
	}

	var frame domain.HandshakeFrame
	if err := json.Unmarshal(data, &frame); err == nil {
		c.nickname = strings.TrimSpace(frame.Nickname)
	}
	if c.nickname == "" {
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "nickname required"),
			time.Now().Add(writeWait))
		return false
	}

	c.id = c.registry.Register(c, c.nickname)
	c.log.Info().Str("nickname", c.nickname).Int("active", c.registry.Count()).Msg("chat connect")

	c.replayHistory(ctx)
	c.bcast.RecordAndBroadcast(ctx, domain.JoinMessage(c.nickname), chat.NoExclude)
	return true
}

// replayHistory sends the recent window to this connection only,
// oldest first.
func (c *Client) replayHistory(ctx context.Context) {
	for _, msg := range c.history.Recent(ctx, chat.ReplayWindow) {
		data, err := domain.Encode(msg)
		if err != nil {
			continue
		}
		if err := c.Send(data); err != nil {
			c.log.Warn().Err(err).Str("nickname", c.nickname).Msg("history replay send failed")
			return
		}
	}
}

// teardown completes the transition to Closed. The leave announcement is
// skipped when the handshake never registered this connection or a broadcast
// already pruned it; delivery failures never block teardown.
func (c *Client) teardown(ctx context.Context) {
	c.once.Do(func() { close(c.done) })
	c.conn.Close()

	if c.id == chat.NoExclude {
		return
	}
	nickname, ok := c.registry.Unregister(c.id)
	if !ok {
		c.log.Info().Str("nickname", c.nickname).Msg("disconnect for already-pruned connection")
		return
	}
	c.bcast.RecordAndBroadcast(ctx, domain.LeaveMessage(nickname), chat.NoExclude)
	c.log.Info().Str("nickname", nickname).Int("active", c.registry.Count()).Msg("chat disconnect")
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
