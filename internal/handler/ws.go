package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/devaloi/noteboard/internal/client"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveWS upgrades the connection and runs the chat session until the
// client disconnects. Chat participants are anonymous; the nickname comes
// from the handshake frame, not from any authenticated identity.
func (h *Handler) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade error")
		return
	}

	client.New(conn, h.registry, h.bcast, h.history, h.log).Run(context.Background())
}
