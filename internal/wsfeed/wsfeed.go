// Package wsfeed is an alternate push transport for dashboard updates,
// alongside feed's Server-Sent Events endpoint: a WebSocket upgrade that
// streams the same feed.Update values. The subscribe/fan-out wiring
// mirrors the SSE handler exactly (both read from a feed.MemorySink's
// pubsub); the upgrade and write-loop shape follows gorilla/websocket's
// own documented usage, since no server-side upgrade handler was found in
// the retrieved pack (only client-side reconnect-loop consumers of the
// same library).
package wsfeed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pavlovtv/telemetry-bridge/internal/feed"
)

const (
	writeWait  = 5 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Handler upgrades incoming requests to WebSocket connections and streams
// every update published by its sink until the connection closes.
type Handler struct {
	sink   *feed.MemorySink
	logger *slog.Logger
}

// NewHandler constructs a Handler backed by sink.
func NewHandler(sink *feed.MemorySink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{sink: sink, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	ch := h.sink.Subscribe()
	defer h.sink.Unsubscribe(ch)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	state, latest := h.sink.Snapshot()
	if err := h.writeJSON(conn, struct {
		State   any `json:"state"`
		Updates any `json:"updates"`
	}{State: state, Updates: latest}); err != nil {
		return
	}

	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return
			}
			if err := h.writeJSON(conn, u); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) writeJSON(conn *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}
