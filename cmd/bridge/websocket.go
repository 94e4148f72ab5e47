package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/pavlovtv/telemetry-bridge/internal/wsfeed"
)

// mountWebSocket serves the WebSocket feed on its own port, separate from
// the dashboard's chi router, so a crash or slow client in one transport
// cannot affect the other.
func mountWebSocket(ctx context.Context, port int, handler *wsfeed.Handler, logger *slog.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}

	srv := &http.Server{Handler: handler}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			logger.Error("websocket server error", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return nil
}
