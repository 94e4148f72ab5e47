package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pavlovtv/telemetry-bridge"
)

const (
	// sseWriteTimeout bounds a single SSE write so a slow or disconnected
	// client cannot leak the handler goroutine.
	sseWriteTimeout = 5 * time.Second

	defaultTitle     = "PavlovTV Telemetry Bridge"
	titlePlaceholder = "{{.Title}}"
)

// Server exposes a MemorySink over HTTP: a dashboard page, a JSON
// snapshot endpoint, and a Server-Sent Events stream. Routing is built on
// chi rather than the bare http.ServeMux the underlying pattern uses,
// picking up chi's request-id and panic-recovery middleware for free.
type Server struct {
	sink       *MemorySink
	port       int
	assets     fs.FS
	title      string
	logger     *slog.Logger
	httpServer *http.Server
}

// NewServer constructs a Server. assets may be nil, in which case the
// dashboard route is omitted and only the API endpoints are mounted.
func NewServer(sink *MemorySink, port int, assets fs.FS, title string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{sink: sink, port: port, assets: assets, title: title, logger: logger}
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/api/status", s.handleStatus)
	r.Get("/api/sse", s.handleSSE)
	if s.assets != nil {
		r.Get("/", s.handleDashboard)
	}
	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// Start binds the listener synchronously (so callers learn about a port
// conflict immediately) and serves in a background goroutine until ctx is
// canceled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("feed: bind %s: %w", addr, err)
	}

	s.httpServer = &http.Server{Handler: s.router()}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("dashboard server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.httpServer.Close()
	}()

	return nil
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	content, err := fs.ReadFile(s.assets, "assets/index.html")
	if err != nil {
		http.Error(w, "dashboard not found", http.StatusInternalServerError)
		return
	}
	title := s.title
	if title == "" {
		title = defaultTitle
	}
	rendered := strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write([]byte(rendered)); err != nil {
		s.logger.Error("write dashboard response", "error", err)
	}
}

type statusSnapshot struct {
	State   bridge.ConnectionState         `json:"state"`
	Updates map[bridge.EndpointKind]Update `json:"updates"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	state, latest := s.sink.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(statusSnapshot{State: state, Updates: latest}); err != nil {
		s.logger.Error("encode status response", "error", err)
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}
	rc := http.NewResponseController(w)
	deadlinesSupported := true

	writeAndFlush := func(data []byte) error {
		if deadlinesSupported {
			if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
				s.logger.Warn("sse write deadlines not supported", "error", err)
				deadlinesSupported = false
			}
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		return rc.Flush()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.sink.Subscribe()
	defer s.sink.Unsubscribe(ch)

	state, latest := s.sink.Snapshot()
	if data, err := json.Marshal(statusSnapshot{State: state, Updates: latest}); err == nil {
		if err := writeAndFlush(data); err != nil {
			return
		}
	}

	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(u)
			if err != nil {
				continue
			}
			if err := writeAndFlush(data); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
