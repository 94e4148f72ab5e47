package bridge

import (
	"log/slog"
	"time"

	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

// Option configures an Engine at construction time. Each Option is applied
// in the order passed to [New].
type Option func(*Engine)

// WithBaseURL sets the initial base URL. Invalid URLs are silently
// rejected at this stage (construction has no error return); use
// [Engine.SetUrl] after construction to observe validation failures.
func WithBaseURL(baseURL string) Option {
	return func(e *Engine) {
		if !urlPattern.MatchString(baseURL) {
			return
		}
		e.baseURL = baseURL
		for _, c := range e.clients {
			c.SetBaseURL(baseURL)
		}
	}
}

// WithSink attaches the initial Sink.
func WithSink(sink Sink) Option {
	return func(e *Engine) {
		e.SetSink(sink)
	}
}

// WithProcessProbe installs the initial process-liveness probe.
func WithProcessProbe(probe ProcessProbe) Option {
	return func(e *Engine) {
		e.processProbe = probe
	}
}

// WithExternalEnabledProbe installs the initial external-enabled probe.
func WithExternalEnabledProbe(probe ExternalEnabledProbe) Option {
	return func(e *Engine) {
		e.externalProbe = probe
	}
}

// WithLogger sets the logger used for panic recovery and internal
// diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithUserAgent sets the User-Agent header sent by every per-kind HTTP
// client context.
func WithUserAgent(ua string) Option {
	return func(e *Engine) {
		for kind, old := range e.clients {
			e.clients[kind] = httpclient.New(old.BaseURL(), httpclient.WithUserAgent(ua))
		}
	}
}

// WithMonitorInterval overrides the default supervisor tick interval.
func WithMonitorInterval(d time.Duration) Option {
	return func(e *Engine) { e.dit.SetMonitorInterval(d) }
}

// WithUnresponsiveTimeout overrides the default unresponsive timeout.
func WithUnresponsiveTimeout(d time.Duration) Option {
	return func(e *Engine) { e.dit.SetUnresponsiveTimeout(d) }
}

// WithDisconnectedTimeout overrides the default disconnected timeout.
func WithDisconnectedTimeout(d time.Duration) Option {
	return func(e *Engine) { e.dit.SetDisconnectedTimeout(d) }
}

// WithKindInterval overrides a single kind's poll interval.
func WithKindInterval(kind EndpointKind, d time.Duration) Option {
	return func(e *Engine) { e.dit.SetInterval(kind, d) }
}

// WithKindTimeout overrides a single kind's per-request timeout.
func WithKindTimeout(kind EndpointKind, d time.Duration) Option {
	return func(e *Engine) { e.dit.SetTimeout(kind, d) }
}
