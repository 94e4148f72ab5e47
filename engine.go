package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pavlovtv/telemetry-bridge/internal/engine"
	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

// urlPattern is a permissive http(s) URL validator: scheme, host, optional
// port and path. It exists to reject obviously malformed input at the
// Url setter, not to fully validate RFC 3986.
var urlPattern = regexp.MustCompile(`^https?://[^\s/]+(/.*)?$`)

// ProcessProbe reports whether the viewer process is currently running.
// nil means the probe is unavailable, in which case the engine treats the
// process as always running (process-liveness cannot gate state).
type ProcessProbe func() bool

// ExternalEnabledProbe is consulted on every poller/supervisor cycle in
// addition to the engine's own enabled flag. A nil probe is treated as
// always-true.
type ExternalEnabledProbe func() bool

// Engine is the polling/connection-health facade: one instance owns six
// pollers (one per EndpointKind) and one supervisor goroutine, all backed
// by per-kind HTTP client contexts it exclusively owns.
type Engine struct {
	dit *DIT

	urlMu   sync.RWMutex
	baseURL string

	enabledMu sync.RWMutex
	enabled   bool

	externalProbeMu sync.RWMutex
	externalProbe   ExternalEnabledProbe

	processProbeMu sync.RWMutex
	processProbe   ProcessProbe

	lastResponseAtMu sync.RWMutex
	lastResponseAt   *time.Time

	lastStateMu sync.RWMutex
	lastState   ConnectionState

	sinkMu sync.RWMutex
	sink   *safeSink

	logger *slog.Logger

	clients map[EndpointKind]*httpclient.Client

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	running atomic.Bool
}

// New constructs an idle Engine. It must be started with [Engine.Start]
// before any polling occurs.
func New(opts ...Option) *Engine {
	e := &Engine{
		dit:       newDIT(),
		baseURL:   "http://localhost:1234/",
		lastState: Disconnected,
		logger:    slog.Default(),
		clients:   make(map[EndpointKind]*httpclient.Client, len(AllKinds)),
	}
	for _, kind := range AllKinds {
		e.clients[kind] = httpclient.New(e.baseURL)
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DIT returns the engine's timing configuration. The returned pointer is
// live: mutations through it take effect on the next poll/monitor cycle.
func (e *Engine) DIT() *DIT {
	return e.dit
}

// Url returns the currently configured base URL.
func (e *Engine) Url() string {
	e.urlMu.RLock()
	defer e.urlMu.RUnlock()
	return e.baseURL
}

// SetUrl validates newURL against the engine's URL pattern and, if valid,
// swaps it in for every per-kind HTTP client context. On rejection the
// previous value is left intact and an error is returned; it is never
// silently ignored.
func (e *Engine) SetUrl(newURL string) error {
	if !urlPattern.MatchString(newURL) {
		return fmt.Errorf("bridge: invalid base url %q", newURL)
	}
	if _, err := url.Parse(newURL); err != nil {
		return fmt.Errorf("bridge: invalid base url %q: %w", newURL, err)
	}
	e.urlMu.Lock()
	defer e.urlMu.Unlock()
	e.baseURL = newURL
	for _, c := range e.clients {
		c.SetBaseURL(newURL)
	}
	return nil
}

// Sink returns the currently attached Sink, or nil if updates are being
// dropped.
func (e *Engine) Sink() Sink {
	e.sinkMu.RLock()
	defer e.sinkMu.RUnlock()
	if e.sink == nil {
		return nil
	}
	return e.sink.sink
}

// SetSink swaps the attached Sink. Passing nil drops all future updates.
// Safe to call while the engine is running.
func (e *Engine) SetSink(sink Sink) {
	e.sinkMu.Lock()
	defer e.sinkMu.Unlock()
	if sink == nil {
		e.sink = nil
		return
	}
	e.sink = newSafeSink(sink, e.logger)
}

func (e *Engine) currentSink() *safeSink {
	e.sinkMu.RLock()
	defer e.sinkMu.RUnlock()
	return e.sink
}

// LastResponseAt returns the timestamp of the most recent successful poll
// response across all kinds, or the zero value and false if none yet.
func (e *Engine) LastResponseAt() (time.Time, bool) {
	e.lastResponseAtMu.RLock()
	defer e.lastResponseAtMu.RUnlock()
	if e.lastResponseAt == nil {
		return time.Time{}, false
	}
	return *e.lastResponseAt, true
}

func (e *Engine) stampLastResponseAt() {
	now := time.Now()
	e.lastResponseAtMu.Lock()
	defer e.lastResponseAtMu.Unlock()
	e.lastResponseAt = &now
}

// ConnectionStatus returns the most recently derived connection state.
func (e *Engine) ConnectionStatus() ConnectionState {
	e.lastStateMu.RLock()
	defer e.lastStateMu.RUnlock()
	return e.lastState
}

func (e *Engine) setLastState(s ConnectionState) {
	e.lastStateMu.Lock()
	e.lastState = s
	e.lastStateMu.Unlock()
}

// SetEnabled flips the engine's own enable flag. Setting it false makes
// each poller exit the next time it checks ShouldRun (after its current
// request, or once its current sleep ends) and makes the derived state
// Disconnected. It does not interrupt a sleep in progress and does not
// stop the supervisor; [Engine.Stop] cancels both.
func (e *Engine) SetEnabled(v bool) {
	e.enabledMu.Lock()
	e.enabled = v
	e.enabledMu.Unlock()
}

func (e *Engine) isEnabled() bool {
	e.enabledMu.RLock()
	defer e.enabledMu.RUnlock()
	return e.enabled
}

// SetExternalEnabledProbe installs an additional predicate consulted
// alongside the engine's own enabled flag. Pass nil to remove it.
func (e *Engine) SetExternalEnabledProbe(p ExternalEnabledProbe) {
	e.externalProbeMu.Lock()
	e.externalProbe = p
	e.externalProbeMu.Unlock()
}

func (e *Engine) externalEnabled() bool {
	e.externalProbeMu.RLock()
	p := e.externalProbe
	e.externalProbeMu.RUnlock()
	if p == nil {
		return true
	}
	return p()
}

// ShouldRun reports enabled && externalEnabledProbe().
func (e *Engine) ShouldRun() bool {
	return e.isEnabled() && e.externalEnabled()
}

// SetProcessProbe installs the process-liveness probe consulted during
// state derivation. Pass nil to treat the process as always running.
func (e *Engine) SetProcessProbe(p ProcessProbe) {
	e.processProbeMu.Lock()
	e.processProbe = p
	e.processProbeMu.Unlock()
}

func (e *Engine) processRunning() bool {
	e.processProbeMu.RLock()
	p := e.processProbe
	e.processProbeMu.RUnlock()
	if p == nil {
		return true
	}
	return p()
}

// deriveState is the pure function from §4.3: Disconnected if no response
// has ever landed, if the engine should not be running, if the process
// probe reports death, or if the silence age has crossed
// disconnectedTimeout; Unresponsive if it has crossed unresponsiveTimeout;
// Connected otherwise.
func (e *Engine) deriveState() ConnectionState {
	t, ok := e.LastResponseAt()
	if !ok {
		return Disconnected
	}
	if !e.ShouldRun() {
		return Disconnected
	}
	if !e.processRunning() {
		return Disconnected
	}
	age := time.Since(t)
	if age >= e.dit.DisconnectedTimeout() {
		return Disconnected
	}
	if age >= e.dit.UnresponsiveTimeout() {
		return Unresponsive
	}
	return Connected
}

// Start spawns the supervisor goroutine, which lazily spawns each kind's
// poller on its first tick. Idempotent: calling Start on an already
// running engine is a no-op.
func (e *Engine) Start() {
	e.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		e.cancel = cancel
		e.done = make(chan struct{})
		e.running.Store(true)
		e.SetEnabled(true)
		go e.run(ctx)
	})
}

func (e *Engine) run(ctx context.Context) {
	defer close(e.done)

	pollers := make(map[string]*engine.Poller, len(AllKinds))
	for _, kind := range AllKinds {
		pollers[string(kind)] = e.newPoller(kind)
	}

	sup := &engine.Supervisor{
		Kinds:           pollers,
		MonitorInterval: e.dit.MonitorInterval,
		DeriveState:     func() engine.State { return engine.State(e.deriveState()) },
		OnTransition: func(s engine.State) {
			state := ConnectionState(s)
			e.setLastState(state)
			if sink := e.currentSink(); sink != nil {
				sink.OnState(state)
			}
		},
	}
	sup.Run(ctx, engine.State(Disconnected))
}

func (e *Engine) newPoller(kind EndpointKind) *engine.Poller {
	return &engine.Poller{
		ShouldRun: e.ShouldRun,
		Interval:  func() time.Duration { return e.dit.Interval(kind) },
		Timeout:   func() time.Duration { return e.dit.Timeout(kind) },
		Fetch: func(ctx context.Context, timeout time.Duration) bool {
			return e.pollOnce(ctx, kind, timeout)
		},
		OnSuccess: e.stampLastResponseAt,
	}
}

// pollOnce issues the single HTTP call for kind and delivers the result to
// the sink, returning whether it should advance lastResponseAt.
func (e *Engine) pollOnce(ctx context.Context, kind EndpointKind, timeout time.Duration) bool {
	client := e.clients[kind]
	sink := e.currentSink()

	switch kind {
	case KindEvents:
		r := httpclient.Get[EventsPayload](ctx, client, kind.Path(), timeout)
		if sink != nil {
			sink.OnEvents(r)
		}
		return r.OK
	case KindStatus:
		r := httpclient.Get[StatusPayload](ctx, client, kind.Path(), timeout)
		if sink != nil {
			sink.OnStatus(r)
		}
		return r.OK
	case KindLocations:
		r := httpclient.Get[LocationsPayload](ctx, client, kind.Path(), timeout)
		if sink != nil {
			sink.OnLocations(r)
		}
		return r.OK
	case KindKillfeed:
		r := httpclient.Get[KillfeedPayload](ctx, client, kind.Path(), timeout)
		if sink != nil {
			sink.OnKillfeed(r)
		}
		return r.OK
	case KindTime:
		r := httpclient.Get[TimePayload](ctx, client, kind.Path(), timeout)
		if sink != nil {
			sink.OnTime(r)
		}
		return r.OK
	case KindPause:
		r := httpclient.Get[PausePayload](ctx, client, kind.Path(), timeout)
		if sink != nil {
			sink.OnPause(r)
		}
		return r.OK
	default:
		return false
	}
}

// Stop sets enabled=false, wakes every worker, joins them, and releases
// HTTP contexts. Safe to call multiple times and safe to call before
// Start.
func (e *Engine) Stop() {
	e.SetEnabled(false)
	if e.cancel == nil {
		return
	}
	e.cancel()
	if e.done != nil {
		<-e.done
	}
	if e.running.CompareAndSwap(true, false) {
		for _, c := range e.clients {
			c.Close()
		}
	}
}
