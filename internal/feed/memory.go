// Package feed provides the default push-based dashboard backend: an
// in-memory snapshot of the latest value per payload kind plus a
// publish/subscribe fan-out for live updates, and an HTTP server exposing
// both over a JSON status endpoint and Server-Sent Events. Grounded
// directly on the store/server pair of an endpoint-polling dashboard:
// the subscriber-channel-with-drop-on-full-buffer pattern and the
// http.ResponseController-based SSE writer are carried over verbatim in
// shape, generalized from one arbitrary-named endpoint's status to the
// bridge's six fixed payload kinds plus connection state.
package feed

import (
	"sync"
	"time"

	"github.com/pavlovtv/telemetry-bridge"
)

// Update is one change published to subscribers: exactly one of its
// payload fields is non-nil, selected by Kind ("" for a connection-state
// update).
type Update struct {
	Kind      bridge.EndpointKind
	State     *bridge.ConnectionState
	Events    *bridge.Result[bridge.EventsPayload]
	Status    *bridge.Result[bridge.StatusPayload]
	Locations *bridge.Result[bridge.LocationsPayload]
	Killfeed  *bridge.Result[bridge.KillfeedPayload]
	Time      *bridge.Result[bridge.TimePayload]
	Pause     *bridge.Result[bridge.PausePayload]
	At        time.Time
}

// subscriberBuffer is how many pending updates a slow subscriber may queue
// before new updates start being dropped for it.
const subscriberBuffer = 100

// MemorySink is the default [bridge.Sink] implementation: it keeps the
// latest update per kind in memory and fans every update out to any
// number of subscribers (typically the dashboard's SSE handler and
// WebSocket handler).
type MemorySink struct {
	mu       sync.RWMutex
	latest   map[bridge.EndpointKind]Update
	state    bridge.ConnectionState
	stateSet bool

	subMu sync.RWMutex
	subs  map[chan Update]struct{}
}

// NewMemorySink constructs an empty MemorySink, immediately ready for use.
func NewMemorySink() *MemorySink {
	return &MemorySink{
		latest: make(map[bridge.EndpointKind]Update),
		subs:   make(map[chan Update]struct{}),
	}
}

// Snapshot returns the most recently seen connection state and the latest
// update for each kind that has reported at least once. The returned map
// is a copy.
func (m *MemorySink) Snapshot() (bridge.ConnectionState, map[bridge.EndpointKind]Update) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[bridge.EndpointKind]Update, len(m.latest))
	for k, v := range m.latest {
		out[k] = v
	}
	return m.state, out
}

// Subscribe returns a channel delivering every future update. The channel
// is buffered; if the subscriber falls behind, new updates are dropped for
// it rather than blocking the sink. Callers must call Unsubscribe when
// done.
func (m *MemorySink) Subscribe() <-chan Update {
	ch := make(chan Update, subscriberBuffer)
	m.subMu.Lock()
	m.subs[ch] = struct{}{}
	m.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscription. Safe to call multiple
// times or with an unknown channel.
func (m *MemorySink) Unsubscribe(ch <-chan Update) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for c := range m.subs {
		if c == ch {
			delete(m.subs, c)
			close(c)
			return
		}
	}
}

func (m *MemorySink) publish(u Update) {
	m.subMu.RLock()
	defer m.subMu.RUnlock()
	for ch := range m.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

func (m *MemorySink) OnState(state bridge.ConnectionState) {
	m.mu.Lock()
	m.state = state
	m.stateSet = true
	m.mu.Unlock()
	m.publish(Update{State: &state, At: time.Now()})
}

func (m *MemorySink) OnEvents(r bridge.Result[bridge.EventsPayload]) {
	u := Update{Kind: bridge.KindEvents, Events: &r, At: time.Now()}
	m.store(bridge.KindEvents, u)
}

func (m *MemorySink) OnStatus(r bridge.Result[bridge.StatusPayload]) {
	u := Update{Kind: bridge.KindStatus, Status: &r, At: time.Now()}
	m.store(bridge.KindStatus, u)
}

func (m *MemorySink) OnLocations(r bridge.Result[bridge.LocationsPayload]) {
	u := Update{Kind: bridge.KindLocations, Locations: &r, At: time.Now()}
	m.store(bridge.KindLocations, u)
}

func (m *MemorySink) OnKillfeed(r bridge.Result[bridge.KillfeedPayload]) {
	u := Update{Kind: bridge.KindKillfeed, Killfeed: &r, At: time.Now()}
	m.store(bridge.KindKillfeed, u)
}

func (m *MemorySink) OnTime(r bridge.Result[bridge.TimePayload]) {
	u := Update{Kind: bridge.KindTime, Time: &r, At: time.Now()}
	m.store(bridge.KindTime, u)
}

func (m *MemorySink) OnPause(r bridge.Result[bridge.PausePayload]) {
	u := Update{Kind: bridge.KindPause, Pause: &r, At: time.Now()}
	m.store(bridge.KindPause, u)
}

func (m *MemorySink) store(kind bridge.EndpointKind, u Update) {
	m.mu.Lock()
	m.latest[kind] = u
	m.mu.Unlock()
	m.publish(u)
}

var _ bridge.Sink = (*MemorySink)(nil)
