package engine

import (
	"context"
	"sync"
	"time"
)

// State is a supervisor-agnostic stand-in for bridge.ConnectionState: the
// engine package does not import the root package (which imports this one
// for poller wiring), so it works in terms of a comparable string alias
// the caller translates at the boundary.
type State string

// Supervisor drives the monitor loop described in the component design:
// lazily start each kind's poller on first tick, derive connection state,
// and notify on every transition.
type Supervisor struct {
	// Kinds lists every poller to keep alive, keyed by an opaque name
	// (the caller's EndpointKind, carried as a plain string so this
	// package stays independent of the root package's types).
	Kinds map[string]*Poller

	// MonitorInterval is sampled fresh every tick.
	MonitorInterval func() time.Duration

	// DeriveState computes the current connection state. Called once per
	// tick after ensuring every poller is alive.
	DeriveState func() State

	// OnTransition is invoked whenever DeriveState's result differs from
	// the previously published state, including the very first tick.
	OnTransition func(State)

	mu      sync.Mutex
	started map[string]bool
	wg      sync.WaitGroup
}

// Run starts the supervisor loop and blocks until ctx is canceled. It
// lazily spawns each poller goroutine on its first tick, republishes state
// on every change, and on exit publishes a final Disconnected-equivalent
// notification via OnTransition before returning. Callers pass the
// Disconnected-equivalent value since this package has no notion of the
// state enum's members.
func (s *Supervisor) Run(ctx context.Context, disconnected State) {
	s.started = make(map[string]bool, len(s.Kinds))

	lastState := s.DeriveState()
	s.OnTransition(lastState)

	for {
		s.ensurePollersStarted(ctx)

		current := s.DeriveState()
		if current != lastState {
			lastState = current
			s.OnTransition(current)
		}

		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.OnTransition(disconnected)
			return
		default:
		}

		interval := s.MonitorInterval()
		select {
		case <-ctx.Done():
			s.wg.Wait()
			s.OnTransition(disconnected)
			return
		case <-time.After(interval):
		}
	}
}

func (s *Supervisor) ensurePollersStarted(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, p := range s.Kinds {
		if s.started[name] {
			continue
		}
		s.started[name] = true
		poller := p
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			poller.Run(ctx)
		}()
	}
}
