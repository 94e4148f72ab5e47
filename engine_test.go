package bridge

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu     sync.Mutex
	states []ConnectionState
	times  int
}

func (s *recordingSink) OnState(st ConnectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, st)
}
func (s *recordingSink) OnEvents(Result[EventsPayload])       {}
func (s *recordingSink) OnStatus(Result[StatusPayload])       {}
func (s *recordingSink) OnLocations(Result[LocationsPayload]) {}
func (s *recordingSink) OnKillfeed(Result[KillfeedPayload])   {}
func (s *recordingSink) OnTime(r Result[TimePayload]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times++
}
func (s *recordingSink) OnPause(Result[PausePayload]) {}

func (s *recordingSink) timeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.times
}

func (s *recordingSink) snapshot() []ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ConnectionState, len(s.states))
	copy(out, s.states)
	return out
}

func TestEngine_SetUrl_RejectsInvalid(t *testing.T) {
	e := New()
	before := e.Url()
	if err := e.SetUrl("not-a-url"); err == nil {
		t.Fatal("expected validation error")
	}
	if e.Url() != before {
		t.Fatalf("url changed despite validation failure: %q", e.Url())
	}
	if err := e.SetUrl("http://127.0.0.1:9999/"); err != nil {
		t.Fatalf("expected valid url to be accepted: %v", err)
	}
}

func TestEngine_ShouldRun_CombinesEnabledAndExternalProbe(t *testing.T) {
	e := New()
	if e.ShouldRun() {
		t.Fatal("expected ShouldRun false before Start")
	}
	e.SetEnabled(true)
	if !e.ShouldRun() {
		t.Fatal("expected ShouldRun true once enabled with no external probe")
	}
	e.SetExternalEnabledProbe(func() bool { return false })
	if e.ShouldRun() {
		t.Fatal("expected ShouldRun false once external probe reports false")
	}
}

func TestEngine_DeriveState_DisconnectedWhenNeverResponded(t *testing.T) {
	e := New()
	e.SetEnabled(true)
	if got := e.deriveState(); got != Disconnected {
		t.Fatalf("deriveState = %v, want Disconnected", got)
	}
}

func TestEngine_DeriveState_DisconnectedWhenProcessNotRunning(t *testing.T) {
	e := New()
	e.SetEnabled(true)
	e.stampLastResponseAt()
	e.SetProcessProbe(func() bool { return false })
	if got := e.deriveState(); got != Disconnected {
		t.Fatalf("deriveState = %v, want Disconnected", got)
	}
}

func TestEngine_DeriveState_ConnectedThenUnresponsive(t *testing.T) {
	e := New(WithUnresponsiveTimeout(10 * time.Millisecond))
	e.SetEnabled(true)
	e.stampLastResponseAt()
	if got := e.deriveState(); got != Connected {
		t.Fatalf("deriveState immediately after stamp = %v, want Connected", got)
	}
	time.Sleep(20 * time.Millisecond)
	if got := e.deriveState(); got != Unresponsive {
		t.Fatalf("deriveState after unresponsive timeout = %v, want Unresponsive", got)
	}
}

func TestEngine_StartStop_PublishesStateAndPolls(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/MatchTime":
			_, _ = w.Write([]byte(`{"MatchTime": 42.5}`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	sink := &recordingSink{}
	e := New(
		WithBaseURL(srv.URL+"/"),
		WithSink(sink),
		WithKindInterval(KindTime, 2*time.Millisecond),
		WithKindTimeout(KindTime, 500*time.Millisecond),
		WithMonitorInterval(2*time.Millisecond),
	)
	e.Start()

	deadline := time.After(2 * time.Second)
	for {
		if sink.timeCount() > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for a MatchTime poll result")
		case <-time.After(5 * time.Millisecond):
		}
	}

	e.Stop()

	states := sink.snapshot()
	if len(states) == 0 {
		t.Fatal("expected at least one state notification")
	}
	if states[len(states)-1] != Disconnected {
		t.Fatalf("expected final notification to be Disconnected, got %v", states[len(states)-1])
	}
}

func TestEngine_Stop_IsIdempotentAndSafeBeforeStart(t *testing.T) {
	e := New()
	e.Stop()
	e.Stop()
}
