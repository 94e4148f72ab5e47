package feed

import (
	"testing"
	"time"

	"github.com/pavlovtv/telemetry-bridge"
)

func TestMemorySink_SnapshotReflectsLatestPerKind(t *testing.T) {
	sink := NewMemorySink()
	sink.OnStatus(bridge.Result[bridge.StatusPayload]{OK: true})
	sink.OnState(bridge.Connected)

	state, latest := sink.Snapshot()
	if state != bridge.Connected {
		t.Fatalf("state = %v, want Connected", state)
	}
	if _, ok := latest[bridge.KindStatus]; !ok {
		t.Fatalf("expected a stored status update")
	}
	if _, ok := latest[bridge.KindTime]; ok {
		t.Fatalf("did not expect a time update to be present")
	}
}

func TestMemorySink_SubscribeReceivesUpdates(t *testing.T) {
	sink := NewMemorySink()
	ch := sink.Subscribe()
	defer sink.Unsubscribe(ch)

	sink.OnPause(bridge.Result[bridge.PausePayload]{OK: true})

	select {
	case u := <-ch:
		if u.Kind != bridge.KindPause {
			t.Fatalf("expected pause update, got %v", u.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for update")
	}
}

func TestMemorySink_UnsubscribeClosesChannel(t *testing.T) {
	sink := NewMemorySink()
	ch := sink.Subscribe()
	sink.Unsubscribe(ch)

	_, ok := <-ch
	if ok {
		t.Fatal("expected channel to be closed after Unsubscribe")
	}
}

func TestMemorySink_SlowSubscriberDropsRatherThanBlocks(t *testing.T) {
	sink := NewMemorySink()
	ch := sink.Subscribe()
	defer sink.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			sink.OnPause(bridge.Result[bridge.PausePayload]{OK: true})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber instead of dropping")
	}
}
