package bridge

import (
	"sync"
	"testing"
	"time"
)

func TestDIT_Defaults(t *testing.T) {
	d := newDIT()
	if d.MonitorInterval() != defaultMonitorInterval {
		t.Errorf("monitor interval = %v, want %v", d.MonitorInterval(), defaultMonitorInterval)
	}
	if d.UnresponsiveTimeout() != defaultUnresponsiveTimeout {
		t.Errorf("unresponsive timeout = %v, want %v", d.UnresponsiveTimeout(), defaultUnresponsiveTimeout)
	}
	if d.DisconnectedTimeout() != defaultDisconnectedTimeout {
		t.Errorf("disconnected timeout = %v, want %v", d.DisconnectedTimeout(), defaultDisconnectedTimeout)
	}
	for kind, want := range defaultsByKind {
		if got := d.Interval(kind); got != want.interval {
			t.Errorf("%s interval = %v, want %v", kind, got, want.interval)
		}
		if got := d.Timeout(kind); got != want.timeout {
			t.Errorf("%s timeout = %v, want %v", kind, got, want.timeout)
		}
	}
}

func TestDIT_SetUnresponsiveTimeout_RaisesDisconnectedWhenViolated(t *testing.T) {
	d := newDIT()
	d.SetDisconnectedTimeout(10 * time.Second)
	d.SetUnresponsiveTimeout(20 * time.Second)

	if d.UnresponsiveTimeout() != 20*time.Second {
		t.Fatalf("unresponsive timeout = %v, want 20s", d.UnresponsiveTimeout())
	}
	if got, want := d.DisconnectedTimeout(), 21*time.Second; got != want {
		t.Fatalf("disconnected timeout = %v, want %v", got, want)
	}
}

func TestDIT_SetDisconnectedTimeout_RaisedWhenNotExceedingUnresponsive(t *testing.T) {
	d := newDIT()
	d.SetUnresponsiveTimeout(5 * time.Second)
	d.SetDisconnectedTimeout(2 * time.Second)

	if got, want := d.DisconnectedTimeout(), 6*time.Second; got != want {
		t.Fatalf("disconnected timeout = %v, want %v", got, want)
	}

	d.SetDisconnectedTimeout(5 * time.Second)
	if got, want := d.DisconnectedTimeout(), 6*time.Second; got != want {
		t.Fatalf("disconnected timeout at equal boundary = %v, want %v", got, want)
	}
}

func TestDIT_InvariantHoldsUnderConcurrentMutation(t *testing.T) {
	d := newDIT()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			d.SetUnresponsiveTimeout(time.Duration(i) * time.Millisecond)
		}(i)
		go func(i int) {
			defer wg.Done()
			d.SetDisconnectedTimeout(time.Duration(i) * time.Millisecond)
		}(i)
	}
	wg.Wait()

	if d.DisconnectedTimeout() <= d.UnresponsiveTimeout() {
		t.Fatalf("invariant violated: disconnected=%v unresponsive=%v", d.DisconnectedTimeout(), d.UnresponsiveTimeout())
	}
}

func TestDIT_NegativeIntervalClampedToZero(t *testing.T) {
	d := newDIT()
	d.SetInterval(KindStatus, -5*time.Second)
	if got := d.Interval(KindStatus); got != 0 {
		t.Fatalf("interval = %v, want 0", got)
	}
}
