package bridge

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/google/uuid"
)

// Sink is the single fan-in consumer of everything the engine produces: one
// method per polled payload kind, plus one for connection-state
// transitions. Implementations must be safe for concurrent invocation from
// multiple pollers and the supervisor at once.
type Sink interface {
	OnState(ConnectionState)
	OnEvents(Result[EventsPayload])
	OnStatus(Result[StatusPayload])
	OnLocations(Result[LocationsPayload])
	OnKillfeed(Result[KillfeedPayload])
	OnTime(Result[TimePayload])
	OnPause(Result[PausePayload])
}

// safeSink wraps a Sink so that a panicking method can never take down the
// poller or supervisor goroutine that called it. This generalizes the
// panic-recovery pattern used for per-endpoint status extractors in
// endpoint-polling systems: recover, mint a correlation ID, log the full
// stack server-side, and carry on.
type safeSink struct {
	sink   Sink
	logger *slog.Logger
}

func newSafeSink(sink Sink, logger *slog.Logger) *safeSink {
	return &safeSink{sink: sink, logger: logger}
}

func (s *safeSink) call(method string, fn func()) {
	if s == nil || s.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			s.logger.Error("sink callback panicked",
				"method", method,
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
		}
	}()
	fn()
}

func (s *safeSink) OnState(state ConnectionState) {
	s.call("OnState", func() { s.sink.OnState(state) })
}

func (s *safeSink) OnEvents(r Result[EventsPayload]) {
	s.call("OnEvents", func() { s.sink.OnEvents(r) })
}

func (s *safeSink) OnStatus(r Result[StatusPayload]) {
	s.call("OnStatus", func() { s.sink.OnStatus(r) })
}

func (s *safeSink) OnLocations(r Result[LocationsPayload]) {
	s.call("OnLocations", func() { s.sink.OnLocations(r) })
}

func (s *safeSink) OnKillfeed(r Result[KillfeedPayload]) {
	s.call("OnKillfeed", func() { s.sink.OnKillfeed(r) })
}

func (s *safeSink) OnTime(r Result[TimePayload]) {
	s.call("OnTime", func() { s.sink.OnTime(r) })
}

func (s *safeSink) OnPause(r Result[PausePayload]) {
	s.call("OnPause", func() { s.sink.OnPause(r) })
}
