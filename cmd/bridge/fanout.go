package main

import "github.com/pavlovtv/telemetry-bridge"

// fanoutSink combines multiple sinks into one, so the engine (which holds
// exactly one Sink reference) can feed both the in-memory dashboard sink
// and, when configured, the Redis broadcast sink.
type fanout []bridge.Sink

func fanoutSink(sinks []bridge.Sink) bridge.Sink {
	if len(sinks) == 1 {
		return sinks[0]
	}
	return fanout(sinks)
}

func (f fanout) OnState(s bridge.ConnectionState) {
	for _, sink := range f {
		sink.OnState(s)
	}
}
func (f fanout) OnEvents(r bridge.Result[bridge.EventsPayload]) {
	for _, sink := range f {
		sink.OnEvents(r)
	}
}
func (f fanout) OnStatus(r bridge.Result[bridge.StatusPayload]) {
	for _, sink := range f {
		sink.OnStatus(r)
	}
}
func (f fanout) OnLocations(r bridge.Result[bridge.LocationsPayload]) {
	for _, sink := range f {
		sink.OnLocations(r)
	}
}
func (f fanout) OnKillfeed(r bridge.Result[bridge.KillfeedPayload]) {
	for _, sink := range f {
		sink.OnKillfeed(r)
	}
}
func (f fanout) OnTime(r bridge.Result[bridge.TimePayload]) {
	for _, sink := range f {
		sink.OnTime(r)
	}
}
func (f fanout) OnPause(r bridge.Result[bridge.PausePayload]) {
	for _, sink := range f {
		sink.OnPause(r)
	}
}
