// Package bridge implements a client-side telemetry bridge for the PavlovTV
// replay viewer's local HTTP API.
//
// It runs one independent poller per endpoint (match events, match status,
// player locations, killfeed, replay time, pause state), each with its own
// request timeout and inter-poll interval, delivering every result to a
// [Sink]. A supervisor goroutine derives a [ConnectionState] from the most
// recent successful response timestamp and an external "process is running"
// probe, and pushes state-change notifications to the same sink.
//
// # Quick start
//
//	eng := bridge.New(
//	    bridge.WithBaseURL("http://localhost:1234/"),
//	    bridge.WithSink(mySink),
//	    bridge.WithProcessProbe(myProbe.IsRunning),
//	)
//
//	eng.Start()
//	defer eng.Stop()
//
// # Architecture
//
// The engine owns a [DIT] (Delays/Intervals/Timeouts) record, six per-kind
// HTTP client contexts (never shared across pollers), and a supervisor that
// lazily spawns one poller per [EndpointKind]. The DIT's fields are each
// independently mutable at runtime under fine-grained locks; see [DIT] for
// the cross-field invariant between the two connection-state thresholds.
package bridge
