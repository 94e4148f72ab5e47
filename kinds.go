package bridge

import "time"

// EndpointKind identifies one of the six polled PavlovTV endpoints. Each
// kind binds a relative URL path and a pair of default Interval/Timeout
// values; the live values are held per-kind in the engine's [DIT] so they
// can be read and mutated independently at runtime.
type EndpointKind string

const (
	KindEvents    EndpointKind = "Events"
	KindStatus    EndpointKind = "Status"
	KindLocations EndpointKind = "Locations"
	KindKillfeed  EndpointKind = "Killfeed"
	KindTime      EndpointKind = "Time"
	KindPause     EndpointKind = "Pause"
)

// AllKinds lists every polled endpoint kind, in the stable order used when
// the engine starts their pollers.
var AllKinds = []EndpointKind{
	KindEvents, KindStatus, KindLocations, KindKillfeed, KindTime, KindPause,
}

// kindPaths maps each kind to the relative path appended to the engine's
// base URL.
var kindPaths = map[EndpointKind]string{
	KindEvents:    "MatchEvents",
	KindStatus:    "MatchStatus",
	KindLocations: "PlayersPos",
	KindKillfeed:  "Killfeed",
	KindTime:      "MatchTime",
	KindPause:     "Pause",
}

// Path returns the relative URL path for the kind.
func (k EndpointKind) Path() string {
	return kindPaths[k]
}

// kindDefaults holds the factory defaults for each kind's interval and
// per-request timeout, taken from spec §3.
type kindDefaults struct {
	interval time.Duration
	timeout  time.Duration
}

var defaultsByKind = map[EndpointKind]kindDefaults{
	KindEvents:    {interval: 5000 * time.Millisecond, timeout: 1000 * time.Millisecond},
	KindStatus:    {interval: 1000 * time.Millisecond, timeout: 1000 * time.Millisecond},
	KindLocations: {interval: 500 * time.Millisecond, timeout: 1000 * time.Millisecond},
	KindKillfeed:  {interval: 1250 * time.Millisecond, timeout: 1000 * time.Millisecond},
	KindTime:      {interval: 125 * time.Millisecond, timeout: 1000 * time.Millisecond},
	KindPause:     {interval: 125 * time.Millisecond, timeout: 1000 * time.Millisecond},
}
