// Package command implements the three command-style calls the viewer API
// exposes outside the poll loop: loading a replay, seeking its playback
// time, and toggling pause. They share the HTTP Client Context but are
// deliberately not wired into the engine, matching its scope boundary.
package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pavlovtv/telemetry-bridge"
	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

// Caller issues the three command endpoints against a single client.
type Caller struct {
	client  *httpclient.Client
	timeout time.Duration
}

// New constructs a Caller. timeout bounds each individual call.
func New(client *httpclient.Client, timeout time.Duration) *Caller {
	return &Caller{client: client, timeout: timeout}
}

// LoadReplay requests that the viewer load the replay identified by id. An
// empty or whitespace-only id is a validation error and is rejected before
// any request is issued.
func (c *Caller) LoadReplay(ctx context.Context, id string) bridge.Result[bridge.LoadReplayResponse] {
	if strings.TrimSpace(id) == "" {
		return bridge.Result[bridge.LoadReplayResponse]{
			Error: fmt.Errorf("command: invalid replay id %q: must not be empty or whitespace", id),
		}
	}
	req := bridge.LoadReplayRequest{ID: id}
	return httpclient.Post[bridge.LoadReplayResponse](ctx, c.client, "LoadReplay", req, c.timeout)
}

// SetTime seeks the currently loaded replay to matchTime seconds. Negative
// values are clamped to 0 before sending, per the command endpoint's
// contract.
func (c *Caller) SetTime(ctx context.Context, matchTime float64) bridge.Result[bridge.Envelope] {
	if matchTime < 0 {
		matchTime = 0
	}
	req := bridge.SetTimeRequest{MatchTime: matchTime}
	return httpclient.Post[bridge.Envelope](ctx, c.client, "MatchTime", req, c.timeout)
}

// SetPause toggles the replay's paused state.
func (c *Caller) SetPause(ctx context.Context, paused bool) bridge.Result[bridge.Envelope] {
	req := bridge.SetPauseRequest{Paused: paused}
	return httpclient.Post[bridge.Envelope](ctx, c.client, "Pause", req, c.timeout)
}
