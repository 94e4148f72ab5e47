// Package redisfeed is a bridge.Sink implementation that forwards every
// update to a Redis Pub/Sub channel, for deployments where the dashboard
// lives in a separate process or host from the engine. It is pure
// forwarding: nothing is cached in Redis, matching the no-persistence
// stance the rest of the bridge takes. Grounded on the minimal
// redis.ParseURL/redis.NewClient construction idiom used for the gateway
// pack member's Redis client.
package redisfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pavlovtv/telemetry-bridge"
)

// Sink publishes every engine callback to a single Redis channel as JSON.
type Sink struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// New parses redisURL (e.g. "redis://localhost:6379/0") and constructs a
// Sink that publishes to channel.
func New(redisURL, channel string, logger *slog.Logger) (*Sink, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redisfeed: invalid redis url: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sink{client: redis.NewClient(opt), channel: channel, logger: logger}, nil
}

// Ping verifies connectivity to Redis.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis connection pool.
func (s *Sink) Close() error {
	return s.client.Close()
}

func (s *Sink) publish(kind string, payload any) {
	envelope := map[string]any{
		"kind":    kind,
		"payload": payload,
		"at":      time.Now().UTC(),
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error("redisfeed: marshal update", "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		s.logger.Error("redisfeed: publish", "error", err, "kind", kind)
	}
}

func (s *Sink) OnState(state bridge.ConnectionState)         { s.publish("state", state) }
func (s *Sink) OnEvents(r bridge.Result[bridge.EventsPayload])       { s.publish("events", r) }
func (s *Sink) OnStatus(r bridge.Result[bridge.StatusPayload])       { s.publish("status", r) }
func (s *Sink) OnLocations(r bridge.Result[bridge.LocationsPayload]) { s.publish("locations", r) }
func (s *Sink) OnKillfeed(r bridge.Result[bridge.KillfeedPayload])   { s.publish("killfeed", r) }
func (s *Sink) OnTime(r bridge.Result[bridge.TimePayload])           { s.publish("time", r) }
func (s *Sink) OnPause(r bridge.Result[bridge.PausePayload])         { s.publish("pause", r) }

var _ bridge.Sink = (*Sink)(nil)
