// Package config provides YAML configuration parsing for the telemetry
// bridge, letting it run as a standalone binary via cmd/bridge as an
// alternative to embedding the bridge package directly. Grounded on the
// env-var expansion and custom yaml.Unmarshaler Duration idiom of an
// endpoint-polling dashboard's own config package; the endpoint/grid
// schema that idiom originally validated is replaced with the bridge's
// fixed DIT shape, since there is no arbitrary endpoint list to expand.
//
// Example configuration:
//
//	title: Pavlov Bridge
//	base_url: http://localhost:1234/
//	dashboard_port: 8090
//	redis_url: ${REDIS_URL:-}
//	monitor_interval: 100ms
//	unresponsive_timeout: 5s
//	disconnected_timeout: 60s
//	kinds:
//	  events:
//	    interval: 5s
//	    timeout: 1s
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pavlovtv/telemetry-bridge"
)

// Duration wraps time.Duration for YAML unmarshalling from duration
// strings like "10s", "1m", "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// KindConfig overrides one endpoint kind's interval and timeout.
type KindConfig struct {
	Interval Duration `yaml:"interval"`
	Timeout  Duration `yaml:"timeout"`
}

// Config is the root configuration structure for the telemetry bridge.
type Config struct {
	// Title is the dashboard title.
	Title string `yaml:"title"`

	// BaseURL is the PavlovTV viewer API's base URL. Supports
	// environment variable substitution: ${VAR} or ${VAR:-default}.
	BaseURL string `yaml:"base_url"`

	// DashboardPort is the HTTP port serving the dashboard and API.
	DashboardPort int `yaml:"dashboard_port"`

	// RedisURL, if set, enables the Redis broadcast sink in addition to
	// the in-memory dashboard sink. Supports environment variable
	// substitution.
	RedisURL string `yaml:"redis_url"`

	// RedisChannel is the Pub/Sub channel used by the Redis sink.
	RedisChannel string `yaml:"redis_channel"`

	MonitorInterval     Duration `yaml:"monitor_interval"`
	UnresponsiveTimeout Duration `yaml:"unresponsive_timeout"`
	DisconnectedTimeout Duration `yaml:"disconnected_timeout"`

	// Kinds overrides individual endpoint kinds' interval/timeout,
	// keyed by lowercase kind name (events, status, locations, killfeed,
	// time, pause).
	Kinds map[string]KindConfig `yaml:"kinds"`

	// SteamAppID is the Steam app ID the process probe's Launch uses to
	// start the viewer process. The serve command does not call Launch.
	SteamAppID string `yaml:"steam_app_id"`
}

// kindNames maps the lowercase YAML key to the corresponding
// bridge.EndpointKind.
var kindNames = map[string]bridge.EndpointKind{
	"events":    bridge.KindEvents,
	"status":    bridge.KindStatus,
	"locations": bridge.KindLocations,
	"killfeed":  bridge.KindKillfeed,
	"time":      bridge.KindTime,
	"pause":     bridge.KindPause,
}

// envVarPattern matches ${VAR} and ${VAR:-default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

func expandEnvVars(s string) (string, error) {
	var firstErr error
	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}
		sub := envVarPattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		varName := sub[1]
		hasDefault := len(sub) > 2 && sub[2] != ""
		defaultVal := ""
		if hasDefault && len(sub) > 3 {
			defaultVal = sub[3]
		}
		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})
	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file, expanding environment
// variables before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults, expands
// environment variables in BaseURL/RedisURL, and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if cfg.DashboardPort == 0 {
		cfg.DashboardPort = 8090
	}
	if cfg.Title == "" {
		cfg.Title = "PavlovTV Telemetry Bridge"
	}
	if cfg.RedisChannel == "" {
		cfg.RedisChannel = "pavlovtv-bridge"
	}

	expanded, err := expandEnvVars(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("config: base_url: %w", err)
	}
	cfg.BaseURL = expanded
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:1234/"
	}

	if cfg.RedisURL != "" {
		expanded, err := expandEnvVars(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("config: redis_url: %w", err)
		}
		cfg.RedisURL = expanded
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("config: invalid base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("config: base_url scheme must be http or https, got %q", parsed.Scheme)
	}

	if c.DashboardPort < 0 || c.DashboardPort > 65535 {
		return fmt.Errorf("config: dashboard_port out of range: %d", c.DashboardPort)
	}

	for name := range c.Kinds {
		if _, ok := kindNames[name]; !ok {
			return fmt.Errorf("config: unknown endpoint kind %q", name)
		}
	}

	if c.UnresponsiveTimeout != 0 && c.DisconnectedTimeout != 0 &&
		c.DisconnectedTimeout.Duration() <= c.UnresponsiveTimeout.Duration() {
		return fmt.Errorf("config: disconnected_timeout (%s) must exceed unresponsive_timeout (%s)",
			c.DisconnectedTimeout.Duration(), c.UnresponsiveTimeout.Duration())
	}

	return nil
}

// BuildEngine constructs a bridge.Engine from the config, applying every
// configured override. Callers are responsible for calling Start/Stop and
// for attaching a sink (BuildEngine does not wire the dashboard or Redis
// sinks; see cmd/bridge for that wiring).
func (c *Config) BuildEngine(opts ...bridge.Option) *bridge.Engine {
	all := []bridge.Option{bridge.WithBaseURL(c.BaseURL)}

	if c.MonitorInterval != 0 {
		all = append(all, bridge.WithMonitorInterval(c.MonitorInterval.Duration()))
	}
	if c.UnresponsiveTimeout != 0 {
		all = append(all, bridge.WithUnresponsiveTimeout(c.UnresponsiveTimeout.Duration()))
	}
	if c.DisconnectedTimeout != 0 {
		all = append(all, bridge.WithDisconnectedTimeout(c.DisconnectedTimeout.Duration()))
	}
	for name, kc := range c.Kinds {
		kind := kindNames[name]
		if kc.Interval != 0 {
			all = append(all, bridge.WithKindInterval(kind, kc.Interval.Duration()))
		}
		if kc.Timeout != 0 {
			all = append(all, bridge.WithKindTimeout(kind, kc.Timeout.Duration()))
		}
	}
	all = append(all, opts...)
	return bridge.New(all...)
}
