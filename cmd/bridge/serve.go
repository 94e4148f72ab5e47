package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavlovtv/telemetry-bridge"
	"github.com/pavlovtv/telemetry-bridge/config"
	"github.com/pavlovtv/telemetry-bridge/dashboard"
	"github.com/pavlovtv/telemetry-bridge/internal/feed"
	"github.com/pavlovtv/telemetry-bridge/internal/processprobe"
	"github.com/pavlovtv/telemetry-bridge/internal/redisfeed"
	"github.com/pavlovtv/telemetry-bridge/internal/wsfeed"
)

const shutdownTimeout = 10 * time.Second

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the polling engine and dashboard server",
	Long: `Start the telemetry bridge.

The server will:
  - Load configuration from the specified YAML file
  - Start the polling engine against the configured base URL
  - Serve the dashboard UI, JSON snapshot, SSE, and WebSocket feeds
  - Optionally forward every update to Redis Pub/Sub

Runs until interrupted (Ctrl+C) or sent SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.Info("config loaded", "base_url", cfg.BaseURL, "dashboard_port", cfg.DashboardPort)

	memSink := feed.NewMemorySink()
	dashboardServer := feed.NewServer(memSink, cfg.DashboardPort, dashboard.Assets, cfg.Title, logger)

	sinks := []bridge.Sink{memSink}

	var redisSink *redisfeed.Sink
	if cfg.RedisURL != "" {
		redisSink, err = redisfeed.New(cfg.RedisURL, cfg.RedisChannel, logger)
		if err != nil {
			return fmt.Errorf("redis sink: %w", err)
		}
		defer func() { _ = redisSink.Close() }()
		sinks = append(sinks, redisSink)
	}

	probe := processprobe.New(cfg.SteamAppID)

	e := cfg.BuildEngine()
	e.SetProcessProbe(probe.IsRunning)
	e.SetSink(fanoutSink(sinks))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := dashboardServer.Start(ctx); err != nil {
		return fmt.Errorf("start dashboard: %w", err)
	}

	wsHandler := wsfeed.NewHandler(memSink, logger)
	if err := mountWebSocket(ctx, cfg.DashboardPort+1, wsHandler, logger); err != nil {
		logger.Warn("websocket feed disabled", "error", err)
	}

	e.Start()
	logger.Info("engine started")

	<-ctx.Done()
	logger.Info("shutdown signal received")

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("shutdown complete")
	case <-time.After(shutdownTimeout):
		logger.Warn("shutdown timed out", "timeout", shutdownTimeout.String())
	}

	return nil
}
