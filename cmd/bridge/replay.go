package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavlovtv/telemetry-bridge/internal/command"
	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

const (
	defaultViewerBaseURL = "http://localhost:1234/"
	commandTimeout       = 5 * time.Second
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Issue command-style calls against the viewer API",
}

var replayLoadCmd = &cobra.Command{
	Use:   "load <id>",
	Short: "Load a replay by id",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplayLoad,
}

var replayTimeCmd = &cobra.Command{
	Use:   "time <seconds>",
	Short: "Seek the loaded replay's playback time",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplayTime,
}

var replayPauseCmd = &cobra.Command{
	Use:   "pause <true|false>",
	Short: "Toggle the loaded replay's paused state",
	Args:  cobra.ExactArgs(1),
	RunE:  runReplayPause,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.AddCommand(replayLoadCmd, replayTimeCmd, replayPauseCmd)
	for _, c := range []*cobra.Command{replayLoadCmd, replayTimeCmd, replayPauseCmd} {
		c.Flags().String("base-url", defaultViewerBaseURL, "viewer api base url")
	}
}

func newCaller(cmd *cobra.Command) *command.Caller {
	baseURL, _ := cmd.Flags().GetString("base-url")
	return command.New(httpclient.New(baseURL), commandTimeout)
}

func runReplayLoad(cmd *cobra.Command, args []string) error {
	caller := newCaller(cmd)
	res := caller.LoadReplay(context.Background(), args[0])
	if !res.OK {
		return fmt.Errorf("load replay: %w", res.Error)
	}
	if res.Data != nil && !res.Data.Successful {
		return fmt.Errorf("load replay failed: %s %s", res.Data.ErrorCode, res.Data.ErrorMessage)
	}
	fmt.Println("replay loaded")
	return nil
}

func runReplayTime(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("invalid seconds value %q: %w", args[0], err)
	}
	caller := newCaller(cmd)
	res := caller.SetTime(context.Background(), seconds)
	if !res.OK {
		return fmt.Errorf("set time: %w", res.Error)
	}
	fmt.Println("time set")
	return nil
}

func runReplayPause(cmd *cobra.Command, args []string) error {
	paused, err := strconv.ParseBool(args[0])
	if err != nil {
		return fmt.Errorf("invalid bool value %q: %w", args[0], err)
	}
	caller := newCaller(cmd)
	res := caller.SetPause(context.Background(), paused)
	if !res.OK {
		return fmt.Errorf("set pause: %w", res.Error)
	}
	fmt.Println("pause set")
	return nil
}
