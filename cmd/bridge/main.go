// Command bridge is the standalone binary form of the telemetry bridge,
// an alternative to embedding the bridge package directly in a host
// program.
//
// Usage:
//
//	bridge serve -c config.yaml            # start the engine + dashboard
//	bridge validate -c config.yaml          # validate configuration
//	bridge catalog list [--player NAME]     # list master-catalog replays
//	bridge replay load <id>                 # load a replay
//	bridge replay time <seconds>            # seek playback time
//	bridge replay pause <true|false>        # toggle pause
//	bridge version                          # show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bridge",
	Short: "A PavlovTV telemetry polling bridge and dashboard",
	Long: `bridge polls the PavlovTV replay viewer's local HTTP API, derives a
connection-health state, and republishes everything to a dashboard, an
optional WebSocket feed, and an optional Redis channel.

Quick start:
  1. Create a config file (bridge.yaml)
  2. Run: bridge serve -c bridge.yaml
  3. Open http://localhost:8090 in your browser`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bridge %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
