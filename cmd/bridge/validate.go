package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pavlovtv/telemetry-bridge/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a telemetry bridge configuration file without starting the
server: parses the YAML, expands environment variables, and validates
every field.

Exit codes:
  0 - config is valid
  1 - config is invalid (error details printed to stderr)`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Base URL:             %s\n", cfg.BaseURL)
	fmt.Printf("  Dashboard port:       %d\n", cfg.DashboardPort)
	fmt.Printf("  Unresponsive timeout: %s\n", cfg.UnresponsiveTimeout.Duration())
	fmt.Printf("  Disconnected timeout: %s\n", cfg.DisconnectedTimeout.Duration())
	if cfg.RedisURL != "" {
		fmt.Printf("  Redis channel:        %s\n", cfg.RedisChannel)
	}
	return nil
}
