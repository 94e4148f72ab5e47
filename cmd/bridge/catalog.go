package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pavlovtv/telemetry-bridge/internal/catalog"
	"github.com/pavlovtv/telemetry-bridge/internal/httpclient"
)

const defaultCatalogBaseURL = "https://tv.vankrupt.net/"
const catalogRequestTimeout = 10 * time.Second

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the master replay catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List replays in the master catalog",
	RunE:  runCatalogList,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogListCmd.Flags().String("player", "", "filter by player name")
	catalogListCmd.Flags().String("base-url", defaultCatalogBaseURL, "master catalog base url")
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	player, _ := cmd.Flags().GetString("player")
	baseURL, _ := cmd.Flags().GetString("base-url")

	client := httpclient.New(baseURL)
	defer client.Close()

	walker := catalog.New(client, catalogRequestTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	replays, err := walker.List(ctx, player)
	if err != nil {
		return fmt.Errorf("list catalog: %w", err)
	}

	fmt.Printf("%d replays found\n", len(replays))
	for _, r := range replays {
		fmt.Printf("  %-24s %-20s %s\n", r.ID, r.MapName, r.Created.Format(time.RFC3339))
	}
	return nil
}
