package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Wipe and re-ingest the whole dataset",
	Long: `Deletes every stored snapshot, backfills the history window, then syncs
today's prices. Use after a provider change or when stored data is suspect.

Example:
  go run ./cmd/skinfolio rebuild --days 30`,
	RunE: runRebuild,
}

var rebuildDays int

func init() {
	rootCmd.AddCommand(rebuildCmd)

	rebuildCmd.Flags().IntVar(&rebuildDays, "days", 30, "history window in days")
}

func runRebuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.pipeline.EnsureUniverse(ctx); err != nil {
		return fmt.Errorf("seed universe: %w", err)
	}

	result, err := a.pipeline.Rebuild(ctx, rebuildDays)
	if err != nil {
		return err
	}

	fmt.Printf("Rebuild: %d deleted, %d historical written, %d latest written\n",
		result.Deleted, result.HistoricalCreated, result.LatestCreated)
	return nil
}
