package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Fill historical snapshots",
	Long: `Fetches daily price history for every tracked skin and fills the days
the store is missing. Verified rows already present are left untouched, so
re-running over the same window writes nothing.

Example:
  go run ./cmd/skinfolio backfill --days 30`,
	RunE: runBackfill,
}

var backfillDays int

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().IntVar(&backfillDays, "days", 30, "history window in days")
}

func runBackfill(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.pipeline.EnsureUniverse(ctx); err != nil {
		return fmt.Errorf("seed universe: %w", err)
	}

	result, err := a.pipeline.Backfill(ctx, backfillDays)
	if err != nil {
		return err
	}

	fmt.Printf("Backfill over %d days: %d snapshots written, %d items failed\n",
		result.Days, result.Created, result.Failed)
	for _, name := range result.FailedItems {
		fmt.Printf("  failed: %s\n", name)
	}
	return nil
}
