package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch today's prices for the tracked universe",
	Long: `Fetches the current price for every tracked skin and writes today's
snapshots. Items the provider cannot serve are skipped and counted.

Example:
  go run ./cmd/skinfolio sync`,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.pipeline.EnsureUniverse(ctx); err != nil {
		return fmt.Errorf("seed universe: %w", err)
	}

	result, err := a.pipeline.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Sync %s: %d snapshots written, %d items failed\n",
		result.Date.Format("2006-01-02"), result.Created, result.Failed)
	for _, name := range result.FailedItems {
		fmt.Printf("  failed: %s\n", name)
	}
	return nil
}
