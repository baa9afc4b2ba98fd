package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank the current buy candidates",
	Long: `Scores every tracked skin on momentum, volatility fit, liquidity, and
rarity, and prints the top candidates best first.

Example:
  go run ./cmd/skinfolio recommend
  go run ./cmd/skinfolio recommend --limit 10`,
	RunE: runRecommend,
}

var recommendLimit int

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 0, "number of candidates (default from strategy config)")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.scoring.Recommendations(ctx, recommendLimit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No rankable items yet. Run a backfill first.")
		return nil
	}

	fmt.Printf("%-4s %-45s %-11s %10s %8s %7s\n",
		"#", "Item", "Rarity", "Price", "Mom%", "Score")
	fmt.Println(strings.Repeat("-", 90))
	for _, rec := range records {
		fmt.Printf("%-4d %-45s %-11s %10.2f %+8.1f %7.3f\n",
			rec.Rank, rec.Name, rec.Rarity, rec.LatestPriceUSD, rec.MomentumPct, rec.Composite)
		fmt.Printf("     %s\n", rec.Rationale)
	}
	return nil
}
