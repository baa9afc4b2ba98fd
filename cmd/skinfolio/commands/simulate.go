package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay the strategy over stored history",
	Long: `Replays an equal-weight top-N portfolio across the stored snapshot
history and prints the resulting equity curve summary. The replay only uses
data available on each simulated day.

Example:
  go run ./cmd/skinfolio simulate
  go run ./cmd/skinfolio simulate --capital 8000 --top-n 5`,
	RunE: runSimulate,
}

var (
	simulateCapital float64
	simulateTopN    int
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().Float64Var(&simulateCapital, "capital", 0, "initial capital in USD (default from strategy config)")
	simulateCmd.Flags().IntVar(&simulateTopN, "top-n", 0, "portfolio size (default from strategy config)")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.sim.Run(ctx, simulateCapital, simulateTopN)
	if err != nil {
		return err
	}

	if len(result.Points) == 0 {
		fmt.Println("Not enough history to simulate. Run a backfill first.")
		return nil
	}

	first := result.Points[0].Date.Format("2006-01-02")
	last := result.Points[len(result.Points)-1].Date.Format("2006-01-02")

	fmt.Printf("Simulation %s .. %s (%d days)\n", first, last, len(result.Points))
	fmt.Printf("  Initial capital: %10.2f\n", result.InitialCapital)
	fmt.Printf("  Ending capital:  %10.2f\n", result.EndingCapital)
	fmt.Printf("  Total return:    %+9.2f%%\n", result.TotalReturnPct)
	fmt.Printf("  Rebalances:      %d\n", result.DaysTraded)
	fmt.Printf("  Win/loss days:   %d/%d\n", result.WinDays, result.LossDays)
	fmt.Printf("  Max drawdown:    %9.2f%%\n", result.MaxDrawdownPct)
	return nil
}
