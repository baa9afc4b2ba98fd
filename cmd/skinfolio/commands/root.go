package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "skinfolio",
	Short: "Skin market tracker and strategy backend",
	Long: `Skinfolio tracks Steam Community Market prices for a fixed basket of
CS2 skins, ranks buy candidates from momentum/volatility/liquidity/rarity
signals, and replays the ranking into a simulated portfolio.

Usage:
  go run ./cmd/skinfolio [command]

Examples:
  go run ./cmd/skinfolio api
  go run ./cmd/skinfolio sync
  go run ./cmd/skinfolio backfill --days 30
  go run ./cmd/skinfolio recommend --limit 5
  go run ./cmd/skinfolio simulate --capital 8000
  go run ./cmd/skinfolio audit`,
}

// Execute runs the CLI. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
