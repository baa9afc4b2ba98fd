package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect the stored dataset",
	Long: `Prints aggregate counts over the snapshot store: totals, covered date
span, verification state, and the per-source breakdown. With --snapshots the
newest raw rows are listed as well.

Example:
  go run ./cmd/skinfolio audit
  go run ./cmd/skinfolio audit --snapshots 20`,
	RunE: runAudit,
}

var auditSnapshotLimit int

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().IntVar(&auditSnapshotLimit, "snapshots", 0, "also list the N newest raw rows")
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	summary, err := a.snaps.AuditSummary(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Snapshots:     %d (%d verified, %d unverified)\n",
		summary.TotalSnapshots, summary.Verified, summary.Unverified)
	fmt.Printf("Distinct days: %d\n", summary.DistinctDays)
	if summary.FirstDate != nil && summary.LastDate != nil {
		fmt.Printf("Date span:     %s .. %s\n",
			summary.FirstDate.Format("2006-01-02"), summary.LastDate.Format("2006-01-02"))
	}
	for _, sc := range summary.SourceBreakdown {
		fmt.Printf("  %-10s %d\n", sc.Source, sc.Count)
	}

	if auditSnapshotLimit > 0 {
		recent, err := a.snaps.Recent(ctx, auditSnapshotLimit)
		if err != nil {
			return err
		}
		fmt.Println()
		for _, s := range recent {
			fmt.Printf("%s item=%d price=%.2f vol=%d source=%s verified=%t\n",
				s.Date.Format("2006-01-02"), s.ItemID, s.PriceUSD, s.Volume24h, s.Source, s.Verified)
		}
	}
	return nil
}
