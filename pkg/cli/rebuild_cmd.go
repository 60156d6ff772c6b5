package cli

import (
	"github.com/spf13/cobra"

	"worktime/internal/domain"
)

func newRebuildCmd() *cobra.Command {
	var (
		batchSize  int
		fromDate   string
		toDate     string
		employeeID string
		force      bool
		dryRun     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Re-derive a historical date range from raw events",
		Long: `Rebuild re-derives sessions and summaries for a date range. With
--force-rebuild it first deletes existing sessions and summaries
(manual corrections included) and resets processed flags; without it,
manual corrections are kept and only derived data is replaced.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := domain.ParseDate(fromDate)
			if err != nil {
				return err
			}
			to, err := domain.ParseDate(toDate)
			if err != nil {
				return err
			}
			r := domain.DateRange{From: from, To: to}

			var sel domain.Selector
			if employeeID != "" {
				sel.EmployeeID = &employeeID
			}
			pol := domain.ProcessPolicy{Mode: domain.ModeForce, DryRun: dryRun, Verbose: verbose}
			if force {
				pol.Mode = domain.ModeRebuild
			}

			a, err := buildApp(batchSize)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			report, err := a.Engine.Rebuild(ctx, r, sel, pol)
			if report != nil {
				printRebuildReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "pairs per batch (default from config)")
	cmd.Flags().StringVar(&fromDate, "from-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to-date", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "restrict to one employee")
	cmd.Flags().BoolVar(&force, "force-rebuild", false, "delete existing sessions and summaries first")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would happen without writing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every processed pair")
	_ = cmd.MarkFlagRequired("from-date")
	_ = cmd.MarkFlagRequired("to-date")
	return cmd
}
