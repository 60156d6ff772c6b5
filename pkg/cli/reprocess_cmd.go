package cli

import (
	"github.com/spf13/cobra"

	"worktime/internal/domain"
)

func newReprocessCmd() *cobra.Command {
	var (
		employeeID string
		date       string
		fromDate   string
		toDate     string
		reason     string
		changedBy  string
	)

	cmd := &cobra.Command{
		Use:   "reprocess",
		Short: "Synchronously re-derive one employee's days",
		RunE: func(cmd *cobra.Command, args []string) error {
			var r domain.DateRange
			switch {
			case date != "":
				d, err := domain.ParseDate(date)
				if err != nil {
					return err
				}
				r = domain.DateRange{From: d, To: d}
			case fromDate != "" && toDate != "":
				from, err := domain.ParseDate(fromDate)
				if err != nil {
					return err
				}
				to, err := domain.ParseDate(toDate)
				if err != nil {
					return err
				}
				r = domain.DateRange{From: from, To: to}
			default:
				return domain.ErrValidation("either --date or --from-date and --to-date are required")
			}

			a, err := buildApp(0)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			report, err := a.Engine.Reprocess(ctx, employeeID, r, reason, changedBy)
			if report != nil {
				printBatchReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&employeeID, "employee-id", "", "employee to reprocess")
	cmd.Flags().StringVar(&date, "date", "", "single date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&fromDate, "from-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to-date", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded in the audit log")
	cmd.Flags().StringVar(&changedBy, "changed-by", "", "operator recorded in the audit log")
	_ = cmd.MarkFlagRequired("employee-id")
	return cmd
}
