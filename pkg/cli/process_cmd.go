package cli

import (
	"github.com/spf13/cobra"

	"worktime/internal/domain"
)

func newProcessCmd() *cobra.Command {
	var (
		batchSize  int
		fromDate   string
		toDate     string
		employeeID string
		deviceID   string
		force      bool
		dryRun     bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Derive sessions and summaries from unprocessed events",
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := selectorFromFlags(employeeID, deviceID, fromDate, toDate)
			if err != nil {
				return err
			}
			pol := domain.ProcessPolicy{DryRun: dryRun, Verbose: verbose}
			if force {
				pol.Mode = domain.ModeForce
			}

			a, err := buildApp(batchSize)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			report, err := a.Engine.RunBatch(ctx, sel, pol)
			if report != nil {
				printBatchReport(cmd.OutOrStdout(), report)
			}
			return err
		},
	}

	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "pairs per batch (default from config)")
	cmd.Flags().StringVar(&fromDate, "from-date", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to-date", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&employeeID, "employee-id", "", "restrict to one employee")
	cmd.Flags().StringVar(&deviceID, "device-id", "", "restrict to events from one device")
	cmd.Flags().BoolVar(&force, "force-process", false, "re-derive pairs even when already processed")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would happen without writing")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every processed pair")
	return cmd
}

func selectorFromFlags(employeeID, deviceID, fromDate, toDate string) (domain.Selector, error) {
	var sel domain.Selector
	if employeeID != "" {
		sel.EmployeeID = &employeeID
	}
	if deviceID != "" {
		sel.DeviceID = &deviceID
	}
	if fromDate != "" {
		d, err := domain.ParseDate(fromDate)
		if err != nil {
			return sel, err
		}
		sel.From = &d
	}
	if toDate != "" {
		d, err := domain.ParseDate(toDate)
		if err != nil {
			return sel, err
		}
		sel.To = &d
	}
	if sel.From != nil && sel.To != nil && sel.From.After(*sel.To) {
		return sel, domain.ErrValidation("from date %s is after to date %s", *sel.From, *sel.To)
	}
	return sel, nil
}
