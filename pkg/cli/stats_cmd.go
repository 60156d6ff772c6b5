package cli

import (
	"time"

	"github.com/spf13/cobra"

	"worktime/internal/domain"
)

func newStatsCmd() *cobra.Command {
	var (
		fromDate string
		toDate   string
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show system and period statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(0)
			if err != nil {
				return err
			}
			defer a.Close()

			loc, err := a.Config.Location()
			if err != nil {
				loc = time.Local
			}
			to := domain.Today(loc)
			from := to.AddDays(-30)
			if fromDate != "" {
				if from, err = domain.ParseDate(fromDate); err != nil {
					return err
				}
			}
			if toDate != "" {
				if to, err = domain.ParseDate(toDate); err != nil {
					return err
				}
			}
			if from.After(to) {
				return domain.ErrValidation("from date %s is after to date %s", from, to)
			}

			ctx, cancel := signalContext()
			defer cancel()

			report, err := a.Stats.Collect(ctx, from, to)
			if err != nil {
				return err
			}
			printStatsReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDate, "from-date", "", "start date (default 30 days ago)")
	cmd.Flags().StringVar(&toDate, "to-date", "", "end date (default today)")
	return cmd
}
