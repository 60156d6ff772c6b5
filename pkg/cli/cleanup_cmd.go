package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"worktime/internal/domain"
)

func newCleanupCmd() *cobra.Command {
	var (
		olderThanDays int
		keepAudit     bool
		keepEvents    bool
		dryRun        bool
		yes           bool
	)

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete sessions, summaries, events, and audit entries older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(0)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			confirm := yes
			if !confirm && !dryRun {
				confirm, err = promptConfirm(cmd, olderThanDays)
				if err != nil {
					return err
				}
			}

			flags := domain.RetentionFlags{KeepAuditLogs: keepAudit, KeepSKUDEvents: keepEvents}
			report, err := a.Cleaner.Cleanup(ctx, olderThanDays, flags, confirm, dryRun)
			if err != nil {
				return err
			}
			printCleanupReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "delete data older than this many days")
	cmd.Flags().BoolVar(&keepAudit, "keep-audit-logs", false, "keep audit log entries")
	cmd.Flags().BoolVar(&keepEvents, "keep-skud-events", false, "keep raw access events")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report row counts without deleting")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the interactive confirmation")
	_ = cmd.MarkFlagRequired("older-than-days")
	return cmd
}

// promptConfirm asks for interactive confirmation. Outside a terminal
// (cron, CI) there is nobody to ask, so --yes is required instead.
func promptConfirm(cmd *cobra.Command, olderThanDays int) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, domain.ErrGuard("refusing to delete without confirmation: pass --yes or --dry-run")
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"This permanently deletes work-time data older than %d days. Type \"yes\" to continue: ",
		olderThanDays)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(line) == "yes", nil
}
