package cli

import (
	"fmt"
	"io"
	"time"

	"worktime/internal/domain"
)

const timeRound = time.Millisecond

func printBatchReport(w io.Writer, r *domain.BatchReport) {
	if r.DryRun {
		fmt.Fprintln(w, "dry run: no changes were written")
	}
	fmt.Fprintf(w, "pairs:     %d total, %d processed, %d skipped, %d failed\n",
		r.PairsTotal, r.PairsProcessed, r.PairsSkipped, r.PairsFailed)
	fmt.Fprintf(w, "events:    %d scanned, %d processed\n", r.EventsScanned, r.EventsProcessed)
	fmt.Fprintf(w, "sessions:  %d created (%d closed, %d open)\n",
		r.SessionsCreated, r.SessionsClosed, r.OpenSessions)
	fmt.Fprintf(w, "summaries: %d written\n", r.SummariesWritten)
	if n := r.Anomalies.Total(); n > 0 {
		fmt.Fprintf(w, "anomalies: %d (%d duplicate entries, %d orphan exits)\n",
			n, r.Anomalies.DuplicateEntries, r.Anomalies.OrphanExits)
	}
	for _, p := range r.FailedPairs {
		fmt.Fprintf(w, "failed:    %s %s\n", p.EmployeeID, p.Date)
	}
	if r.Interrupted {
		fmt.Fprintln(w, "run was interrupted; completed batches are committed")
	}
	fmt.Fprintf(w, "elapsed:   %s\n", r.Elapsed.Round(timeRound))
}

func printRebuildReport(w io.Writer, r *domain.RebuildReport) {
	fmt.Fprintf(w, "rebuild %s\n", r.Range)
	fmt.Fprintf(w, "deleted:   %d sessions, %d summaries; %d events reset\n",
		r.SessionsDeleted, r.SummariesDeleted, r.EventsReset)
	printBatchReport(w, &r.BatchReport)
}

func printCleanupReport(w io.Writer, r *domain.CleanupReport) {
	verb := "deleted"
	if r.DryRun {
		verb = "would delete"
	}
	fmt.Fprintf(w, "cutoff: %s\n", r.Cutoff)
	fmt.Fprintf(w, "%s %d sessions, %d summaries, %d events, %d audit entries (%d rows)\n",
		verb, r.Sessions, r.Summaries, r.Events, r.AuditEntries, r.TotalRows())
}

func printStatsReport(w io.Writer, r *domain.StatsReport) {
	fmt.Fprintf(w, "period %s..%s\n", r.PeriodFrom, r.PeriodTo)
	fmt.Fprintf(w, "employees: %d active, %d inactive\n", r.ActiveEmployees, r.InactiveEmployees)
	fmt.Fprintf(w, "devices:   %d active of %d\n", r.ActiveDevices, r.TotalDevices)
	fmt.Fprintf(w, "events:    %d total, %d in period, %d unprocessed\n",
		r.TotalEvents, r.EventsInPeriod, r.UnprocessedEvents)
	for _, typ := range []domain.EventType{domain.EventEntry, domain.EventExit, domain.EventDenied, domain.EventAlarm} {
		if n := r.EventsByType[typ]; n > 0 {
			fmt.Fprintf(w, "  %-7s %d\n", typ, n)
		}
	}
	fmt.Fprintf(w, "sessions:  %d total, %d in period, %d open\n",
		r.TotalSessions, r.SessionsInPeriod, r.OpenSessions)
	fmt.Fprintf(w, "summaries: %d total, %d in period\n", r.TotalSummaries, r.SummariesInPeriod)
	for _, status := range []domain.SummaryStatus{domain.StatusPresent, domain.StatusAbsent, domain.StatusExcused, domain.StatusPartial, domain.StatusProblem} {
		if n := r.SummariesByStatus[status]; n > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", status, n)
		}
	}
	fmt.Fprintf(w, "office time in period: %s (overtime %s, underwork %s)\n",
		hours(r.TotalOfficeSeconds), hours(r.TotalOvertime), hours(r.TotalUnderwork))
}

func hours(seconds int64) string {
	return fmt.Sprintf("%.1fh", float64(seconds)/3600)
}
