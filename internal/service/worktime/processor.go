package worktime

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"worktime/internal/domain"
)

// DefaultBatchSize bounds how many (employee, date) pairs are handled
// between interruption checks and audit checkpoints.
const DefaultBatchSize = 1000

// Engine orchestrates the session builder and summary aggregator over
// (employee, date) pairs. One Engine is shared by the HTTP API, the
// CLI, and the scheduler.
type Engine struct {
	store     domain.UnitOfWork
	dir       domain.Directory
	log       *slog.Logger
	batchSize int
	now       func() time.Time
}

func NewEngine(store domain.UnitOfWork, dir domain.Directory, log *slog.Logger, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Engine{
		store:     store,
		dir:       dir,
		log:       log.With("component", "worktime-engine"),
		batchSize: batchSize,
		now:       time.Now,
	}
}

// RunBatch derives sessions and summaries for every pair the selector
// matches. The unfiltered normal-mode run only picks up pairs with
// unprocessed events; filtered runs enumerate every matched pair and
// let the per-pair skip check decide, so a pair whose summary went
// missing is healed even when its events are all processed. A run with
// an explicit date range also visits event-less (employee, day)
// combinations, producing absent and excused summaries.
//
// The returned report is valid even when err is non-nil: a
// connectivity-level fault aborts the run mid-way and the report shows
// which pairs completed.
func (e *Engine) RunBatch(ctx context.Context, sel domain.Selector, pol domain.ProcessPolicy) (*domain.BatchReport, error) {
	if err := validateSelector(sel); err != nil {
		return nil, err
	}

	unprocessedOnly := pol.Mode == domain.ModeNormal && sel.IsZero()
	pairs, err := e.store.Events().ListPairs(ctx, sel, unprocessedOnly)
	if err != nil {
		return nil, err
	}
	if pairs, err = e.expandPairs(ctx, pairs, sel); err != nil {
		return nil, err
	}

	report, _, err := e.runPairs(ctx, pairs, pol)
	return report, err
}

// Reprocess synchronously re-derives a single employee's pairs over a
// date range and records the request in the audit log. It is the
// shared backend of the CLI and HTTP reprocess operations.
func (e *Engine) Reprocess(ctx context.Context, employeeID string, r domain.DateRange, reason, changedBy string) (*domain.BatchReport, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.dir.ExpectedDailySeconds(ctx, employeeID, r.From); err != nil {
		return nil, err
	}

	sel := domain.Selector{EmployeeID: &employeeID, From: &r.From, To: &r.To}
	pol := domain.ProcessPolicy{Mode: domain.ModeForce}

	pairs, err := e.store.Events().ListPairs(ctx, sel, false)
	if err != nil {
		return nil, err
	}
	// A pair with zero events still deserves a fresh summary: the day
	// may have become a leave day or had its sessions corrected.
	if pairs, err = e.expandPairs(ctx, pairs, sel); err != nil {
		return nil, err
	}

	report, _, err := e.runPairs(ctx, pairs, pol)
	if err != nil {
		return report, err
	}

	entry := &domain.AuditEntry{
		ID:          domain.NewID(),
		EmployeeID:  &employeeID,
		Date:        r.From,
		Action:      domain.AuditReprocessDay,
		Description: fmt.Sprintf("reprocessed %s: %d pairs, %d sessions, %d summaries", r, report.PairsProcessed, report.SessionsCreated, report.SummariesWritten),
		Reason:      reason,
		ChangedAt:   e.now(),
	}
	if changedBy != "" {
		entry.ChangedBy = &changedBy
	}
	if err := e.store.Audit().Insert(ctx, entry); err != nil {
		return report, err
	}
	return report, nil
}

// rebuildTally collects the destructive counters a rebuild adds on top
// of the plain batch counters.
type rebuildTally struct {
	sessionsDeleted  int64
	summariesDeleted int64
	eventsReset      int64
}

func (e *Engine) runPairs(ctx context.Context, pairs []domain.Pair, pol domain.ProcessPolicy) (*domain.BatchReport, rebuildTally, error) {
	started := e.now()
	report := &domain.BatchReport{PairsTotal: len(pairs), DryRun: pol.DryRun}
	var tally rebuildTally

	for start := 0; start < len(pairs); start += e.batchSize {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		end := min(start+e.batchSize, len(pairs))
		batch := pairs[start:end]
		batchStart := *report

		for _, p := range batch {
			res, err := e.processPair(ctx, p, pol)
			if err != nil {
				if isConnectivityFault(ctx, err) {
					report.PairsFailed++
					report.FailedPairs = append(report.FailedPairs, p)
					report.Interrupted = true
					report.Elapsed = e.now().Sub(started)
					return report, tally, fmt.Errorf("run aborted at pair (%s, %s): %w", p.EmployeeID, p.Date, err)
				}
				e.log.Error("pair failed", "employee_id", p.EmployeeID, "date", p.Date, "error", err)
				report.PairsFailed++
				report.FailedPairs = append(report.FailedPairs, p)
				continue
			}
			if res.skipped {
				report.PairsSkipped++
				continue
			}
			report.PairsProcessed++
			report.EventsScanned += res.eventsScanned
			report.EventsProcessed += res.eventsProcessed
			report.SessionsCreated += res.sessionsCreated
			report.SessionsClosed += res.sessionsClosed
			report.OpenSessions += res.openSessions
			report.SummariesWritten += res.summariesWritten
			report.Anomalies.Add(res.anomalies)
			tally.sessionsDeleted += res.sessionsDeleted
			tally.summariesDeleted += res.summariesDeleted
			tally.eventsReset += res.eventsReset

			if pol.Verbose {
				e.log.Info("pair processed",
					"employee_id", p.EmployeeID, "date", p.Date,
					"sessions", res.sessionsCreated, "anomalies", res.anomalies.Total(),
					"dry_run", pol.DryRun)
			}
		}

		if !pol.DryRun {
			if err := e.auditBatch(ctx, *report, batchStart, pol); err != nil {
				e.log.Error("batch audit entry failed", "error", err)
			}
		}
	}

	report.Elapsed = e.now().Sub(started)
	return report, tally, nil
}

// pairResult is the outcome of one (employee, date) unit of work.
type pairResult struct {
	skipped          bool
	eventsScanned    int
	eventsProcessed  int
	sessionsCreated  int
	sessionsClosed   int
	openSessions     int
	summariesWritten int
	anomalies        domain.AnomalyCounts
	sessionsDeleted  int64
	summariesDeleted int64
	eventsReset      int64
}

// processPair recomputes one (employee, date) pair wholesale: derived
// sessions are dropped and rebuilt from the full day's events, manual
// corrections survive (except under rebuild mode), and the summary is
// replaced. Everything commits in one transaction.
func (e *Engine) processPair(ctx context.Context, p domain.Pair, pol domain.ProcessPolicy) (pairResult, error) {
	var res pairResult

	if pol.Mode == domain.ModeNormal {
		exists, err := e.store.Summaries().ExistsForPair(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return res, err
		}
		pending, err := e.hasUnprocessedEvents(ctx, p)
		if err != nil {
			return res, err
		}
		if exists && !pending {
			res.skipped = true
			return res, nil
		}
	}

	inputs, err := e.dayInputs(ctx, p)
	if err != nil {
		return res, err
	}

	if pol.DryRun {
		return e.previewPair(ctx, p, inputs)
	}

	err = e.store.InTx(ctx, func(tx domain.RepoSet) error {
		res = pairResult{}

		if pol.Mode == domain.ModeRebuild {
			n, err := tx.Sessions().DeleteForPair(ctx, p.EmployeeID, p.Date)
			if err != nil {
				return err
			}
			res.sessionsDeleted = n
			if n, err = tx.Summaries().DeleteForPair(ctx, p.EmployeeID, p.Date); err != nil {
				return err
			}
			res.summariesDeleted = n
			if n, err = tx.Events().ResetProcessed(ctx, p.EmployeeID, p.Date); err != nil {
				return err
			}
			res.eventsReset = n
		} else {
			if _, err := tx.Sessions().DeleteDerivedForPair(ctx, p.EmployeeID, p.Date); err != nil {
				return err
			}
		}

		events, err := tx.Events().ListForPair(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return err
		}
		res.eventsScanned = len(events)

		built := BuildSessions(p.EmployeeID, p.Date, events, e.now())
		res.anomalies = built.Anomalies
		for i := range built.Sessions {
			if err := tx.Sessions().Insert(ctx, &built.Sessions[i]); err != nil {
				return err
			}
			res.sessionsCreated++
			if built.Sessions[i].IsOpen() {
				res.openSessions++
			} else {
				res.sessionsClosed++
			}
		}

		// Aggregate over the full surviving set, manual sessions
		// included.
		all, err := tx.Sessions().ListForPair(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return err
		}
		summary := BuildSummary(p.EmployeeID, p.Date, all, inputs, e.now())
		if err := tx.Summaries().Replace(ctx, summary); err != nil {
			return err
		}
		res.summariesWritten++

		if err := tx.Events().MarkProcessed(ctx, built.EventIDs); err != nil {
			return err
		}
		res.eventsProcessed = len(built.EventIDs)
		return nil
	})
	return res, err
}

// previewPair computes what a real pass would do without opening a
// write transaction.
func (e *Engine) previewPair(ctx context.Context, p domain.Pair, inputs DayInputs) (pairResult, error) {
	var res pairResult

	events, err := e.store.Events().ListForPair(ctx, p.EmployeeID, p.Date)
	if err != nil {
		return res, err
	}
	res.eventsScanned = len(events)

	built := BuildSessions(p.EmployeeID, p.Date, events, e.now())
	res.anomalies = built.Anomalies
	res.eventsProcessed = len(built.EventIDs)
	for i := range built.Sessions {
		res.sessionsCreated++
		if built.Sessions[i].IsOpen() {
			res.openSessions++
		} else {
			res.sessionsClosed++
		}
	}
	res.summariesWritten = 1
	return res, nil
}

func (e *Engine) dayInputs(ctx context.Context, p domain.Pair) (DayInputs, error) {
	var in DayInputs
	var err error
	if in.ExpectedSeconds, err = e.dir.ExpectedDailySeconds(ctx, p.EmployeeID, p.Date); err != nil {
		return in, err
	}
	if in.IsWorkDay, err = e.dir.IsWorkDay(ctx, p.EmployeeID, p.Date); err != nil {
		return in, err
	}
	if in.HasApprovedLeave, err = e.dir.HasApprovedLeave(ctx, p.EmployeeID, p.Date); err != nil {
		return in, err
	}
	return in, nil
}

func (e *Engine) hasUnprocessedEvents(ctx context.Context, p domain.Pair) (bool, error) {
	sel := domain.Selector{EmployeeID: &p.EmployeeID, From: &p.Date, To: &p.Date}
	pairs, err := e.store.Events().ListPairs(ctx, sel, true)
	if err != nil {
		return false, err
	}
	return len(pairs) > 0, nil
}

func (e *Engine) auditBatch(ctx context.Context, current, before domain.BatchReport, pol domain.ProcessPolicy) error {
	return e.store.Audit().Insert(ctx, &domain.AuditEntry{
		ID:     domain.NewID(),
		Date:   domain.DateOf(e.now()),
		Action: domain.AuditBulkImport,
		Description: fmt.Sprintf("batch (%s): %d pairs, %d sessions created, %d summaries written, %d anomalies",
			pol.Mode,
			current.PairsProcessed-before.PairsProcessed,
			current.SessionsCreated-before.SessionsCreated,
			current.SummariesWritten-before.SummariesWritten,
			current.Anomalies.Total()-before.Anomalies.Total()),
		ChangedAt: e.now(),
	})
}

// expandPairs adds a synthetic pair for every (employee, day)
// combination in the selector's date range the event listing did not
// cover, so days without events still get summaries and a rebuild
// clears stale rows on them. Without a full range, or with a device
// filter, runs stay event-driven.
func (e *Engine) expandPairs(ctx context.Context, pairs []domain.Pair, sel domain.Selector) ([]domain.Pair, error) {
	if sel.From == nil || sel.To == nil || sel.DeviceID != nil {
		return pairs, nil
	}

	var ids []string
	if sel.EmployeeID != nil {
		ids = []string{*sel.EmployeeID}
	} else {
		var err error
		if ids, err = e.dir.ActiveEmployeeIDs(ctx); err != nil {
			return nil, err
		}
	}

	seen := make(map[domain.Pair]bool, len(pairs))
	for _, p := range pairs {
		seen[p] = true
	}
	days := domain.DateRange{From: *sel.From, To: *sel.To}.Days()
	for _, id := range ids {
		for _, d := range days {
			p := domain.Pair{EmployeeID: id, Date: d}
			if !seen[p] {
				pairs = append(pairs, p)
			}
		}
	}
	return pairs, nil
}

func validateSelector(sel domain.Selector) error {
	if sel.From != nil && sel.To != nil && sel.From.After(*sel.To) {
		return domain.ErrValidation("from date %s is after to date %s", *sel.From, *sel.To)
	}
	return nil
}

// isConnectivityFault separates storage faults that make continuing
// pointless from per-pair failures the run can step over.
func isConnectivityFault(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "database is closed") || strings.Contains(msg, "connection refused")
}
