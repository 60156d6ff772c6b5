package worktime

import (
	"context"

	"worktime/internal/domain"
)

// Rebuild re-derives a historical date range from raw events. Unlike
// RunBatch it requires an explicit range and, in rebuild mode, deletes
// existing sessions and summaries and resets processed flags before
// re-deriving. Force mode without rebuild re-derives in place, keeping
// manual sessions.
func (e *Engine) Rebuild(ctx context.Context, r domain.DateRange, sel domain.Selector, pol domain.ProcessPolicy) (*domain.RebuildReport, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if pol.Mode == domain.ModeNormal {
		pol.Mode = domain.ModeForce
	}

	sel.From = &r.From
	sel.To = &r.To
	pairs, err := e.store.Events().ListPairs(ctx, sel, false)
	if err != nil {
		return nil, err
	}
	// Event-less days in the range are rebuilt too: a stale or
	// corrupted summary must not survive just because its raw events
	// are gone.
	if pairs, err = e.expandPairs(ctx, pairs, sel); err != nil {
		return nil, err
	}

	batch, tally, err := e.runPairs(ctx, pairs, pol)
	report := &domain.RebuildReport{
		Range:             r,
		SessionsDeleted:   int(tally.sessionsDeleted),
		SummariesDeleted:  int(tally.summariesDeleted),
		EventsReset:       int(tally.eventsReset),
		SummariesReplaced: batch.SummariesWritten,
	}
	report.BatchReport = *batch
	if err != nil {
		return report, err
	}

	e.log.Info("rebuild finished",
		"range", r.String(), "mode", pol.Mode.String(), "dry_run", pol.DryRun,
		"pairs", report.PairsProcessed, "sessions_deleted", report.SessionsDeleted,
		"summaries_replaced", report.SummariesReplaced)
	return report, nil
}
