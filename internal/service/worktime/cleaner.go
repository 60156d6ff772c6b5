package worktime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"worktime/internal/domain"
)

// Cleaner deletes engine-produced data older than a retention cutoff.
type Cleaner struct {
	store domain.UnitOfWork
	log   *slog.Logger
	now   func() time.Time
	loc   *time.Location
}

func NewCleaner(store domain.UnitOfWork, log *slog.Logger, loc *time.Location) *Cleaner {
	if loc == nil {
		loc = time.Local
	}
	return &Cleaner{
		store: store,
		log:   log.With("component", "retention-cleaner"),
		now:   time.Now,
		loc:   loc,
	}
}

// Cleanup deletes sessions and summaries dated before the cutoff
// unconditionally, and events and audit entries unless the matching
// keep flag is set. Refuses to delete anything without confirm, unless
// running dry. The trailing audit entry is written after all deletions
// and carries the current date, so it is never caught by its own run.
func (c *Cleaner) Cleanup(ctx context.Context, olderThanDays int, flags domain.RetentionFlags, confirm, dryRun bool) (*domain.CleanupReport, error) {
	if olderThanDays <= 0 {
		return nil, domain.ErrValidation("older-than-days must be positive, got %d", olderThanDays)
	}
	if !confirm && !dryRun {
		return nil, domain.ErrGuard("cleanup deletes data permanently: pass confirm or run dry")
	}

	started := c.now()
	cutoff := domain.Today(c.loc).AddDays(-olderThanDays)
	report := &domain.CleanupReport{Cutoff: cutoff, DryRun: dryRun}

	if dryRun {
		var err error
		if report.Sessions, err = c.store.Sessions().CountBefore(ctx, cutoff); err != nil {
			return nil, err
		}
		if report.Summaries, err = c.store.Summaries().CountBefore(ctx, cutoff); err != nil {
			return nil, err
		}
		if !flags.KeepSKUDEvents {
			if report.Events, err = c.store.Events().CountBefore(ctx, cutoff); err != nil {
				return nil, err
			}
		}
		if !flags.KeepAuditLogs {
			if report.AuditEntries, err = c.store.Audit().CountBefore(ctx, cutoff); err != nil {
				return nil, err
			}
		}
		report.Elapsed = c.now().Sub(started)
		return report, nil
	}

	err := c.store.InTx(ctx, func(tx domain.RepoSet) error {
		var err error
		if report.Sessions, err = tx.Sessions().DeleteBefore(ctx, cutoff); err != nil {
			return err
		}
		if report.Summaries, err = tx.Summaries().DeleteBefore(ctx, cutoff); err != nil {
			return err
		}
		if !flags.KeepSKUDEvents {
			if report.Events, err = tx.Events().DeleteBefore(ctx, cutoff); err != nil {
				return err
			}
		}
		if !flags.KeepAuditLogs {
			if report.AuditEntries, err = tx.Audit().DeleteBefore(ctx, cutoff); err != nil {
				return err
			}
		}
		return tx.Audit().Insert(ctx, &domain.AuditEntry{
			ID:     domain.NewID(),
			Date:   domain.Today(c.loc),
			Action: domain.AuditCleanup,
			Description: fmt.Sprintf("retention cleanup before %s: %d sessions, %d summaries, %d events, %d audit entries",
				cutoff, report.Sessions, report.Summaries, report.Events, report.AuditEntries),
			Reason:    fmt.Sprintf("older than %d days", olderThanDays),
			ChangedAt: c.now(),
		})
	})
	if err != nil {
		return nil, err
	}

	report.Elapsed = c.now().Sub(started)
	c.log.Info("cleanup finished",
		"cutoff", cutoff, "rows", report.TotalRows(),
		"keep_audit", flags.KeepAuditLogs, "keep_events", flags.KeepSKUDEvents)
	return report, nil
}
