package worktime

import (
	"context"
	"encoding/json"
	"time"

	"worktime/internal/domain"
)

// CloseSession closes an open session at the given end time as a
// manual correction, re-aggregates the day's summary, and records the
// correction in the audit log. The whole update is one transaction.
func (e *Engine) CloseSession(ctx context.Context, id string, end time.Time, reason, closedBy string) (*domain.WorkSession, error) {
	if reason == "" {
		return nil, domain.ErrValidation("a reason is required to close a session manually")
	}

	before, err := e.store.Sessions().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if end.Before(before.StartTime) {
		return nil, domain.ErrValidation("end time %s is before session start %s", end.Format(time.RFC3339), before.StartTime.Format(time.RFC3339))
	}

	p := domain.Pair{EmployeeID: before.EmployeeID, Date: before.Date}
	inputs, err := e.dayInputs(ctx, p)
	if err != nil {
		return nil, err
	}

	var after *domain.WorkSession
	err = e.store.InTx(ctx, func(tx domain.RepoSet) error {
		if err := tx.Sessions().CloseManual(ctx, id, end, reason, closedBy); err != nil {
			return err
		}
		var err error
		if after, err = tx.Sessions().Get(ctx, id); err != nil {
			return err
		}

		all, err := tx.Sessions().ListForPair(ctx, p.EmployeeID, p.Date)
		if err != nil {
			return err
		}
		summary := BuildSummary(p.EmployeeID, p.Date, all, inputs, e.now())
		if err := tx.Summaries().Replace(ctx, summary); err != nil {
			return err
		}

		oldVal, newVal := sessionJSON(before), sessionJSON(after)
		entry := &domain.AuditEntry{
			ID:          domain.NewID(),
			EmployeeID:  &p.EmployeeID,
			Date:        p.Date,
			Action:      domain.AuditCloseSession,
			Description: "session closed manually",
			OldValue:    &oldVal,
			NewValue:    &newVal,
			Reason:      reason,
			ChangedAt:   e.now(),
		}
		if closedBy != "" {
			entry.ChangedBy = &closedBy
		}
		return tx.Audit().Insert(ctx, entry)
	})
	if err != nil {
		return nil, err
	}
	return after, nil
}

func sessionJSON(s *domain.WorkSession) string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}
