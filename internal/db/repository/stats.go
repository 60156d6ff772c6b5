package repository

import (
	"context"
	"fmt"

	"worktime/internal/domain"
)

// StatsRepo aggregates engine-produced data for operator reporting.
// It runs on the read pool; nothing here writes.
type StatsRepo struct {
	q DBTX
}

func NewStatsRepo(q DBTX) *StatsRepo {
	return &StatsRepo{q: q}
}

// Collect gathers system totals plus breakdowns for the period.
func (r *StatsRepo) Collect(ctx context.Context, from, to domain.Date) (*domain.StatsReport, error) {
	rep := &domain.StatsReport{
		PeriodFrom:        from,
		PeriodTo:          to,
		EventsByType:      make(map[domain.EventType]int64),
		SummariesByStatus: make(map[domain.SummaryStatus]int64),
	}

	scalars := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&rep.ActiveEmployees, `SELECT COUNT(*) FROM employees WHERE is_active = 1`, nil},
		{&rep.InactiveEmployees, `SELECT COUNT(*) FROM employees WHERE is_active = 0`, nil},
		{&rep.ActiveDevices, `SELECT COUNT(*) FROM skud_devices WHERE is_active = 1`, nil},
		{&rep.TotalDevices, `SELECT COUNT(*) FROM skud_devices`, nil},
		{&rep.TotalEvents, `SELECT COUNT(*) FROM access_events`, nil},
		{&rep.EventsInPeriod, `SELECT COUNT(*) FROM access_events WHERE event_date >= ? AND event_date <= ?`, []any{string(from), string(to)}},
		{&rep.UnprocessedEvents, `SELECT COUNT(*) FROM access_events WHERE processed = 0`, nil},
		{&rep.TotalSessions, `SELECT COUNT(*) FROM work_sessions`, nil},
		{&rep.SessionsInPeriod, `SELECT COUNT(*) FROM work_sessions WHERE date >= ? AND date <= ?`, []any{string(from), string(to)}},
		{&rep.OpenSessions, `SELECT COUNT(*) FROM work_sessions WHERE end_time IS NULL`, nil},
		{&rep.TotalSummaries, `SELECT COUNT(*) FROM day_summaries`, nil},
		{&rep.SummariesInPeriod, `SELECT COUNT(*) FROM day_summaries WHERE date >= ? AND date <= ?`, []any{string(from), string(to)}},
		{&rep.TotalOfficeSeconds, `SELECT COALESCE(SUM(total_seconds), 0) FROM day_summaries WHERE date >= ? AND date <= ?`, []any{string(from), string(to)}},
		{&rep.TotalOvertime, `SELECT COALESCE(SUM(overtime_seconds), 0) FROM day_summaries WHERE date >= ? AND date <= ?`, []any{string(from), string(to)}},
		{&rep.TotalUnderwork, `SELECT COALESCE(SUM(underwork_seconds), 0) FROM day_summaries WHERE date >= ? AND date <= ?`, []any{string(from), string(to)}},
	}
	for _, s := range scalars {
		if err := r.q.QueryRowContext(ctx, s.query, s.args...).Scan(s.dst); err != nil {
			return nil, fmt.Errorf("stats query: %w", err)
		}
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT event_type, COUNT(*) FROM access_events
		WHERE event_date >= ? AND event_date <= ?
		GROUP BY event_type`, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("stats events by type: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int64
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan events by type: %w", err)
		}
		rep.EventsByType[domain.EventType(typ)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	srows, err := r.q.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM day_summaries
		WHERE date >= ? AND date <= ?
		GROUP BY status`, string(from), string(to))
	if err != nil {
		return nil, fmt.Errorf("stats summaries by status: %w", err)
	}
	defer srows.Close()
	for srows.Next() {
		var status string
		var n int64
		if err := srows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan summaries by status: %w", err)
		}
		rep.SummariesByStatus[domain.SummaryStatus(status)] = n
	}
	return rep, srows.Err()
}
