package repository

import (
	"context"
	"fmt"

	"worktime/internal/domain"
)

// LeaveRepo stores approved-absence windows.
type LeaveRepo struct {
	q DBTX
}

var _ domain.LeaveRepository = (*LeaveRepo)(nil)

func NewLeaveRepo(q DBTX) *LeaveRepo {
	return &LeaveRepo{q: q}
}

func (r *LeaveRepo) Insert(ctx context.Context, l *domain.Leave) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO leaves (id, employee_id, kind, start_date, end_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.EmployeeID, string(l.Kind), string(l.StartDate), string(l.EndDate),
		string(l.Status), fmtTime(l.CreatedAt),
	)
	if err != nil {
		return mapDBError("insert leave", err)
	}
	return nil
}

func (r *LeaveRepo) Covering(ctx context.Context, employeeID string, date domain.Date) (bool, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM leaves
		WHERE employee_id = ?
		  AND start_date <= ? AND end_date >= ?
		  AND status IN (?, ?, ?)`,
		employeeID, string(date), string(date),
		string(domain.LeaveApproved), string(domain.LeaveTaken), string(domain.LeaveInProgress),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check covering leave: %w", err)
	}
	return n > 0, nil
}
