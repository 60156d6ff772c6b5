package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"worktime/internal/domain"
)

// SessionRepo stores work sessions.
type SessionRepo struct {
	q DBTX
}

var _ domain.SessionRepository = (*SessionRepo)(nil)

func NewSessionRepo(q DBTX) *SessionRepo {
	return &SessionRepo{q: q}
}

const sessionColumns = `id, employee_id, date, start_time, end_time, status, manual_reason, corrected_by, created_at, updated_at`

func (r *SessionRepo) Insert(ctx context.Context, s *domain.WorkSession) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO work_sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.EmployeeID, string(s.Date), fmtTime(s.StartTime), fmtTimePtr(s.EndTime),
		string(s.Status), s.ManualReason, nullStr(s.CorrectedBy),
		fmtTime(s.CreatedAt), fmtTime(s.UpdatedAt),
	)
	if err != nil {
		return mapDBError("insert work session", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.WorkSession, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM work_sessions WHERE id = ?`, id)

	s, err := scanSessionRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("work session %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) ListForPair(ctx context.Context, employeeID string, date domain.Date) ([]domain.WorkSession, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM work_sessions
		WHERE employee_id = ? AND date = ?
		ORDER BY start_time, id`,
		employeeID, string(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions for pair: %w", err)
	}
	defer rows.Close()
	return collectSessions(rows)
}

func (r *SessionRepo) ListForEmployee(ctx context.Context, employeeID string, dr domain.DateRange, page domain.PageRequest) ([]domain.WorkSession, int64, error) {
	var total int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM work_sessions
		WHERE employee_id = ? AND date >= ? AND date <= ?`,
		employeeID, string(dr.From), string(dr.To)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count sessions for employee: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+sessionColumns+`
		FROM work_sessions
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date, start_time, id
		LIMIT ? OFFSET ?`,
		employeeID, string(dr.From), string(dr.To), page.Limit(), page.Start(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions for employee: %w", err)
	}
	defer rows.Close()

	out, err := collectSessions(rows)
	return out, total, err
}

func (r *SessionRepo) DeleteDerivedForPair(ctx context.Context, employeeID string, date domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM work_sessions
		WHERE employee_id = ? AND date = ? AND status IN ('auto', 'open')`,
		employeeID, string(date),
	)
	if err != nil {
		return 0, fmt.Errorf("delete derived sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *SessionRepo) DeleteForPair(ctx context.Context, employeeID string, date domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM work_sessions WHERE employee_id = ? AND date = ?`,
		employeeID, string(date))
	if err != nil {
		return 0, fmt.Errorf("delete sessions for pair: %w", err)
	}
	return res.RowsAffected()
}

func (r *SessionRepo) CloseManual(ctx context.Context, id string, end time.Time, reason, closedBy string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE work_sessions
		SET end_time = ?, status = ?, manual_reason = ?, corrected_by = ?, updated_at = ?
		WHERE id = ? AND end_time IS NULL`,
		fmtTime(end), string(domain.SessionClosedManual), reason, closedBy, fmtTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if n == 0 {
		// Either the session does not exist or it is already closed.
		if _, err := r.Get(ctx, id); err != nil {
			return err
		}
		return domain.ErrConflict("work session %s is already closed", id)
	}
	return nil
}

func (r *SessionRepo) CountBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM work_sessions WHERE date < ?`, string(cutoff)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count sessions before cutoff: %w", err)
	}
	return n, nil
}

func (r *SessionRepo) DeleteBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM work_sessions WHERE date < ?`, string(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete sessions before cutoff: %w", err)
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(sc rowScanner) (*domain.WorkSession, error) {
	var (
		s                               domain.WorkSession
		date, status                    string
		startTime, createdAt, updatedAt string
		endTime, correctedBy            sql.NullString
	)
	if err := sc.Scan(&s.ID, &s.EmployeeID, &date, &startTime, &endTime, &status,
		&s.ManualReason, &correctedBy, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Date = domain.Date(date)
	s.Status = domain.SessionStatus(status)
	s.CorrectedBy = strPtr(correctedBy)

	var err error
	if s.StartTime, err = parseTime(startTime); err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	if s.EndTime, err = parseTimePtr(endTime); err != nil {
		return nil, fmt.Errorf("parse end_time: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &s, nil
}

func scanSessionRow(row *sql.Row) (*domain.WorkSession, error) {
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan work session: %w", err)
	}
	return s, nil
}

func collectSessions(rows *sql.Rows) ([]domain.WorkSession, error) {
	var out []domain.WorkSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work session: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
