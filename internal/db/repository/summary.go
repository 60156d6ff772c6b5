package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worktime/internal/domain"
)

// SummaryRepo stores day summaries. Writes are whole-row replaces,
// never field patches.
type SummaryRepo struct {
	q DBTX
}

var _ domain.SummaryRepository = (*SummaryRepo)(nil)

func NewSummaryRepo(q DBTX) *SummaryRepo {
	return &SummaryRepo{q: q}
}

const summaryColumns = `id, employee_id, date, first_entry, last_exit, total_seconds, expected_seconds,
	overtime_seconds, underwork_seconds, sessions_count, status, has_missing_exit, has_manual_corrections,
	created_at, updated_at`

func (r *SummaryRepo) Replace(ctx context.Context, s *domain.DaySummary) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO day_summaries (`+summaryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			first_entry = excluded.first_entry,
			last_exit = excluded.last_exit,
			total_seconds = excluded.total_seconds,
			expected_seconds = excluded.expected_seconds,
			overtime_seconds = excluded.overtime_seconds,
			underwork_seconds = excluded.underwork_seconds,
			sessions_count = excluded.sessions_count,
			status = excluded.status,
			has_missing_exit = excluded.has_missing_exit,
			has_manual_corrections = excluded.has_manual_corrections,
			updated_at = excluded.updated_at`,
		s.ID, s.EmployeeID, string(s.Date), fmtTimePtr(s.FirstEntry), fmtTimePtr(s.LastExit),
		s.TotalSecondsInOffice, s.ExpectedSeconds, s.OvertimeSeconds, s.UnderworkSeconds,
		s.SessionsCount, string(s.Status), boolToInt(s.HasMissingExit), boolToInt(s.HasManualCorrections),
		fmtTime(s.CreatedAt), fmtTime(s.UpdatedAt),
	)
	if err != nil {
		return mapDBError("replace day summary", err)
	}
	return nil
}

func (r *SummaryRepo) GetForPair(ctx context.Context, employeeID string, date domain.Date) (*domain.DaySummary, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+summaryColumns+`
		FROM day_summaries
		WHERE employee_id = ? AND date = ?`,
		employeeID, string(date))

	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("no summary for employee %s on %s", employeeID, date)
	}
	if err != nil {
		return nil, fmt.Errorf("get day summary: %w", err)
	}
	return s, nil
}

func (r *SummaryRepo) ExistsForPair(ctx context.Context, employeeID string, date domain.Date) (bool, error) {
	var one int
	err := r.q.QueryRowContext(ctx,
		`SELECT 1 FROM day_summaries WHERE employee_id = ? AND date = ?`,
		employeeID, string(date)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check day summary: %w", err)
	}
	return true, nil
}

func (r *SummaryRepo) ListForEmployee(ctx context.Context, employeeID string, dr domain.DateRange, page domain.PageRequest) ([]domain.DaySummary, int64, error) {
	var total int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM day_summaries
		WHERE employee_id = ? AND date >= ? AND date <= ?`,
		employeeID, string(dr.From), string(dr.To)).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count summaries for employee: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM day_summaries
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date
		LIMIT ? OFFSET ?`,
		employeeID, string(dr.From), string(dr.To), page.Limit(), page.Start(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list summaries for employee: %w", err)
	}
	defer rows.Close()

	var out []domain.DaySummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan day summary: %w", err)
		}
		out = append(out, *s)
	}
	return out, total, rows.Err()
}

func (r *SummaryRepo) DeleteForPair(ctx context.Context, employeeID string, date domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM day_summaries WHERE employee_id = ? AND date = ?`,
		employeeID, string(date))
	if err != nil {
		return 0, fmt.Errorf("delete summary for pair: %w", err)
	}
	return res.RowsAffected()
}

func (r *SummaryRepo) CountBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM day_summaries WHERE date < ?`, string(cutoff)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count summaries before cutoff: %w", err)
	}
	return n, nil
}

func (r *SummaryRepo) DeleteBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM day_summaries WHERE date < ?`, string(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete summaries before cutoff: %w", err)
	}
	return res.RowsAffected()
}

func scanSummary(sc rowScanner) (*domain.DaySummary, error) {
	var (
		s                            domain.DaySummary
		date, status                 string
		firstEntry, lastExit         sql.NullString
		missingExit, manualCorrected int
		createdAt, updatedAt         string
	)
	if err := sc.Scan(&s.ID, &s.EmployeeID, &date, &firstEntry, &lastExit,
		&s.TotalSecondsInOffice, &s.ExpectedSeconds, &s.OvertimeSeconds, &s.UnderworkSeconds,
		&s.SessionsCount, &status, &missingExit, &manualCorrected, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Date = domain.Date(date)
	s.Status = domain.SummaryStatus(status)
	s.HasMissingExit = missingExit != 0
	s.HasManualCorrections = manualCorrected != 0

	var err error
	if s.FirstEntry, err = parseTimePtr(firstEntry); err != nil {
		return nil, fmt.Errorf("parse first_entry: %w", err)
	}
	if s.LastExit, err = parseTimePtr(lastExit); err != nil {
		return nil, fmt.Errorf("parse last_exit: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return &s, nil
}
