package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"worktime/internal/domain"
)

// AuditRepo stores append-only audit entries.
type AuditRepo struct {
	q DBTX
}

var _ domain.AuditRepository = (*AuditRepo)(nil)

func NewAuditRepo(q DBTX) *AuditRepo {
	return &AuditRepo{q: q}
}

const auditColumns = `id, employee_id, date, action, description, old_value, new_value, reason, changed_by, changed_at`

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_log (`+auditColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullStr(e.EmployeeID), string(e.Date), string(e.Action), e.Description,
		nullStr(e.OldValue), nullStr(e.NewValue), e.Reason, nullStr(e.ChangedBy), fmtTime(e.ChangedAt),
	)
	if err != nil {
		return mapDBError("insert audit entry", err)
	}
	return nil
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	conds := []string{"1 = 1"}
	var args []any
	if filter.EmployeeID != nil {
		conds = append(conds, "employee_id = ?")
		args = append(args, *filter.EmployeeID)
	}
	if filter.Action != nil {
		conds = append(conds, "action = ?")
		args = append(args, string(*filter.Action))
	}
	if filter.From != nil {
		conds = append(conds, "date >= ?")
		args = append(args, string(*filter.From))
	}
	if filter.To != nil {
		conds = append(conds, "date <= ?")
		args = append(args, string(*filter.To))
	}
	where := strings.Join(conds, " AND ")

	var total int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE `+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE ` + where + `
		ORDER BY changed_at DESC, id DESC
		LIMIT ? OFFSET ?`
	args = append(args, filter.Page.Limit(), filter.Page.Start())

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var (
			e                                        domain.AuditEntry
			employeeID, oldVal, newVal, changedBy    sql.NullString
			date, action, changedAt                  string
		)
		if err := rows.Scan(&e.ID, &employeeID, &date, &action, &e.Description,
			&oldVal, &newVal, &e.Reason, &changedBy, &changedAt); err != nil {
			return nil, 0, fmt.Errorf("scan audit entry: %w", err)
		}
		e.EmployeeID = strPtr(employeeID)
		e.Date = domain.Date(date)
		e.Action = domain.AuditAction(action)
		e.OldValue = strPtr(oldVal)
		e.NewValue = strPtr(newVal)
		e.ChangedBy = strPtr(changedBy)
		if e.ChangedAt, err = parseTime(changedAt); err != nil {
			return nil, 0, fmt.Errorf("parse changed_at: %w", err)
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *AuditRepo) CountBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_log WHERE date < ?`, string(cutoff)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count audit entries before cutoff: %w", err)
	}
	return n, nil
}

func (r *AuditRepo) DeleteBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM audit_log WHERE date < ?`, string(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete audit entries before cutoff: %w", err)
	}
	return res.RowsAffected()
}
