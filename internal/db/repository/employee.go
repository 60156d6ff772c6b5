package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"worktime/internal/domain"
)

// EmployeeRepo stores employee directory records.
type EmployeeRepo struct {
	q DBTX
}

var _ domain.EmployeeRepository = (*EmployeeRepo)(nil)

func NewEmployeeRepo(q DBTX) *EmployeeRepo {
	return &EmployeeRepo{q: q}
}

const employeeColumns = `id, badge_number, last_name, first_name, middle_name, department, position,
	hire_date, termination_date, is_active, work_fraction, daily_hours, external_id, created_at`

func (r *EmployeeRepo) Insert(ctx context.Context, e *domain.Employee) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO employees (`+employeeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.BadgeNumber, e.LastName, e.FirstName, e.MiddleName, e.Department, e.Position,
		string(e.HireDate), nullDate(e.TerminationDate), boolToInt(e.IsActive),
		e.WorkFraction, e.DailyHours, nullStr(e.ExternalID), fmtTime(e.CreatedAt),
	)
	if err != nil {
		return mapDBError("insert employee", err)
	}
	return nil
}

func (r *EmployeeRepo) Get(ctx context.Context, id string) (*domain.Employee, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound("employee %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

func (r *EmployeeRepo) ListActive(ctx context.Context) ([]domain.Employee, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+employeeColumns+`
		FROM employees
		WHERE is_active = 1
		ORDER BY last_name, first_name, id`)
	if err != nil {
		return nil, fmt.Errorf("list active employees: %w", err)
	}
	defer rows.Close()

	var out []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanEmployee(sc rowScanner) (*domain.Employee, error) {
	var (
		e                           domain.Employee
		hireDate, createdAt         string
		terminationDate, externalID sql.NullString
		isActive                    int
	)
	if err := sc.Scan(&e.ID, &e.BadgeNumber, &e.LastName, &e.FirstName, &e.MiddleName,
		&e.Department, &e.Position, &hireDate, &terminationDate, &isActive,
		&e.WorkFraction, &e.DailyHours, &externalID, &createdAt); err != nil {
		return nil, err
	}
	e.HireDate = domain.Date(hireDate)
	e.TerminationDate = datePtr(terminationDate)
	e.IsActive = isActive != 0
	e.ExternalID = strPtr(externalID)

	var err error
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &e, nil
}
