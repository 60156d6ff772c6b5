package worktime

import (
	"context"

	"worktime/internal/domain"
)

// Calendar answers company-wide work-day questions (weekends,
// holidays, moved workdays). internal/config provides the YAML-backed
// implementation.
type Calendar interface {
	IsWorkDay(d domain.Date) bool
}

// DirectoryService answers the per-employee calendar questions the
// aggregator needs, combining the employee record, the company work
// calendar, and leave records.
type DirectoryService struct {
	employees domain.EmployeeRepository
	leaves    domain.LeaveRepository
	calendar  Calendar
}

var _ domain.Directory = (*DirectoryService)(nil)

func NewDirectoryService(employees domain.EmployeeRepository, leaves domain.LeaveRepository, calendar Calendar) *DirectoryService {
	return &DirectoryService{employees: employees, leaves: leaves, calendar: calendar}
}

// ExpectedDailySeconds is daily_hours × work_fraction × 3600 on work
// days, zero on days off and outside the employment window. Leave does
// not reduce the expectation; it only feeds the excused signal.
func (d *DirectoryService) ExpectedDailySeconds(ctx context.Context, employeeID string, date domain.Date) (int64, error) {
	e, err := d.employees.Get(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	if !e.EmployedOn(date) || !d.calendar.IsWorkDay(date) {
		return 0, nil
	}
	return int64(e.DailyHours * e.WorkFraction * 3600), nil
}

func (d *DirectoryService) IsWorkDay(ctx context.Context, employeeID string, date domain.Date) (bool, error) {
	e, err := d.employees.Get(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return e.EmployedOn(date) && d.calendar.IsWorkDay(date), nil
}

func (d *DirectoryService) HasApprovedLeave(ctx context.Context, employeeID string, date domain.Date) (bool, error) {
	return d.leaves.Covering(ctx, employeeID, date)
}

func (d *DirectoryService) ActiveEmployeeIDs(ctx context.Context) ([]string, error) {
	list, err := d.employees.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(list))
	for i := range list {
		ids[i] = list[i].ID
	}
	return ids, nil
}
