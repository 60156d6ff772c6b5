package domain

import (
	"strings"
	"time"
)

// Employee is a plain directory record. Organizational CRUD lives
// outside the engine; the engine only reads these fields.
type Employee struct {
	ID              string
	BadgeNumber     string // personnel/badge number, unique
	LastName        string
	FirstName       string
	MiddleName      string
	Department      string
	Position        string
	HireDate        Date
	TerminationDate *Date
	IsActive        bool
	WorkFraction    float64 // 1.0 = full time
	DailyHours      float64 // standard working hours per day
	ExternalID      *string // identifier in the SKUD device network
	CreatedAt       time.Time
}

// FullName joins the name parts, skipping empty ones.
func (e Employee) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.LastName, e.FirstName, e.MiddleName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// EmployedOn reports whether the employee was on staff on the date.
func (e Employee) EmployedOn(d Date) bool {
	if e.HireDate != "" && d.Before(e.HireDate) {
		return false
	}
	if e.TerminationDate != nil && d.After(*e.TerminationDate) {
		return false
	}
	return true
}

// LeaveKind distinguishes vacations from business trips. Both feed the
// same "excused" signal.
type LeaveKind string

const (
	LeaveVacation     LeaveKind = "vacation"
	LeaveBusinessTrip LeaveKind = "business_trip"
)

// LeaveStatus is the approval state of a leave record.
type LeaveStatus string

const (
	LeaveApproved   LeaveStatus = "approved"
	LeaveTaken      LeaveStatus = "taken"
	LeaveInProgress LeaveStatus = "in_progress"
	LeavePending    LeaveStatus = "pending"
	LeaveRejected   LeaveStatus = "rejected"
)

// Leave is an approved absence window (vacation or business trip).
type Leave struct {
	ID         string
	EmployeeID string
	Kind       LeaveKind
	StartDate  Date
	EndDate    Date
	Status     LeaveStatus
	CreatedAt  time.Time
}

// Covers reports whether the leave is effective on the date.
func (l Leave) Covers(d Date) bool {
	if d.Before(l.StartDate) || d.After(l.EndDate) {
		return false
	}
	switch l.Status {
	case LeaveApproved, LeaveTaken, LeaveInProgress:
		return true
	}
	return false
}
