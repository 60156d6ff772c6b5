package domain

import "time"

// SessionStatus tells how a work session was produced and whether it
// is still open.
type SessionStatus string

const (
	SessionAuto         SessionStatus = "auto"
	SessionManual       SessionStatus = "manual"
	SessionOpen         SessionStatus = "open"
	SessionClosedManual SessionStatus = "closed_manual"
)

// WorkSession is one continuous on-premises interval for an employee,
// bounded by an entry event and (optionally) an exit event.
type WorkSession struct {
	ID           string
	EmployeeID   string
	Date         Date
	StartTime    time.Time
	EndTime      *time.Time // nil while the session is open
	Status       SessionStatus
	ManualReason string
	CorrectedBy  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOpen reports whether the session has no exit yet.
func (s WorkSession) IsOpen() bool {
	return s.EndTime == nil || s.Status == SessionOpen
}

// Duration returns the session length. Open sessions contribute zero.
func (s WorkSession) Duration() time.Duration {
	if s.EndTime == nil {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

// DurationSeconds returns the session length in whole seconds.
func (s WorkSession) DurationSeconds() int64 {
	return int64(s.Duration() / time.Second)
}
