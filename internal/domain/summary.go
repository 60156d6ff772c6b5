package domain

import "time"

// SummaryStatus classifies an employee's day.
type SummaryStatus string

const (
	StatusPresent SummaryStatus = "present"
	StatusAbsent  SummaryStatus = "absent"
	StatusExcused SummaryStatus = "excused"
	StatusPartial SummaryStatus = "partial"
	StatusProblem SummaryStatus = "problem"
)

// DaySummary is the single derived attendance record per employee per
// date. It is always recomputed from sessions as a whole, never
// patched field by field.
type DaySummary struct {
	ID                   string
	EmployeeID           string
	Date                 Date
	FirstEntry           *time.Time
	LastExit             *time.Time
	TotalSecondsInOffice int64
	ExpectedSeconds      int64
	OvertimeSeconds      int64
	UnderworkSeconds     int64
	SessionsCount        int
	Status               SummaryStatus
	HasMissingExit       bool
	HasManualCorrections bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// FinalizeBalance derives overtime/underwork from total vs expected.
func (s *DaySummary) FinalizeBalance() {
	diff := s.TotalSecondsInOffice - s.ExpectedSeconds
	if diff > 0 {
		s.OvertimeSeconds = diff
		s.UnderworkSeconds = 0
	} else {
		s.OvertimeSeconds = 0
		s.UnderworkSeconds = -diff
	}
}
