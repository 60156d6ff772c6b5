package worktime

import (
	"time"

	"worktime/internal/domain"
)

// DayInputs is the external per-day knowledge the aggregator needs,
// answered by the employee directory.
type DayInputs struct {
	ExpectedSeconds  int64
	IsWorkDay        bool
	HasApprovedLeave bool
}

// BuildSummary folds the day's sessions into one summary. Pure; the
// caller decides whether to persist the result.
//
// Open sessions contribute zero to the total but set has_missing_exit.
// A broken manual session (end before start) contributes zero as well
// and pushes the day into problem status through the policy.
func BuildSummary(employeeID string, date domain.Date, sessions []domain.WorkSession, in DayInputs, now time.Time) *domain.DaySummary {
	facts := domain.DayFacts{
		SessionsCount:    len(sessions),
		ExpectedSeconds:  in.ExpectedSeconds,
		IsWorkDay:        in.IsWorkDay,
		HasApprovedLeave: in.HasApprovedLeave,
	}

	sum := &domain.DaySummary{
		ID:              domain.NewID(),
		EmployeeID:      employeeID,
		Date:            date,
		ExpectedSeconds: in.ExpectedSeconds,
		SessionsCount:   len(sessions),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	for i := range sessions {
		s := &sessions[i]

		if sum.FirstEntry == nil || s.StartTime.Before(*sum.FirstEntry) {
			start := s.StartTime
			sum.FirstEntry = &start
		}

		switch s.Status {
		case domain.SessionManual, domain.SessionClosedManual:
			facts.HasManualCorrections = true
			if s.EndTime != nil && s.EndTime.Before(s.StartTime) {
				facts.ManualInconsistency = true
			}
		}

		if s.IsOpen() {
			facts.HasMissingExit = true
			continue
		}
		if s.EndTime.Before(s.StartTime) {
			continue
		}
		facts.TotalSeconds += s.DurationSeconds()
		if sum.LastExit == nil || s.EndTime.After(*sum.LastExit) {
			end := *s.EndTime
			sum.LastExit = &end
		}
	}

	sum.TotalSecondsInOffice = facts.TotalSeconds
	sum.HasMissingExit = facts.HasMissingExit
	sum.HasManualCorrections = facts.HasManualCorrections
	sum.Status, _ = domain.Classify(facts)
	sum.FinalizeBalance()
	return sum
}
