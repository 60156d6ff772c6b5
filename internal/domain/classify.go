package domain

// DayFacts is everything the day-status policy looks at. It is
// assembled by the aggregator so the rules stay free of I/O.
type DayFacts struct {
	SessionsCount        int
	TotalSeconds         int64
	ExpectedSeconds      int64
	HasMissingExit       bool
	HasManualCorrections bool
	// ManualInconsistency is set when a manual or manually-closed
	// session is internally broken (no end time, or end before start).
	ManualInconsistency bool
	IsWorkDay           bool
	HasApprovedLeave    bool
}

// ClassifyRule maps a predicate over DayFacts to a day status. Rules
// are evaluated in order; the first match wins.
type ClassifyRule struct {
	Name   string
	When   func(DayFacts) bool
	Status SummaryStatus
}

// ClassifyRules is the day-status policy, highest priority first.
// Keeping it as data makes the policy testable without touching I/O.
var ClassifyRules = []ClassifyRule{
	{
		Name:   "missing_exit_or_broken_manual",
		When:   func(f DayFacts) bool { return f.HasMissingExit || f.ManualInconsistency },
		Status: StatusProblem,
	},
	{
		Name:   "no_show_on_work_day",
		When:   func(f DayFacts) bool { return f.SessionsCount == 0 && f.IsWorkDay && !f.HasApprovedLeave },
		Status: StatusAbsent,
	},
	{
		Name:   "approved_leave",
		When:   func(f DayFacts) bool { return f.SessionsCount == 0 && f.HasApprovedLeave },
		Status: StatusExcused,
	},
	{
		Name:   "day_off",
		When:   func(f DayFacts) bool { return f.SessionsCount == 0 && !f.IsWorkDay },
		Status: StatusExcused,
	},
	{
		Name:   "short_day",
		When:   func(f DayFacts) bool { return f.TotalSeconds > 0 && f.TotalSeconds < f.ExpectedSeconds },
		Status: StatusPartial,
	},
}

// Classify runs the ordered policy and returns the matched status and
// rule name. When no rule matches the day is a regular present day.
func Classify(f DayFacts) (SummaryStatus, string) {
	for _, r := range ClassifyRules {
		if r.When(f) {
			return r.Status, r.Name
		}
	}
	return StatusPresent, "present"
}
