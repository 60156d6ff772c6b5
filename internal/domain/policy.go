package domain

// ProcessMode selects how already-processed data is treated.
type ProcessMode int

const (
	// ModeNormal skips (employee, date) pairs whose events are all
	// processed and whose summary already exists.
	ModeNormal ProcessMode = iota
	// ModeForce re-derives pairs even when their events are already
	// marked processed, without deleting existing rows first.
	ModeForce
	// ModeRebuild deletes existing sessions and summaries and resets
	// processed flags before re-deriving from the raw events.
	ModeRebuild
)

func (m ProcessMode) String() string {
	switch m {
	case ModeForce:
		return "force"
	case ModeRebuild:
		return "rebuild"
	default:
		return "normal"
	}
}

// ProcessPolicy is the explicit mode object passed into orchestration
// calls, replacing scattered force/dry-run booleans.
type ProcessPolicy struct {
	Mode    ProcessMode
	DryRun  bool
	Verbose bool
}

// Selector narrows which (employee, date) pairs a run targets. A zero
// selector means "all unprocessed events".
type Selector struct {
	EmployeeID *string
	DeviceID   *string
	From       *Date
	To         *Date
}

// IsZero reports whether the selector carries no filters at all.
func (s Selector) IsZero() bool {
	return s.EmployeeID == nil && s.DeviceID == nil && s.From == nil && s.To == nil
}

// RetentionFlags controls what the retention cleaner keeps.
type RetentionFlags struct {
	KeepAuditLogs  bool
	KeepSKUDEvents bool
}
