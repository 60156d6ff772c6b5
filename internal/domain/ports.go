package domain

import (
	"context"
	"time"
)

// EventRepository reads and flags raw access events.
type EventRepository interface {
	Insert(ctx context.Context, e *AccessEvent) error
	// ListForPair returns every event for the employee on the date,
	// ordered by (event_time, created_at, id).
	ListForPair(ctx context.Context, employeeID string, date Date) ([]AccessEvent, error)
	// ListPairs returns the distinct (employee, date) pairs matching
	// the selector. With unprocessedOnly, only pairs that still have
	// unprocessed events are returned.
	ListPairs(ctx context.Context, sel Selector, unprocessedOnly bool) ([]Pair, error)
	MarkProcessed(ctx context.Context, ids []string) error
	// ResetProcessed clears the processed flag for the pair and
	// returns how many events were reset.
	ResetProcessed(ctx context.Context, employeeID string, date Date) (int64, error)
	CountBefore(ctx context.Context, cutoff Date) (int64, error)
	DeleteBefore(ctx context.Context, cutoff Date) (int64, error)
}

// SessionRepository owns work sessions. Only the session builder and
// the manual-close path mutate them.
type SessionRepository interface {
	Insert(ctx context.Context, s *WorkSession) error
	Get(ctx context.Context, id string) (*WorkSession, error)
	ListForPair(ctx context.Context, employeeID string, date Date) ([]WorkSession, error)
	ListForEmployee(ctx context.Context, employeeID string, r DateRange, page PageRequest) ([]WorkSession, int64, error)
	// DeleteDerivedForPair removes machine-made sessions (auto, open)
	// for the pair, keeping manual corrections.
	DeleteDerivedForPair(ctx context.Context, employeeID string, date Date) (int64, error)
	// DeleteForPair removes every session for the pair.
	DeleteForPair(ctx context.Context, employeeID string, date Date) (int64, error)
	CloseManual(ctx context.Context, id string, end time.Time, reason, closedBy string) error
	CountBefore(ctx context.Context, cutoff Date) (int64, error)
	DeleteBefore(ctx context.Context, cutoff Date) (int64, error)
}

// SummaryRepository owns daily summaries. Replace semantics only.
type SummaryRepository interface {
	// Replace inserts the summary, overwriting any existing row for
	// the same (employee, date).
	Replace(ctx context.Context, s *DaySummary) error
	GetForPair(ctx context.Context, employeeID string, date Date) (*DaySummary, error)
	ExistsForPair(ctx context.Context, employeeID string, date Date) (bool, error)
	ListForEmployee(ctx context.Context, employeeID string, r DateRange, page PageRequest) ([]DaySummary, int64, error)
	DeleteForPair(ctx context.Context, employeeID string, date Date) (int64, error)
	CountBefore(ctx context.Context, cutoff Date) (int64, error)
	DeleteBefore(ctx context.Context, cutoff Date) (int64, error)
}

// AuditRepository appends and lists audit entries. Entries are never
// mutated after append.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
	CountBefore(ctx context.Context, cutoff Date) (int64, error)
	DeleteBefore(ctx context.Context, cutoff Date) (int64, error)
}

// EmployeeRepository reads employee directory records.
type EmployeeRepository interface {
	Insert(ctx context.Context, e *Employee) error
	Get(ctx context.Context, id string) (*Employee, error)
	ListActive(ctx context.Context) ([]Employee, error)
}

// LeaveRepository reads approved-absence windows.
type LeaveRepository interface {
	Insert(ctx context.Context, l *Leave) error
	// Covering reports whether an effective leave covers the date.
	Covering(ctx context.Context, employeeID string, date Date) (bool, error)
}

// DeviceRepository reads access-control device records.
type DeviceRepository interface {
	Insert(ctx context.Context, d *Device) error
	Get(ctx context.Context, id string) (*Device, error)
	List(ctx context.Context) ([]Device, error)
}

// Directory answers the per-employee calendar questions the aggregator
// needs. Implementations live outside the derivation core.
type Directory interface {
	ExpectedDailySeconds(ctx context.Context, employeeID string, date Date) (int64, error)
	IsWorkDay(ctx context.Context, employeeID string, date Date) (bool, error)
	HasApprovedLeave(ctx context.Context, employeeID string, date Date) (bool, error)
	// ActiveEmployeeIDs lists the employees range-driven runs must
	// visit even when they produced no events.
	ActiveEmployeeIDs(ctx context.Context) ([]string, error)
}

// RepoSet is the transaction-scoped view of the repositories that take
// part in one (employee, date) unit of work.
type RepoSet interface {
	Events() EventRepository
	Sessions() SessionRepository
	Summaries() SummaryRepository
	Audit() AuditRepository
}

// UnitOfWork commits one (employee, date) pair atomically: marking
// events processed, replacing sessions, and writing the summary either
// all land or none do.
type UnitOfWork interface {
	RepoSet
	InTx(ctx context.Context, fn func(tx RepoSet) error) error
}
