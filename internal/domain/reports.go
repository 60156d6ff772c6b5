package domain

import "time"

// Pair identifies one (employee, date) unit of work.
type Pair struct {
	EmployeeID string
	Date       Date
}

// AnomalyCounts tallies data anomalies found while pairing events.
// Anomalies are never fatal; they are reported for follow-up.
type AnomalyCounts struct {
	DuplicateEntries int
	OrphanExits      int
}

// Total returns the combined anomaly count.
func (a AnomalyCounts) Total() int {
	return a.DuplicateEntries + a.OrphanExits
}

// Add accumulates counts from another tally.
func (a *AnomalyCounts) Add(other AnomalyCounts) {
	a.DuplicateEntries += other.DuplicateEntries
	a.OrphanExits += other.OrphanExits
}

// BatchReport is the structured result of a batch or reprocess run.
type BatchReport struct {
	EventsScanned    int
	EventsProcessed  int
	PairsTotal       int
	PairsProcessed   int
	PairsSkipped     int
	PairsFailed      int
	SessionsCreated  int
	SessionsClosed   int
	OpenSessions     int
	SummariesWritten int
	Anomalies        AnomalyCounts
	FailedPairs      []Pair
	DryRun           bool
	Interrupted      bool
	Elapsed          time.Duration
}

// RebuildReport extends the batch counters with the destructive side
// of a forced rebuild.
type RebuildReport struct {
	BatchReport
	Range             DateRange
	SessionsDeleted   int
	SummariesDeleted  int
	EventsReset       int
	SummariesReplaced int
}

// CleanupReport lists what a retention run deleted (or, for a dry run,
// would delete), by category.
type CleanupReport struct {
	Cutoff       Date
	Sessions     int64
	Summaries    int64
	Events       int64
	AuditEntries int64
	DryRun       bool
	Elapsed      time.Duration
}

// TotalRows returns the combined number of rows across categories.
func (r CleanupReport) TotalRows() int64 {
	return r.Sessions + r.Summaries + r.Events + r.AuditEntries
}

// StatsReport aggregates engine-produced data for operators.
type StatsReport struct {
	PeriodFrom        Date
	PeriodTo          Date
	ActiveEmployees   int64
	InactiveEmployees int64
	ActiveDevices     int64
	TotalDevices      int64

	TotalEvents       int64
	EventsInPeriod    int64
	UnprocessedEvents int64
	EventsByType      map[EventType]int64

	TotalSessions    int64
	SessionsInPeriod int64
	OpenSessions     int64

	TotalSummaries     int64
	SummariesInPeriod  int64
	SummariesByStatus  map[SummaryStatus]int64
	TotalOfficeSeconds int64
	TotalOvertime      int64
	TotalUnderwork     int64
}
