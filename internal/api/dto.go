package api

import (
	"time"

	"worktime/internal/domain"
)

// Wire representations. The domain stays free of JSON tags; this is
// the only place field names are fixed for clients.

type eventDTO struct {
	ID         string    `json:"id"`
	EmployeeID *string   `json:"employee_id,omitempty"`
	DeviceID   string    `json:"device_id"`
	CardNumber string    `json:"card_number,omitempty"`
	EventType  string    `json:"event_type"`
	EventTime  time.Time `json:"event_time"`
	Date       string    `json:"date"`
	Processed  bool      `json:"processed"`
}

func toEventDTO(e *domain.AccessEvent) eventDTO {
	return eventDTO{
		ID:         e.ID,
		EmployeeID: e.EmployeeID,
		DeviceID:   e.DeviceID,
		CardNumber: e.CardNumber,
		EventType:  string(e.Type),
		EventTime:  e.EventTime,
		Date:       string(e.Date()),
		Processed:  e.Processed,
	}
}

type sessionDTO struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	Date            string     `json:"date"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationSeconds int64      `json:"duration_seconds"`
	Status          string     `json:"status"`
	ManualReason    string     `json:"manual_reason,omitempty"`
	CorrectedBy     *string    `json:"corrected_by,omitempty"`
}

func toSessionDTO(s *domain.WorkSession) sessionDTO {
	return sessionDTO{
		ID:              s.ID,
		EmployeeID:      s.EmployeeID,
		Date:            string(s.Date),
		StartTime:       s.StartTime,
		EndTime:         s.EndTime,
		DurationSeconds: s.DurationSeconds(),
		Status:          string(s.Status),
		ManualReason:    s.ManualReason,
		CorrectedBy:     s.CorrectedBy,
	}
}

type summaryDTO struct {
	ID                   string     `json:"id"`
	EmployeeID           string     `json:"employee_id"`
	Date                 string     `json:"date"`
	FirstEntry           *time.Time `json:"first_entry,omitempty"`
	LastExit             *time.Time `json:"last_exit,omitempty"`
	TotalSecondsInOffice int64      `json:"total_seconds_in_office"`
	ExpectedSeconds      int64      `json:"expected_seconds"`
	OvertimeSeconds      int64      `json:"overtime_seconds"`
	UnderworkSeconds     int64      `json:"underwork_seconds"`
	SessionsCount        int        `json:"sessions_count"`
	Status               string     `json:"status"`
	HasMissingExit       bool       `json:"has_missing_exit"`
	HasManualCorrections bool       `json:"has_manual_corrections"`
}

func toSummaryDTO(s *domain.DaySummary) summaryDTO {
	return summaryDTO{
		ID:                   s.ID,
		EmployeeID:           s.EmployeeID,
		Date:                 string(s.Date),
		FirstEntry:           s.FirstEntry,
		LastExit:             s.LastExit,
		TotalSecondsInOffice: s.TotalSecondsInOffice,
		ExpectedSeconds:      s.ExpectedSeconds,
		OvertimeSeconds:      s.OvertimeSeconds,
		UnderworkSeconds:     s.UnderworkSeconds,
		SessionsCount:        s.SessionsCount,
		Status:               string(s.Status),
		HasMissingExit:       s.HasMissingExit,
		HasManualCorrections: s.HasManualCorrections,
	}
}

type auditDTO struct {
	ID          string    `json:"id"`
	EmployeeID  *string   `json:"employee_id,omitempty"`
	Date        string    `json:"date"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	OldValue    *string   `json:"old_value,omitempty"`
	NewValue    *string   `json:"new_value,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	ChangedBy   *string   `json:"changed_by,omitempty"`
	ChangedAt   time.Time `json:"changed_at"`
}

func toAuditDTO(e *domain.AuditEntry) auditDTO {
	return auditDTO{
		ID:          e.ID,
		EmployeeID:  e.EmployeeID,
		Date:        string(e.Date),
		Action:      string(e.Action),
		Description: e.Description,
		OldValue:    e.OldValue,
		NewValue:    e.NewValue,
		Reason:      e.Reason,
		ChangedBy:   e.ChangedBy,
		ChangedAt:   e.ChangedAt,
	}
}

type pairDTO struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
}

type anomaliesDTO struct {
	DuplicateEntries int `json:"duplicate_entries"`
	OrphanExits      int `json:"orphan_exits"`
}

type batchReportDTO struct {
	EventsScanned    int          `json:"events_scanned"`
	EventsProcessed  int          `json:"events_processed"`
	PairsTotal       int          `json:"pairs_total"`
	PairsProcessed   int          `json:"pairs_processed"`
	PairsSkipped     int          `json:"pairs_skipped"`
	PairsFailed      int          `json:"pairs_failed"`
	SessionsCreated  int          `json:"sessions_created"`
	SessionsClosed   int          `json:"sessions_closed"`
	OpenSessions     int          `json:"open_sessions"`
	SummariesWritten int          `json:"summaries_written"`
	Anomalies        anomaliesDTO `json:"anomalies"`
	FailedPairs      []pairDTO    `json:"failed_pairs,omitempty"`
	DryRun           bool         `json:"dry_run"`
	Interrupted      bool         `json:"interrupted"`
	ElapsedMS        int64        `json:"elapsed_ms"`
}

func toBatchReportDTO(r *domain.BatchReport) batchReportDTO {
	dto := batchReportDTO{
		EventsScanned:    r.EventsScanned,
		EventsProcessed:  r.EventsProcessed,
		PairsTotal:       r.PairsTotal,
		PairsProcessed:   r.PairsProcessed,
		PairsSkipped:     r.PairsSkipped,
		PairsFailed:      r.PairsFailed,
		SessionsCreated:  r.SessionsCreated,
		SessionsClosed:   r.SessionsClosed,
		OpenSessions:     r.OpenSessions,
		SummariesWritten: r.SummariesWritten,
		Anomalies: anomaliesDTO{
			DuplicateEntries: r.Anomalies.DuplicateEntries,
			OrphanExits:      r.Anomalies.OrphanExits,
		},
		DryRun:      r.DryRun,
		Interrupted: r.Interrupted,
		ElapsedMS:   r.Elapsed.Milliseconds(),
	}
	for _, p := range r.FailedPairs {
		dto.FailedPairs = append(dto.FailedPairs, pairDTO{EmployeeID: p.EmployeeID, Date: string(p.Date)})
	}
	return dto
}

type rebuildReportDTO struct {
	batchReportDTO
	From              string `json:"from_date"`
	To                string `json:"to_date"`
	SessionsDeleted   int    `json:"sessions_deleted"`
	SummariesDeleted  int    `json:"summaries_deleted"`
	EventsReset       int    `json:"events_reset"`
	SummariesReplaced int    `json:"summaries_replaced"`
}

func toRebuildReportDTO(r *domain.RebuildReport) rebuildReportDTO {
	return rebuildReportDTO{
		batchReportDTO:    toBatchReportDTO(&r.BatchReport),
		From:              string(r.Range.From),
		To:                string(r.Range.To),
		SessionsDeleted:   r.SessionsDeleted,
		SummariesDeleted:  r.SummariesDeleted,
		EventsReset:       r.EventsReset,
		SummariesReplaced: r.SummariesReplaced,
	}
}

type cleanupReportDTO struct {
	Cutoff       string `json:"cutoff"`
	Sessions     int64  `json:"sessions"`
	Summaries    int64  `json:"summaries"`
	Events       int64  `json:"events"`
	AuditEntries int64  `json:"audit_entries"`
	TotalRows    int64  `json:"total_rows"`
	DryRun       bool   `json:"dry_run"`
	ElapsedMS    int64  `json:"elapsed_ms"`
}

func toCleanupReportDTO(r *domain.CleanupReport) cleanupReportDTO {
	return cleanupReportDTO{
		Cutoff:       string(r.Cutoff),
		Sessions:     r.Sessions,
		Summaries:    r.Summaries,
		Events:       r.Events,
		AuditEntries: r.AuditEntries,
		TotalRows:    r.TotalRows(),
		DryRun:       r.DryRun,
		ElapsedMS:    r.Elapsed.Milliseconds(),
	}
}

type statsReportDTO struct {
	PeriodFrom        string           `json:"period_from"`
	PeriodTo          string           `json:"period_to"`
	ActiveEmployees   int64            `json:"active_employees"`
	InactiveEmployees int64            `json:"inactive_employees"`
	ActiveDevices     int64            `json:"active_devices"`
	TotalDevices      int64            `json:"total_devices"`
	TotalEvents       int64            `json:"total_events"`
	EventsInPeriod    int64            `json:"events_in_period"`
	UnprocessedEvents int64            `json:"unprocessed_events"`
	EventsByType      map[string]int64 `json:"events_by_type"`
	TotalSessions     int64            `json:"total_sessions"`
	SessionsInPeriod  int64            `json:"sessions_in_period"`
	OpenSessions      int64            `json:"open_sessions"`
	TotalSummaries    int64            `json:"total_summaries"`
	SummariesInPeriod int64            `json:"summaries_in_period"`
	SummariesByStatus map[string]int64 `json:"summaries_by_status"`
	OfficeSeconds     int64            `json:"office_seconds_in_period"`
	OvertimeSeconds   int64            `json:"overtime_seconds_in_period"`
	UnderworkSeconds  int64            `json:"underwork_seconds_in_period"`
}

func toStatsReportDTO(r *domain.StatsReport) statsReportDTO {
	dto := statsReportDTO{
		PeriodFrom:        string(r.PeriodFrom),
		PeriodTo:          string(r.PeriodTo),
		ActiveEmployees:   r.ActiveEmployees,
		InactiveEmployees: r.InactiveEmployees,
		ActiveDevices:     r.ActiveDevices,
		TotalDevices:      r.TotalDevices,
		TotalEvents:       r.TotalEvents,
		EventsInPeriod:    r.EventsInPeriod,
		UnprocessedEvents: r.UnprocessedEvents,
		EventsByType:      make(map[string]int64, len(r.EventsByType)),
		TotalSessions:     r.TotalSessions,
		SessionsInPeriod:  r.SessionsInPeriod,
		OpenSessions:      r.OpenSessions,
		TotalSummaries:    r.TotalSummaries,
		SummariesInPeriod: r.SummariesInPeriod,
		SummariesByStatus: make(map[string]int64, len(r.SummariesByStatus)),
		OfficeSeconds:     r.TotalOfficeSeconds,
		OvertimeSeconds:   r.TotalOvertime,
		UnderworkSeconds:  r.TotalUnderwork,
	}
	for typ, n := range r.EventsByType {
		dto.EventsByType[string(typ)] = n
	}
	for status, n := range r.SummariesByStatus {
		dto.SummariesByStatus[string(status)] = n
	}
	return dto
}

type listResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
