package domain

import "time"

// AuditAction names a mutating operation recorded in the audit log.
type AuditAction string

const (
	AuditCreateSession AuditAction = "create_session"
	AuditEditSession   AuditAction = "edit_session"
	AuditDeleteSession AuditAction = "delete_session"
	AuditCloseSession  AuditAction = "close_session"
	AuditCreateSummary AuditAction = "create_summary"
	AuditEditSummary   AuditAction = "edit_summary"
	AuditReprocessDay  AuditAction = "reprocess_day"
	AuditBulkImport    AuditAction = "bulk_import"
	AuditCleanup       AuditAction = "cleanup"
)

// AuditEntry is one append-only record of a mutating operation.
// EmployeeID is nil for system-wide operations (batch runs, cleanup).
type AuditEntry struct {
	ID          string
	EmployeeID  *string
	Date        Date
	Action      AuditAction
	Description string
	OldValue    *string // JSON snapshot, when applicable
	NewValue    *string
	Reason      string
	ChangedBy   *string // nil for unattended/system runs
	ChangedAt   time.Time
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	EmployeeID *string
	Action     *AuditAction
	From       *Date
	To         *Date
	Page       PageRequest
}
