package api

import (
	"net/http"

	"worktime/internal/domain"
)

type runRequest struct {
	EmployeeID *string `json:"employee_id"`
	DeviceID   *string `json:"device_id"`
	FromDate   *string `json:"from_date"`
	ToDate     *string `json:"to_date"`
	Force      bool    `json:"force"`
	DryRun     bool    `json:"dry_run"`
	Verbose    bool    `json:"verbose"`
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	sel, err := buildSelector(req.EmployeeID, req.DeviceID, req.FromDate, req.ToDate)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	pol := domain.ProcessPolicy{DryRun: req.DryRun, Verbose: req.Verbose}
	if req.Force {
		pol.Mode = domain.ModeForce
	}
	report, err := h.engine.RunBatch(r.Context(), sel, pol)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toBatchReportDTO(report))
}

type rebuildRequest struct {
	FromDate   string  `json:"from_date"`
	ToDate     string  `json:"to_date"`
	EmployeeID *string `json:"employee_id"`
	Force      bool    `json:"force"`
	DryRun     bool    `json:"dry_run"`
}

func (h *Handler) handleRebuild(w http.ResponseWriter, r *http.Request) {
	var req rebuildRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	dr, err := parseRange(req.FromDate, req.ToDate)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	pol := domain.ProcessPolicy{Mode: domain.ModeForce, DryRun: req.DryRun}
	if req.Force {
		pol.Mode = domain.ModeRebuild
	}
	sel := domain.Selector{EmployeeID: req.EmployeeID}
	report, err := h.engine.Rebuild(r.Context(), dr, sel, pol)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toRebuildReportDTO(report))
}

type cleanupRequest struct {
	OlderThanDays int  `json:"older_than_days"`
	KeepAuditLogs bool `json:"keep_audit_logs"`
	KeepEvents    bool `json:"keep_skud_events"`
	Confirm       bool `json:"confirm"`
	DryRun        bool `json:"dry_run"`
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	var req cleanupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	flags := domain.RetentionFlags{KeepAuditLogs: req.KeepAuditLogs, KeepSKUDEvents: req.KeepEvents}
	report, err := h.cleaner.Cleanup(r.Context(), req.OlderThanDays, flags, req.Confirm, req.DryRun)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toCleanupReportDTO(report))
}

type reprocessRequest struct {
	EmployeeID string  `json:"employee_id"`
	Date       *string `json:"date"`
	FromDate   *string `json:"from_date"`
	ToDate     *string `json:"to_date"`
	Reason     string  `json:"reason"`
	ChangedBy  string  `json:"changed_by"`
}

func (h *Handler) handleReprocess(w http.ResponseWriter, r *http.Request) {
	var req reprocessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, r, h.log, domain.ErrValidation("employee_id is required"))
		return
	}

	var dr domain.DateRange
	switch {
	case req.Date != nil:
		d, err := domain.ParseDate(*req.Date)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		dr = domain.DateRange{From: d, To: d}
	case req.FromDate != nil && req.ToDate != nil:
		var err error
		if dr, err = parseRange(*req.FromDate, *req.ToDate); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	default:
		writeError(w, r, h.log, domain.ErrValidation("either date or from_date and to_date are required"))
		return
	}

	report, err := h.engine.Reprocess(r.Context(), req.EmployeeID, dr, req.Reason, req.ChangedBy)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toBatchReportDTO(report))
}

func buildSelector(employeeID, deviceID, from, to *string) (domain.Selector, error) {
	var sel domain.Selector
	sel.EmployeeID = employeeID
	sel.DeviceID = deviceID
	if from != nil {
		d, err := domain.ParseDate(*from)
		if err != nil {
			return sel, err
		}
		sel.From = &d
	}
	if to != nil {
		d, err := domain.ParseDate(*to)
		if err != nil {
			return sel, err
		}
		sel.To = &d
	}
	return sel, nil
}

func parseRange(from, to string) (domain.DateRange, error) {
	f, err := domain.ParseDate(from)
	if err != nil {
		return domain.DateRange{}, err
	}
	t, err := domain.ParseDate(to)
	if err != nil {
		return domain.DateRange{}, err
	}
	dr := domain.DateRange{From: f, To: t}
	return dr, dr.Validate()
}
