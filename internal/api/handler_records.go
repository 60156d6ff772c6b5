package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"worktime/internal/domain"
	"worktime/internal/service/worktime"
)

type ingestRequest struct {
	EmployeeID *string   `json:"employee_id"`
	DeviceID   string    `json:"device_id"`
	CardNumber string    `json:"card_number"`
	EventType  string    `json:"event_type"`
	EventTime  time.Time `json:"event_time"`
	RawData    string    `json:"raw_data"`
}

func (h *Handler) handleIngestEvent(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	e, err := h.ingest.Ingest(r.Context(), worktime.IngestRequest{
		EmployeeID: req.EmployeeID,
		DeviceID:   req.DeviceID,
		CardNumber: req.CardNumber,
		Type:       domain.EventType(req.EventType),
		EventTime:  req.EventTime,
		RawData:    req.RawData,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, toEventDTO(e))
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	dr, page, err := h.listParams(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if _, err := h.employees.Get(r.Context(), employeeID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	sessions, total, err := h.sessions.ListForEmployee(r.Context(), employeeID, dr, page)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	resp := listResponse[sessionDTO]{Items: make([]sessionDTO, 0, len(sessions)), Total: total}
	for i := range sessions {
		resp.Items = append(resp.Items, toSessionDTO(&sessions[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	dr, page, err := h.listParams(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if _, err := h.employees.Get(r.Context(), employeeID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	summaries, total, err := h.summaries.ListForEmployee(r.Context(), employeeID, dr, page)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	resp := listResponse[summaryDTO]{Items: make([]summaryDTO, 0, len(summaries)), Total: total}
	for i := range summaries {
		resp.Items = append(resp.Items, toSummaryDTO(&summaries[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

type closeSessionRequest struct {
	EndTime  time.Time `json:"end_time"`
	Reason   string    `json:"reason"`
	ClosedBy string    `json:"closed_by"`
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	var req closeSessionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if req.EndTime.IsZero() {
		writeError(w, r, h.log, domain.ErrValidation("end_time is required"))
		return
	}

	s, err := h.engine.CloseSession(r.Context(), chi.URLParam(r, "sessionID"), req.EndTime, req.Reason, req.ClosedBy)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toSessionDTO(s))
}

func (h *Handler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	var filter domain.AuditFilter
	q := r.URL.Query()
	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("action"); v != "" {
		a := domain.AuditAction(v)
		filter.Action = &a
	}
	if v := q.Get("from"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		filter.From = &d
	}
	if v := q.Get("to"); v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		filter.To = &d
	}
	filter.Page = pageFromQuery(r)

	entries, total, err := h.audit.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	resp := listResponse[auditDTO]{Items: make([]auditDTO, 0, len(entries)), Total: total}
	for i := range entries {
		resp.Items = append(resp.Items, toAuditDTO(&entries[i]))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	to := domain.Today(h.loc)
	from := to.AddDays(-30)
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = domain.ParseDate(v); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = domain.ParseDate(v); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}
	if from.After(to) {
		writeError(w, r, h.log, domain.ErrValidation("from date %s is after to date %s", from, to))
		return
	}

	report, err := h.stats.Collect(r.Context(), from, to)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toStatsReportDTO(report))
}

// listParams parses the shared from/to/page query parameters of the
// listing endpoints. The range defaults to the last 30 days.
func (h *Handler) listParams(r *http.Request) (domain.DateRange, domain.PageRequest, error) {
	q := r.URL.Query()
	to := domain.Today(h.loc)
	from := to.AddDays(-30)
	var err error
	if v := q.Get("from"); v != "" {
		if from, err = domain.ParseDate(v); err != nil {
			return domain.DateRange{}, domain.PageRequest{}, err
		}
	}
	if v := q.Get("to"); v != "" {
		if to, err = domain.ParseDate(v); err != nil {
			return domain.DateRange{}, domain.PageRequest{}, err
		}
	}
	dr := domain.DateRange{From: from, To: to}
	if err := dr.Validate(); err != nil {
		return domain.DateRange{}, domain.PageRequest{}, err
	}
	return dr, pageFromQuery(r), nil
}

func pageFromQuery(r *http.Request) domain.PageRequest {
	var page domain.PageRequest
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil {
		page.PageSize = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil {
		page.Offset = v
	}
	return page
}
