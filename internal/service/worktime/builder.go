// Package worktime implements the event-to-session-to-summary
// derivation engine and its orchestration.
package worktime

import (
	"sort"
	"time"

	"worktime/internal/domain"
)

// BuildResult is what one builder pass over a (employee, date) pair
// produced. EventIDs lists every consumed event, including denied and
// alarm events, so the caller can flag them processed in the same
// transaction as the session writes.
type BuildResult struct {
	Sessions  []domain.WorkSession
	Anomalies domain.AnomalyCounts
	EventIDs  []string
}

// BuildSessions pairs entry/exit events into work sessions. Pure: no
// I/O, deterministic for any permutation of the input slice.
//
// The scan keeps one "open session" slot. An entry with a session
// already open is a duplicate and never starts a second session; an
// exit with nothing open is an orphan and never creates a session.
// Both are counted as anomalies and still consumed. A session left
// open at the end of the scan stays open for administrative closure.
func BuildSessions(employeeID string, date domain.Date, events []domain.AccessEvent, now time.Time) BuildResult {
	sorted := make([]domain.AccessEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.EventTime.Equal(b.EventTime) {
			return a.EventTime.Before(b.EventTime)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	var res BuildResult
	var open *domain.WorkSession

	for _, e := range sorted {
		res.EventIDs = append(res.EventIDs, e.ID)

		switch e.Type {
		case domain.EventEntry:
			if open != nil {
				res.Anomalies.DuplicateEntries++
				continue
			}
			open = &domain.WorkSession{
				ID:         domain.NewID(),
				EmployeeID: employeeID,
				Date:       date,
				StartTime:  e.EventTime,
				Status:     domain.SessionOpen,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
		case domain.EventExit:
			if open == nil {
				res.Anomalies.OrphanExits++
				continue
			}
			end := e.EventTime
			open.EndTime = &end
			open.Status = domain.SessionAuto
			res.Sessions = append(res.Sessions, *open)
			open = nil
		default:
			// denied and alarm never affect sessions
		}
	}

	if open != nil {
		res.Sessions = append(res.Sessions, *open)
	}
	return res
}
