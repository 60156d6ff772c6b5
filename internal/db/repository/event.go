package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"worktime/internal/domain"
)

// EventRepo stores raw access events.
type EventRepo struct {
	q DBTX
}

var _ domain.EventRepository = (*EventRepo)(nil)

func NewEventRepo(q DBTX) *EventRepo {
	return &EventRepo{q: q}
}

const eventColumns = `id, employee_id, device_id, card_number, event_type, event_time, raw_data, processed, created_at`

func (r *EventRepo) Insert(ctx context.Context, e *domain.AccessEvent) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO access_events (id, employee_id, device_id, card_number, event_type, event_time, event_date, raw_data, processed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullStr(e.EmployeeID), e.DeviceID, e.CardNumber, string(e.Type),
		fmtTime(e.EventTime), string(e.Date()), e.RawData, boolToInt(e.Processed), fmtTime(e.CreatedAt),
	)
	if err != nil {
		return mapDBError("insert access event", err)
	}
	return nil
}

func (r *EventRepo) ListForPair(ctx context.Context, employeeID string, date domain.Date) ([]domain.AccessEvent, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+eventColumns+`
		FROM access_events
		WHERE employee_id = ? AND event_date = ?
		ORDER BY event_time, created_at, id`,
		employeeID, string(date),
	)
	if err != nil {
		return nil, fmt.Errorf("list events for pair: %w", err)
	}
	defer rows.Close()

	var out []domain.AccessEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EventRepo) ListPairs(ctx context.Context, sel domain.Selector, unprocessedOnly bool) ([]domain.Pair, error) {
	var (
		conds = []string{"employee_id IS NOT NULL"}
		args  []any
	)
	if unprocessedOnly {
		conds = append(conds, "processed = 0")
	}
	if sel.EmployeeID != nil {
		conds = append(conds, "employee_id = ?")
		args = append(args, *sel.EmployeeID)
	}
	if sel.DeviceID != nil {
		conds = append(conds, "device_id = ?")
		args = append(args, *sel.DeviceID)
	}
	if sel.From != nil {
		conds = append(conds, "event_date >= ?")
		args = append(args, string(*sel.From))
	}
	if sel.To != nil {
		conds = append(conds, "event_date <= ?")
		args = append(args, string(*sel.To))
	}

	query := `
		SELECT DISTINCT employee_id, event_date
		FROM access_events
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY event_date, employee_id`

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list event pairs: %w", err)
	}
	defer rows.Close()

	var out []domain.Pair
	for rows.Next() {
		var p domain.Pair
		var date string
		if err := rows.Scan(&p.EmployeeID, &date); err != nil {
			return nil, fmt.Errorf("scan event pair: %w", err)
		}
		p.Date = domain.Date(date)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *EventRepo) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := r.q.ExecContext(ctx,
		`UPDATE access_events SET processed = 1 WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("mark events processed: %w", err)
	}
	return nil
}

func (r *EventRepo) ResetProcessed(ctx context.Context, employeeID string, date domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE access_events SET processed = 0
		WHERE employee_id = ? AND event_date = ? AND processed = 1`,
		employeeID, string(date),
	)
	if err != nil {
		return 0, fmt.Errorf("reset processed events: %w", err)
	}
	return res.RowsAffected()
}

func (r *EventRepo) CountBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	var n int64
	err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM access_events WHERE event_date < ?`, string(cutoff)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count events before cutoff: %w", err)
	}
	return n, nil
}

func (r *EventRepo) DeleteBefore(ctx context.Context, cutoff domain.Date) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM access_events WHERE event_date < ?`, string(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete events before cutoff: %w", err)
	}
	return res.RowsAffected()
}

func scanEvent(rows *sql.Rows) (domain.AccessEvent, error) {
	var (
		e                    domain.AccessEvent
		employeeID           sql.NullString
		eventType            string
		eventTime, createdAt string
		processed            int
	)
	if err := rows.Scan(&e.ID, &employeeID, &e.DeviceID, &e.CardNumber, &eventType,
		&eventTime, &e.RawData, &processed, &createdAt); err != nil {
		return domain.AccessEvent{}, fmt.Errorf("scan access event: %w", err)
	}
	e.EmployeeID = strPtr(employeeID)
	e.Type = domain.EventType(eventType)
	e.Processed = processed != 0

	var err error
	if e.EventTime, err = parseTime(eventTime); err != nil {
		return domain.AccessEvent{}, fmt.Errorf("parse event_time: %w", err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.AccessEvent{}, fmt.Errorf("parse created_at: %w", err)
	}
	return e, nil
}
