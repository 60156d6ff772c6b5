package worktime

import (
	"context"
	"log/slog"
	"time"

	"worktime/internal/domain"
)

// IngestRequest is one raw event reported by a device integration.
type IngestRequest struct {
	EmployeeID *string
	DeviceID   string
	CardNumber string
	Type       domain.EventType
	EventTime  time.Time
	RawData    string
}

// Ingestor appends raw access events to the event store. It validates
// references but never derives anything; derivation is the batch
// processor's job.
type Ingestor struct {
	events    domain.EventRepository
	devices   domain.DeviceRepository
	employees domain.EmployeeRepository
	log       *slog.Logger
	loc       *time.Location
	now       func() time.Time
}

func NewIngestor(events domain.EventRepository, devices domain.DeviceRepository, employees domain.EmployeeRepository, log *slog.Logger, loc *time.Location) *Ingestor {
	if loc == nil {
		loc = time.Local
	}
	return &Ingestor{
		events:    events,
		devices:   devices,
		employees: employees,
		log:       log.With("component", "ingest"),
		loc:       loc,
		now:       time.Now,
	}
}

// Ingest validates and stores one event. The event time is normalized
// to the engine timezone so the calendar-date attribution is stable no
// matter what offset the device reports.
func (i *Ingestor) Ingest(ctx context.Context, req IngestRequest) (*domain.AccessEvent, error) {
	if !req.Type.Valid() {
		return nil, domain.ErrValidation("unknown event type %q", req.Type)
	}
	if req.EventTime.IsZero() {
		return nil, domain.ErrValidation("event time is required")
	}

	dev, err := i.devices.Get(ctx, req.DeviceID)
	if err != nil {
		return nil, err
	}
	if !dev.IsActive {
		return nil, domain.ErrValidation("device %s is inactive", dev.ID)
	}
	if req.EmployeeID != nil {
		if _, err := i.employees.Get(ctx, *req.EmployeeID); err != nil {
			return nil, err
		}
	}

	e := &domain.AccessEvent{
		ID:         domain.NewID(),
		EmployeeID: req.EmployeeID,
		DeviceID:   req.DeviceID,
		CardNumber: req.CardNumber,
		Type:       req.Type,
		EventTime:  req.EventTime.In(i.loc),
		RawData:    req.RawData,
		CreatedAt:  i.now(),
	}
	if err := i.events.Insert(ctx, e); err != nil {
		return nil, err
	}

	i.log.Debug("event ingested",
		"event_id", e.ID, "device_id", e.DeviceID, "type", e.Type, "date", e.Date())
	return e, nil
}
