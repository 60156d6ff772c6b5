package domain

import "time"

// EventType classifies a raw access event.
type EventType string

const (
	EventEntry  EventType = "entry"
	EventExit   EventType = "exit"
	EventDenied EventType = "denied"
	EventAlarm  EventType = "alarm"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventEntry, EventExit, EventDenied, EventAlarm:
		return true
	}
	return false
}

// AccessEvent is one raw pass through an access-control device.
// Immutable once recorded except for the Processed flag.
type AccessEvent struct {
	ID         string
	EmployeeID *string // nil when the card could not be matched
	DeviceID   string
	CardNumber string
	Type       EventType
	EventTime  time.Time
	RawData    string
	Processed  bool
	CreatedAt  time.Time
}

// Date returns the calendar date the event is attributed to.
func (e AccessEvent) Date() Date {
	return DateOf(e.EventTime)
}

// Device is an access-control device (turnstile, door reader).
type Device struct {
	ID        string
	Name      string
	Location  string
	IsActive  bool
	CreatedAt time.Time
}
