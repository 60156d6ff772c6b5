package domain

import "github.com/google/uuid"

// NewID generates a UUIDv7 string for application-owned records.
// UUIDv7 keeps inserts roughly time-ordered, which doubles as the
// insertion-order tie-break for events with identical timestamps.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
