package worktime

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/internal/domain"
)

func mkEvent(typ domain.EventType, at time.Time) domain.AccessEvent {
	id := domain.NewID()
	emp := "emp-1"
	return domain.AccessEvent{
		ID:         id,
		EmployeeID: &emp,
		DeviceID:   "dev-1",
		Type:       typ,
		EventTime:  at,
		CreatedAt:  at,
	}
}

func TestBuildSessionsPairsEntriesAndExits(t *testing.T) {
	day := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
	events := []domain.AccessEvent{
		mkEvent(domain.EventEntry, day.Add(9*time.Hour)),
		mkEvent(domain.EventExit, day.Add(12*time.Hour)),
		mkEvent(domain.EventEntry, day.Add(13*time.Hour)),
		mkEvent(domain.EventExit, day.Add(17*time.Hour)),
	}

	res := BuildSessions("emp-1", "2025-09-19", events, time.Now())
	require.Len(t, res.Sessions, 2)
	require.Len(t, res.EventIDs, 4)
	assert.Zero(t, res.Anomalies.Total())

	first, second := res.Sessions[0], res.Sessions[1]
	assert.Equal(t, domain.SessionAuto, first.Status)
	assert.EqualValues(t, 3*3600, first.DurationSeconds())
	assert.EqualValues(t, 4*3600, second.DurationSeconds())
	assert.Equal(t, domain.Date("2025-09-19"), first.Date)
}

func TestBuildSessionsOrderInsensitive(t *testing.T) {
	day := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
	const pairs = 5
	var events []domain.AccessEvent
	for i := 0; i < pairs; i++ {
		events = append(events,
			mkEvent(domain.EventEntry, day.Add(time.Duration(2*i)*time.Hour)),
			mkEvent(domain.EventExit, day.Add(time.Duration(2*i+1)*time.Hour)),
		)
	}

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]domain.AccessEvent, len(events))
		copy(shuffled, events)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		res := BuildSessions("emp-1", "2025-09-19", shuffled, time.Now())
		require.Len(t, res.Sessions, pairs)
		assert.Zero(t, res.Anomalies.Total())
		for i, s := range res.Sessions {
			assert.True(t, s.StartTime.Equal(events[2*i].EventTime))
			require.NotNil(t, s.EndTime)
			assert.True(t, s.EndTime.Equal(events[2*i+1].EventTime))
		}
	}
}

func TestBuildSessionsOrphanExit(t *testing.T) {
	day := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
	events := []domain.AccessEvent{
		mkEvent(domain.EventExit, day.Add(8*time.Hour)),
		mkEvent(domain.EventEntry, day.Add(9*time.Hour)),
		mkEvent(domain.EventExit, day.Add(17*time.Hour)),
	}

	res := BuildSessions("emp-1", "2025-09-19", events, time.Now())
	require.Len(t, res.Sessions, 1)
	assert.Equal(t, 1, res.Anomalies.OrphanExits)
	// The orphan is still consumed.
	assert.Len(t, res.EventIDs, 3)
}

func TestBuildSessionsDuplicateEntryIsNoOp(t *testing.T) {
	day := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
	events := []domain.AccessEvent{
		mkEvent(domain.EventEntry, day.Add(9*time.Hour)),
		mkEvent(domain.EventEntry, day.Add(10*time.Hour)),
		mkEvent(domain.EventExit, day.Add(17*time.Hour)),
	}

	res := BuildSessions("emp-1", "2025-09-19", events, time.Now())
	require.Len(t, res.Sessions, 1)
	assert.Equal(t, 1, res.Anomalies.DuplicateEntries)
	// The session keeps the first entry's start.
	assert.True(t, res.Sessions[0].StartTime.Equal(day.Add(9*time.Hour)))
	assert.EqualValues(t, 8*3600, res.Sessions[0].DurationSeconds())
}

func TestBuildSessionsMissingExitStaysOpen(t *testing.T) {
	day := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
	events := []domain.AccessEvent{
		mkEvent(domain.EventEntry, day.Add(9*time.Hour)),
	}

	res := BuildSessions("emp-1", "2025-09-19", events, time.Now())
	require.Len(t, res.Sessions, 1)
	s := res.Sessions[0]
	assert.True(t, s.IsOpen())
	assert.Nil(t, s.EndTime)
	assert.Equal(t, domain.SessionOpen, s.Status)
	assert.Zero(t, s.DurationSeconds())
}

func TestBuildSessionsDeniedAndAlarmIgnored(t *testing.T) {
	day := time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)
	events := []domain.AccessEvent{
		mkEvent(domain.EventDenied, day.Add(8*time.Hour)),
		mkEvent(domain.EventEntry, day.Add(9*time.Hour)),
		mkEvent(domain.EventAlarm, day.Add(10*time.Hour)),
		mkEvent(domain.EventExit, day.Add(17*time.Hour)),
	}

	res := BuildSessions("emp-1", "2025-09-19", events, time.Now())
	require.Len(t, res.Sessions, 1)
	assert.Zero(t, res.Anomalies.Total())
	// Non-session events are still consumed.
	assert.Len(t, res.EventIDs, 4)
}

func TestBuildSessionsTieBreakIsStable(t *testing.T) {
	at := time.Date(2025, 9, 19, 9, 0, 0, 0, time.UTC)
	created := at.Add(time.Minute)

	a := mkEvent(domain.EventEntry, at)
	b := mkEvent(domain.EventEntry, at)
	a.CreatedAt = created
	b.CreatedAt = created
	exit := mkEvent(domain.EventExit, at.Add(8*time.Hour))

	res1 := BuildSessions("emp-1", "2025-09-19", []domain.AccessEvent{a, b, exit}, time.Now())
	res2 := BuildSessions("emp-1", "2025-09-19", []domain.AccessEvent{b, a, exit}, time.Now())

	require.Len(t, res1.Sessions, 1)
	require.Len(t, res2.Sessions, 1)
	// Identical timestamps fall back to the id, so both orderings pick
	// the same winning entry.
	assert.True(t, res1.Sessions[0].StartTime.Equal(res2.Sessions[0].StartTime))
	assert.Equal(t, 1, res1.Anomalies.DuplicateEntries)
	assert.Equal(t, 1, res2.Anomalies.DuplicateEntries)
}
