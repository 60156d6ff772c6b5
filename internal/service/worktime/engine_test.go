package worktime

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/internal/config"
	"worktime/internal/db"
	"worktime/internal/db/repository"
	"worktime/internal/domain"
)

type engineFixture struct {
	engine    *Engine
	store     *repository.Store
	employee  *domain.Employee
	device    *domain.Device
	employees *repository.EmployeeRepo
	devices   *repository.DeviceRepo
	leaves    *repository.LeaveRepo
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	writeDB, _ := db.OpenTestSQLite(t)
	store := repository.NewStore(writeDB)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx := context.Background()
	employees := repository.NewEmployeeRepo(writeDB)
	devices := repository.NewDeviceRepo(writeDB)
	leaves := repository.NewLeaveRepo(writeDB)

	emp := &domain.Employee{
		ID:           domain.NewID(),
		BadgeNumber:  "1001",
		LastName:     "Ivanova",
		FirstName:    "Anna",
		HireDate:     "2020-01-01",
		IsActive:     true,
		WorkFraction: 1.0,
		DailyHours:   8.0,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, employees.Insert(ctx, emp))

	dev := &domain.Device{
		ID:        domain.NewID(),
		Name:      "turnstile-1",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, devices.Insert(ctx, dev))

	dir := NewDirectoryService(employees, leaves, config.DefaultCalendar())
	return &engineFixture{
		engine:    NewEngine(store, dir, log, 100),
		store:     store,
		employee:  emp,
		device:    dev,
		employees: employees,
		devices:   devices,
		leaves:    leaves,
	}
}

func (f *engineFixture) addEvent(t *testing.T, typ domain.EventType, at time.Time) {
	t.Helper()
	e := &domain.AccessEvent{
		ID:         domain.NewID(),
		EmployeeID: &f.employee.ID,
		DeviceID:   f.device.ID,
		Type:       typ,
		EventTime:  at,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, f.store.Events().Insert(context.Background(), e))
}

// 2025-09-19 is a Friday.
var friday = time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC)

func TestRunBatchFullDay(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, friday.Add(17*time.Hour))

	report, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.PairsProcessed)
	assert.Equal(t, 1, report.SessionsCreated)
	assert.Equal(t, 1, report.SummariesWritten)
	assert.Equal(t, 2, report.EventsProcessed)
	assert.False(t, report.Interrupted)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPresent, sum.Status)
	assert.EqualValues(t, 28800, sum.TotalSecondsInOffice)
	assert.EqualValues(t, 28800, sum.ExpectedSeconds)
	assert.EqualValues(t, 0, sum.OvertimeSeconds)
	assert.EqualValues(t, 0, sum.UnderworkSeconds)
}

func TestRunBatchMissingExit(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))

	report, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.OpenSessions)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusProblem, sum.Status)
	assert.True(t, sum.HasMissingExit)
}

func TestRunBatchIdempotent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, friday.Add(17*time.Hour))

	first, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.PairsProcessed)

	sumBefore, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)

	second, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Zero(t, second.PairsProcessed)
	assert.Zero(t, second.SessionsCreated)
	assert.Zero(t, second.SummariesWritten)

	sumAfter, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.Equal(t, sumBefore.ID, sumAfter.ID)
	assert.Equal(t, sumBefore.TotalSecondsInOffice, sumAfter.TotalSecondsInOffice)
}

func TestRunBatchDryRunWritesNothing(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, friday.Add(17*time.Hour))

	report, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{DryRun: true})
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.PairsProcessed)
	assert.Equal(t, 1, report.SessionsCreated)
	assert.Equal(t, 1, report.SummariesWritten)

	// Nothing persisted: sessions, summaries, processed flags, audit.
	sessions, err := f.store.Sessions().ListForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.Empty(t, sessions)
	_, err = f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)

	pending, err := f.store.Events().ListPairs(ctx, domain.Selector{}, true)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	entries, total, err := f.store.Audit().List(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, entries)

	// A real run after the dry run reports the same derivation counts.
	wet, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Equal(t, report.SessionsCreated, wet.SessionsCreated)
	assert.Equal(t, report.SummariesWritten, wet.SummariesWritten)
}

func TestRunBatchWritesBatchAuditEntry(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, friday.Add(17*time.Hour))

	_, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)

	act := domain.AuditBulkImport
	entries, total, err := f.store.Audit().List(ctx, domain.AuditFilter{Action: &act})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Description, "1 pairs")
}

func TestRunBatchKeepsManualSessions(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	end := friday.Add(13 * time.Hour)
	manual := &domain.WorkSession{
		ID:           domain.NewID(),
		EmployeeID:   f.employee.ID,
		Date:         "2025-09-19",
		StartTime:    friday.Add(12 * time.Hour),
		EndTime:      &end,
		Status:       domain.SessionManual,
		ManualReason: "badge left at home",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	require.NoError(t, f.store.Sessions().Insert(ctx, manual))

	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, friday.Add(12*time.Hour))

	_, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)

	sessions, err := f.store.Sessions().ListForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.True(t, sum.HasManualCorrections)
	// 3h auto + 1h manual.
	assert.EqualValues(t, 4*3600, sum.TotalSecondsInOffice)
}

func TestRebuildReplacesCorruptedSummary(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, friday.Add(17*time.Hour))

	// Prior corrupted summary with impossible numbers.
	now := time.Now()
	require.NoError(t, f.store.Summaries().Replace(ctx, &domain.DaySummary{
		ID:                   domain.NewID(),
		EmployeeID:           f.employee.ID,
		Date:                 "2025-09-19",
		TotalSecondsInOffice: 999999,
		Status:               domain.StatusPresent,
		CreatedAt:            now,
		UpdatedAt:            now,
	}))
	// Stale manual session that a forced rebuild must clear too.
	end := friday.Add(23 * time.Hour)
	require.NoError(t, f.store.Sessions().Insert(ctx, &domain.WorkSession{
		ID:         domain.NewID(),
		EmployeeID: f.employee.ID,
		Date:       "2025-09-19",
		StartTime:  friday.Add(22 * time.Hour),
		EndTime:    &end,
		Status:     domain.SessionManual,
		CreatedAt:  now,
		UpdatedAt:  now,
	}))

	r := domain.DateRange{From: "2025-09-19", To: "2025-09-19"}
	report, err := f.engine.Rebuild(ctx, r, domain.Selector{}, domain.ProcessPolicy{Mode: domain.ModeRebuild})
	require.NoError(t, err)
	assert.Equal(t, 1, report.SessionsDeleted)
	assert.Equal(t, 1, report.SummariesDeleted)
	assert.Equal(t, 1, report.SummariesReplaced)

	sessions, err := f.store.Sessions().ListForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	var total int64
	for _, s := range sessions {
		total += s.DurationSeconds()
	}
	assert.Equal(t, total, sum.TotalSecondsInOffice)
}

func TestRebuildClearsSummaryOnEventlessDay(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Corrupted summary on a work day whose raw events are gone.
	now := time.Now()
	require.NoError(t, f.store.Summaries().Replace(ctx, &domain.DaySummary{
		ID:                   domain.NewID(),
		EmployeeID:           f.employee.ID,
		Date:                 "2025-09-18",
		TotalSecondsInOffice: 999999,
		Status:               domain.StatusPresent,
		CreatedAt:            now,
		UpdatedAt:            now,
	}))

	r := domain.DateRange{From: "2025-09-18", To: "2025-09-18"}
	report, err := f.engine.Rebuild(ctx, r, domain.Selector{}, domain.ProcessPolicy{Mode: domain.ModeRebuild})
	require.NoError(t, err)
	assert.Equal(t, 1, report.PairsProcessed)
	assert.Equal(t, 1, report.SummariesDeleted)
	assert.Equal(t, 1, report.SummariesReplaced)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-18")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAbsent, sum.Status)
	assert.EqualValues(t, 0, sum.TotalSecondsInOffice)
}

func TestRunBatchHealsMissingSummary(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, friday.Add(17*time.Hour))

	_, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)

	// Summary lost (e.g. retention cleanup with --keep-skud-events)
	// while the events stay marked processed.
	_, err = f.store.Summaries().DeleteForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)

	from, to := domain.Date("2025-09-19"), domain.Date("2025-09-19")
	sel := domain.Selector{EmployeeID: &f.employee.ID, From: &from, To: &to}
	report, err := f.engine.RunBatch(ctx, sel, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.PairsProcessed)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.EqualValues(t, 28800, sum.TotalSecondsInOffice)

	// With the summary back, the same run skips the pair again.
	again, err := f.engine.RunBatch(ctx, sel, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Zero(t, again.PairsProcessed)
	assert.Equal(t, 1, again.PairsSkipped)
}

func TestRangeRunCoversEventlessEmployees(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	former := &domain.Employee{
		ID:           domain.NewID(),
		BadgeNumber:  "1002",
		LastName:     "Petrov",
		FirstName:    "Igor",
		HireDate:     "2020-01-01",
		IsActive:     false,
		WorkFraction: 1.0,
		DailyHours:   8.0,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.employees.Insert(ctx, former))

	from, to := domain.Date("2025-09-18"), domain.Date("2025-09-18")
	report, err := f.engine.RunBatch(ctx, domain.Selector{From: &from, To: &to}, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.PairsProcessed)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-18")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAbsent, sum.Status)

	// Inactive employees are not visited.
	_, err = f.store.Summaries().GetForPair(ctx, former.ID, "2025-09-18")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestRebuildRequiresRange(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.Rebuild(context.Background(), domain.DateRange{}, domain.Selector{}, domain.ProcessPolicy{})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.engine.Rebuild(context.Background(), domain.DateRange{From: "2025-09-20", To: "2025-09-19"}, domain.Selector{}, domain.ProcessPolicy{})
	require.ErrorAs(t, err, &verr)
}

func TestRunBatchInterruptedByCancel(t *testing.T) {
	f := newEngineFixture(t)
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)
	assert.True(t, report.Interrupted)
	assert.Zero(t, report.PairsProcessed)
}

func TestReprocessCoversEventlessDays(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	// Monday..Tuesday with events only on Monday.
	monday := time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC)
	f.addEvent(t, domain.EventEntry, monday.Add(9*time.Hour))
	f.addEvent(t, domain.EventExit, monday.Add(17*time.Hour))

	r := domain.DateRange{From: "2025-09-15", To: "2025-09-16"}
	report, err := f.engine.Reprocess(ctx, f.employee.ID, r, "audit request", "hr-admin")
	require.NoError(t, err)
	assert.Equal(t, 2, report.PairsProcessed)

	tue, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-16")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAbsent, tue.Status)

	act := domain.AuditReprocessDay
	_, total, err := f.store.Audit().List(ctx, domain.AuditFilter{Action: &act})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestReprocessUnknownEmployee(t *testing.T) {
	f := newEngineFixture(t)

	r := domain.DateRange{From: "2025-09-15", To: "2025-09-15"}
	_, err := f.engine.Reprocess(context.Background(), domain.NewID(), r, "", "")
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestReprocessLeaveDay(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.leaves.Insert(ctx, &domain.Leave{
		ID:         domain.NewID(),
		EmployeeID: f.employee.ID,
		Kind:       domain.LeaveVacation,
		StartDate:  "2025-09-15",
		EndDate:    "2025-09-19",
		Status:     domain.LeaveApproved,
		CreatedAt:  time.Now(),
	}))

	r := domain.DateRange{From: "2025-09-16", To: "2025-09-16"}
	_, err := f.engine.Reprocess(ctx, f.employee.ID, r, "", "")
	require.NoError(t, err)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-16")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusExcused, sum.Status)
	// Leave does not reduce the expectation.
	assert.EqualValues(t, 28800, sum.ExpectedSeconds)
}

func TestCloseSessionUpdatesSummary(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))

	_, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)

	sessions, err := f.store.Sessions().ListForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.True(t, sessions[0].IsOpen())

	closed, err := f.engine.CloseSession(ctx, sessions[0].ID, friday.Add(17*time.Hour), "exit reader was down", "hr-admin")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionClosedManual, closed.Status)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.False(t, sum.HasMissingExit)
	assert.True(t, sum.HasManualCorrections)
	assert.Equal(t, domain.StatusPresent, sum.Status)
	assert.EqualValues(t, 28800, sum.TotalSecondsInOffice)

	act := domain.AuditCloseSession
	entries, _, err := f.store.Audit().List(ctx, domain.AuditFilter{Action: &act})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.NotNil(t, entries[0].OldValue)
	require.NotNil(t, entries[0].NewValue)
}

func TestCloseSessionValidation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	f.addEvent(t, domain.EventEntry, friday.Add(9*time.Hour))
	_, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)

	sessions, err := f.store.Sessions().ListForPair(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	var verr *domain.ValidationError
	_, err = f.engine.CloseSession(ctx, sessions[0].ID, friday.Add(17*time.Hour), "", "hr-admin")
	require.ErrorAs(t, err, &verr)

	_, err = f.engine.CloseSession(ctx, sessions[0].ID, friday.Add(8*time.Hour), "too early", "hr-admin")
	require.ErrorAs(t, err, &verr)
}

func TestWeekendWorkIsPresent(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	saturday := time.Date(2025, 9, 20, 0, 0, 0, 0, time.UTC)
	f.addEvent(t, domain.EventEntry, saturday.Add(10*time.Hour))
	f.addEvent(t, domain.EventExit, saturday.Add(14*time.Hour))

	_, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)

	sum, err := f.store.Summaries().GetForPair(ctx, f.employee.ID, "2025-09-20")
	require.NoError(t, err)
	// Expected is zero on a day off, so any worked time is overtime.
	assert.Equal(t, domain.StatusPresent, sum.Status)
	assert.EqualValues(t, 0, sum.ExpectedSeconds)
	assert.EqualValues(t, 4*3600, sum.OvertimeSeconds)
}
