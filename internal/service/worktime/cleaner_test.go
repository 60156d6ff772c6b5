package worktime

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/internal/domain"
)

// seedAged derives data for a day far in the past and one recent day.
func seedAged(t *testing.T, f *engineFixture) {
	t.Helper()
	ctx := context.Background()

	old := time.Now().AddDate(0, 0, -400)
	recent := time.Now().AddDate(0, 0, -5)
	for _, day := range []time.Time{old, recent} {
		f.addEvent(t, domain.EventEntry, day.Truncate(24*time.Hour).Add(9*time.Hour))
		f.addEvent(t, domain.EventExit, day.Truncate(24*time.Hour).Add(17*time.Hour))
	}
	_, err := f.engine.RunBatch(ctx, domain.Selector{}, domain.ProcessPolicy{})
	require.NoError(t, err)
}

func TestCleanupRefusesWithoutConfirm(t *testing.T) {
	f := newEngineFixture(t)
	cleaner := NewCleaner(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)

	_, err := cleaner.Cleanup(context.Background(), 365, domain.RetentionFlags{}, false, false)
	var guard *domain.GuardError
	require.ErrorAs(t, err, &guard)

	_, err = cleaner.Cleanup(context.Background(), 0, domain.RetentionFlags{}, true, false)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCleanupDryRunMatchesRealRun(t *testing.T) {
	f := newEngineFixture(t)
	seedAged(t, f)
	ctx := context.Background()
	cleaner := NewCleaner(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)

	dry, err := cleaner.Cleanup(ctx, 365, domain.RetentionFlags{}, false, true)
	require.NoError(t, err)
	assert.True(t, dry.DryRun)
	assert.EqualValues(t, 1, dry.Sessions)
	assert.EqualValues(t, 1, dry.Summaries)
	assert.EqualValues(t, 2, dry.Events)

	// The dry run changed nothing.
	n, err := f.store.Sessions().CountBefore(ctx, dry.Cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	wet, err := cleaner.Cleanup(ctx, 365, domain.RetentionFlags{}, true, false)
	require.NoError(t, err)
	assert.Equal(t, dry.Sessions, wet.Sessions)
	assert.Equal(t, dry.Summaries, wet.Summaries)
	assert.Equal(t, dry.Events, wet.Events)
	assert.Equal(t, dry.AuditEntries, wet.AuditEntries)

	// Old rows are gone, recent rows survive.
	n, err = f.store.Sessions().CountBefore(ctx, wet.Cutoff)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, total, err := f.store.Sessions().ListForEmployee(ctx, f.employee.ID,
		domain.DateRange{From: "2000-01-01", To: "2100-01-01"}, domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestCleanupKeepFlags(t *testing.T) {
	f := newEngineFixture(t)
	seedAged(t, f)
	ctx := context.Background()
	cleaner := NewCleaner(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)

	report, err := cleaner.Cleanup(ctx, 365, domain.RetentionFlags{KeepSKUDEvents: true, KeepAuditLogs: true}, true, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.Sessions)
	assert.Zero(t, report.Events)
	assert.Zero(t, report.AuditEntries)

	// Kept categories are untouched.
	n, err := f.store.Events().CountBefore(ctx, report.Cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestCleanupWritesTrailingAuditEntry(t *testing.T) {
	f := newEngineFixture(t)
	seedAged(t, f)
	ctx := context.Background()
	cleaner := NewCleaner(f.store, slog.New(slog.NewTextHandler(io.Discard, nil)), time.UTC)

	_, err := cleaner.Cleanup(ctx, 365, domain.RetentionFlags{}, true, false)
	require.NoError(t, err)

	act := domain.AuditCleanup
	entries, total, err := f.store.Audit().List(ctx, domain.AuditFilter{Action: &act})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	// The trailing entry carries today's date, outside its own cutoff.
	assert.Equal(t, domain.Today(time.UTC), entries[0].Date)
}
