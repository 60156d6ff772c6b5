package worktime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worktime/internal/domain"
)

func TestDirectoryExpectedSeconds(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	dir := f.engine.dir

	// Full-time, 8h, Friday.
	sec, err := dir.ExpectedDailySeconds(ctx, f.employee.ID, "2025-09-19")
	require.NoError(t, err)
	assert.EqualValues(t, 28800, sec)

	// Saturday.
	sec, err = dir.ExpectedDailySeconds(ctx, f.employee.ID, "2025-09-20")
	require.NoError(t, err)
	assert.Zero(t, sec)

	// Before hire date.
	sec, err = dir.ExpectedDailySeconds(ctx, f.employee.ID, "2019-12-31")
	require.NoError(t, err)
	assert.Zero(t, sec)
}

func TestDirectoryPartTimeFraction(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	half := &domain.Employee{
		ID:           domain.NewID(),
		BadgeNumber:  "2002",
		LastName:     "Sidorov",
		FirstName:    "Oleg",
		HireDate:     "2022-05-01",
		IsActive:     true,
		WorkFraction: 0.5,
		DailyHours:   8.0,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.employees.Insert(ctx, half))

	sec, err := f.engine.dir.ExpectedDailySeconds(ctx, half.ID, "2025-09-19")
	require.NoError(t, err)
	assert.EqualValues(t, 14400, sec)
}

func TestDirectoryTerminationWindow(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	term := domain.Date("2025-06-30")
	gone := &domain.Employee{
		ID:              domain.NewID(),
		BadgeNumber:     "3003",
		LastName:        "Orlova",
		FirstName:       "Vera",
		HireDate:        "2021-01-11",
		TerminationDate: &term,
		IsActive:        false,
		WorkFraction:    1.0,
		DailyHours:      8.0,
		CreatedAt:       time.Now(),
	}
	require.NoError(t, f.employees.Insert(ctx, gone))

	work, err := f.engine.dir.IsWorkDay(ctx, gone.ID, "2025-09-19")
	require.NoError(t, err)
	assert.False(t, work)

	// Still employed in May 2025.
	work, err = f.engine.dir.IsWorkDay(ctx, gone.ID, "2025-05-16")
	require.NoError(t, err)
	assert.True(t, work)
}

func TestDirectoryLeaveSignal(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	require.NoError(t, f.leaves.Insert(ctx, &domain.Leave{
		ID:         domain.NewID(),
		EmployeeID: f.employee.ID,
		Kind:       domain.LeaveBusinessTrip,
		StartDate:  "2025-09-17",
		EndDate:    "2025-09-19",
		Status:     domain.LeaveInProgress,
		CreatedAt:  time.Now(),
	}))

	has, err := f.engine.dir.HasApprovedLeave(ctx, f.employee.ID, "2025-09-18")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = f.engine.dir.HasApprovedLeave(ctx, f.employee.ID, "2025-09-20")
	require.NoError(t, err)
	assert.False(t, has)
}
