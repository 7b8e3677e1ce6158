package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateDailyHoursSoftAndHardCaps(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.workloads = []WorkloadRef{
		{ID: 1, EmployeeID: 7, ProjectID: 3, Date: d(2024, 6, 10), Hours: 6},
	}
	policy := DefaultPolicy()

	f, err := ValidateDailyHours(ctx, store, policy, 7, d(2024, 6, 10), 3, 0)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, CodeDailyHoursSoftCap, f.Code)
	require.Equal(t, SeverityWarning, f.Severity)

	f, err = ValidateDailyHours(ctx, store, policy, 7, d(2024, 6, 10), 7, 0)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, CodeDailyHoursHardCap, f.Code)
	require.Equal(t, SeverityError, f.Severity)

	f, err = ValidateDailyHours(ctx, store, policy, 7, d(2024, 6, 10), 2, 0)
	require.NoError(t, err)
	require.Nil(t, f, "6+2 stays at the soft cap, not over it")
}

func TestValidateDailyHoursExcludesRecordUnderUpdate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.workloads = []WorkloadRef{
		{ID: 1, EmployeeID: 7, ProjectID: 3, Date: d(2024, 6, 10), Hours: 6},
	}

	// Re-validating row 1 itself with new hours must not double-count it.
	f, err := ValidateDailyHours(ctx, store, DefaultPolicy(), 7, d(2024, 6, 10), 8, 1)
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestValidateWeeklyHoursCap(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	// Week of Monday 2024-06-10.
	store.workloads = []WorkloadRef{
		{ID: 1, EmployeeID: 7, ProjectID: 3, Date: d(2024, 6, 10), Hours: 12},
		{ID: 2, EmployeeID: 7, ProjectID: 3, Date: d(2024, 6, 11), Hours: 12},
		{ID: 3, EmployeeID: 7, ProjectID: 3, Date: d(2024, 6, 12), Hours: 12},
		{ID: 4, EmployeeID: 7, ProjectID: 3, Date: d(2024, 6, 13), Hours: 12},
		{ID: 5, EmployeeID: 7, ProjectID: 4, Date: d(2024, 6, 17), Hours: 12},
	}
	policy := DefaultPolicy()

	f, err := ValidateWeeklyHours(ctx, store, policy, 7, d(2024, 6, 14), 3, 0)
	require.NoError(t, err)
	require.NotNil(t, f, "48 existing + 3 breaches the 50 hour week")
	require.Equal(t, CodeWeeklyHoursCap, f.Code)

	// Row 5 falls in the next week and must not count.
	f, err = ValidateWeeklyHours(ctx, store, policy, 7, d(2024, 6, 14), 2, 0)
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestStartOfWeek(t *testing.T) {
	require.Equal(t, d(2024, 6, 10), StartOfWeek(d(2024, 6, 10)))
	require.Equal(t, d(2024, 6, 10), StartOfWeek(d(2024, 6, 14)))
	require.Equal(t, d(2024, 6, 10), StartOfWeek(d(2024, 6, 16)))
	require.Equal(t, d(2024, 6, 17), StartOfWeek(d(2024, 6, 17)))
}

func TestValidateTeamCapacity(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	for i := 0; i < 25; i++ {
		store.memberships = append(store.memberships, MembershipRef{
			ID: int64(i + 1), TeamID: 5, EmployeeID: int64(100 + i),
		})
	}

	f, err := ValidateTeamCapacity(ctx, store, DefaultPolicy(), 5, 1)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, CodeTeamCapacity, f.Code)
	require.Equal(t, SeverityError, f.Severity)

	small := Policy{MaxTeamSize: 30}
	f, err = ValidateTeamCapacity(ctx, store, small, 5, 1)
	require.NoError(t, err)
	require.Nil(t, f)
}
