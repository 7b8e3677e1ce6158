package validation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckUniqueActiveLeader(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.memberships = []MembershipRef{
		{ID: 301, TeamID: 5, EmployeeID: 11, IsLeader: true},
		{ID: 302, TeamID: 5, EmployeeID: 12},
	}

	f, err := CheckUniqueActiveLeader(ctx, store, 5, 0)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, CodeLeaderExists, f.Code)
	require.Equal(t, []int64{301}, f.RelatedIDs)

	// The incumbent's own membership under update is not a conflict.
	f, err = CheckUniqueActiveLeader(ctx, store, 5, 301)
	require.NoError(t, err)
	require.Nil(t, f)

	f, err = CheckUniqueActiveLeader(ctx, store, 6, 0)
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestCheckDuplicateWorkload(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.workloads = []WorkloadRef{
		{ID: 9, EmployeeID: 7, ProjectID: 3, Date: d(2024, 6, 10), Hours: 4},
	}

	f, err := CheckDuplicateWorkload(ctx, store, 7, 3, d(2024, 6, 10), 0)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, CodeDuplicateWorkload, f.Code)
	require.Equal(t, []int64{9}, f.RelatedIDs)

	f, err = CheckDuplicateWorkload(ctx, store, 7, 3, d(2024, 6, 10), 9)
	require.NoError(t, err)
	require.Nil(t, f)

	f, err = CheckDuplicateWorkload(ctx, store, 7, 3, d(2024, 6, 11), 0)
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestCheckDuplicateMembership(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	store.memberships = []MembershipRef{
		{ID: 55, TeamID: 5, EmployeeID: 11},
	}

	f, err := CheckDuplicateMembership(ctx, store, 5, 11, 0)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, CodeDuplicateMembership, f.Code)
	require.Equal(t, []int64{55}, f.RelatedIDs)

	f, err = CheckDuplicateMembership(ctx, store, 5, 11, 55)
	require.NoError(t, err)
	require.Nil(t, f)

	f, err = CheckDuplicateMembership(ctx, store, 5, 12, 0)
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestSortFindingsDeterministic(t *testing.T) {
	findings := []Finding{
		{Code: "B", Severity: SeverityWarning, RelatedIDs: []int64{2}},
		{Code: "A", Severity: SeverityError, RelatedIDs: []int64{9, 3}},
		{Code: "A", Severity: SeverityError, RelatedIDs: []int64{1}},
		{Code: "C", Severity: SeverityInfo},
	}
	SortFindings(findings)

	require.Equal(t, "A", findings[0].Code)
	require.Equal(t, []int64{1}, findings[0].RelatedIDs)
	require.Equal(t, "A", findings[1].Code)
	require.Equal(t, []int64{3, 9}, findings[1].RelatedIDs, "related ids sorted in place")
	require.Equal(t, "B", findings[2].Code)
	require.Equal(t, "C", findings[3].Code)
}
