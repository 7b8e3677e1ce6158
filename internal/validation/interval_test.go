package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func d(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestOverlapsSymmetryAndReflexivity(t *testing.T) {
	cases := []struct {
		a, b Interval
	}{
		{Interval{Start: d(2024, 6, 1), End: d(2024, 6, 5)}, Interval{Start: d(2024, 6, 3), End: d(2024, 6, 9)}},
		{Interval{Start: d(2024, 6, 1), End: d(2024, 6, 5)}, Interval{Start: d(2024, 6, 6), End: d(2024, 6, 9)}},
		{Interval{Start: d(2024, 1, 1), End: d(2024, 12, 31)}, Interval{Start: d(2024, 6, 1), End: d(2024, 6, 1)}},
	}
	for _, tc := range cases {
		require.Equal(t, Overlaps(tc.a, tc.b), Overlaps(tc.b, tc.a))
		require.True(t, Overlaps(tc.a, tc.a))
		require.True(t, Overlaps(tc.b, tc.b))
	}
}

func TestOverlapsDisjoint(t *testing.T) {
	a := Interval{Start: d(2024, 6, 1), End: d(2024, 6, 4)}
	b := Interval{Start: d(2024, 6, 5), End: d(2024, 6, 10)}
	require.False(t, Overlaps(a, b))
	require.Zero(t, OverlapDays(a, b))
}

func TestOverlapsTouchingBoundary(t *testing.T) {
	a := Interval{Start: d(2024, 6, 1), End: d(2024, 6, 5)}
	b := Interval{Start: d(2024, 6, 5), End: d(2024, 6, 10)}
	require.True(t, Overlaps(a, b), "inclusive-day semantics: touching endpoints share a day")
	require.Equal(t, 1, OverlapDays(a, b))
}

func TestOverlapDays(t *testing.T) {
	a := Interval{Start: d(2024, 7, 1), End: d(2024, 7, 10)}
	b := Interval{Start: d(2024, 7, 8), End: d(2024, 7, 15)}
	require.Equal(t, 3, OverlapDays(a, b))
	require.Equal(t, 3, OverlapDays(b, a))

	full := Interval{Start: d(2024, 7, 1), End: d(2024, 7, 10)}
	require.Equal(t, 10, OverlapDays(full, full))
}

func TestFindOverlapsSkipsSelfAndInert(t *testing.T) {
	candidate := Interval{SubjectID: 7, Start: d(2024, 7, 8), End: d(2024, 7, 15)}
	existing := []VacationInterval{
		{ID: 1, Start: d(2024, 7, 1), End: d(2024, 7, 10), Status: VacationApproved},
		{ID: 2, Start: d(2024, 7, 9), End: d(2024, 7, 12), Status: VacationCancelled},
		{ID: 3, Start: d(2024, 7, 14), End: d(2024, 7, 20), Status: VacationRejected},
		{ID: 4, Start: d(2024, 7, 15), End: d(2024, 7, 18), Status: VacationPending},
	}

	matches := FindOverlaps(candidate, existing, 0)
	require.Len(t, matches, 2)
	require.Equal(t, int64(1), matches[0].Existing.ID)
	require.Equal(t, 3, matches[0].OverlapDays)
	require.Equal(t, int64(4), matches[1].Existing.ID)
	require.Equal(t, 1, matches[1].OverlapDays)

	matches = FindOverlaps(candidate, existing, 1)
	require.Len(t, matches, 1)
	require.Equal(t, int64(4), matches[0].Existing.ID)
}
