package validation

import "time"

// Date granularity used throughout the engine. Intervals are inclusive on
// both ends, so two intervals that merely touch share one day and overlap.

// Overlaps reports whether two inclusive date intervals share at least one
// day: a.Start <= b.End && b.Start <= a.End.
func Overlaps(a, b Interval) bool {
	return !day(a.Start).After(day(b.End)) && !day(b.Start).After(day(a.End))
}

// OverlapDays returns the number of shared days between two intervals, or
// zero when they are disjoint.
func OverlapDays(a, b Interval) int {
	if !Overlaps(a, b) {
		return 0
	}
	start := maxDay(a.Start, b.Start)
	end := minDay(a.End, b.End)
	return int(end.Sub(start).Hours()/24) + 1
}

// OverlapMatch pairs an existing vacation with the size of its overlap
// against the candidate interval.
type OverlapMatch struct {
	Existing    VacationInterval
	OverlapDays int
}

// FindOverlaps returns every non-inert existing vacation that overlaps the
// candidate interval. The row identified by excludeID is skipped so that
// re-validating an update does not conflict with itself.
func FindOverlaps(candidate Interval, existing []VacationInterval, excludeID int64) []OverlapMatch {
	var matches []OverlapMatch
	for _, ex := range existing {
		if ex.ID == excludeID && excludeID != 0 {
			continue
		}
		if ex.Status.Inert() {
			continue
		}
		span := Interval{Start: ex.Start, End: ex.End}
		if !Overlaps(candidate, span) {
			continue
		}
		matches = append(matches, OverlapMatch{
			Existing:    ex,
			OverlapDays: OverlapDays(candidate, span),
		})
	}
	return matches
}

func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func maxDay(a, b time.Time) time.Time {
	if day(a).After(day(b)) {
		return day(a)
	}
	return day(b)
}

func minDay(a, b time.Time) time.Time {
	if day(a).Before(day(b)) {
		return day(a)
	}
	return day(b)
}
