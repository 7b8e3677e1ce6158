package validation

import (
	"context"
	"time"
)

// Window bounds a storage query to the date range a check actually needs.
type Window struct {
	From time.Time
	To   time.Time
}

// Store is the read-only query port the engine borrows for the duration of
// a single validation call. Every method maps to exactly one query; the
// aggregate methods exist so threshold checks never degrade into N+1 reads.
type Store interface {
	// FindVacationIntervals returns the employee's vacation rows whose
	// interval intersects the window, regardless of status.
	FindVacationIntervals(ctx context.Context, employeeID int64, window Window) ([]VacationInterval, error)

	// SumDailyHours returns the total logged hours for the employee on the
	// given day, excluding the row identified by excludeID when non-zero.
	SumDailyHours(ctx context.Context, employeeID int64, date time.Time, excludeID int64) (float64, error)

	// SumWeekHours returns the total logged hours for the employee across
	// the seven days starting at weekStart, excluding excludeID.
	SumWeekHours(ctx context.Context, employeeID int64, weekStart time.Time, excludeID int64) (float64, error)

	// CountActiveMembers returns the number of active memberships in a team.
	CountActiveMembers(ctx context.Context, teamID int64) (int, error)

	// FindActiveLeader returns the team's active leader membership, or nil.
	FindActiveLeader(ctx context.Context, teamID int64) (*MembershipRef, error)

	// FindWorkloadByKey returns the non-excluded workload row matching the
	// (employee, project, date) uniqueness key, or nil.
	FindWorkloadByKey(ctx context.Context, employeeID, projectID int64, date time.Time, excludeID int64) (*WorkloadRef, error)

	// FindActiveMembership returns the active membership for the employee in
	// the team, or nil, skipping excludeID.
	FindActiveMembership(ctx context.Context, teamID, employeeID int64, excludeID int64) (*MembershipRef, error)

	// FindRelatedWorkloads returns workloads sharing the employee within
	// ±dayRadius days of date, or sharing the project within twice that
	// radius, skipping excludeID.
	FindRelatedWorkloads(ctx context.Context, employeeID, projectID int64, date time.Time, dayRadius int, excludeID int64) ([]WorkloadRef, error)
}
