package validation

import (
	"context"
	"time"
)

// CheckUniqueActiveLeader surfaces the team's incumbent active leader when
// one exists. Whether the caller rejects the assignment or supersedes the
// incumbent is a write-path decision; the engine never mutates state.
func CheckUniqueActiveLeader(ctx context.Context, store Store, teamID int64, excludeMembershipID int64) (*Finding, error) {
	leader, err := store.FindActiveLeader(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if leader == nil || leader.ID == excludeMembershipID {
		return nil, nil
	}
	return &Finding{
		Code:       CodeLeaderExists,
		Severity:   SeverityError,
		Message:    leaderExistsMessage(*leader),
		RelatedIDs: []int64{leader.ID},
	}, nil
}

// CheckDuplicateWorkload rejects a second non-excluded row for the same
// (employee, project, work date) key.
func CheckDuplicateWorkload(ctx context.Context, store Store, employeeID, projectID int64, date time.Time, excludeID int64) (*Finding, error) {
	existing, err := store.FindWorkloadByKey(ctx, employeeID, projectID, date, excludeID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return &Finding{
		Code:       CodeDuplicateWorkload,
		Severity:   SeverityError,
		Message:    duplicateWorkloadMessage(*existing),
		RelatedIDs: []int64{existing.ID},
	}, nil
}

// CheckDuplicateMembership rejects a second active membership for the same
// (team, employee) pair.
func CheckDuplicateMembership(ctx context.Context, store Store, teamID, employeeID int64, excludeID int64) (*Finding, error) {
	existing, err := store.FindActiveMembership(ctx, teamID, employeeID, excludeID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return &Finding{
		Code:       CodeDuplicateMembership,
		Severity:   SeverityError,
		Message:    duplicateMembershipMessage(*existing),
		RelatedIDs: []int64{existing.ID},
	}, nil
}
