package validation

import (
	"context"
	"fmt"
	"math"
)

// checkFn runs one group of business checks against the query port.
type checkFn func(ctx context.Context, store Store, policy Policy) ([]Finding, error)

// validateStructure fails fast on malformed input so no storage query is
// spent on a request that can never be committed.
func validateStructure(req ChangeRequest) error {
	switch req.Kind {
	case ChangeVacationCreate, ChangeVacationUpdate:
		v := req.Vacation
		if v == nil {
			return fmt.Errorf("%w: missing vacation payload", ErrInvalidRequest)
		}
		if v.EmployeeID <= 0 {
			return fmt.Errorf("%w: employee id required", ErrInvalidRequest)
		}
		if v.Start.IsZero() || v.End.IsZero() {
			return fmt.Errorf("%w: start and end dates required", ErrInvalidRequest)
		}
		if day(v.End).Before(day(v.Start)) {
			return fmt.Errorf("%w: end date before start date", ErrInvalidRequest)
		}
		switch v.Status {
		case VacationPending, VacationApproved, VacationRejected, VacationCancelled:
		default:
			return fmt.Errorf("%w: unknown vacation status %q", ErrInvalidRequest, v.Status)
		}
		if req.Kind == ChangeVacationUpdate && v.ID <= 0 {
			return fmt.Errorf("%w: vacation id required for update", ErrInvalidRequest)
		}
	case ChangeWorkloadCreate, ChangeWorkloadUpdate:
		w := req.Workload
		if w == nil {
			return fmt.Errorf("%w: missing workload payload", ErrInvalidRequest)
		}
		if w.EmployeeID <= 0 || w.ProjectID <= 0 {
			return fmt.Errorf("%w: employee and project ids required", ErrInvalidRequest)
		}
		if w.Date.IsZero() {
			return fmt.Errorf("%w: work date required", ErrInvalidRequest)
		}
		if w.Hours <= 0 || w.Hours > 24 {
			return fmt.Errorf("%w: hours must be in (0, 24]", ErrInvalidRequest)
		}
		if math.Abs(w.Hours*100-math.Round(w.Hours*100)) > 1e-9 {
			return fmt.Errorf("%w: hours limited to two decimal places", ErrInvalidRequest)
		}
		if req.Kind == ChangeWorkloadUpdate && w.ID <= 0 {
			return fmt.Errorf("%w: workload id required for update", ErrInvalidRequest)
		}
	case ChangeMembershipCreate, ChangeMembershipUpdate:
		m := req.Membership
		if m == nil {
			return fmt.Errorf("%w: missing membership payload", ErrInvalidRequest)
		}
		if m.TeamID <= 0 || m.EmployeeID <= 0 {
			return fmt.Errorf("%w: team and employee ids required", ErrInvalidRequest)
		}
		if req.Kind == ChangeMembershipUpdate && m.ID <= 0 {
			return fmt.Errorf("%w: membership id required for update", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown change kind %q", ErrInvalidRequest, req.Kind)
	}
	return nil
}

// overlapChecks covers vacation interval conflicts. Overlap with an
// approved vacation blocks; overlap with only another pending request is a
// warning the caller may accept.
func overlapChecks(req ChangeRequest) checkFn {
	if req.Vacation == nil {
		return nil
	}
	v := *req.Vacation
	if v.Status.Inert() {
		// Cancelling or rejecting can never introduce a conflict.
		return nil
	}
	return func(ctx context.Context, store Store, policy Policy) ([]Finding, error) {
		candidate := Interval{SubjectID: v.EmployeeID, Start: v.Start, End: v.End}
		existing, err := store.FindVacationIntervals(ctx, v.EmployeeID, Window{From: day(v.Start), To: day(v.End)})
		if err != nil {
			return nil, err
		}
		var findings []Finding
		for _, match := range FindOverlaps(candidate, existing, v.ID) {
			f := Finding{
				Code:       CodeVacationOverlapPending,
				Severity:   SeverityWarning,
				Message:    overlapMessage(match),
				RelatedIDs: []int64{match.Existing.ID},
			}
			if match.Existing.Status == VacationApproved {
				f.Code = CodeVacationOverlapApproved
				f.Severity = SeverityError
			}
			findings = append(findings, f)
		}
		return findings, nil
	}
}

// thresholdChecks covers aggregate limits: daily and weekly hours for
// workloads, capacity for new memberships.
func thresholdChecks(req ChangeRequest) checkFn {
	switch {
	case req.Workload != nil:
		w := *req.Workload
		return func(ctx context.Context, store Store, policy Policy) ([]Finding, error) {
			var findings []Finding
			daily, err := ValidateDailyHours(ctx, store, policy, w.EmployeeID, w.Date, w.Hours, w.ID)
			if err != nil {
				return nil, err
			}
			if daily != nil {
				findings = append(findings, *daily)
			}
			weekly, err := ValidateWeeklyHours(ctx, store, policy, w.EmployeeID, w.Date, w.Hours, w.ID)
			if err != nil {
				return nil, err
			}
			if weekly != nil {
				findings = append(findings, *weekly)
			}
			return findings, nil
		}
	case req.Kind == ChangeMembershipCreate && req.Membership != nil && req.Membership.IsActive:
		m := *req.Membership
		return func(ctx context.Context, store Store, policy Policy) ([]Finding, error) {
			f, err := ValidateTeamCapacity(ctx, store, policy, m.TeamID, 1)
			if err != nil || f == nil {
				return nil, err
			}
			return []Finding{*f}, nil
		}
	}
	return nil
}

// uniquenessChecks covers the "at most one active X" invariants.
func uniquenessChecks(req ChangeRequest) checkFn {
	switch {
	case req.Workload != nil:
		w := *req.Workload
		return func(ctx context.Context, store Store, policy Policy) ([]Finding, error) {
			f, err := CheckDuplicateWorkload(ctx, store, w.EmployeeID, w.ProjectID, w.Date, w.ID)
			if err != nil || f == nil {
				return nil, err
			}
			return []Finding{*f}, nil
		}
	case req.Membership != nil:
		m := *req.Membership
		return func(ctx context.Context, store Store, policy Policy) ([]Finding, error) {
			var findings []Finding
			if m.IsActive {
				dup, err := CheckDuplicateMembership(ctx, store, m.TeamID, m.EmployeeID, m.ID)
				if err != nil {
					return nil, err
				}
				if dup != nil {
					findings = append(findings, *dup)
				}
			}
			if m.IsLeader && m.IsActive {
				leader, err := CheckUniqueActiveLeader(ctx, store, m.TeamID, m.ID)
				if err != nil {
					return nil, err
				}
				if leader != nil {
					findings = append(findings, *leader)
				}
			}
			return findings, nil
		}
	}
	return nil
}

// relatedChecks builds the informational workload conflict graph: rows
// sharing the employee within ±radius days or the project within ±2×radius
// days. Never blocking.
func relatedChecks(req ChangeRequest) checkFn {
	if req.Workload == nil {
		return nil
	}
	w := *req.Workload
	return func(ctx context.Context, store Store, policy Policy) ([]Finding, error) {
		refs, err := store.FindRelatedWorkloads(ctx, w.EmployeeID, w.ProjectID, w.Date, policy.RelatedDayRadius, w.ID)
		if err != nil {
			return nil, err
		}
		var findings []Finding
		for _, ref := range refs {
			findings = append(findings, Finding{
				Code:       CodeRelatedWorkload,
				Severity:   SeverityInfo,
				Message:    relatedWorkloadMessage(ref, w),
				RelatedIDs: []int64{ref.ID},
			})
		}
		return findings, nil
	}
}
