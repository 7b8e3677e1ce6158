package validation

import (
	"sort"
	"time"
)

// Severity classifies a finding. Errors block the write, warnings do not,
// info findings are advisory context for dependency visualization.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Finding codes. Stable machine-readable identifiers for every rule.
const (
	CodeVacationOverlapApproved = "VACATION_OVERLAP_APPROVED"
	CodeVacationOverlapPending  = "VACATION_OVERLAP_PENDING"
	CodeDailyHoursSoftCap       = "DAILY_HOURS_SOFT_CAP"
	CodeDailyHoursHardCap       = "DAILY_HOURS_HARD_CAP"
	CodeWeeklyHoursCap          = "WEEKLY_HOURS_CAP"
	CodeTeamCapacity            = "TEAM_CAPACITY_EXCEEDED"
	CodeLeaderExists            = "ACTIVE_LEADER_EXISTS"
	CodeDuplicateWorkload       = "DUPLICATE_WORKLOAD"
	CodeDuplicateMembership     = "DUPLICATE_MEMBERSHIP"
	CodeRelatedWorkload         = "RELATED_WORKLOAD"
)

// Finding is a single reported issue with a machine-readable code and a
// human message. RelatedIDs reference the existing records in conflict.
type Finding struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	RelatedIDs []int64  `json:"related_ids,omitempty"`
}

// Verdict is the complete result of one validation call. Valid is false
// iff Errors is non-empty; warnings and related findings never block.
type Verdict struct {
	Valid    bool      `json:"is_valid"`
	Errors   []Finding `json:"errors,omitempty"`
	Warnings []Finding `json:"warnings,omitempty"`
	Related  []Finding `json:"related,omitempty"`
}

// Interval is an inclusive date range belonging to one subject.
type Interval struct {
	SubjectID int64
	Start     time.Time
	End       time.Time
}

// VacationStatus enumerates vacation request statuses. Cancelled and
// rejected requests are inert for every check.
type VacationStatus string

const (
	VacationPending   VacationStatus = "pending"
	VacationApproved  VacationStatus = "approved"
	VacationRejected  VacationStatus = "rejected"
	VacationCancelled VacationStatus = "cancelled"
)

// Inert reports whether a vacation in this status is excluded from
// overlap and threshold checks.
func (s VacationStatus) Inert() bool {
	return s == VacationRejected || s == VacationCancelled
}

// VacationInterval is an existing vacation row as seen by the overlap
// detector: interval plus the status that decides its classification.
type VacationInterval struct {
	ID     int64
	Start  time.Time
	End    time.Time
	Status VacationStatus
}

// WorkloadRef identifies an existing workload row in a finding.
type WorkloadRef struct {
	ID         int64
	EmployeeID int64
	ProjectID  int64
	Date       time.Time
	Hours      float64
}

// MembershipRef identifies an existing membership row in a finding.
type MembershipRef struct {
	ID         int64
	TeamID     int64
	EmployeeID int64
	IsLeader   bool
}

// ChangeKind dispatches a ChangeRequest to the relevant checks.
type ChangeKind string

const (
	ChangeVacationCreate   ChangeKind = "vacation.create"
	ChangeVacationUpdate   ChangeKind = "vacation.update"
	ChangeWorkloadCreate   ChangeKind = "workload.create"
	ChangeWorkloadUpdate   ChangeKind = "workload.update"
	ChangeMembershipCreate ChangeKind = "membership.create"
	ChangeMembershipUpdate ChangeKind = "membership.update"
)

// VacationChange is a proposed vacation create or update. ID is zero on
// create and set on update so the row under edit excludes itself.
type VacationChange struct {
	ID         int64
	EmployeeID int64
	Start      time.Time
	End        time.Time
	Status     VacationStatus
}

// WorkloadChange is a proposed workload create or update.
type WorkloadChange struct {
	ID         int64
	EmployeeID int64
	ProjectID  int64
	Date       time.Time
	Hours      float64
}

// MembershipChange is a proposed membership create or update.
type MembershipChange struct {
	ID         int64
	TeamID     int64
	EmployeeID int64
	Role       string
	IsLeader   bool
	IsActive   bool
}

// ChangeRequest is the single entry shape accepted by the engine. Exactly
// one payload matching Kind must be set.
type ChangeRequest struct {
	Kind       ChangeKind
	Vacation   *VacationChange
	Workload   *WorkloadChange
	Membership *MembershipChange
}

func severityRank(s Severity) int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// SortFindings orders findings by (severity, code, related ids) so that
// two verdicts over the same state compare equal regardless of the order
// sub-checks completed in.
func SortFindings(fs []Finding) {
	for i := range fs {
		ids := fs[i].RelatedIDs
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	}
	sort.SliceStable(fs, func(i, j int) bool {
		if r1, r2 := severityRank(fs[i].Severity), severityRank(fs[j].Severity); r1 != r2 {
			return r1 < r2
		}
		if fs[i].Code != fs[j].Code {
			return fs[i].Code < fs[j].Code
		}
		return lessIDs(fs[i].RelatedIDs, fs[j].RelatedIDs)
	})
}

func lessIDs(a, b []int64) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
