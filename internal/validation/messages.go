package validation

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const dateLayout = "2006-01-02"

var printer = message.NewPrinter(language.English)

func overlapMessage(match OverlapMatch) string {
	return printer.Sprintf("overlaps %s vacation #%d (%s to %s) on %d day(s)",
		string(match.Existing.Status), match.Existing.ID,
		match.Existing.Start.Format(dateLayout), match.Existing.End.Format(dateLayout),
		match.OverlapDays)
}

func hoursCapMessage(total, cap float64, date time.Time, kind string) string {
	return printer.Sprintf("daily total %.2f hour(s) on %s exceeds the %s cap of %.2f",
		total, date.Format(dateLayout), kind, cap)
}

func weeklyCapMessage(total, cap float64, weekStart time.Time) string {
	return printer.Sprintf("weekly total %.2f hour(s) for week of %s exceeds the cap of %.2f",
		total, weekStart.Format(dateLayout), cap)
}

func capacityMessage(current, additional, max int, teamID int64) string {
	return printer.Sprintf("team %d has %d active member(s); admitting %d more exceeds the limit of %d",
		teamID, current, additional, max)
}

func leaderExistsMessage(leader MembershipRef) string {
	return printer.Sprintf("team %d already has an active leader (membership #%d, employee %d)",
		leader.TeamID, leader.ID, leader.EmployeeID)
}

func duplicateWorkloadMessage(existing WorkloadRef) string {
	return printer.Sprintf("workload #%d already logs %.2f hour(s) for employee %d on project %d on %s",
		existing.ID, existing.Hours, existing.EmployeeID, existing.ProjectID,
		existing.Date.Format(dateLayout))
}

func duplicateMembershipMessage(existing MembershipRef) string {
	return printer.Sprintf("employee %d already has active membership #%d in team %d",
		existing.EmployeeID, existing.ID, existing.TeamID)
}

func relatedWorkloadMessage(ref WorkloadRef, candidate WorkloadChange) string {
	if ref.EmployeeID == candidate.EmployeeID {
		return printer.Sprintf("workload #%d shares employee %d within the conflict window (%s)",
			ref.ID, ref.EmployeeID, ref.Date.Format(dateLayout))
	}
	return printer.Sprintf("workload #%d shares project %d within the conflict window (%s)",
		ref.ID, ref.ProjectID, ref.Date.Format(dateLayout))
}
