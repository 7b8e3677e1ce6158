package validation

import (
	"context"
	"time"
)

// Policy carries every threshold the engine compares against. Values are
// injected configuration, never ambient globals; the defaults document the
// standing business policy.
type Policy struct {
	DailySoftCapHours float64
	DailyHardCapHours float64
	WeeklyCapHours    float64
	MaxTeamSize       int
	RelatedDayRadius  int
}

// DefaultPolicy returns the documented default thresholds: warn past 8
// daily hours, block past 12, block past 50 weekly hours, 25 members per
// team, 7-day radius for the workload conflict graph.
func DefaultPolicy() Policy {
	return Policy{
		DailySoftCapHours: 8,
		DailyHardCapHours: 12,
		WeeklyCapHours:    50,
		MaxTeamSize:       25,
		RelatedDayRadius:  7,
	}
}

// ValidateDailyHours aggregates the employee's existing hours for the day,
// adds the proposed hours, and compares the total against the caps. One
// aggregation query; returns at most one finding, hard cap winning.
func ValidateDailyHours(ctx context.Context, store Store, policy Policy, employeeID int64, date time.Time, additional float64, excludeID int64) (*Finding, error) {
	existing, err := store.SumDailyHours(ctx, employeeID, date, excludeID)
	if err != nil {
		return nil, err
	}
	total := existing + additional
	switch {
	case total > policy.DailyHardCapHours:
		return &Finding{
			Code:     CodeDailyHoursHardCap,
			Severity: SeverityError,
			Message:  hoursCapMessage(total, policy.DailyHardCapHours, date, "hard"),
		}, nil
	case total > policy.DailySoftCapHours:
		return &Finding{
			Code:     CodeDailyHoursSoftCap,
			Severity: SeverityWarning,
			Message:  hoursCapMessage(total, policy.DailySoftCapHours, date, "soft"),
		}, nil
	}
	return nil, nil
}

// ValidateWeeklyHours compares the week's total against the weekly cap.
// The week containing date runs Monday through Sunday.
func ValidateWeeklyHours(ctx context.Context, store Store, policy Policy, employeeID int64, date time.Time, additional float64, excludeID int64) (*Finding, error) {
	if policy.WeeklyCapHours <= 0 {
		return nil, nil
	}
	weekStart := StartOfWeek(date)
	existing, err := store.SumWeekHours(ctx, employeeID, weekStart, excludeID)
	if err != nil {
		return nil, err
	}
	total := existing + additional
	if total > policy.WeeklyCapHours {
		return &Finding{
			Code:     CodeWeeklyHoursCap,
			Severity: SeverityError,
			Message:  weeklyCapMessage(total, policy.WeeklyCapHours, weekStart),
		}, nil
	}
	return nil, nil
}

// ValidateTeamCapacity checks that admitting additionalMembers keeps the
// team at or under the configured size. One aggregation query.
func ValidateTeamCapacity(ctx context.Context, store Store, policy Policy, teamID int64, additionalMembers int) (*Finding, error) {
	count, err := store.CountActiveMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if count+additionalMembers > policy.MaxTeamSize {
		return &Finding{
			Code:     CodeTeamCapacity,
			Severity: SeverityError,
			Message:  capacityMessage(count, additionalMembers, policy.MaxTeamSize, teamID),
		}, nil
	}
	return nil, nil
}

// StartOfWeek returns the Monday of the week containing t, at UTC midnight.
func StartOfWeek(t time.Time) time.Time {
	d := day(t)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
