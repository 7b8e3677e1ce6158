package vacations

import (
	"time"

	"github.com/planwise-hr/planwise/internal/validation"
)

// VacationType enumerates leave categories.
type VacationType string

const (
	TypeAnnual VacationType = "annual"
	TypeSick   VacationType = "sick"
	TypeUnpaid VacationType = "unpaid"
)

// Vacation model. Dates are inclusive; DaysRequested is derived from the
// interval at write time.
type Vacation struct {
	ID            int64
	EmployeeID    int64
	Type          VacationType
	Status        validation.VacationStatus
	StartDate     time.Time
	EndDate       time.Time
	DaysRequested int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// --- Input DTOs ---

// CreateVacationInput for submitting a new request. Requests always enter
// as pending.
type CreateVacationInput struct {
	EmployeeID int64
	Type       VacationType
	StartDate  time.Time
	EndDate    time.Time
}

// RescheduleVacationInput moves a pending request to new dates.
type RescheduleVacationInput struct {
	ID        int64
	StartDate time.Time
	EndDate   time.Time
}

// ListVacationsRequest filters the listing.
type ListVacationsRequest struct {
	EmployeeID int64
	Status     validation.VacationStatus
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// DaysInclusive counts days between two inclusive dates.
func DaysInclusive(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
