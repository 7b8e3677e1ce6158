package workloads

import "time"

// WorkloadStatus marks a row as counting toward aggregates or voided.
type WorkloadStatus string

const (
	StatusActive WorkloadStatus = "active"
	StatusVoid   WorkloadStatus = "void"
)

// Workload model: hours one employee logged against one project on one
// day. The (employee, project, date) key is unique among active rows.
type Workload struct {
	ID         int64
	EmployeeID int64
	ProjectID  int64
	WorkDate   time.Time
	Hours      float64
	Status     WorkloadStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// --- Input DTOs ---

// LogWorkloadInput records hours for a day.
type LogWorkloadInput struct {
	EmployeeID int64
	ProjectID  int64
	WorkDate   time.Time
	Hours      float64
}

// UpdateWorkloadInput changes the hours on an existing row.
type UpdateWorkloadInput struct {
	ID    int64
	Hours float64
}

// ListWorkloadsRequest filters the listing.
type ListWorkloadsRequest struct {
	EmployeeID int64
	ProjectID  int64
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}

// RelatedWorkload is one edge of the informational conflict graph around
// a workload row.
type RelatedWorkload struct {
	ID         int64     `json:"id"`
	EmployeeID int64     `json:"employee_id"`
	ProjectID  int64     `json:"project_id"`
	WorkDate   time.Time `json:"work_date"`
	Hours      float64   `json:"hours"`
	SharedWith string    `json:"shared_with"` // "employee" or "project"
}
