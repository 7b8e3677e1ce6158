package employees

import "time"

// Employee is master data referenced by every other vertical. Scheduling
// state never lives here; vacations, workloads and memberships all key on
// the employee ID.
type Employee struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Position  string    `json:"position"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateEmployeeInput registers a new employee.
type CreateEmployeeInput struct {
	FullName string
	Email    string
	Position string
}

// ListEmployeesRequest filters the listing.
type ListEmployeesRequest struct {
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}
