package validation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements the Store query port on PostgreSQL. Every method
// issues exactly one query; the threshold checks rely on SQL aggregation.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) FindVacationIntervals(ctx context.Context, employeeID int64, window Window) ([]VacationInterval, error) {
	query := `
		SELECT id, start_date, end_date, status
		FROM vacations
		WHERE employee_id = $1 AND start_date <= $3 AND end_date >= $2
		ORDER BY start_date, id`
	rows, err := r.pool.Query(ctx, query, employeeID, window.From, window.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []VacationInterval
	for rows.Next() {
		var v VacationInterval
		var status string
		if err := rows.Scan(&v.ID, &v.Start, &v.End, &status); err != nil {
			return nil, err
		}
		v.Status = VacationStatus(status)
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repository) SumDailyHours(ctx context.Context, employeeID int64, date time.Time, excludeID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM workloads
		WHERE employee_id = $1 AND work_date = $2 AND status = 'active'
		  AND ($3 = 0 OR id <> $3)`
	var total float64
	err := r.pool.QueryRow(ctx, query, employeeID, date, excludeID).Scan(&total)
	return total, err
}

func (r *Repository) SumWeekHours(ctx context.Context, employeeID int64, weekStart time.Time, excludeID int64) (float64, error) {
	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM workloads
		WHERE employee_id = $1 AND status = 'active'
		  AND work_date >= $2 AND work_date < $2::date + 7
		  AND ($3 = 0 OR id <> $3)`
	var total float64
	err := r.pool.QueryRow(ctx, query, employeeID, weekStart, excludeID).Scan(&total)
	return total, err
}

func (r *Repository) CountActiveMembers(ctx context.Context, teamID int64) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM memberships WHERE team_id = $1 AND is_active`, teamID).Scan(&count)
	return count, err
}

func (r *Repository) FindActiveLeader(ctx context.Context, teamID int64) (*MembershipRef, error) {
	query := `
		SELECT id, team_id, employee_id, is_leader
		FROM memberships
		WHERE team_id = $1 AND is_leader AND is_active
		LIMIT 1`
	var m MembershipRef
	err := r.pool.QueryRow(ctx, query, teamID).Scan(&m.ID, &m.TeamID, &m.EmployeeID, &m.IsLeader)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) FindWorkloadByKey(ctx context.Context, employeeID, projectID int64, date time.Time, excludeID int64) (*WorkloadRef, error) {
	query := `
		SELECT id, employee_id, project_id, work_date, hours
		FROM workloads
		WHERE employee_id = $1 AND project_id = $2 AND work_date = $3
		  AND status = 'active' AND ($4 = 0 OR id <> $4)
		LIMIT 1`
	var w WorkloadRef
	err := r.pool.QueryRow(ctx, query, employeeID, projectID, date, excludeID).
		Scan(&w.ID, &w.EmployeeID, &w.ProjectID, &w.Date, &w.Hours)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *Repository) FindActiveMembership(ctx context.Context, teamID, employeeID int64, excludeID int64) (*MembershipRef, error) {
	query := `
		SELECT id, team_id, employee_id, is_leader
		FROM memberships
		WHERE team_id = $1 AND employee_id = $2 AND is_active
		  AND ($3 = 0 OR id <> $3)
		LIMIT 1`
	var m MembershipRef
	err := r.pool.QueryRow(ctx, query, teamID, employeeID, excludeID).
		Scan(&m.ID, &m.TeamID, &m.EmployeeID, &m.IsLeader)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *Repository) FindRelatedWorkloads(ctx context.Context, employeeID, projectID int64, date time.Time, dayRadius int, excludeID int64) ([]WorkloadRef, error) {
	query := `
		SELECT id, employee_id, project_id, work_date, hours
		FROM workloads
		WHERE status = 'active' AND ($5 = 0 OR id <> $5)
		  AND (
			(employee_id = $1 AND work_date BETWEEN $3::date - $4 AND $3::date + $4)
			OR
			(project_id = $2 AND work_date BETWEEN $3::date - $4 * 2 AND $3::date + $4 * 2)
		  )
		ORDER BY work_date, id`
	rows, err := r.pool.Query(ctx, query, employeeID, projectID, date, dayRadius, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WorkloadRef
	for rows.Next() {
		var w WorkloadRef
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.ProjectID, &w.Date, &w.Hours); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}
