package workloads

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planwise-hr/planwise/internal/shared"
)

// Repository abstracts workload persistence.
type Repository interface {
	Create(ctx context.Context, input LogWorkloadInput) (Workload, error)
	Get(ctx context.Context, id int64) (Workload, error)
	UpdateHours(ctx context.Context, id int64, hours float64) (Workload, error)
	Void(ctx context.Context, id int64) error
	List(ctx context.Context, req ListWorkloadsRequest) ([]Workload, int, error)
}

// PGRepository provides PostgreSQL backed persistence for workloads. The
// partial unique index on (employee_id, project_id, work_date) WHERE
// status = 'active' is the authoritative duplicate guard.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const workloadColumns = `id, employee_id, project_id, work_date, hours, status, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, input LogWorkloadInput) (Workload, error) {
	query := `
		INSERT INTO workloads (employee_id, project_id, work_date, hours, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'active', NOW(), NOW())
		RETURNING ` + workloadColumns
	row := r.pool.QueryRow(ctx, query, input.EmployeeID, input.ProjectID, input.WorkDate, input.Hours)
	w, err := scanWorkload(row)
	if err != nil {
		if shared.IsConstraintViolation(err) {
			return Workload{}, fmt.Errorf("duplicate workload committed concurrently: %w", shared.ErrConflict)
		}
		return Workload{}, err
	}
	return w, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Workload, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+workloadColumns+` FROM workloads WHERE id = $1`, id)
	w, err := scanWorkload(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Workload{}, shared.ErrNotFound
	}
	return w, err
}

func (r *PGRepository) UpdateHours(ctx context.Context, id int64, hours float64) (Workload, error) {
	query := `
		UPDATE workloads SET hours = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
		RETURNING ` + workloadColumns
	row := r.pool.QueryRow(ctx, query, id, hours)
	w, err := scanWorkload(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Workload{}, shared.ErrNotFound
	}
	return w, err
}

func (r *PGRepository) Void(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workloads SET status = 'void', updated_at = NOW() WHERE id = $1 AND status = 'active'`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) List(ctx context.Context, req ListWorkloadsRequest) ([]Workload, int, error) {
	query := `
		SELECT ` + workloadColumns + `, COUNT(*) OVER() AS total
		FROM workloads
		WHERE status = 'active'
		  AND ($1 = 0 OR employee_id = $1)
		  AND ($2 = 0 OR project_id = $2)
		  AND ($3::date IS NULL OR work_date >= $3)
		  AND ($4::date IS NULL OR work_date <= $4)
		ORDER BY work_date DESC, id DESC
		LIMIT $5 OFFSET $6`
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	var from, to any
	if !req.From.IsZero() {
		from = req.From
	}
	if !req.To.IsZero() {
		to = req.To
	}
	rows, err := r.pool.Query(ctx, query, req.EmployeeID, req.ProjectID, from, to, limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Workload
	var total int
	for rows.Next() {
		var w Workload
		var status string
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.ProjectID, &w.WorkDate, &w.Hours,
			&status, &w.CreatedAt, &w.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		w.Status = WorkloadStatus(status)
		out = append(out, w)
	}
	return out, total, rows.Err()
}

func scanWorkload(row pgx.Row) (Workload, error) {
	var w Workload
	var status string
	err := row.Scan(&w.ID, &w.EmployeeID, &w.ProjectID, &w.WorkDate, &w.Hours,
		&status, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return Workload{}, err
	}
	w.Status = WorkloadStatus(status)
	return w, nil
}
