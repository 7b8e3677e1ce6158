package employees

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planwise-hr/planwise/internal/shared"
)

// Repository abstracts employee persistence.
type Repository interface {
	Create(ctx context.Context, input CreateEmployeeInput) (Employee, error)
	Get(ctx context.Context, id int64) (Employee, error)
	List(ctx context.Context, req ListEmployeesRequest) ([]Employee, int, error)
	SetActive(ctx context.Context, id int64, active bool) error
}

// PGRepository provides PostgreSQL backed persistence for employees.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const employeeColumns = `id, full_name, email, position, is_active, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, input CreateEmployeeInput) (Employee, error) {
	query := `
		INSERT INTO employees (full_name, email, position, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, NOW(), NOW())
		RETURNING ` + employeeColumns
	row := r.pool.QueryRow(ctx, query, input.FullName, input.Email, input.Position)
	e, err := scanEmployee(row)
	if err != nil {
		if shared.IsConstraintViolation(err) {
			return Employee{}, fmt.Errorf("email already registered: %w", shared.ErrConflict)
		}
		return Employee{}, err
	}
	return e, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Employee, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	e, err := scanEmployee(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, shared.ErrNotFound
	}
	return e, err
}

func (r *PGRepository) List(ctx context.Context, req ListEmployeesRequest) ([]Employee, int, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+employeeColumns+`, COUNT(*) OVER() AS total
		FROM employees
		WHERE ($1 = '' OR full_name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%')
		  AND (NOT $2::bool OR is_active)
		ORDER BY full_name, id
		LIMIT $3 OFFSET $4`, req.Search, req.ActiveOnly, limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Employee
	var total int
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &e.Position, &e.IsActive, &e.CreatedAt, &e.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE employees SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (Employee, error) {
	var e Employee
	err := row.Scan(&e.ID, &e.FullName, &e.Email, &e.Position, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}
