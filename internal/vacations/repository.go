package vacations

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planwise-hr/planwise/internal/shared"
	"github.com/planwise-hr/planwise/internal/validation"
)

// Repository abstracts vacation persistence so the service can be tested
// against an in-memory fake.
type Repository interface {
	Create(ctx context.Context, input CreateVacationInput, days int) (Vacation, error)
	Get(ctx context.Context, id int64) (Vacation, error)
	Reschedule(ctx context.Context, input RescheduleVacationInput, days int) (Vacation, error)
	SetStatus(ctx context.Context, id int64, status validation.VacationStatus) (Vacation, error)
	List(ctx context.Context, req ListVacationsRequest) ([]Vacation, int, error)
}

// PGRepository provides PostgreSQL backed persistence for vacations.
//
// The vacations table carries the authoritative overlap backstop: a GiST
// exclusion constraint over (employee_id, daterange(start_date, end_date,
// '[]')) limited to pending/approved rows. A conflicting insert that slips
// between validate and commit fails here with SQLSTATE 23P01.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const vacationColumns = `id, employee_id, vacation_type, status, start_date, end_date, days_requested, created_at, updated_at`

func (r *PGRepository) Create(ctx context.Context, input CreateVacationInput, days int) (Vacation, error) {
	query := `
		INSERT INTO vacations (employee_id, vacation_type, status, start_date, end_date, days_requested, created_at, updated_at)
		VALUES ($1, $2, 'pending', $3, $4, $5, NOW(), NOW())
		RETURNING ` + vacationColumns
	row := r.pool.QueryRow(ctx, query, input.EmployeeID, input.Type, input.StartDate, input.EndDate, days)
	v, err := scanVacation(row)
	if err != nil {
		if shared.IsConstraintViolation(err) {
			return Vacation{}, fmt.Errorf("overlapping vacation committed concurrently: %w", shared.ErrConflict)
		}
		return Vacation{}, err
	}
	return v, nil
}

func (r *PGRepository) Get(ctx context.Context, id int64) (Vacation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+vacationColumns+` FROM vacations WHERE id = $1`, id)
	v, err := scanVacation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vacation{}, shared.ErrNotFound
	}
	return v, err
}

func (r *PGRepository) Reschedule(ctx context.Context, input RescheduleVacationInput, days int) (Vacation, error) {
	query := `
		UPDATE vacations
		SET start_date = $2, end_date = $3, days_requested = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + vacationColumns
	row := r.pool.QueryRow(ctx, query, input.ID, input.StartDate, input.EndDate, days)
	v, err := scanVacation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vacation{}, shared.ErrNotFound
	}
	if err != nil && shared.IsConstraintViolation(err) {
		return Vacation{}, fmt.Errorf("overlapping vacation committed concurrently: %w", shared.ErrConflict)
	}
	return v, err
}

func (r *PGRepository) SetStatus(ctx context.Context, id int64, status validation.VacationStatus) (Vacation, error) {
	query := `
		UPDATE vacations SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + vacationColumns
	row := r.pool.QueryRow(ctx, query, id, string(status))
	v, err := scanVacation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Vacation{}, shared.ErrNotFound
	}
	return v, err
}

func (r *PGRepository) List(ctx context.Context, req ListVacationsRequest) ([]Vacation, int, error) {
	query := `
		SELECT ` + vacationColumns + `, COUNT(*) OVER() AS total
		FROM vacations
		WHERE ($1 = 0 OR employee_id = $1)
		  AND ($2 = '' OR status = $2)
		  AND ($3::date IS NULL OR end_date >= $3)
		  AND ($4::date IS NULL OR start_date <= $4)
		ORDER BY start_date DESC, id DESC
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
	rows, err := r.pool.Query(ctx, query, req.EmployeeID, string(req.Status), from, to, limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Vacation
	var total int
	for rows.Next() {
		var v Vacation
		var status, vtype string
		if err := rows.Scan(&v.ID, &v.EmployeeID, &vtype, &status, &v.StartDate, &v.EndDate,
			&v.DaysRequested, &v.CreatedAt, &v.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		v.Type = VacationType(vtype)
		v.Status = validation.VacationStatus(status)
		out = append(out, v)
	}
	return out, total, rows.Err()
}

func scanVacation(row pgx.Row) (Vacation, error) {
	var v Vacation
	var status, vtype string
	err := row.Scan(&v.ID, &v.EmployeeID, &vtype, &status, &v.StartDate, &v.EndDate,
		&v.DaysRequested, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return Vacation{}, err
	}
	v.Type = VacationType(vtype)
	v.Status = validation.VacationStatus(status)
	return v, nil
}
