package teams

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/planwise-hr/planwise/internal/platform/db"
	"github.com/planwise-hr/planwise/internal/shared"
)

// Repository abstracts team and membership persistence.
type Repository interface {
	CreateTeam(ctx context.Context, name string) (Team, error)
	GetTeam(ctx context.Context, id int64) (Team, error)
	ListTeams(ctx context.Context, limit, offset int) ([]Team, int, error)

	AddMember(ctx context.Context, input AddMemberInput) (Membership, error)
	GetMembership(ctx context.Context, id int64) (Membership, error)
	Deactivate(ctx context.Context, membershipID int64) error
	// PromoteLeader sets is_leader on the employee's active membership and,
	// when supersede is set, demotes the incumbent inside the same
	// transaction.
	PromoteLeader(ctx context.Context, teamID, employeeID int64, supersede bool) (Membership, error)
	ListMembers(ctx context.Context, req ListMembersRequest) ([]Membership, int, error)
}

// PGRepository provides PostgreSQL backed persistence for teams. Two
// partial unique indexes back the engine's uniqueness checks: one on
// (team_id, employee_id) WHERE is_active, one on (team_id)
// WHERE is_leader AND is_active.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const membershipColumns = `id, team_id, employee_id, role, is_leader, is_active, created_at, updated_at`

func (r *PGRepository) CreateTeam(ctx context.Context, name string) (Team, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO teams (name, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, name, created_at, updated_at`, name)
	var t Team
	if err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Team{}, err
	}
	return t, nil
}

func (r *PGRepository) GetTeam(ctx context.Context, id int64) (Team, error) {
	row := r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM teams WHERE id = $1`, id)
	var t Team
	err := row.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Team{}, shared.ErrNotFound
	}
	return t, err
}

func (r *PGRepository) ListTeams(ctx context.Context, limit, offset int) ([]Team, int, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at, updated_at, COUNT(*) OVER() AS total
		FROM teams
		ORDER BY name, id
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Team
	var total int
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *PGRepository) AddMember(ctx context.Context, input AddMemberInput) (Membership, error) {
	query := `
		INSERT INTO team_memberships (team_id, employee_id, role, is_leader, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW(), NOW())
		RETURNING ` + membershipColumns
	row := r.pool.QueryRow(ctx, query, input.TeamID, input.EmployeeID, input.Role, input.IsLeader)
	m, err := scanMembership(row)
	if err != nil {
		if shared.IsConstraintViolation(err) {
			return Membership{}, fmt.Errorf("membership committed concurrently: %w", shared.ErrConflict)
		}
		return Membership{}, err
	}
	return m, nil
}

func (r *PGRepository) GetMembership(ctx context.Context, id int64) (Membership, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+membershipColumns+` FROM team_memberships WHERE id = $1`, id)
	m, err := scanMembership(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Membership{}, shared.ErrNotFound
	}
	return m, err
}

func (r *PGRepository) Deactivate(ctx context.Context, membershipID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE team_memberships
		SET is_active = FALSE, is_leader = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active`, membershipID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) PromoteLeader(ctx context.Context, teamID, employeeID int64, supersede bool) (Membership, error) {
	var m Membership
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if supersede {
			_, err := tx.Exec(ctx, `
				UPDATE team_memberships
				SET is_leader = FALSE, updated_at = NOW()
				WHERE team_id = $1 AND is_leader AND is_active AND employee_id <> $2`, teamID, employeeID)
			if err != nil {
				return err
			}
		}

		row := tx.QueryRow(ctx, `
			UPDATE team_memberships
			SET is_leader = TRUE, updated_at = NOW()
			WHERE team_id = $1 AND employee_id = $2 AND is_active
			RETURNING `+membershipColumns, teamID, employeeID)
		var err error
		m, err = scanMembership(row)
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		return err
	})
	if err != nil {
		if shared.IsConstraintViolation(err) {
			return Membership{}, fmt.Errorf("leader promoted concurrently: %w", shared.ErrConflict)
		}
		return Membership{}, err
	}
	return m, nil
}

func (r *PGRepository) ListMembers(ctx context.Context, req ListMembersRequest) ([]Membership, int, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+membershipColumns+`, COUNT(*) OVER() AS total
		FROM team_memberships
		WHERE team_id = $1 AND (NOT $2::bool OR is_active)
		ORDER BY is_leader DESC, id
		LIMIT $3 OFFSET $4`, req.TeamID, req.ActiveOnly, limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Membership
	var total int
	for rows.Next() {
		var m Membership
		if err := rows.Scan(&m.ID, &m.TeamID, &m.EmployeeID, &m.Role, &m.IsLeader, &m.IsActive, &m.CreatedAt, &m.UpdatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	return out, total, rows.Err()
}

func scanMembership(row pgx.Row) (Membership, error) {
	var m Membership
	err := row.Scan(&m.ID, &m.TeamID, &m.EmployeeID, &m.Role, &m.IsLeader, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}
