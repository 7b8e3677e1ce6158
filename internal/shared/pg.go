package shared

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories translate into ErrConflict.
const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// IsConstraintViolation reports whether err is a unique or exclusion
// constraint rejection from Postgres.
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation || pgErr.Code == pgExclusionViolation
}
