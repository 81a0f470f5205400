package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const pgErrUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a postgres duplicate-key error.
// The unique index is the authoritative guard against races that slip past
// pre-insert existence checks.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrUniqueViolation
	}
	return false
}
