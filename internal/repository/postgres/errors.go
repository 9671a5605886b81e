package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mkozic/askbox/internal/repository"
)

const uniqueViolation = "23505"

// mapUnique converts a unique-constraint violation into the repository's
// duplicate sentinels so services never parse SQLSTATEs themselves.
func mapUnique(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "users_username_key":
		return repository.ErrUsernameExists
	case "users_email_key":
		return repository.ErrEmailExists
	default:
		return repository.ErrDuplicate
	}
}
