package postgres

import (
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"backoffice/internal/core/apperror"
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign-key violation.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlStateForeignKey
}

// MapNotFound converts scany's no-rows error into an apperror not-found error.
func MapNotFound(err error, entity string, key any) error {
	if pgxscan.NotFound(err) {
		return apperror.NewNotFound(entity, key)
	}
	return err
}

// MapReferenceError converts a foreign-key violation into a 422 naming the constraint.
func MapReferenceError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateForeignKey {
		return apperror.NewBusinessRule(apperror.CodeInvalidInput, "referenced record does not exist").
			WithDetail("constraint", pgErr.ConstraintName).
			WithCause(err)
	}
	return err
}
