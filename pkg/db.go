package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html

// IsUniqueViolationError checks if the error is a unique violation error
func IsUniqueViolationError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// IsForeignKeyViolationError checks if the error is a foreign key violation error
func IsForeignKeyViolationError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

// IsCheckViolationError checks if the error comes from a CHECK constraint
func IsCheckViolationError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23514"
	}
	return false
}

// IsNumericOutOfRangeError checks if a value did not fit its column type
func IsNumericOutOfRangeError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "22003"
	}
	return false
}

// ConstraintViolation tells whether the database rejected the stored values, as opposed to
// failing the statement, and describes the rejection in terms safe to show to clients.
func ConstraintViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	switch {
	case IsCheckViolationError(err):
		return "violates check " + pgErr.ConstraintName, true
	case IsForeignKeyViolationError(err):
		return "references a missing record (" + pgErr.ConstraintName + ")", true
	case IsNumericOutOfRangeError(err):
		return "a value is out of range", true
	}
	return "", false
}
