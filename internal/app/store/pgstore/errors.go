package pgstore

import (
	"errors"

	"github.com/dalemusser/coursehub/internal/domain/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation reports SQLSTATE 23505.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation reports SQLSTATE 23503.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// wrap maps driver errors onto errs kinds: no rows is NotFound, a unique
// violation is Conflict, everything else Unavailable. msg is the
// caller-facing message for the first two.
func wrap(op, msg string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return &errs.Error{Op: op, Kind: errs.ErrNotFound, Message: msg, Err: err}
	case IsUniqueViolation(err):
		return &errs.Error{Op: op, Kind: errs.ErrConflict, Message: msg, Err: err}
	case IsForeignKeyViolation(err):
		return &errs.Error{Op: op, Kind: errs.ErrInvalid, Message: "referenced record does not exist", Err: err}
	default:
		return errs.Unavailable(op, err)
	}
}
