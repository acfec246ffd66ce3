package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"brewpos/internal/core/apperror"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

// IsUniqueViolation reports whether err is a unique constraint failure, and on which constraint.
func IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsForeignKeyViolation reports whether err is a foreign key failure.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation
}

// mapTxError turns lost races on stock rows (serialization failure, deadlock, lock_timeout)
// into CONCURRENT_MODIFICATION. They are surfaced to the caller, never retried here.
func mapTxError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
		table := pgErr.TableName
		if table == "" {
			table = "stock"
		}
		return apperror.NewConcurrentModification(table, pgErr.Code).WithCause(err)
	}
	return err
}
