package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

// Postgres SQLSTATE codes that mean "the store refused this interleaving",
// not "the request is wrong". The caller may retry all of them.
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
)

// mapError translates driver-level failures into the domain taxonomy.
// Conflict and Timeout are retryable; everything unrecognized is Internal.
func mapError(table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected:
			return domain.NewConflict(table, err)
		case codeLockNotAvailable, codeQueryCanceled:
			return domain.NewTimeout(table, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.NewTimeout(table, err)
	}
	return domain.NewInternal(err)
}
