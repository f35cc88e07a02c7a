package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

func pgErr(code string) error {
	return fmt.Errorf("exec: %w", &pgconn.PgError{Code: code, Message: "boom"})
}

func TestMapError(t *testing.T) {
	assert.Equal(t, domain.KindConflict, domain.KindOf(mapError("district", pgErr(codeSerializationFailure))))
	assert.Equal(t, domain.KindConflict, domain.KindOf(mapError("stock", pgErr(codeDeadlockDetected))))
	assert.Equal(t, domain.KindTimeout, domain.KindOf(mapError("stock", pgErr(codeLockNotAvailable))))
	assert.Equal(t, domain.KindTimeout, domain.KindOf(mapError("", pgErr(codeQueryCanceled))))
	assert.Equal(t, domain.KindTimeout, domain.KindOf(mapError("", fmt.Errorf("tx: %w", context.DeadlineExceeded))))
	assert.Equal(t, domain.KindInternal, domain.KindOf(mapError("", errors.New("connection reset"))))

	// Unrelated constraint violations stay non-retryable.
	assert.Equal(t, domain.KindInternal, domain.KindOf(mapError("orders", pgErr("23505"))))
	assert.False(t, domain.Retryable(mapError("orders", pgErr("23505"))))
	assert.True(t, domain.Retryable(mapError("district", pgErr(codeSerializationFailure))))
}
