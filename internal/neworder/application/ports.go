package application

import (
	"context"
	"time"

	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

// OrderStore executes the New-Order transaction as one atomic unit of work:
// district counter advance, order and marker inserts, per-line locked stock
// updates and order-line inserts, outbox event — commit or full rollback.
type OrderStore interface {
	ExecuteNewOrder(ctx context.Context, req domain.OrderRequest, entry time.Time, headers map[string]string, traceparent string) (domain.OrderResult, error)
}

// IdempotencyGate deduplicates terminal requests across retries. Forget
// releases a key claimed by an attempt that did not commit.
type IdempotencyGate interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}
