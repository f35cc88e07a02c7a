package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

var ErrDuplicateRequest = errors.New("duplicate request")

// Service fronts the New-Order transaction: request validation and terminal
// idempotency happen here, the atomic work happens in the store. The service
// never retries — retry-on-conflict belongs to the driving terminal.
type Service struct {
	store OrderStore
	idem  IdempotencyGate
}

func NewService(store OrderStore, idem IdempotencyGate) *Service {
	return &Service{store: store, idem: idem}
}

// ProcessOrder runs one New-Order transaction for the given terminal request.
// requestID deduplicates terminal retries of an already-committed order; a
// failed transaction releases the id so the terminal can try again.
func (s *Service) ProcessOrder(ctx context.Context, requestID string, req domain.OrderRequest) (domain.OrderResult, error) {
	if err := req.Validate(); err != nil {
		return domain.OrderResult{}, err
	}

	key := idempotencyKey(requestID)
	seen, err := s.idem.Seen(ctx, key)
	if err != nil {
		return domain.OrderResult{}, fmt.Errorf("idempotency check: %w", err)
	}
	if seen {
		return domain.OrderResult{}, ErrDuplicateRequest
	}

	headers := map[string]string{"request_id": requestID}
	res, err := s.store.ExecuteNewOrder(ctx, req, time.Now().UTC(), headers, traceparentFrom(ctx))
	if err != nil {
		if forgetErr := s.idem.Forget(ctx, key); forgetErr != nil {
			return domain.OrderResult{}, fmt.Errorf("release request id after %w: %v", err, forgetErr)
		}
		return domain.OrderResult{}, err
	}
	return res, nil
}

func idempotencyKey(requestID string) string {
	return "neworder:" + requestID
}
