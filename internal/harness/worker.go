package harness

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oltpworks/wholesale/internal/neworder/application"
	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

// Pacer spreads transactions across all workers at a fixed aggregate rate.
// Each Wait claims the next slot of the shared schedule and sleeps until it
// arrives; a zero target disables pacing.
type Pacer struct {
	mu        sync.Mutex
	next      time.Time
	increment time.Duration
}

func NewPacer(targetTPS float64) *Pacer {
	p := &Pacer{next: time.Now()}
	if targetTPS > 0 {
		p.increment = time.Duration(float64(time.Second) / targetTPS)
	}
	return p
}

func (p *Pacer) Wait(ctx context.Context) error {
	if p.increment == 0 {
		return ctx.Err()
	}
	p.mu.Lock()
	p.next = p.next.Add(p.increment)
	slot := p.next
	p.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

const maxRetries = 5

// Worker is one simulated terminal: it owns a home warehouse and a seeded
// generator, and issues paced New-Order transactions until the context ends.
// Conflicts and timeouts are retried with the same request id; NotFound
// aborts (the bad-item mix) count as expected rollbacks.
type Worker struct {
	id    int
	log   *slog.Logger
	svc   *application.Service
	gen   *Generator
	pacer *Pacer
	stats *Stats
	scale Scale
}

func NewWorker(id int, log *slog.Logger, svc *application.Service, gen *Generator, pacer *Pacer, stats *Stats, scale Scale) *Worker {
	return &Worker{id: id, log: log, svc: svc, gen: gen, pacer: pacer, stats: stats, scale: scale}
}

func (w *Worker) Run(ctx context.Context) {
	homeWID := (w.id % w.scale.Warehouses) + 1
	for {
		if err := w.pacer.Wait(ctx); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		w.runOne(ctx, w.gen.NextRequest(homeWID))
	}
}

func (w *Worker) runOne(ctx context.Context, req domain.OrderRequest) {
	requestID := uuid.NewString()
	start := time.Now()

	for attempt := 0; ; attempt++ {
		_, err := w.svc.ProcessOrder(ctx, requestID, req)
		switch {
		case err == nil:
			w.stats.RecordCommit(time.Since(start))
			return
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return
		case domain.KindOf(err) == domain.KindNotFound:
			// The deliberate unknown-item rollback.
			w.stats.Rollbacks.Add(1)
			return
		case domain.Retryable(err) && attempt < maxRetries:
			w.stats.Conflicts.Add(1)
			continue
		default:
			w.stats.Failures.Add(1)
			w.log.Warn("transaction failed", "worker", w.id, "err", err)
			return
		}
	}
}
