package integration

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oltpworks/wholesale/internal/harness"
	"github.com/oltpworks/wholesale/internal/neworder/application"
	"github.com/oltpworks/wholesale/internal/neworder/domain"
	orderkafka "github.com/oltpworks/wholesale/internal/neworder/infrastructure/kafka"
	orderpg "github.com/oltpworks/wholesale/internal/neworder/infrastructure/postgres"
	"github.com/oltpworks/wholesale/pkg/outbox"
)

const topic = "order.events"

type memGate struct{ seen map[string]bool }

func (g *memGate) Seen(_ context.Context, key string) (bool, error) {
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[key] {
		return true, nil
	}
	g.seen[key] = true
	return false, nil
}

func (g *memGate) Forget(_ context.Context, key string) error {
	delete(g.seen, key)
	return nil
}

// TestNewOrderEndToEnd seeds a small scale, commits an order through the
// service, lets the relay ship the outbox row and reads the event back from
// Kafka.
func TestNewOrderEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	env, err := Setup(ctx)
	if err != nil {
		t.Skipf("containers unavailable: %v", err)
	}
	defer env.Teardown(context.Background())

	log := slog.New(slog.DiscardHandler)

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()

	scale := harness.Scale{Warehouses: 1, Items: 100, CustomersPerDistrict: 10}
	require.NoError(t, harness.NewSeeder(log, pool, scale, 1).Run(ctx))

	repo := orderpg.NewRepository(log, pool)
	svc := application.NewService(repo, &memGate{})

	writer := orderkafka.NewWriter(env.Brokers)
	defer writer.Close()
	store := orderpg.NewOutboxStore(log, pool)
	relay := outbox.NewRelay(log, store, outbox.NewDispatcher(log, writer, topic), "test-relay")

	relayCtx, stopRelay := context.WithCancel(ctx)
	defer stopRelay()
	go func() { _ = relay.Run(relayCtx) }()

	req := domain.OrderRequest{
		WarehouseID: 1,
		DistrictID:  1,
		CustomerID:  1,
		Lines: []domain.LineItemRequest{
			{ItemID: 1, SupplyWarehouseID: 1, Quantity: 3},
			{ItemID: 2, SupplyWarehouseID: 1, Quantity: 1},
		},
	}
	res, err := svc.ProcessOrder(ctx, "e2e-req-1", req)
	require.NoError(t, err)
	assert.Equal(t, 1, res.OrderID, "first order in a fresh district")
	assert.Len(t, res.Lines, 2)
	assert.True(t, res.TotalAmount.IsPositive())

	// A duplicate terminal retry of the committed order is rejected.
	_, err = svc.ProcessOrder(ctx, "e2e-req-1", req)
	assert.ErrorIs(t, err, application.ErrDuplicateRequest)

	// The event reaches Kafka via the relay.
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: env.Brokers,
		Topic:   topic,
		GroupID: "e2e-consumer",
	})
	defer reader.Close()

	readCtx, cancelRead := context.WithTimeout(ctx, 30*time.Second)
	defer cancelRead()
	msg, err := reader.FetchMessage(readCtx)
	require.NoError(t, err, "outbox event not delivered")

	assert.Equal(t, "1:1:1", string(msg.Key))
	var event domain.OrderPlaced
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, 1, event.OrderID)
	assert.Equal(t, 2, event.LineCount)
	assert.True(t, event.AllLocal)
	assert.True(t, event.TotalAmount.Equal(res.TotalAmount))

	var sawRequestID bool
	for _, h := range msg.Headers {
		if h.Key == "request_id" && string(h.Value) == "e2e-req-1" {
			sawRequestID = true
		}
	}
	assert.True(t, sawRequestID, "request id header propagated through the outbox")

	// Outbox row marked sent.
	var sent int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM outbox WHERE status='sent'`).Scan(&sent))
	assert.Equal(t, 1, sent)
}
