package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oltpworks/wholesale/internal/neworder/infrastructure/postgres"
)

// Seeder populates a fresh wholesale database: the benchmark's prepare step.
// The data is deterministic for a given seed so runs are reproducible.
type Seeder struct {
	log   *slog.Logger
	pool  *pgxpool.Pool
	scale Scale
	rng   *rand.Rand
}

func NewSeeder(log *slog.Logger, pool *pgxpool.Pool, scale Scale, seed int64) *Seeder {
	return &Seeder{log: log, pool: pool, scale: scale, rng: rand.New(rand.NewSource(seed))}
}

func (s *Seeder) Run(ctx context.Context) error {
	if err := postgres.CreateSchema(ctx, s.pool); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := s.loadItems(ctx); err != nil {
		return fmt.Errorf("load items: %w", err)
	}
	for w := 1; w <= s.scale.Warehouses; w++ {
		if err := s.loadWarehouse(ctx, w); err != nil {
			return fmt.Errorf("load warehouse %d: %w", w, err)
		}
		s.log.Info("warehouse loaded", "w_id", w)
	}
	return nil
}

// tax in [0, 0.2), four decimals, like the benchmark population.
func (s *Seeder) tax() decimal.Decimal {
	return decimal.New(int64(s.rng.Intn(2000)), -4)
}

func (s *Seeder) discount() decimal.Decimal {
	return decimal.New(int64(s.rng.Intn(5000)), -4)
}

// dataString returns free text that carries the brand marker ~10% of the
// time, feeding the brand-generic flag.
func (s *Seeder) dataString(n int) string {
	d := randString(s.rng, n)
	if s.rng.Intn(10) == 0 {
		pos := s.rng.Intn(len(d) - len("ORIGINAL"))
		d = d[:pos] + "ORIGINAL" + d[pos+len("ORIGINAL"):]
	}
	return d
}

func (s *Seeder) loadItems(ctx context.Context) error {
	rows := make([][]any, 0, s.scale.Items)
	for i := 1; i <= s.scale.Items; i++ {
		price := decimal.New(int64(100+s.rng.Intn(9901)), -2) // 1.00 .. 100.00
		rows = append(rows, []any{i, randString(s.rng, 14), price, s.dataString(26)})
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"item"},
		[]string{"i_id", "i_name", "i_price", "i_data"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (s *Seeder) loadWarehouse(ctx context.Context, wID int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO warehouse (w_id, w_name, w_tax, w_ytd) VALUES ($1, $2, $3, 0)`,
		wID, randString(s.rng, 8), s.tax(),
	)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for d := 1; d <= 10; d++ {
		batch.Queue(
			`INSERT INTO district (d_id, d_w_id, d_name, d_tax, d_ytd, d_next_o_id) VALUES ($1, $2, $3, $4, 0, 1)`,
			d, wID, randString(s.rng, 8), s.tax(),
		)
		for c := 1; c <= s.scale.CustomersPerDistrict; c++ {
			credit := "GC"
			if s.rng.Intn(10) == 0 {
				credit = "BC"
			}
			batch.Queue(
				`INSERT INTO customer (c_id, c_d_id, c_w_id, c_first, c_last, c_credit, c_discount, c_balance)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, 0)`,
				c, d, wID, randString(s.rng, 10), lastName(s.rng, c), credit, s.discount(),
			)
		}
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return s.loadStock(ctx, wID)
}

func (s *Seeder) loadStock(ctx context.Context, wID int) error {
	cols := []string{"s_i_id", "s_w_id", "s_quantity", "s_data"}
	for d := 1; d <= 10; d++ {
		cols = append(cols, fmt.Sprintf("s_dist_%02d", d))
	}

	rows := make([][]any, 0, s.scale.Items)
	for i := 1; i <= s.scale.Items; i++ {
		row := []any{i, wID, 10 + s.rng.Intn(91), s.dataString(26)}
		for d := 0; d < 10; d++ {
			row = append(row, randString(s.rng, 24))
		}
		rows = append(rows, row)
	}
	_, err := s.pool.CopyFrom(ctx, pgx.Identifier{"stock"}, cols, pgx.CopyFromRows(rows))
	return err
}

const letters = "abcdefghijklmnopqrstuvwxyz"

func randString(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}

// The benchmark's syllable-composed customer last names.
var syllables = []string{"BAR", "OUGHT", "ABLE", "PRI", "PRES", "ESE", "ANTI", "CALLY", "ATION", "EING"}

func lastName(rng *rand.Rand, cID int) string {
	n := cID % 1000
	if cID > 1000 {
		n = rng.Intn(1000)
	}
	return syllables[n/100] + syllables[(n/10)%10] + syllables[n%10]
}
