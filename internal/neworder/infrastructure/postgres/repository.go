package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

// Repository runs the New-Order transaction against Postgres. Each call is
// one transaction at snapshot isolation; the district row and every touched
// stock row are locked with SELECT ... FOR UPDATE before their counters are
// read, which serializes order-id assignment and stock decrements without
// blocking transactions on disjoint rows.
type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

// lockedDistrict is only obtainable through lockDistrict, so the counter can
// never be read without the row lock held.
type lockedDistrict struct {
	NextOrderID int
	Tax         decimal.Decimal
}

func lockDistrict(ctx context.Context, tx pgx.Tx, districtID, warehouseID int) (lockedDistrict, error) {
	var d lockedDistrict
	err := tx.QueryRow(ctx,
		`SELECT d_next_o_id, d_tax FROM district WHERE d_id = $1 AND d_w_id = $2 FOR UPDATE`,
		districtID, warehouseID,
	).Scan(&d.NextOrderID, &d.Tax)
	if errors.Is(err, pgx.ErrNoRows) {
		return lockedDistrict{}, domain.NewNotFound("district", "d_id=%d d_w_id=%d", districtID, warehouseID)
	}
	if err != nil {
		return lockedDistrict{}, mapError("district", err)
	}
	return d, nil
}

// lockedStock mirrors lockedDistrict: quantity and data are only readable
// once the stock row lock is held.
type lockedStock struct {
	Quantity int
	Data     string
	DistInfo string
}

func lockStock(ctx context.Context, tx pgx.Tx, itemID, warehouseID int, distCol string) (lockedStock, error) {
	var s lockedStock
	// distCol comes from the fixed s_dist_01..s_dist_10 table, never from input.
	q := fmt.Sprintf(
		`SELECT s_quantity, s_data, %s FROM stock WHERE s_i_id = $1 AND s_w_id = $2 FOR UPDATE`,
		distCol,
	)
	err := tx.QueryRow(ctx, q, itemID, warehouseID).Scan(&s.Quantity, &s.Data, &s.DistInfo)
	if errors.Is(err, pgx.ErrNoRows) {
		return lockedStock{}, domain.NewNotFound("stock", "s_i_id=%d s_w_id=%d", itemID, warehouseID)
	}
	if err != nil {
		return lockedStock{}, mapError("stock", err)
	}
	return s, nil
}

func (r *Repository) ExecuteNewOrder(ctx context.Context, req domain.OrderRequest, entry time.Time, headers map[string]string, traceparent string) (domain.OrderResult, error) {
	distCol, err := domain.DistInfoColumn(req.DistrictID)
	if err != nil {
		return domain.OrderResult{}, err
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return domain.OrderResult{}, mapError("", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	res := domain.OrderResult{
		WarehouseID: req.WarehouseID,
		DistrictID:  req.DistrictID,
		CustomerID:  req.CustomerID,
		LineCount:   len(req.Lines),
		EntryTime:   entry,
	}

	err = tx.QueryRow(ctx,
		`SELECT c_discount, c_last, c_credit, w_tax
		   FROM customer, warehouse
		  WHERE w_id = $1 AND c_w_id = $1 AND c_d_id = $2 AND c_id = $3`,
		req.WarehouseID, req.DistrictID, req.CustomerID,
	).Scan(&res.CustomerDiscount, &res.CustomerLast, &res.CustomerCredit, &res.WarehouseTax)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.OrderResult{}, domain.NewNotFound("customer", "c_w_id=%d c_d_id=%d c_id=%d",
			req.WarehouseID, req.DistrictID, req.CustomerID)
	}
	if err != nil {
		return domain.OrderResult{}, mapError("customer", err)
	}

	dist, err := lockDistrict(ctx, tx, req.DistrictID, req.WarehouseID)
	if err != nil {
		return domain.OrderResult{}, err
	}
	res.DistrictTax = dist.Tax
	res.OrderID = dist.NextOrderID

	// The counter advance is the linearization point assigning the order id;
	// the row stays locked until commit or rollback.
	_, err = tx.Exec(ctx,
		`UPDATE district SET d_next_o_id = d_next_o_id + 1 WHERE d_id = $1 AND d_w_id = $2`,
		req.DistrictID, req.WarehouseID,
	)
	if err != nil {
		return domain.OrderResult{}, mapError("district", err)
	}

	allLocal := 0
	if req.AllLocal() {
		allLocal = 1
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO orders (o_id, o_d_id, o_w_id, o_c_id, o_entry_d, o_ol_cnt, o_all_local)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.OrderID, req.DistrictID, req.WarehouseID, req.CustomerID, entry, len(req.Lines), allLocal,
	)
	if err != nil {
		return domain.OrderResult{}, mapError("orders", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO new_orders (no_o_id, no_d_id, no_w_id) VALUES ($1, $2, $3)`,
		res.OrderID, req.DistrictID, req.WarehouseID,
	)
	if err != nil {
		return domain.OrderResult{}, mapError("new_orders", err)
	}

	lineSum := decimal.Zero
	res.Lines = make([]domain.OrderLineResult, 0, len(req.Lines))
	for i, l := range req.Lines {
		var (
			price          decimal.Decimal
			name, itemData string
		)
		err = tx.QueryRow(ctx,
			`SELECT i_price, i_name, i_data FROM item WHERE i_id = $1`, l.ItemID,
		).Scan(&price, &name, &itemData)
		if errors.Is(err, pgx.ErrNoRows) {
			// The deliberate bad-item case: the whole order aborts.
			return domain.OrderResult{}, domain.NewNotFound("item", "i_id=%d", l.ItemID)
		}
		if err != nil {
			return domain.OrderResult{}, mapError("item", err)
		}

		stock, err := lockStock(ctx, tx, l.ItemID, l.SupplyWarehouseID, distCol)
		if err != nil {
			return domain.OrderResult{}, err
		}

		newQty := domain.RestockQuantity(stock.Quantity, l.Quantity)
		_, err = tx.Exec(ctx,
			`UPDATE stock SET s_quantity = $1 WHERE s_i_id = $2 AND s_w_id = $3`,
			newQty, l.ItemID, l.SupplyWarehouseID,
		)
		if err != nil {
			return domain.OrderResult{}, mapError("stock", err)
		}

		amount := domain.LineAmount(l.Quantity, price, res.WarehouseTax, res.DistrictTax, res.CustomerDiscount)
		_, err = tx.Exec(ctx,
			`INSERT INTO order_line (ol_o_id, ol_d_id, ol_w_id, ol_number, ol_i_id, ol_supply_w_id, ol_quantity, ol_amount, ol_dist_info)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			res.OrderID, req.DistrictID, req.WarehouseID, i+1, l.ItemID, l.SupplyWarehouseID, l.Quantity, amount, stock.DistInfo,
		)
		if err != nil {
			return domain.OrderResult{}, mapError("order_line", err)
		}

		lineSum = lineSum.Add(amount)
		res.Lines = append(res.Lines, domain.OrderLineResult{
			SupplyWarehouseID: l.SupplyWarehouseID,
			ItemID:            l.ItemID,
			ItemName:          name,
			Quantity:          l.Quantity,
			StockQuantity:     newQty,
			BrandGeneric:      domain.BrandGeneric(itemData, stock.Data),
			ItemPrice:         price,
			Amount:            amount,
		})
	}

	res.TotalAmount = domain.TotalAmount(lineSum, res.WarehouseTax, res.DistrictTax, res.CustomerDiscount)

	event := domain.OrderPlaced{
		WarehouseID: req.WarehouseID,
		DistrictID:  req.DistrictID,
		OrderID:     res.OrderID,
		CustomerID:  req.CustomerID,
		LineCount:   len(req.Lines),
		AllLocal:    allLocal == 1,
		TotalAmount: res.TotalAmount,
		EntryTime:   entry,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return domain.OrderResult{}, domain.NewInternal(err)
	}
	aggregateID := fmt.Sprintf("%d:%d:%d", req.WarehouseID, req.DistrictID, res.OrderID)
	_, err = tx.Exec(ctx,
		`INSERT INTO outbox (aggregate_type, aggregate_id, type, payload, headers, traceparent, status)
		 VALUES ($1, $2, $3, $4, $5, $6, 'pending')`,
		"order", aggregateID, "OrderPlaced", payload, headers, traceparent,
	)
	if err != nil {
		return domain.OrderResult{}, mapError("outbox", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.OrderResult{}, mapError("", err)
	}
	return res, nil
}
