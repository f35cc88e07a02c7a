package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlaced is published through the outbox once the New-Order transaction
// commits. Downstream consumers (delivery, analytics) locate the order by the
// (warehouse, district, order) triple.
type OrderPlaced struct {
	WarehouseID int             `json:"warehouse_id"`
	DistrictID  int             `json:"district_id"`
	OrderID     int             `json:"order_id"`
	CustomerID  int             `json:"customer_id"`
	LineCount   int             `json:"line_count"`
	AllLocal    bool            `json:"all_local"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	EntryTime   time.Time       `json:"entry_time"`
}
