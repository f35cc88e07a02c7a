package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// MaxOrderLines caps the number of line items a single order may carry.
	MaxOrderLines = 15

	// RestockAmount is added back whenever a stock decrement would leave the
	// quantity at zero or below, keeping stock levels oscillating in a
	// bounded positive range.
	RestockAmount = 91

	// DistrictsPerWarehouse fixes the valid district id range 1..10.
	DistrictsPerWarehouse = 10

	// brandMarker flags an item/stock pair as "brand" when both free-text
	// data fields contain it.
	brandMarker = "ORIGINAL"
)

type LineItemRequest struct {
	ItemID            int `json:"item_id"`
	SupplyWarehouseID int `json:"supply_warehouse_id"`
	Quantity          int `json:"quantity"`
}

type OrderRequest struct {
	WarehouseID int               `json:"warehouse_id"`
	DistrictID  int               `json:"district_id"`
	CustomerID  int               `json:"customer_id"`
	Lines       []LineItemRequest `json:"lines"`
}

// Validate checks the request shape before any store work starts. Lookup
// misses (unknown warehouse, customer, item) are not validated here; they
// surface from the store as NotFound.
func (r OrderRequest) Validate() error {
	if len(r.Lines) == 0 {
		return NewInvalidInput("order has no line items")
	}
	if len(r.Lines) > MaxOrderLines {
		return NewInvalidInput("order exceeds %d line items", MaxOrderLines)
	}
	if r.DistrictID < 1 || r.DistrictID > DistrictsPerWarehouse {
		return NewInvalidInput("district id %d outside 1..%d", r.DistrictID, DistrictsPerWarehouse)
	}
	for i, l := range r.Lines {
		if l.Quantity <= 0 {
			return NewInvalidInput("line %d: quantity %d is not positive", i+1, l.Quantity)
		}
	}
	return nil
}

// AllLocal reports whether every line item is supplied by the order's home
// warehouse.
func (r OrderRequest) AllLocal() bool {
	for _, l := range r.Lines {
		if l.SupplyWarehouseID != r.WarehouseID {
			return false
		}
	}
	return true
}

type OrderLineResult struct {
	SupplyWarehouseID int             `json:"supply_warehouse_id"`
	ItemID            int             `json:"item_id"`
	ItemName          string          `json:"item_name"`
	Quantity          int             `json:"quantity"`
	StockQuantity     int             `json:"stock_quantity"`
	BrandGeneric      string          `json:"brand_generic"`
	ItemPrice         decimal.Decimal `json:"item_price"`
	Amount            decimal.Decimal `json:"amount"`
}

type OrderResult struct {
	WarehouseID      int               `json:"warehouse_id"`
	DistrictID       int               `json:"district_id"`
	CustomerID       int               `json:"customer_id"`
	CustomerLast     string            `json:"customer_last"`
	CustomerCredit   string            `json:"customer_credit"`
	CustomerDiscount decimal.Decimal   `json:"customer_discount"`
	WarehouseTax     decimal.Decimal   `json:"warehouse_tax"`
	DistrictTax      decimal.Decimal   `json:"district_tax"`
	OrderID          int               `json:"order_id"`
	LineCount        int               `json:"line_count"`
	EntryTime        time.Time         `json:"entry_time"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	Lines            []OrderLineResult `json:"lines"`
}

// BrandGeneric derives the per-line indicator: "B" when both the item's and
// the stock's data fields carry the brand marker, "G" otherwise.
func BrandGeneric(itemData, stockData string) string {
	if strings.Contains(itemData, brandMarker) && strings.Contains(stockData, brandMarker) {
		return "B"
	}
	return "G"
}

// RestockQuantity applies the decrement-with-wraparound rule: the new
// quantity is onHand − requested, plus RestockAmount if that would drop to
// zero or below.
func RestockQuantity(onHand, requested int) int {
	q := onHand - requested
	if q <= 0 {
		q += RestockAmount
	}
	return q
}

var distInfoColumns = [DistrictsPerWarehouse]string{
	"s_dist_01", "s_dist_02", "s_dist_03", "s_dist_04", "s_dist_05",
	"s_dist_06", "s_dist_07", "s_dist_08", "s_dist_09", "s_dist_10",
}

// DistInfoColumn maps a district id to the stock column holding that
// district's distribution string. Ids outside 1..10 are a contract
// violation, never a silent default.
func DistInfoColumn(districtID int) (string, error) {
	if districtID < 1 || districtID > DistrictsPerWarehouse {
		return "", NewInvalidInput("no distribution column for district %d", districtID)
	}
	return distInfoColumns[districtID-1], nil
}
