package harness

import (
	"math/rand"

	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

// Scale fixes the populated id ranges the generator draws from.
type Scale struct {
	Warehouses           int
	Items                int
	CustomersPerDistrict int
}

func DefaultScale(warehouses int) Scale {
	return Scale{
		Warehouses:           warehouses,
		Items:                100000,
		CustomersPerDistrict: 3000,
	}
}

// Generator produces New-Order requests with the benchmark's input mix:
// non-uniform customer and item selection, 5-15 lines, ~1% remote supply
// warehouses and ~1% deliberately unknown items that must roll back.
type Generator struct {
	scale Scale
	rng   *rand.Rand
}

func NewGenerator(scale Scale, seed int64) *Generator {
	return &Generator{scale: scale, rng: rand.New(rand.NewSource(seed))}
}

// nuRand is the benchmark's non-uniform distribution over [x, y].
func (g *Generator) nuRand(a, x, y int) int {
	c := a / 2
	return (((g.rng.Intn(a+1) | (x + g.rng.Intn(y-x+1))) + c) % (y - x + 1)) + x
}

func (g *Generator) randRange(lo, hi int) int {
	return lo + g.rng.Intn(hi-lo+1)
}

// NextRequest builds one request for the given home warehouse.
func (g *Generator) NextRequest(warehouseID int) domain.OrderRequest {
	req := domain.OrderRequest{
		WarehouseID: warehouseID,
		DistrictID:  g.randRange(1, domain.DistrictsPerWarehouse),
		CustomerID:  g.nuRand(1023, 1, g.scale.CustomersPerDistrict),
	}

	lineCount := g.randRange(5, domain.MaxOrderLines)
	badOrder := g.rng.Intn(100) == 0

	req.Lines = make([]domain.LineItemRequest, lineCount)
	for i := range req.Lines {
		itemID := g.nuRand(8191, 1, g.scale.Items)
		if badOrder && i == lineCount-1 {
			// Unknown item: the whole order must abort with NotFound.
			itemID = g.scale.Items + 1
		}

		supplyWID := warehouseID
		if g.scale.Warehouses > 1 && g.rng.Intn(100) == 0 {
			for supplyWID == warehouseID {
				supplyWID = g.randRange(1, g.scale.Warehouses)
			}
		}

		req.Lines[i] = domain.LineItemRequest{
			ItemID:            itemID,
			SupplyWarehouseID: supplyWID,
			Quantity:          g.randRange(1, 10),
		}
	}
	return req
}
