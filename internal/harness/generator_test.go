package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oltpworks/wholesale/internal/neworder/domain"
)

func testScale() Scale {
	return Scale{Warehouses: 4, Items: 1000, CustomersPerDistrict: 30}
}

func TestGeneratorBounds(t *testing.T) {
	g := NewGenerator(testScale(), 1)
	for range 2000 {
		req := g.NextRequest(2)
		assert.Equal(t, 2, req.WarehouseID)
		assert.GreaterOrEqual(t, req.DistrictID, 1)
		assert.LessOrEqual(t, req.DistrictID, 10)
		assert.GreaterOrEqual(t, req.CustomerID, 1)
		assert.LessOrEqual(t, req.CustomerID, 30)
		assert.GreaterOrEqual(t, len(req.Lines), 5)
		assert.LessOrEqual(t, len(req.Lines), domain.MaxOrderLines)
		for _, l := range req.Lines {
			assert.GreaterOrEqual(t, l.Quantity, 1)
			assert.LessOrEqual(t, l.Quantity, 10)
			assert.GreaterOrEqual(t, l.SupplyWarehouseID, 1)
			assert.LessOrEqual(t, l.SupplyWarehouseID, 4)
			// Item ids stay in range except for the deliberate bad-item mix.
			assert.LessOrEqual(t, l.ItemID, 1001)
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(testScale(), 42)
	b := NewGenerator(testScale(), 42)
	for range 100 {
		assert.Equal(t, a.NextRequest(1), b.NextRequest(1))
	}
}

func TestGeneratorMix(t *testing.T) {
	g := NewGenerator(testScale(), 7)
	var bad, remote, total int
	for range 10000 {
		req := g.NextRequest(1)
		for _, l := range req.Lines {
			total++
			if l.ItemID > 1000 {
				bad++
			}
			if l.SupplyWarehouseID != 1 {
				remote++
			}
		}
	}
	// ~1% of orders carry an unknown item; ~1% of lines are remote.
	require.Positive(t, bad)
	require.Positive(t, remote)
	assert.Less(t, bad, total/50)
	assert.Less(t, remote, total/25)
}

func TestGeneratorValidRequests(t *testing.T) {
	g := NewGenerator(testScale(), 3)
	for range 1000 {
		assert.NoError(t, g.NextRequest(1).Validate())
	}
}
