package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestLineAmount(t *testing.T) {
	// 5 × 12.50 × (1 + 0.05 + 0.10) × (1 − 0.20) = 57.50
	got := LineAmount(5, dec("12.50"), dec("0.05"), dec("0.10"), dec("0.20"))
	assert.True(t, got.Equal(dec("57.50")), "got %s", got)

	// Half-up rounding: 1 × 1.005 × 1 × 1 = 1.005 → 1.01
	got = LineAmount(1, dec("1.005"), dec("0"), dec("0"), dec("0"))
	assert.True(t, got.Equal(dec("1.01")), "got %s", got)
}

func TestTotalAmountReappliesAdjustment(t *testing.T) {
	wTax, dTax, disc := dec("0.05"), dec("0.10"), dec("0.20")

	line := LineAmount(5, dec("12.50"), wTax, dTax, disc)
	require.True(t, line.Equal(dec("57.50")))

	// The total multiplies the already-adjusted line sum by the same factor
	// again: 57.50 × 0.80 × 1.15 = 52.90. The doubling is reference behavior.
	total := TotalAmount(line, wTax, dTax, disc)
	assert.True(t, total.Equal(dec("52.90")), "got %s", total)
}

func TestTotalAmountZeroRates(t *testing.T) {
	total := TotalAmount(dec("100.00"), dec("0"), dec("0"), dec("0"))
	assert.True(t, total.Equal(dec("100.00")), "got %s", total)
}
