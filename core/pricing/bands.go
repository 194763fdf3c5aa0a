// Package pricing - Volume band primitives
package pricing

import "github.com/shopspring/decimal"

// Band is one step of a volume price schedule
type Band struct {
	// Size is the number of units the band holds (0 = unlimited)
	Size int

	// UnitPrice is the price of each unit in the band
	UnitPrice decimal.Decimal
}

// AllocateBands splits quantity across bands in order.
// The returned slice has one entry per band and always sums to quantity when
// the last band is unlimited.
func AllocateBands(quantity int, bands []Band) []int {
	alloc := make([]int, len(bands))
	remaining := quantity
	for i, band := range bands {
		if remaining <= 0 {
			break
		}
		if band.Size == 0 {
			alloc[i] = remaining
			remaining = 0
			break
		}
		alloc[i] = min(remaining, band.Size)
		remaining -= alloc[i]
	}
	return alloc
}

// CalculateBandedCost computes the cost of quantity across bands
func CalculateBandedCost(quantity int, bands []Band) (decimal.Decimal, []int) {
	alloc := AllocateBands(quantity, bands)
	total := decimal.Zero
	for i, n := range alloc {
		total = total.Add(bands[i].UnitPrice.Mul(decimal.NewFromInt(int64(n))))
	}
	return total, alloc
}

// freeFirst returns the billable units once the first unit is free
func freeFirst(quantity int) int {
	return max(0, quantity-1)
}

// times multiplies a price by a unit count
func times(price decimal.Decimal, n int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(n)))
}
