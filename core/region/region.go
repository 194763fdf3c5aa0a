// Package region converts euro amounts into a regional currency with a fixed
// multiplier and exchange rate.
package region

import (
	"github.com/shopspring/decimal"

	"plan-advisor/core/catalog"
	"plan-advisor/core/types"
)

// Converter applies a regional variant to euro amounts
type Converter struct {
	region *catalog.Region
}

// NewConverter creates a converter for a region
func NewConverter(r *catalog.Region) *Converter {
	return &Converter{region: r}
}

// Convert rounds amount x factor to whole units (half to even), then applies
// the exchange rate
func (c *Converter) Convert(amount decimal.Decimal) decimal.Decimal {
	scaled := amount.Mul(c.region.Factor).RoundBank(0)
	return scaled.Mul(c.region.ExchangeRate)
}

// Total converts a plan total into a regional total
func (c *Converter) Total(amount decimal.Decimal) *types.RegionalTotal {
	return &types.RegionalTotal{
		Region:       c.region.Code,
		Currency:     c.region.Currency,
		Factor:       c.region.Factor,
		ExchangeRate: c.region.ExchangeRate,
		Total:        c.Convert(amount),
	}
}
