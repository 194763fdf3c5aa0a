// Package pricing - Connector pack allocation
package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"plan-advisor/core/catalog"
	"plan-advisor/core/types"
)

// PackOption is a purchasable connector pack
type PackOption struct {
	Product string
	Size    int
	Price   decimal.Decimal
}

// AllocatePacks covers extra connectors with packs. Packs are taken greedily
// from the largest size down; a leftover smaller than every pack is covered by
// the cheapest single pack, the smaller size winning a price tie.
func AllocatePacks(extra int, options []PackOption) []types.PackCount {
	if extra <= 0 || len(options) == 0 {
		return nil
	}

	sorted := make([]PackOption, 0, len(options))
	for _, o := range options {
		if o.Size > 0 {
			sorted = append(sorted, o)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Size > sorted[j].Size })

	counts := make([]int, len(sorted))
	remaining := extra
	for i, o := range sorted {
		counts[i] = remaining / o.Size
		remaining -= counts[i] * o.Size
	}

	if remaining > 0 {
		cheapest := len(sorted) - 1
		for i := len(sorted) - 2; i >= 0; i-- {
			if sorted[i].Price.LessThan(sorted[cheapest].Price) {
				cheapest = i
			}
		}
		counts[cheapest]++
	}

	var result []types.PackCount
	for i := len(sorted) - 1; i >= 0; i-- {
		if counts[i] == 0 {
			continue
		}
		o := sorted[i]
		result = append(result, types.PackCount{
			Product:   o.Product,
			Size:      o.Size,
			Count:     counts[i],
			UnitPrice: o.Price,
			Cost:      times(o.Price, counts[i]),
		})
	}
	return result
}

// PriceConnector computes the add-on packs a connector module needs beyond the
// tier's included allowance. Pack prices are the base price of the
// "<module> <size>" rows at the tier.
func PriceConnector(rt *RateTable, def *catalog.ModuleDefinition, tier types.TierID, requested int) types.ConnectorCharge {
	charge := types.ConnectorCharge{
		Module:    def.Name,
		Requested: requested,
		Cost:      decimal.Zero,
	}
	if def.Connector == nil {
		return charge
	}

	charge.Included = def.Connector.IncludedAt(tier)
	charge.Extra = max(0, requested-charge.Included)
	if charge.Extra == 0 {
		return charge
	}

	options := make([]PackOption, 0, len(def.Connector.PackSizes))
	for _, size := range def.Connector.PackSizes {
		product := catalog.PackProduct(def.Name, size)
		rate, _ := rt.Module(product, tier)
		options = append(options, PackOption{Product: product, Size: size, Price: rate.BasePrice})
	}

	charge.Packs = AllocatePacks(charge.Extra, options)
	for _, p := range charge.Packs {
		charge.Covered += p.Size * p.Count
		charge.Cost = charge.Cost.Add(p.Cost)
	}
	return charge
}
