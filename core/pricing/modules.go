// Package pricing - Module pricing
package pricing

import (
	"github.com/shopspring/decimal"

	"plan-advisor/core/catalog"
	"plan-advisor/core/types"
)

// POS terminals after each group's first unit are pooled: 9 in the 2-10 band, the rest above
const posMidBandSize = 9

// ModuleSelection is the requested quantity of one module
type ModuleSelection struct {
	// Quantity is seats, terminals or connectors depending on the shape
	Quantity int

	// Web is the web seat sub-count of a web-aware module
	Web int

	// HasWeb is set when a web sub-count was supplied
	HasWeb bool

	// POSCounts lists terminals per license group for a POS module
	POSCounts []int
}

// PriceModule prices one module at a tier according to its billing shape.
// A missing rate row prices as zero with Priced unset.
func PriceModule(rt *RateTable, def *catalog.ModuleDefinition, tier types.TierID, sel ModuleSelection) types.ModuleCharge {
	charge := types.ModuleCharge{
		Module:       def.Name,
		Area:         def.Area,
		Shape:        def.Shape,
		Quantity:     sel.Quantity,
		UnitPrice:    decimal.Zero,
		Base:         decimal.Zero,
		DesktopExtra: decimal.Zero,
		WebExtra:     decimal.Zero,
	}

	if def.Shape == types.ShapePOSBanded {
		return pricePOS(rt, tier, sel, charge)
	}

	if sel.Quantity <= 0 {
		return charge
	}

	rate, ok := rt.Module(def.Name, tier)
	if !ok {
		return charge
	}
	charge.Priced = true
	charge.Base = rate.BasePrice
	charge.UnitPrice = rate.UnitPrice

	switch def.Shape {
	case types.ShapeFlat:
		// base only

	case types.ShapePerSeat:
		charge.DesktopQuantity = sel.Quantity
		charge.DesktopExtraQuantity = freeFirst(sel.Quantity)
		charge.DesktopExtra = times(rate.UnitPrice, charge.DesktopExtraQuantity)

	case types.ShapePerSeatWebAware:
		web := 0
		switch {
		case sel.HasWeb:
			web = min(max(0, sel.Web), sel.Quantity)
		case def.WebOnly:
			web = sel.Quantity
		}
		desktop := sel.Quantity - web

		charge.DesktopQuantity = desktop
		charge.WebQuantity = web
		charge.DesktopExtraQuantity = freeFirst(desktop)
		charge.WebExtraQuantity = freeFirst(web)
		charge.DesktopExtra = times(rate.UnitPrice, charge.DesktopExtraQuantity)
		charge.WebExtra = times(rate.UnitPrice, charge.WebExtraQuantity)
	}

	return charge
}

// POSGroups returns the license groups of a POS selection: the positive
// per-group counts when supplied, otherwise a single group of Quantity
func POSGroups(sel ModuleSelection) []int {
	var groups []int
	for _, n := range sel.POSCounts {
		if n > 0 {
			groups = append(groups, n)
		}
	}
	if len(groups) == 0 && sel.Quantity > 0 {
		groups = []int{sel.Quantity}
	}
	return groups
}

// pricePOS charges one first unit per group and pools the remaining terminals into bands
func pricePOS(rt *RateTable, tier types.TierID, sel ModuleSelection, charge types.ModuleCharge) types.ModuleCharge {
	groups := POSGroups(sel)
	if len(groups) == 0 {
		return charge
	}

	first, okFirst := rt.Module(types.ProductPOSFirst, tier)
	mid, okMid := rt.Module(types.ProductPOSMid, tier)
	high, okHigh := rt.Module(types.ProductPOSHigh, tier)
	charge.Priced = okFirst || okMid || okHigh

	terminals := 0
	for _, n := range groups {
		terminals += n
	}
	remaining := terminals - len(groups)

	bands := []Band{
		{Size: posMidBandSize, UnitPrice: mid.UnitPrice},
		{Size: 0, UnitPrice: high.UnitPrice},
	}
	extra, alloc := CalculateBandedCost(remaining, bands)

	charge.Quantity = terminals
	charge.DesktopQuantity = terminals
	charge.DesktopExtraQuantity = remaining
	charge.UnitPrice = first.BasePrice
	charge.Base = times(first.BasePrice, len(groups))
	charge.DesktopExtra = extra
	charge.POS = &types.POSBreakdown{
		Groups:         len(groups),
		FirstUnitPrice: first.BasePrice,
		MidQuantity:    alloc[0],
		MidPrice:       mid.UnitPrice,
		HighQuantity:   alloc[1],
		HighPrice:      high.UnitPrice,
	}
	return charge
}
