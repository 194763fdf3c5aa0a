// Package pricing - Seat overage pricing
package pricing

import (
	"github.com/shopspring/decimal"

	"plan-advisor/core/types"
)

// WebSeatsIncludedFrom is the first tier whose included allowance also covers web seats
const WebSeatsIncludedFrom types.TierID = 3

// Seat overage bands of the top tier: 5 seats, 40 seats, then the rest
const (
	topTierFirstBand  = 5
	topTierSecondBand = 40
)

// SeatExtras returns the number of seats billed beyond the tier allowance.
// Below WebSeatsIncludedFrom web seats never draw on the allowance.
func SeatExtras(tier types.TierID, included, desktop, web int) int {
	if tier < WebSeatsIncludedFrom {
		return max(0, desktop-included) + web
	}
	return max(0, desktop+web-included)
}

// PriceSeats computes the seat overage charge at a tier.
// A tier without a plan row prices as zero.
func PriceSeats(rt *RateTable, tier types.TierID, desktop, web int) types.SeatCharge {
	charge := types.SeatCharge{
		Cost:       decimal.Zero,
		BandPrices: [types.SeatBandCount]decimal.Decimal{decimal.Zero, decimal.Zero, decimal.Zero},
	}

	plan, ok := rt.Plan(tier)
	if !ok {
		return charge
	}

	charge.Included = plan.IncludedSeats
	charge.BandPrices = plan.BandPrices
	charge.Extras = SeatExtras(tier, plan.IncludedSeats, desktop, web)
	if charge.Extras == 0 {
		return charge
	}

	if tier == types.MaxTier {
		bands := []Band{
			{Size: topTierFirstBand, UnitPrice: plan.BandPrices[0]},
			{Size: topTierSecondBand, UnitPrice: plan.BandPrices[1]},
			{Size: 0, UnitPrice: plan.BandPrices[2]},
		}
		cost, alloc := CalculateBandedCost(charge.Extras, bands)
		copy(charge.Bands[:], alloc)
		charge.Cost = cost
		return charge
	}

	charge.Bands[0] = charge.Extras
	charge.Cost = times(plan.BandPrices[0], charge.Extras)
	return charge
}
