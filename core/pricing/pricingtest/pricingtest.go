// Package pricingtest provides a fixed rate table for tests.
package pricingtest

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"plan-advisor/core/pricing"
	"plan-advisor/core/types"
)

// Plan rows: tier, name, base, included, limit (-1 = none), band prices
var plans = []struct {
	tier     types.TierID
	name     string
	base     int64
	included int
	limit    int
	bands    [3]int64
}{
	{1, "Essentials", 35, 1, 1, [3]int64{20, 0, 0}},
	{2, "Standard", 59, 2, 3, [3]int64{20, 0, 0}},
	{3, "Professional", 119, 3, 5, [3]int64{25, 0, 0}},
	{4, "Advanced", 229, 6, 10, [3]int64{25, 0, 0}},
	{5, "Premium", 449, 10, 50, [3]int64{30, 0, 0}},
	{6, "Ultimate", 799, 15, -1, [3]int64{35, 30, 25}},
}

// Module rows: product, tier, base, unit
var modules = []struct {
	product    string
	tier       types.TierID
	base, unit int64
}{
	{"CRM", 3, 30, 12}, {"CRM", 4, 20, 11}, {"CRM", 5, 10, 10}, {"CRM", 6, 0, 9},
	{"Colaborador", 5, 25, 4}, {"Colaborador", 6, 0, 3},
	{"Vencimento", 3, 40, 6}, {"Vencimento", 4, 35, 6}, {"Vencimento", 5, 30, 5}, {"Vencimento", 6, 25, 5},
	{"OKR", 4, 15, 3}, {"OKR", 5, 10, 3}, {"OKR", 6, 5, 2},
	{"Frota", 3, 45, 0}, {"Frota", 4, 40, 0}, {"Frota", 5, 35, 0}, {"Frota", 6, 30, 0},
	{"Logística", 5, 60, 0}, {"Logística", 6, 0, 0},
	{"GenAI", 2, 20, 0}, {"GenAI", 3, 20, 0}, {"GenAI", 4, 20, 0}, {"GenAI", 5, 20, 0}, {"GenAI", 6, 20, 0},
	{"Suporte", 2, 10, 5}, {"Suporte", 3, 10, 5}, {"Suporte", 4, 10, 5}, {"Suporte", 5, 10, 5}, {"Suporte", 6, 10, 5},
	{"EDI Broker", 1, 15, 0}, {"EDI Broker", 2, 15, 0}, {"EDI Broker", 3, 15, 0},
	{"EDI Broker", 4, 15, 0}, {"EDI Broker", 5, 15, 0}, {"EDI Broker", 6, 15, 0},
	{"Bank Connector", 4, 25, 0}, {"Bank Connector", 5, 25, 0}, {"Bank Connector", 6, 25, 0},
	{"Bank Connector 5", 4, 50, 0}, {"Bank Connector 5", 5, 50, 0}, {"Bank Connector 5", 6, 50, 0},
	{"Bank Connector 10", 4, 90, 0}, {"Bank Connector 10", 5, 90, 0}, {"Bank Connector 10", 6, 90, 0},
}

// posPrices are the first unit base and the 2-10 and >10 unit prices at every tier
var posPrices = [3]int64{30, 15, 10}

// Rates returns the fixed rate table
func Rates() *pricing.RateTable {
	b := Builder()
	rt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return rt
}

// Builder returns a builder preloaded with the fixed rows
func Builder() *pricing.RateTableBuilder {
	b := pricing.NewRateTableBuilder()
	for _, p := range plans {
		row := types.PlanRate{
			Tier:          p.tier,
			Name:          p.name,
			BasePrice:     decimal.NewFromInt(p.base),
			IncludedSeats: p.included,
			BandPrices: [types.SeatBandCount]decimal.Decimal{
				decimal.NewFromInt(p.bands[0]),
				decimal.NewFromInt(p.bands[1]),
				decimal.NewFromInt(p.bands[2]),
			},
		}
		if p.limit >= 0 {
			limit := p.limit
			row.SeatLimit = &limit
		}
		b.AddPlan(row)
	}
	for _, m := range modules {
		b.AddModule(types.ModuleRate{
			Product:   m.product,
			Tier:      m.tier,
			BasePrice: decimal.NewFromInt(m.base),
			UnitPrice: decimal.NewFromInt(m.unit),
		})
	}
	for _, tier := range types.AllTiers() {
		b.AddModule(types.ModuleRate{Product: types.ProductPOSFirst, Tier: tier, BasePrice: decimal.NewFromInt(posPrices[0]), UnitPrice: decimal.Zero})
		b.AddModule(types.ModuleRate{Product: types.ProductPOSMid, Tier: tier, BasePrice: decimal.Zero, UnitPrice: decimal.NewFromInt(posPrices[1])})
		b.AddModule(types.ModuleRate{Product: types.ProductPOSHigh, Tier: tier, BasePrice: decimal.Zero, UnitPrice: decimal.NewFromInt(posPrices[2])})
	}
	return b
}

// Dec parses a decimal for assertions
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// AssertDec reports an error unless got equals want numerically
func AssertDec(t testing.TB, want string, got decimal.Decimal, label ...interface{}) bool {
	t.Helper()
	if Dec(want).Equal(got) {
		return true
	}
	if len(label) > 0 {
		t.Errorf("%s: expected %s, got %s", fmt.Sprint(label...), want, got)
	} else {
		t.Errorf("expected %s, got %s", want, got)
	}
	return false
}
