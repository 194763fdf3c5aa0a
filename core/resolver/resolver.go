// Package resolver maps heterogeneous requirements to the minimal satisfying tier.
// Every requirement is kept as a named signal; the resolved tier is their maximum.
package resolver

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"plan-advisor/core/catalog"
	"plan-advisor/core/pricing"
	"plan-advisor/core/types"
)

// POSCeiling is the largest number of POS terminals a tier supports (0 = unbounded)
var POSCeiling = map[types.TierID]int{
	1: 1,
	2: 2,
	3: 5,
	4: 10,
	5: 50,
	6: 0,
}

// Input is everything the resolver reads
type Input struct {
	CurrentPlan       types.LegacyPlan
	ManagementSubtype types.ManagementSubtype
	DesktopSeats      int
	WebSeats          int

	// Selections maps module name to quantity; zero quantities are ignored
	Selections map[string]int

	// POSCounts overrides the POS module quantity when present
	POSCounts []int

	// LegacyExtras are carried-over legacy features
	LegacyExtras []string

	// LegacyExtraFloors maps normalized feature name to its floor
	LegacyExtraFloors map[string]types.TierID
}

// Resolution is the outcome of tier resolution
type Resolution struct {
	Tier types.TierID `json:"tier"`

	// Signals lists every requirement considered
	Signals []types.Signal `json:"signals"`

	// Binding lists the signals that equal the resolved tier
	Binding []types.Signal `json:"binding"`
}

// Resolver computes the minimal tier that satisfies every requirement
type Resolver struct {
	rates   *pricing.RateTable
	catalog *catalog.Catalog
}

// New creates a resolver over a rate table and catalog
func New(rates *pricing.RateTable, cat *catalog.Catalog) *Resolver {
	return &Resolver{rates: rates, catalog: cat}
}

// Resolve never fails; unknown modules and features contribute no signal
func (r *Resolver) Resolve(in Input) Resolution {
	signals := []types.Signal{{Source: types.SourceDefault, Subject: "default", Tier: types.MinTier}}

	signals = append(signals, LegacyPlanSignal(in.CurrentPlan, in.ManagementSubtype))
	signals = append(signals, r.seatSignal(in.DesktopSeats, in.WebSeats))
	signals = append(signals, r.moduleSignals(in.Selections)...)
	if s, ok := r.posSignal(in); ok {
		signals = append(signals, s)
	}
	signals = append(signals, legacyExtraSignals(in.LegacyExtras, in.LegacyExtraFloors)...)

	tier := lo.MaxBy(signals, func(a, b types.Signal) bool { return a.Tier > b.Tier }).Tier
	binding := lo.Filter(signals, func(s types.Signal, _ int) bool { return s.Tier == tier })

	return Resolution{Tier: tier, Signals: signals, Binding: binding}
}

// LegacyPlanSignal returns the floor implied by the legacy plan and sub-type
func LegacyPlanSignal(plan types.LegacyPlan, subtype types.ManagementSubtype) types.Signal {
	tier := types.MinTier
	subject := string(plan)
	switch plan {
	case types.PlanEnterprise:
		tier = 6
	case types.PlanAdvanced:
		tier = 4
	case types.PlanCorporate:
		switch subtype {
		case types.SubtypeTerceiros:
			tier = 2
		case types.SubtypeCompleto:
			tier = 3
		}
		if subtype != "" {
			subject = fmt.Sprintf("%s / %s", plan, subtype)
		}
	}
	return types.Signal{Source: types.SourceLegacyPlan, Subject: subject, Tier: tier}
}

// seatSignal fits the larger of desktop and web seats under a tier seat limit
func (r *Resolver) seatSignal(desktop, web int) types.Signal {
	seats := max(desktop, web)
	return types.Signal{
		Source:  types.SourceSeatLimit,
		Subject: fmt.Sprintf("%d seats", seats),
		Tier:    r.rates.SeatLimitTier(seats),
	}
}

func (r *Resolver) moduleSignals(selections map[string]int) []types.Signal {
	var signals []types.Signal
	for _, name := range lo.Keys(selections) {
		if selections[name] <= 0 {
			continue
		}
		def, ok := r.catalog.Lookup(name)
		if !ok || def.MinTier == 0 {
			continue
		}
		signals = append(signals, types.Signal{Source: types.SourceModule, Subject: def.Name, Tier: def.MinTier})
	}
	sortSignals(signals)
	return signals
}

// posSignal maps the terminal count to the first tier whose ceiling fits
func (r *Resolver) posSignal(in Input) (types.Signal, bool) {
	terminals := lo.Sum(lo.Filter(in.POSCounts, func(n int, _ int) bool { return n > 0 }))
	if terminals == 0 {
		for name, qty := range in.Selections {
			def, ok := r.catalog.Lookup(name)
			if ok && def.Shape == types.ShapePOSBanded && qty > 0 {
				terminals += qty
			}
		}
	}
	if terminals == 0 {
		return types.Signal{}, false
	}
	return types.Signal{
		Source:  types.SourcePOS,
		Subject: fmt.Sprintf("%d terminals", terminals),
		Tier:    POSTier(terminals),
	}, true
}

// POSTier returns the first tier whose POS ceiling holds the terminal count
func POSTier(terminals int) types.TierID {
	for _, tier := range types.AllTiers() {
		ceiling := POSCeiling[tier]
		if ceiling == 0 || terminals <= ceiling {
			return tier
		}
	}
	return types.MaxTier
}

func legacyExtraSignals(extras []string, floors map[string]types.TierID) []types.Signal {
	var signals []types.Signal
	for _, name := range lo.Uniq(extras) {
		floor, ok := floors[catalog.Normalize(name)]
		if !ok || floor == 0 {
			continue
		}
		signals = append(signals, types.Signal{Source: types.SourceLegacyExtra, Subject: name, Tier: floor})
	}
	sortSignals(signals)
	return signals
}

func sortSignals(signals []types.Signal) {
	sort.SliceStable(signals, func(i, j int) bool { return signals[i].Subject < signals[j].Subject })
}
