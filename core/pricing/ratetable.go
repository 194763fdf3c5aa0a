// Package pricing provides immutable rate tables with content hashing and the
// seat, module and connector pricers that read them.
package pricing

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"plan-advisor/core/determinism"
	"plan-advisor/core/types"
)

// RateTableID uniquely identifies a rate table by content
type RateTableID string

// RateSource indicates where rate data came from
type RateSource int

const (
	SourceCSV      RateSource = iota // From CSV files
	SourceWorkbook                   // From an XLSX workbook
	SourceDatabase                   // From the SQLite rate store
	SourceManual                     // Built in code
)

// String returns the source name
func (s RateSource) String() string {
	switch s {
	case SourceCSV:
		return "csv"
	case SourceWorkbook:
		return "workbook"
	case SourceDatabase:
		return "database"
	case SourceManual:
		return "manual"
	default:
		return "unknown"
	}
}

// RateTable is IMMUTABLE after Build.
// It holds one plan row per tier and one module row per (product, tier).
type RateTable struct {
	ID          RateTableID
	ContentHash determinism.ContentHash
	CreatedAt   time.Time
	Source      RateSource
	Origin      string

	plans       []types.PlanRate
	planIndex   map[types.TierID]*types.PlanRate
	modules     []types.ModuleRate
	moduleIndex map[types.ModuleRateKey]*types.ModuleRate
}

// RateTableBuilder builds a rate table
type RateTableBuilder struct {
	source  RateSource
	origin  string
	plans   map[types.TierID]types.PlanRate
	modules map[types.ModuleRateKey]types.ModuleRate
}

// NewRateTableBuilder creates a new builder
func NewRateTableBuilder() *RateTableBuilder {
	return &RateTableBuilder{
		source:  SourceManual,
		plans:   make(map[types.TierID]types.PlanRate),
		modules: make(map[types.ModuleRateKey]types.ModuleRate),
	}
}

// WithSource sets the rate source
func (b *RateTableBuilder) WithSource(source RateSource, origin string) *RateTableBuilder {
	b.source = source
	b.origin = origin
	return b
}

// AddPlan adds a plan row. A later row for the same tier replaces the earlier one.
func (b *RateTableBuilder) AddPlan(plan types.PlanRate) *RateTableBuilder {
	b.plans[plan.Tier] = plan
	return b
}

// AddModule adds a module row. A later row for the same key replaces the earlier one.
func (b *RateTableBuilder) AddModule(rate types.ModuleRate) *RateTableBuilder {
	b.modules[types.ModuleRateKey{Product: rate.Product, Tier: rate.Tier}] = rate
	return b
}

// Build creates an immutable rate table
func (b *RateTableBuilder) Build() (*RateTable, error) {
	if len(b.plans) == 0 {
		return nil, fmt.Errorf("rate table has no plan rows")
	}

	plans := make([]types.PlanRate, 0, len(b.plans))
	for _, tier := range determinism.SortedKeys(b.plans) {
		if !tier.Valid() {
			return nil, fmt.Errorf("plan row has tier %d out of range", tier)
		}
		plans = append(plans, b.plans[tier])
	}
	sort.Slice(plans, func(i, j int) bool { return plans[i].Tier < plans[j].Tier })

	modules := make([]types.ModuleRate, 0, len(b.modules))
	for key, rate := range b.modules {
		if !key.Tier.Valid() {
			return nil, fmt.Errorf("module row %q has tier %d out of range", key.Product, key.Tier)
		}
		modules = append(modules, rate)
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Product != modules[j].Product {
			return modules[i].Product < modules[j].Product
		}
		return modules[i].Tier < modules[j].Tier
	})

	rt := &RateTable{
		CreatedAt:   time.Now().UTC(),
		Source:      b.source,
		Origin:      b.origin,
		plans:       plans,
		planIndex:   make(map[types.TierID]*types.PlanRate, len(plans)),
		modules:     modules,
		moduleIndex: make(map[types.ModuleRateKey]*types.ModuleRate, len(modules)),
	}
	for i := range rt.plans {
		rt.planIndex[rt.plans[i].Tier] = &rt.plans[i]
	}
	for i := range rt.modules {
		m := &rt.modules[i]
		rt.moduleIndex[types.ModuleRateKey{Product: m.Product, Tier: m.Tier}] = m
	}

	rt.ContentHash = rt.computeHash()
	rt.ID = RateTableID(hex.EncodeToString(rt.ContentHash[:8]))
	return rt, nil
}

// computeHash creates a content hash of all rows
func (rt *RateTable) computeHash() determinism.ContentHash {
	h := sha256.New()
	for _, p := range rt.plans {
		h.Write(planBytes(p))
	}
	for _, m := range rt.modules {
		h.Write(moduleBytes(m))
	}
	var hash determinism.ContentHash
	copy(hash[:], h.Sum(nil))
	return hash
}

func planBytes(p types.PlanRate) []byte {
	limit := ""
	if p.SeatLimit != nil {
		limit = fmt.Sprintf("%d", *p.SeatLimit)
	}
	data, _ := json.Marshal(map[string]string{
		"tier":     p.Tier.String(),
		"name":     p.Name,
		"base":     p.BasePrice.String(),
		"included": fmt.Sprintf("%d", p.IncludedSeats),
		"limit":    limit,
		"band1":    p.BandPrices[0].String(),
		"band2":    p.BandPrices[1].String(),
		"band3":    p.BandPrices[2].String(),
	})
	return data
}

func moduleBytes(m types.ModuleRate) []byte {
	data, _ := json.Marshal(map[string]string{
		"product": m.Product,
		"tier":    m.Tier.String(),
		"base":    m.BasePrice.String(),
		"unit":    m.UnitPrice.String(),
	})
	return data
}

// Verify checks content hash integrity
func (rt *RateTable) Verify() bool {
	return rt.computeHash() == rt.ContentHash
}

// Plan returns the plan row of a tier
func (rt *RateTable) Plan(tier types.TierID) (types.PlanRate, bool) {
	p, ok := rt.planIndex[tier]
	if !ok {
		return types.PlanRate{}, false
	}
	return *p, true
}

// Module returns the module row of a product at a tier
func (rt *RateTable) Module(product string, tier types.TierID) (types.ModuleRate, bool) {
	m, ok := rt.moduleIndex[types.ModuleRateKey{Product: product, Tier: tier}]
	if !ok {
		return types.ModuleRate{}, false
	}
	return *m, true
}

// Plans returns all plan rows in tier order
func (rt *RateTable) Plans() []types.PlanRate {
	result := make([]types.PlanRate, len(rt.plans))
	copy(result, rt.plans)
	return result
}

// Modules returns all module rows sorted by product then tier
func (rt *RateTable) Modules() []types.ModuleRate {
	result := make([]types.ModuleRate, len(rt.modules))
	copy(result, rt.modules)
	return result
}

// Products returns the distinct product names in sorted order
func (rt *RateTable) Products() []string {
	var products []string
	for _, m := range rt.modules {
		if len(products) == 0 || products[len(products)-1] != m.Product {
			products = append(products, m.Product)
		}
	}
	return products
}

// HighestTier returns the highest tier with a plan row
func (rt *RateTable) HighestTier() types.TierID {
	return rt.plans[len(rt.plans)-1].Tier
}

// TierName returns the display name of a tier, or its number when unnamed
func (rt *RateTable) TierName(tier types.TierID) string {
	if p, ok := rt.Plan(tier); ok && p.Name != "" {
		return p.Name
	}
	return tier.String()
}

// SeatLimitTier returns the first tier whose seat limit holds the given seats,
// or the highest tier when none does
func (rt *RateTable) SeatLimitTier(seats int) types.TierID {
	for _, p := range rt.plans {
		if p.SeatLimit != nil && seats <= *p.SeatLimit {
			return p.Tier
		}
	}
	return rt.HighestTier()
}
