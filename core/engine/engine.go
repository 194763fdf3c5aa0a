// Package engine provides the API-primary plan calculator.
// CLI and HTTP are thin wrappers around this engine.
package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"plan-advisor/core/catalog"
	"plan-advisor/core/policy"
	"plan-advisor/core/pricing"
	"plan-advisor/core/region"
	"plan-advisor/core/resolver"
	"plan-advisor/core/types"
)

// Calculator resolves the tier and prices a request against a fixed rate
// table and catalog. It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	rates    *pricing.RateTable
	catalog  *catalog.Catalog
	resolver *resolver.Resolver
	policy   *policy.Evaluator
	logger   *zap.Logger
}

// Option configures a Calculator
type Option func(*Calculator)

// WithLogger sets the logger used for debug traces
func WithLogger(l *zap.Logger) Option {
	return func(c *Calculator) {
		c.logger = l
	}
}

// WithRules replaces the default compatibility rules
func WithRules(rules ...policy.Rule) Option {
	return func(c *Calculator) {
		c.policy = policy.NewEvaluator(rules...)
	}
}

// NewCalculator creates a calculator
func NewCalculator(rates *pricing.RateTable, cat *catalog.Catalog, opts ...Option) *Calculator {
	c := &Calculator{
		rates:    rates,
		catalog:  cat,
		resolver: resolver.New(rates, cat),
		policy:   policy.NewEvaluator(policy.DefaultRules(cat)...),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rates returns the rate table
func (c *Calculator) Rates() *pricing.RateTable {
	return c.rates
}

// Catalog returns the catalog
func (c *Calculator) Catalog() *catalog.Catalog {
	return c.catalog
}

// line is one canonical module selection
type line struct {
	def *catalog.ModuleDefinition
	sel pricing.ModuleSelection
}

// Calculate resolves the minimal tier and prices the request.
// It performs no I/O and does not modify req.
func (c *Calculator) Calculate(req types.Request) *types.PlanResult {
	result := &types.PlanResult{
		ModulesCost:    decimal.Zero,
		ConnectorsCost: decimal.Zero,
		Warnings:       []string{},
		Modules:        []types.ModuleCharge{},
	}

	var reg *catalog.Region
	if req.Region != "" {
		r, ok := c.catalog.Region(req.Region)
		if ok {
			reg = r
		} else {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Região desconhecida: %s", req.Region))
		}
	}

	lines := c.collect(&req, reg)

	selections := make(map[string]int, len(lines))
	var posCounts []int
	for _, l := range lines {
		selections[l.def.Name] = l.sel.Quantity
		if l.def.Shape == types.ShapePOSBanded {
			posCounts = l.sel.POSCounts
		}
	}

	res := c.resolver.Resolve(resolver.Input{
		CurrentPlan:       req.CurrentPlan,
		ManagementSubtype: req.ManagementSubtype,
		DesktopSeats:      req.DesktopSeats,
		WebSeats:          req.WebSeats,
		Selections:        selections,
		POSCounts:         posCounts,
		LegacyExtras:      req.LegacyExtras,
		LegacyExtraFloors: c.legacyFloors(req.LegacyExtraFloors),
	})
	tier := res.Tier

	result.Tier = tier
	result.TierName = c.rates.TierName(tier)
	result.Signals = res.Signals
	result.Binding = res.Binding
	result.RateTableID = string(c.rates.ID)
	if plan, ok := c.rates.Plan(tier); ok {
		result.BasePrice = plan.BasePrice
	} else {
		result.BasePrice = decimal.Zero
	}

	result.Seats = pricing.PriceSeats(c.rates, tier, req.DesktopSeats, req.WebSeats)

	for _, l := range lines {
		charge := pricing.PriceModule(c.rates, l.def, tier, l.sel)
		result.Modules = append(result.Modules, charge)
		result.ModulesCost = result.ModulesCost.Add(charge.Total())

		if l.def.Connector != nil {
			conn := pricing.PriceConnector(c.rates, l.def, tier, l.sel.Quantity)
			result.Connectors = append(result.Connectors, conn)
			result.ConnectorsCost = result.ConnectorsCost.Add(conn.Cost)
		}
	}

	eval := c.policy.Evaluate(&policy.Subject{Request: &req, Catalog: c.catalog, Tier: tier, Region: reg})
	result.Warnings = append(result.Warnings, eval.Warnings()...)
	result.Notices = append(result.Notices, eval.Notices()...)
	for _, conn := range result.Connectors {
		if msg := packNotice(c.catalog, conn); msg != "" {
			result.Notices = append(result.Notices, msg)
		}
	}

	result.Total = result.BasePrice.Add(result.Seats.Cost).Add(result.ModulesCost).Add(result.ConnectorsCost)

	if reg != nil {
		result.Regional = region.NewConverter(reg).Total(result.Total)
	}

	c.logger.Debug("plan calculated",
		zap.Int("tier", int(tier)),
		zap.Any("binding", res.Binding),
		zap.Int("modules", len(result.Modules)),
		zap.String("total", result.Total.String()),
		zap.Int("warnings", len(result.Warnings)),
	)

	return result
}

// collect merges selections onto canonical catalog modules in catalog order.
// Unknown modules and modules excluded by the region are dropped; the policy
// rules report them.
func (c *Calculator) collect(req *types.Request, reg *catalog.Region) []line {
	qty := make(map[string]int)
	web := make(map[string]int)
	hasWeb := make(map[string]bool)

	for name, n := range req.Selections {
		if def, ok := c.catalog.Lookup(name); ok {
			qty[def.Name] += n
		}
	}
	for name, n := range req.WebSelections {
		if def, ok := c.catalog.Lookup(name); ok {
			web[def.Name] += n
			hasWeb[def.Name] = true
		}
	}

	posTotal := 0
	for _, n := range req.POSCounts {
		if n > 0 {
			posTotal += n
		}
	}

	var lines []line
	for _, def := range c.catalog.Modules() {
		n := qty[def.Name]
		if def.Shape == types.ShapePOSBanded && posTotal > 0 {
			n = posTotal
		}
		if n < 1 || reg.Excludes(def) {
			continue
		}

		d := def
		if reg.DesktopOnly(def) && def.Shape.WebAware() {
			local := *def
			local.Shape = types.ShapePerSeat
			local.WebOnly = false
			d = &local
		}

		sel := pricing.ModuleSelection{Quantity: n, Web: web[def.Name], HasWeb: hasWeb[def.Name]}
		if def.Shape == types.ShapePOSBanded {
			sel.POSCounts = append([]int(nil), req.POSCounts...)
		}
		lines = append(lines, line{def: d, sel: sel})
	}
	return lines
}

// legacyFloors overlays request floors on the catalog's
func (c *Calculator) legacyFloors(overrides map[string]types.TierID) map[string]types.TierID {
	floors := c.catalog.LegacyExtraFloors()
	for name, tier := range overrides {
		floors[catalog.Normalize(name)] = tier
	}
	return floors
}

// packNotice describes the packs a connector needs
func packNotice(cat *catalog.Catalog, conn types.ConnectorCharge) string {
	if len(conn.Packs) == 0 {
		return ""
	}
	def, ok := cat.Lookup(conn.Module)
	if !ok || def.Connector == nil {
		return ""
	}
	parts := make([]string, 0, len(conn.Packs))
	for _, p := range conn.Packs {
		parts = append(parts, fmt.Sprintf("%d %s", p.Count, p.Product))
	}
	total := conn.Included + conn.Covered
	return fmt.Sprintf("Necessário adicionar %s (total de %d %s).",
		strings.Join(parts, " e "), total, def.Connector.UnitLabel(total))
}
