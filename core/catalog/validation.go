// Package catalog - Catalog validation
// Ensures catalog integrity and enforces invariants.
package catalog

import (
	"fmt"
	"sort"

	"plan-advisor/core/types"
)

// ValidationRule is a catalog validation rule
type ValidationRule func(*ModuleDefinition) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateMinTier,
		validateShape,
		validateConnector,
	}
}

// Validate checks a catalog against validation rules and its own cross references
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error

	for _, def := range c.Modules() {
		for _, rule := range rules {
			if err := rule(def); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", def.Name, err))
			}
		}
	}

	for _, rule := range c.rules {
		if _, ok := c.Lookup(rule.Module); !ok {
			errs = append(errs, fmt.Errorf("rule references unknown module %q", rule.Module))
		}
		if _, ok := c.Lookup(rule.Requires); !ok {
			errs = append(errs, fmt.Errorf("rule for %q requires unknown module %q", rule.Module, rule.Requires))
		}
		if rule.Message == "" {
			errs = append(errs, fmt.Errorf("rule for %q has no message", rule.Module))
		}
	}

	for _, extra := range c.LegacyExtras() {
		if !extra.MinTier.Valid() {
			errs = append(errs, fmt.Errorf("legacy feature %q: tier %d out of range", extra.Name, extra.MinTier))
		}
	}

	for _, region := range c.Regions() {
		if !region.Factor.IsPositive() || !region.ExchangeRate.IsPositive() {
			errs = append(errs, fmt.Errorf("region %s: factor and exchange rate must be positive", region.Code))
		}
		if region.Currency == "" {
			errs = append(errs, fmt.Errorf("region %s: currency is required", region.Code))
		}
	}

	return errs
}

// MustValidate panics if the catalog is invalid
func (c *Catalog) MustValidate() {
	if errs := c.Validate(DefaultValidationRules()); len(errs) > 0 {
		panic(fmt.Sprintf("catalog validation failed: %v", errs))
	}
}

// validateMinTier ensures the minimum tier is undefined or in range
func validateMinTier(d *ModuleDefinition) error {
	if d.MinTier != 0 && !d.MinTier.Valid() {
		return fmt.Errorf("min tier %d out of range", d.MinTier)
	}
	return nil
}

// validateShape ensures web-only modules have a web pool
func validateShape(d *ModuleDefinition) error {
	if d.WebOnly && d.Shape != types.ShapePerSeatWebAware {
		return fmt.Errorf("web-only module must be %s", types.ShapePerSeatWebAware)
	}
	if d.Shape.String() == "unknown" {
		return fmt.Errorf("unknown billing shape %d", int(d.Shape))
	}
	return nil
}

// validateConnector ensures pack sizes are positive and unique
func validateConnector(d *ModuleDefinition) error {
	if d.Connector == nil {
		return nil
	}
	if len(d.Connector.PackSizes) == 0 {
		return fmt.Errorf("connector has no pack sizes")
	}
	sizes := append([]int(nil), d.Connector.PackSizes...)
	sort.Ints(sizes)
	for i, s := range sizes {
		if s <= 0 {
			return fmt.Errorf("pack size %d must be positive", s)
		}
		if i > 0 && sizes[i-1] == s {
			return fmt.Errorf("pack size %d listed twice", s)
		}
	}
	for tier, n := range d.Connector.Included {
		if !tier.Valid() {
			return fmt.Errorf("connector allowance for unknown tier %d", tier)
		}
		if n < 0 {
			return fmt.Errorf("connector allowance at tier %d is negative", tier)
		}
	}
	return nil
}
