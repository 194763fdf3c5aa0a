// Package catalog - Regional variants
package catalog

import (
	"github.com/shopspring/decimal"

	"plan-advisor/core/types"
)

// Region is a fixed-multiplier regional price variant
type Region struct {
	Code     string         `json:"code" yaml:"code"`
	Name     string         `json:"name" yaml:"name"`
	Currency types.Currency `json:"currency" yaml:"currency"`

	// Factor is applied to the base price before rounding to whole units
	Factor decimal.Decimal `json:"factor" yaml:"factor"`

	// ExchangeRate converts the rounded amount into the local currency
	ExchangeRate decimal.Decimal `json:"exchange_rate" yaml:"exchange_rate"`

	// ExcludedModules are not sold in the region
	ExcludedModules []string `json:"excluded_modules,omitempty" yaml:"excluded_modules,omitempty"`

	// ExcludedAreas removes whole areas from the region
	ExcludedAreas []string `json:"excluded_areas,omitempty" yaml:"excluded_areas,omitempty"`

	// DesktopOnlyModules lose their web seat pool in the region
	DesktopOnlyModules []string `json:"desktop_only_modules,omitempty" yaml:"desktop_only_modules,omitempty"`
}

// Excludes reports whether a module is unavailable in the region
func (r *Region) Excludes(def *ModuleDefinition) bool {
	if r == nil || def == nil {
		return false
	}
	return containsNormalized(r.ExcludedModules, def.Name) || containsNormalized(r.ExcludedAreas, def.Area)
}

// DesktopOnly reports whether a module is priced without a web pool in the region
func (r *Region) DesktopOnly(def *ModuleDefinition) bool {
	if r == nil || def == nil {
		return false
	}
	return containsNormalized(r.DesktopOnlyModules, def.Name)
}

func containsNormalized(list []string, name string) bool {
	key := Normalize(name)
	for _, item := range list {
		if Normalize(item) == key {
			return true
		}
	}
	return false
}
