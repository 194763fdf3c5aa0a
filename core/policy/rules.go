// Package policy - Built-in compatibility rules
package policy

import (
	"fmt"

	"plan-advisor/core/catalog"
	"plan-advisor/core/determinism"
)

// DefaultRules returns the standard rule set for a catalog
func DefaultRules(cat *catalog.Catalog) []Rule {
	var rules []Rule
	for _, r := range cat.Rules() {
		rules = append(rules, &DependencyRule{Module: r.Module, Requires: r.Requires, Message: r.Message})
	}
	return append(rules,
		&UnknownModuleRule{},
		&RegionAvailabilityRule{},
		&WebSelectionRule{},
		&LegacyNoticeRule{},
		&ConnectorAllowanceRule{},
	)
}

// DependencyRule warns when a module is selected without its prerequisite
type DependencyRule struct {
	Module   string
	Requires string
	Message  string
}

// Name returns the rule identifier
func (r *DependencyRule) Name() string {
	return "requires:" + catalog.Normalize(r.Module) + ":" + catalog.Normalize(r.Requires)
}

// Description returns a human-readable description
func (r *DependencyRule) Description() string {
	return fmt.Sprintf("%s requires %s", r.Module, r.Requires)
}

// Evaluate checks the prerequisite
func (r *DependencyRule) Evaluate(s *Subject) []Finding {
	if !s.Selected(r.Module) || s.Selected(r.Requires) {
		return nil
	}
	msg := r.Message
	if msg == "" {
		msg = fmt.Sprintf("O módulo %s requer %s", r.Module, r.Requires)
	}
	return []Finding{{Rule: r.Name(), Severity: SeverityWarning, Module: r.Module, Message: msg}}
}

// UnknownModuleRule warns about selections missing from the catalog
type UnknownModuleRule struct{}

// Name returns the rule identifier
func (r *UnknownModuleRule) Name() string { return "unknown-module" }

// Description returns a human-readable description
func (r *UnknownModuleRule) Description() string {
	return "selected modules must exist in the catalog"
}

// Evaluate lists every unrecognised selection
func (r *UnknownModuleRule) Evaluate(s *Subject) []Finding {
	var findings []Finding
	for _, name := range determinism.SortedKeys(s.Request.Selections) {
		if _, ok := s.Catalog.Lookup(name); ok {
			continue
		}
		findings = append(findings, Finding{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Module:   name,
			Message:  fmt.Sprintf("Módulo não reconhecido: %s", name),
		})
	}
	return findings
}

// RegionAvailabilityRule warns about modules not sold in the selected region
type RegionAvailabilityRule struct{}

// Name returns the rule identifier
func (r *RegionAvailabilityRule) Name() string { return "region-availability" }

// Description returns a human-readable description
func (r *RegionAvailabilityRule) Description() string {
	return "selected modules must be sold in the selected region"
}

// Evaluate lists excluded selections
func (r *RegionAvailabilityRule) Evaluate(s *Subject) []Finding {
	if s.Region == nil {
		return nil
	}
	var findings []Finding
	for _, name := range determinism.SortedKeys(s.Request.Selections) {
		def, ok := s.Catalog.Lookup(name)
		if !ok || s.Request.Selections[name] < 1 || !s.Region.Excludes(def) {
			continue
		}
		findings = append(findings, Finding{
			Rule:     r.Name(),
			Severity: SeverityWarning,
			Module:   def.Name,
			Message:  fmt.Sprintf("O módulo %s não está disponível em %s", def.Name, s.Region.Name),
		})
	}
	return findings
}

// WebSelectionRule flags web sub-counts that cannot be honoured as given
type WebSelectionRule struct{}

// Name returns the rule identifier
func (r *WebSelectionRule) Name() string { return "web-selection" }

// Description returns a human-readable description
func (r *WebSelectionRule) Description() string {
	return "web seat counts must fit a web-aware module's quantity"
}

// Evaluate checks every web sub-count
func (r *WebSelectionRule) Evaluate(s *Subject) []Finding {
	var findings []Finding
	for _, name := range determinism.SortedKeys(s.Request.WebSelections) {
		web := s.Request.WebSelections[name]
		def, ok := s.Catalog.Lookup(name)
		if !ok || web <= 0 {
			continue
		}
		if !def.Shape.WebAware() || s.Region.DesktopOnly(def) {
			findings = append(findings, Finding{
				Rule:     r.Name(),
				Severity: SeverityWarning,
				Module:   def.Name,
				Message:  fmt.Sprintf("O módulo %s não tem utilizadores web; %d ignorados", def.Name, web),
			})
			continue
		}
		qty := quantityOf(s, def.Name)
		if web > qty {
			findings = append(findings, Finding{
				Rule:     r.Name(),
				Severity: SeverityWarning,
				Module:   def.Name,
				Message:  fmt.Sprintf("Utilizadores web de %s (%d) excedem o total (%d)", def.Name, web, qty),
			})
		}
	}
	return findings
}

// LegacyNoticeRule reports notices attached to carried-over legacy features
type LegacyNoticeRule struct{}

// Name returns the rule identifier
func (r *LegacyNoticeRule) Name() string { return "legacy-notice" }

// Description returns a human-readable description
func (r *LegacyNoticeRule) Description() string {
	return "legacy features may carry a migration notice"
}

// Evaluate emits one notice per distinct legacy feature
func (r *LegacyNoticeRule) Evaluate(s *Subject) []Finding {
	var findings []Finding
	seen := make(map[string]bool)
	for _, name := range s.Request.LegacyExtras {
		extra, ok := s.Catalog.LegacyExtra(name)
		if !ok || extra.Notice == "" || seen[extra.Name] {
			continue
		}
		seen[extra.Name] = true
		findings = append(findings, Finding{Rule: r.Name(), Severity: SeverityInfo, Message: extra.Notice})
	}
	return findings
}

// ConnectorAllowanceRule reports the connectors bundled with the resolved tier
type ConnectorAllowanceRule struct{}

// Name returns the rule identifier
func (r *ConnectorAllowanceRule) Name() string { return "connector-allowance" }

// Description returns a human-readable description
func (r *ConnectorAllowanceRule) Description() string {
	return "connector modules include an allowance at higher tiers"
}

// Evaluate emits a notice for each selected connector with an allowance
func (r *ConnectorAllowanceRule) Evaluate(s *Subject) []Finding {
	var findings []Finding
	for _, def := range s.Catalog.Modules() {
		if def.Connector == nil || quantityOf(s, def.Name) < 1 || s.Region.Excludes(def) {
			continue
		}
		n := def.Connector.IncludedAt(s.Tier)
		if n == 0 {
			continue
		}
		findings = append(findings, Finding{
			Rule:     r.Name(),
			Severity: SeverityInfo,
			Module:   def.Name,
			Message:  fmt.Sprintf("%s inclui %d %s base.", def.Name, n, def.Connector.UnitLabel(n)),
		})
	}
	return findings
}

func quantityOf(s *Subject, module string) int {
	total := 0
	for raw, qty := range s.Request.Selections {
		if def, ok := s.Catalog.Lookup(raw); ok && def.Name == module {
			total += qty
		}
	}
	return total
}
