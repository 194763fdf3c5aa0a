// Package policy provides the compatibility rule interface.
// Rules are advisory: they produce findings and never block a calculation.
package policy

import (
	"fmt"

	"plan-advisor/core/catalog"
	"plan-advisor/core/types"
)

// Severity levels for findings
type Severity string

const (
	// SeverityInfo is informational only
	SeverityInfo Severity = "info"

	// SeverityWarning flags a selection that needs attention
	SeverityWarning Severity = "warning"
)

// Subject is what rules evaluate
type Subject struct {
	Request *types.Request
	Catalog *catalog.Catalog

	// Tier is the resolved tier
	Tier types.TierID

	// Region is the selected regional variant (nil = base pricing)
	Region *catalog.Region
}

// Selected reports whether a module appears in the selections. Quantity 0
// still counts: the module is left out of pricing but stays visible to rules.
func (s *Subject) Selected(name string) bool {
	target, ok := s.Catalog.Lookup(name)
	for raw := range s.Request.Selections {
		if ok {
			if def, found := s.Catalog.Lookup(raw); found && def.Name == target.Name {
				return true
			}
		} else if catalog.Normalize(raw) == catalog.Normalize(name) {
			return true
		}
	}
	return false
}

// Rule defines a single compatibility rule
type Rule interface {
	// Name returns the rule identifier
	Name() string

	// Description returns a human-readable description
	Description() string

	// Evaluate returns the findings of the rule, if any
	Evaluate(s *Subject) []Finding
}

// Finding is one advisory message
type Finding struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Module   string   `json:"module,omitempty"`
	Message  string   `json:"message"`
}

// EvaluationResult contains all findings in rule order
type EvaluationResult struct {
	Findings []Finding `json:"findings"`
}

// Messages returns the messages of findings with the given severity
func (r *EvaluationResult) Messages(severity Severity) []string {
	var out []string
	for _, f := range r.Findings {
		if f.Severity == severity {
			out = append(out, f.Message)
		}
	}
	return out
}

// Warnings returns warning messages
func (r *EvaluationResult) Warnings() []string {
	return r.Messages(SeverityWarning)
}

// Notices returns informational messages
func (r *EvaluationResult) Notices() []string {
	return r.Messages(SeverityInfo)
}

// Evaluator runs rules in registration order
type Evaluator struct {
	rules []Rule
	names map[string]bool
}

// NewEvaluator creates an evaluator with the given rules
func NewEvaluator(rules ...Rule) *Evaluator {
	e := &Evaluator{names: make(map[string]bool)}
	for _, r := range rules {
		_ = e.RegisterRule(r)
	}
	return e
}

// RegisterRule adds a rule; names must be unique
func (e *Evaluator) RegisterRule(rule Rule) error {
	if e.names[rule.Name()] {
		return fmt.Errorf("rule %q already registered", rule.Name())
	}
	e.names[rule.Name()] = true
	e.rules = append(e.rules, rule)
	return nil
}

// Rules returns the registered rules
func (e *Evaluator) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Evaluate runs all rules
func (e *Evaluator) Evaluate(s *Subject) *EvaluationResult {
	result := &EvaluationResult{}
	for _, rule := range e.rules {
		result.Findings = append(result.Findings, rule.Evaluate(s)...)
	}
	return result
}
