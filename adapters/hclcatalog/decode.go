// Package hclcatalog reads and writes module catalogs as HCL files.
//
// A catalog file overlays the built-in catalog unless it sets
// replace_builtin = true:
//
//	module "CRM" {
//	  area     = "Core e Transversais"
//	  min_tier = 3
//	  billing  = "per_seat_web_aware"
//	}
//	legacy_extra "intrastat" { min_tier = 4 }
//	connector "Bank Connector" {
//	  included   = { "4" = 1, "5" = 3, "6" = 5 }
//	  pack_sizes = [5, 10]
//	}
//	rule "Colaborador" { requires = "Vencimento" }
//	region "AO" {
//	  currency      = "AOA"
//	  factor        = 1.25
//	  exchange_rate = 1050
//	}
package hclcatalog

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"plan-advisor/core/catalog"
	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
)

type fileSchema struct {
	ReplaceBuiltin bool             `hcl:"replace_builtin,optional"`
	Modules        []moduleBlock    `hcl:"module,block"`
	Extras         []extraBlock     `hcl:"legacy_extra,block"`
	Connectors     []connectorBlock `hcl:"connector,block"`
	Rules          []ruleBlock      `hcl:"rule,block"`
	Regions        []regionBlock    `hcl:"region,block"`
}

// Optional module attributes are pointers so an overlay only touches what it sets
type moduleBlock struct {
	Name    string   `hcl:"name,label"`
	Area    *string  `hcl:"area,optional"`
	MinTier *int     `hcl:"min_tier,optional"`
	Billing *string  `hcl:"billing,optional"`
	WebOnly *bool    `hcl:"web_only,optional"`
	Aliases []string `hcl:"aliases,optional"`
}

type extraBlock struct {
	Name    string `hcl:"name,label"`
	MinTier int    `hcl:"min_tier"`
	Notice  string `hcl:"notice,optional"`
}

type connectorBlock struct {
	Module     string         `hcl:"module,label"`
	Included   map[string]int `hcl:"included"`
	PackSizes  []int          `hcl:"pack_sizes"`
	Unit       string         `hcl:"unit,optional"`
	UnitPlural string         `hcl:"unit_plural,optional"`
}

type ruleBlock struct {
	Module   string `hcl:"module,label"`
	Requires string `hcl:"requires"`
	Message  string `hcl:"message,optional"`
}

type regionBlock struct {
	Code               string    `hcl:"code,label"`
	Name               string    `hcl:"name,optional"`
	Currency           string    `hcl:"currency"`
	Factor             cty.Value `hcl:"factor"`
	ExchangeRate       cty.Value `hcl:"exchange_rate"`
	ExcludedModules    []string  `hcl:"excluded_modules,optional"`
	ExcludedAreas      []string  `hcl:"excluded_areas,optional"`
	DesktopOnlyModules []string  `hcl:"desktop_only_modules,optional"`
}

// Load reads a catalog file and applies it over base.
// A nil base starts from the built-in catalog.
func Load(path string, base *catalog.Catalog) (*catalog.Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("catalog file", path)
		}
		return nil, errors.Catalog("failed to read catalog file", err).WithContext("path", path)
	}
	return Parse(src, path, base)
}

// Parse decodes HCL catalog source and applies it over base
func Parse(src []byte, filename string, base *catalog.Catalog) (*catalog.Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing(filename+": invalid HCL", diagError(diags))
	}

	var schema fileSchema
	if diags := gohcl.DecodeBody(file.Body, nil, &schema); diags.HasErrors() {
		return nil, errors.Parsing(filename+": invalid catalog", diagError(diags))
	}

	var cat *catalog.Catalog
	switch {
	case schema.ReplaceBuiltin:
		cat = catalog.NewCatalog()
	case base != nil:
		cat = base.Clone()
	default:
		cat = catalog.Default()
	}

	if err := apply(cat, &schema); err != nil {
		return nil, errors.Catalog(filename+": invalid catalog", err)
	}
	if errs := cat.Validate(catalog.DefaultValidationRules()); len(errs) > 0 {
		return nil, errors.Catalog(filename+": catalog failed validation", joinErrors(errs))
	}
	return cat, nil
}

func apply(cat *catalog.Catalog, schema *fileSchema) error {
	for _, b := range schema.Modules {
		def := catalog.ModuleDefinition{Name: b.Name}
		if existing, ok := cat.Lookup(b.Name); ok {
			def = *existing
		}
		if b.Area != nil {
			def.Area = *b.Area
		}
		if b.MinTier != nil {
			def.MinTier = types.TierID(*b.MinTier)
		}
		if b.Billing != nil {
			shape, err := types.ParseBillingShape(*b.Billing)
			if err != nil {
				return fmt.Errorf("module %q: %w", b.Name, err)
			}
			def.Shape = shape
		}
		if b.WebOnly != nil {
			def.WebOnly = *b.WebOnly
		}
		if b.Aliases != nil {
			def.Aliases = b.Aliases
		}
		cat.Put(def)
	}

	for _, b := range schema.Extras {
		cat.RegisterLegacyExtra(catalog.LegacyExtra{
			Name:    b.Name,
			MinTier: types.TierID(b.MinTier),
			Notice:  b.Notice,
		})
	}

	for _, b := range schema.Connectors {
		existing, ok := cat.Lookup(b.Module)
		if !ok {
			return fmt.Errorf("connector for unknown module %q", b.Module)
		}
		conn := &catalog.ConnectorSpec{
			Included:   make(map[types.TierID]int, len(b.Included)),
			PackSizes:  b.PackSizes,
			Unit:       b.Unit,
			UnitPlural: b.UnitPlural,
		}
		for key, n := range b.Included {
			tier, err := strconv.Atoi(strings.TrimSpace(key))
			if err != nil {
				return fmt.Errorf("connector %q: included key %q is not a tier", b.Module, key)
			}
			conn.Included[types.TierID(tier)] = n
		}
		def := *existing
		def.Connector = conn
		cat.Put(def)
	}

	for _, b := range schema.Rules {
		msg := b.Message
		if msg == "" {
			msg = fmt.Sprintf("O módulo %s requer %s", b.Module, b.Requires)
		}
		cat.AddRule(catalog.Rule{Module: b.Module, Requires: b.Requires, Message: msg})
	}

	for _, b := range schema.Regions {
		factor, err := toDecimal(b.Factor)
		if err != nil {
			return fmt.Errorf("region %s: factor: %w", b.Code, err)
		}
		rate, err := toDecimal(b.ExchangeRate)
		if err != nil {
			return fmt.Errorf("region %s: exchange_rate: %w", b.Code, err)
		}
		name := b.Name
		if name == "" {
			name = b.Code
		}
		cat.RegisterRegion(catalog.Region{
			Code:               b.Code,
			Name:               name,
			Currency:           types.Currency(strings.ToUpper(b.Currency)),
			Factor:             factor,
			ExchangeRate:       rate,
			ExcludedModules:    b.ExcludedModules,
			ExcludedAreas:      b.ExcludedAreas,
			DesktopOnlyModules: b.DesktopOnlyModules,
		})
	}
	return nil
}

// toDecimal reads a number attribute without going through float64
func toDecimal(v cty.Value) (decimal.Decimal, error) {
	if v.IsNull() || !v.IsKnown() {
		return decimal.Zero, fmt.Errorf("value is required")
	}
	if v.Type() == cty.String {
		return decimal.NewFromString(v.AsString())
	}
	if v.Type() != cty.Number {
		return decimal.Zero, fmt.Errorf("expected a number, got %s", v.Type().FriendlyName())
	}
	return decimal.NewFromString(v.AsBigFloat().Text('f', -1))
}

func diagError(diags hcl.Diagnostics) error {
	var msgs []string
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		if d.Subject != nil {
			msg = fmt.Sprintf("line %d: %s", d.Subject.Start.Line, msg)
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

func joinErrors(errs []error) error {
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
