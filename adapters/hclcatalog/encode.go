package hclcatalog

import (
	"io"
	"sort"
	"strconv"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/shopspring/decimal"
	"github.com/zclconf/go-cty/cty"

	"plan-advisor/core/catalog"
	"plan-advisor/internal/errors"
)

// Write renders a complete catalog as a standalone HCL file
func Write(cat *catalog.Catalog, w io.Writer) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()
	body.SetAttributeValue("replace_builtin", cty.True)

	var connectors []*catalog.ModuleDefinition
	for _, def := range cat.Modules() {
		body.AppendNewline()
		mb := body.AppendNewBlock("module", []string{def.Name}).Body()
		mb.SetAttributeValue("area", cty.StringVal(def.Area))
		if def.MinTier != 0 {
			mb.SetAttributeValue("min_tier", cty.NumberIntVal(int64(def.MinTier)))
		}
		mb.SetAttributeValue("billing", cty.StringVal(def.Shape.String()))
		if def.WebOnly {
			mb.SetAttributeValue("web_only", cty.True)
		}
		if len(def.Aliases) > 0 {
			mb.SetAttributeValue("aliases", stringList(def.Aliases))
		}
		if def.Connector != nil {
			connectors = append(connectors, def)
		}
	}

	for _, def := range connectors {
		conn := def.Connector
		body.AppendNewline()
		cb := body.AppendNewBlock("connector", []string{def.Name}).Body()

		included := make(map[string]cty.Value, len(conn.Included))
		for tier, n := range conn.Included {
			included[strconv.Itoa(int(tier))] = cty.NumberIntVal(int64(n))
		}
		if len(included) > 0 {
			cb.SetAttributeValue("included", cty.ObjectVal(included))
		} else {
			cb.SetAttributeValue("included", cty.EmptyObjectVal)
		}

		sizes := make([]cty.Value, len(conn.PackSizes))
		for i, s := range conn.PackSizes {
			sizes[i] = cty.NumberIntVal(int64(s))
		}
		cb.SetAttributeValue("pack_sizes", cty.TupleVal(sizes))
		if conn.Unit != "" {
			cb.SetAttributeValue("unit", cty.StringVal(conn.Unit))
		}
		if conn.UnitPlural != "" {
			cb.SetAttributeValue("unit_plural", cty.StringVal(conn.UnitPlural))
		}
	}

	for _, extra := range cat.LegacyExtras() {
		body.AppendNewline()
		eb := body.AppendNewBlock("legacy_extra", []string{extra.Name}).Body()
		eb.SetAttributeValue("min_tier", cty.NumberIntVal(int64(extra.MinTier)))
		if extra.Notice != "" {
			eb.SetAttributeValue("notice", cty.StringVal(extra.Notice))
		}
	}

	for _, rule := range cat.Rules() {
		body.AppendNewline()
		rb := body.AppendNewBlock("rule", []string{rule.Module}).Body()
		rb.SetAttributeValue("requires", cty.StringVal(rule.Requires))
		rb.SetAttributeValue("message", cty.StringVal(rule.Message))
	}

	for _, region := range cat.Regions() {
		body.AppendNewline()
		gb := body.AppendNewBlock("region", []string{region.Code}).Body()
		gb.SetAttributeValue("name", cty.StringVal(region.Name))
		gb.SetAttributeValue("currency", cty.StringVal(string(region.Currency)))
		factor, err := numberVal(region.Factor)
		if err != nil {
			return errors.Internal("invalid region factor", err).WithContext("region", region.Code)
		}
		gb.SetAttributeValue("factor", factor)
		rate, err := numberVal(region.ExchangeRate)
		if err != nil {
			return errors.Internal("invalid exchange rate", err).WithContext("region", region.Code)
		}
		gb.SetAttributeValue("exchange_rate", rate)
		if len(region.ExcludedModules) > 0 {
			gb.SetAttributeValue("excluded_modules", stringList(region.ExcludedModules))
		}
		if len(region.ExcludedAreas) > 0 {
			gb.SetAttributeValue("excluded_areas", stringList(region.ExcludedAreas))
		}
		if len(region.DesktopOnlyModules) > 0 {
			gb.SetAttributeValue("desktop_only_modules", stringList(region.DesktopOnlyModules))
		}
	}

	if _, err := w.Write(f.Bytes()); err != nil {
		return errors.Internal("failed to write catalog", err)
	}
	return nil
}

func stringList(items []string) cty.Value {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	vals := make([]cty.Value, len(sorted))
	for i, s := range sorted {
		vals[i] = cty.StringVal(s)
	}
	return cty.TupleVal(vals)
}

func numberVal(d decimal.Decimal) (cty.Value, error) {
	return cty.ParseNumberVal(d.String())
}
