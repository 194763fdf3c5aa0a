// Package ratesfile loads rate tables from CSV files and XLSX workbooks.
// Both formats share the same headers: one plan row per tier and one module
// row per product and tier.
package ratesfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
)

// Plan columns
const (
	ColPlanID      = "plano_id"
	ColPlanName    = "nome"
	ColBasePrice   = "preco_base"
	ColIncluded    = "utilizadores_incluidos"
	ColSeatLimit   = "limite_utilizadores"
	ColExtraTo10   = "preco_extra_ate_10"
	ColExtraTo50   = "preco_extra_ate_50"
	ColExtraOver50 = "preco_extra_acima_50"
)

// Module columns
const (
	ColProduct   = "produto"
	ColUnitPrice = "preco_unidade"
)

// PlanHeader is the header row of a plan table
var PlanHeader = []string{ColPlanID, ColPlanName, ColBasePrice, ColIncluded, ColSeatLimit, ColExtraTo10, ColExtraTo50, ColExtraOver50}

// ModuleHeader is the header row of a module table
var ModuleHeader = []string{ColProduct, ColPlanID, ColBasePrice, ColUnitPrice}

// table indexes the columns of a record set by header name
type table struct {
	origin  string
	columns map[string]int
	rows    [][]string
}

func newTable(origin string, records [][]string, required ...string) (*table, error) {
	if len(records) == 0 {
		return nil, errors.Newf(errors.TypeParsing, "%s: missing header row", origin)
	}
	t := &table{origin: origin, columns: make(map[string]int), rows: records[1:]}
	for i, name := range records[0] {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		t.columns[name] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			return nil, errors.Newf(errors.TypeParsing, "%s: missing column %q", origin, name)
		}
	}
	return t, nil
}

// cell returns a trimmed value or "" when the column or cell is absent
func (t *table) cell(row []string, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (t *table) fail(line int, column string, err error) error {
	return errors.Parsing(fmt.Sprintf("%s: line %d: column %s", t.origin, line, column), err).
		WithContext("file", t.origin).
		WithContext("line", line)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDecimal reads a price; blank is zero and a comma decimal separator is accepted
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}

// parseInt reads a whole number, tolerating a ".0" suffix from spreadsheets
func parseInt(s string) (int, error) {
	s = strings.TrimSuffix(s, ".0")
	return strconv.Atoi(s)
}

func parsePlans(origin string, records [][]string) ([]types.PlanRate, error) {
	t, err := newTable(origin, records, ColPlanID, ColBasePrice)
	if err != nil {
		return nil, err
	}

	var plans []types.PlanRate
	for i, row := range t.rows {
		line := i + 2
		if blank(row) {
			continue
		}

		tier, err := parseInt(t.cell(row, ColPlanID))
		if err != nil {
			return nil, t.fail(line, ColPlanID, err)
		}
		plan := types.PlanRate{Tier: types.TierID(tier), Name: t.cell(row, ColPlanName)}

		if plan.BasePrice, err = parseDecimal(t.cell(row, ColBasePrice)); err != nil {
			return nil, t.fail(line, ColBasePrice, err)
		}
		if s := t.cell(row, ColIncluded); s != "" {
			if plan.IncludedSeats, err = parseInt(s); err != nil {
				return nil, t.fail(line, ColIncluded, err)
			}
		}
		if s := t.cell(row, ColSeatLimit); s != "" {
			limit, err := parseInt(s)
			if err != nil {
				return nil, t.fail(line, ColSeatLimit, err)
			}
			plan.SeatLimit = &limit
		}
		for band, column := range []string{ColExtraTo10, ColExtraTo50, ColExtraOver50} {
			if plan.BandPrices[band], err = parseDecimal(t.cell(row, column)); err != nil {
				return nil, t.fail(line, column, err)
			}
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func parseModules(origin string, records [][]string) ([]types.ModuleRate, error) {
	t, err := newTable(origin, records, ColProduct, ColPlanID, ColBasePrice)
	if err != nil {
		return nil, err
	}

	var modules []types.ModuleRate
	for i, row := range t.rows {
		line := i + 2
		if blank(row) {
			continue
		}

		rate := types.ModuleRate{Product: t.cell(row, ColProduct)}
		if rate.Product == "" {
			return nil, t.fail(line, ColProduct, fmt.Errorf("empty product"))
		}
		tier, err := parseInt(t.cell(row, ColPlanID))
		if err != nil {
			return nil, t.fail(line, ColPlanID, err)
		}
		rate.Tier = types.TierID(tier)
		if rate.BasePrice, err = parseDecimal(t.cell(row, ColBasePrice)); err != nil {
			return nil, t.fail(line, ColBasePrice, err)
		}
		if rate.UnitPrice, err = parseDecimal(t.cell(row, ColUnitPrice)); err != nil {
			return nil, t.fail(line, ColUnitPrice, err)
		}
		modules = append(modules, rate)
	}
	return modules, nil
}

// planRecord renders a plan row under PlanHeader
func planRecord(p types.PlanRate) []string {
	limit := ""
	if p.SeatLimit != nil {
		limit = strconv.Itoa(*p.SeatLimit)
	}
	return []string{
		p.Tier.String(),
		p.Name,
		p.BasePrice.String(),
		strconv.Itoa(p.IncludedSeats),
		limit,
		p.BandPrices[0].String(),
		p.BandPrices[1].String(),
		p.BandPrices[2].String(),
	}
}

// moduleRecord renders a module row under ModuleHeader
func moduleRecord(m types.ModuleRate) []string {
	return []string{m.Product, m.Tier.String(), m.BasePrice.String(), m.UnitPrice.String()}
}
