// Package quote flattens a plan result into priced quote lines and simulates
// a migration proposal over them.
package quote

import (
	"fmt"

	"github.com/shopspring/decimal"

	"plan-advisor/core/types"
)

// Line is one product row of a quote
type Line struct {
	Product   string          `json:"product" yaml:"product"`
	Quantity  int             `json:"quantity" yaml:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	Total     decimal.Decimal `json:"total" yaml:"total"`

	// Detail marks a line that refines the line above it
	Detail bool `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Quote is the line list of a plan result with an optional proposal simulation
type Quote struct {
	Tier     types.TierID    `json:"tier" yaml:"tier"`
	TierName string          `json:"tier_name" yaml:"tier_name"`
	Lines    []Line          `json:"lines" yaml:"lines"`
	Total    decimal.Decimal `json:"total" yaml:"total"`

	Proposal *Proposal `json:"proposal,omitempty" yaml:"proposal,omitempty"`
}

// Proposal is the quote rescaled so its total matches a proposed value
type Proposal struct {
	Value decimal.Decimal `json:"value" yaml:"value"`

	// Discount is the fraction taken off every line; negative for a markup
	Discount decimal.Decimal `json:"discount" yaml:"discount"`
	Lines    []Line          `json:"lines" yaml:"lines"`
	Total    decimal.Decimal `json:"total" yaml:"total"`
}

// DiscountPercent returns the discount as a whole percentage
func (p *Proposal) DiscountPercent() decimal.Decimal {
	return p.Discount.Mul(decimal.NewFromInt(100)).Round(0)
}

// New builds the quote of a plan result
func New(res *types.PlanResult) *Quote {
	q := &Quote{
		Tier:     res.Tier,
		TierName: res.TierName,
		Lines:    Lines(res),
		Total:    decimal.Zero,
	}
	for _, l := range q.Lines {
		q.Total = q.Total.Add(l.Total)
	}
	return q
}

// Lines lists the plan, seat overage, modules and connector packs of a result
func Lines(res *types.PlanResult) []Line {
	lines := []Line{{
		Product:   fmt.Sprintf("Plano %s", res.TierName),
		Quantity:  1,
		UnitPrice: res.BasePrice,
		Total:     res.BasePrice,
	}}

	lines = append(lines, seatLines(res)...)
	for _, m := range res.Modules {
		lines = append(lines, moduleLines(m)...)
	}
	for _, c := range res.Connectors {
		for _, p := range c.Packs {
			lines = append(lines, Line{Product: p.Product, Quantity: p.Count, UnitPrice: p.UnitPrice, Total: p.Cost})
		}
	}
	return lines
}

var bandLabels = [types.SeatBandCount]string{"(6 a 10)", "(11 a 50)", "(>50)"}

func seatLines(res *types.PlanResult) []Line {
	seats := res.Seats
	if seats.Extras == 0 || seats.Cost.IsZero() {
		return nil
	}

	if res.Tier == types.MaxTier {
		var lines []Line
		for i, n := range seats.Bands {
			if n == 0 {
				continue
			}
			price := seats.BandPrices[i]
			lines = append(lines, Line{
				Product:   fmt.Sprintf("%s %s", fullUsers(n), bandLabels[i]),
				Quantity:  n,
				UnitPrice: price,
				Total:     price.Mul(decimal.NewFromInt(int64(n))),
				Detail:    true,
			})
		}
		return lines
	}

	return []Line{{
		Product:   fmt.Sprintf("%s adicional", fullUsers(seats.Extras)),
		Quantity:  seats.Extras,
		UnitPrice: seats.Cost.Div(decimal.NewFromInt(int64(seats.Extras))),
		Total:     seats.Cost,
		Detail:    true,
	}}
}

func moduleLines(m types.ModuleCharge) []Line {
	var lines []Line

	if m.POS != nil {
		for i := 0; i < m.POS.Groups; i++ {
			lines = append(lines, Line{
				Product:   fmt.Sprintf("1º %s", m.Module),
				Quantity:  1,
				UnitPrice: m.POS.FirstUnitPrice,
				Total:     m.POS.FirstUnitPrice,
			})
		}
		if n := m.POS.MidQuantity; n > 0 {
			lines = append(lines, Line{
				Product:   fmt.Sprintf("%s - (%s - Escalão de 2 a 10)", m.Module, additionalTerminals(n)),
				Quantity:  n,
				UnitPrice: m.POS.MidPrice,
				Total:     m.POS.MidPrice.Mul(decimal.NewFromInt(int64(n))),
				Detail:    true,
			})
		}
		if n := m.POS.HighQuantity; n > 0 {
			lines = append(lines, Line{
				Product:   fmt.Sprintf("%s - (%s - Escalão acima de 10)", m.Module, additionalTerminals(n)),
				Quantity:  n,
				UnitPrice: m.POS.HighPrice,
				Total:     m.POS.HighPrice.Mul(decimal.NewFromInt(int64(n))),
				Detail:    true,
			})
		}
		return lines
	}

	lines = append(lines, Line{Product: m.Module, Quantity: 1, UnitPrice: m.Base, Total: m.Base})

	kind := ""
	if m.Shape.WebAware() {
		kind = "Desktop"
	}
	if m.DesktopExtra.IsPositive() {
		lines = append(lines, extraLine(m.Module, m.DesktopExtraQuantity, m.UnitPrice, m.DesktopExtra, kind))
	}
	if m.WebExtra.IsPositive() {
		lines = append(lines, extraLine(m.Module, m.WebExtraQuantity, m.UnitPrice, m.WebExtra, "Web"))
	}
	return lines
}

func extraLine(module string, n int, unit, total decimal.Decimal, kind string) Line {
	return Line{
		Product:   fmt.Sprintf("%s (%s)", module, additionalUsers(n, kind)),
		Quantity:  n,
		UnitPrice: unit,
		Total:     total,
		Detail:    true,
	}
}

// Simulate rescales the quote so its total equals value. A zero value or an
// empty quote leaves the lines undiscounted.
func (q *Quote) Simulate(value decimal.Decimal) *Proposal {
	p := &Proposal{Value: value, Discount: decimal.Zero}
	if value.IsPositive() && q.Total.IsPositive() {
		p.Discount = q.Total.Sub(value).Div(q.Total)
	}

	factor := decimal.NewFromInt(1).Sub(p.Discount)
	p.Total = decimal.Zero
	p.Lines = make([]Line, 0, len(q.Lines))
	for _, l := range q.Lines {
		d := l
		d.UnitPrice = l.UnitPrice.Mul(factor).Round(2)
		d.Total = l.Total.Mul(factor).Round(2)
		p.Lines = append(p.Lines, d)
		p.Total = p.Total.Add(d.Total)
	}
	q.Proposal = p
	return p
}

func fullUsers(n int) string {
	if n == 1 {
		return "1 Full User"
	}
	return fmt.Sprintf("%d Full Users", n)
}

func additionalUsers(n int, kind string) string {
	suffix := ""
	if kind != "" {
		suffix = " " + kind
	}
	if n == 1 {
		return "1 Utilizador Adicional" + suffix
	}
	return fmt.Sprintf("%d Utilizadores Adicionais%s", n, suffix)
}

func additionalTerminals(n int) string {
	if n == 1 {
		return "1 Posto Adicional"
	}
	return fmt.Sprintf("%d Postos Adicionais", n)
}
