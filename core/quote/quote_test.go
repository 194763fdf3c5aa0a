// Package quote - Quote line and proposal tests
package quote

import (
	"slices"
	"testing"

	"github.com/shopspring/decimal"

	"plan-advisor/core/catalog"
	"plan-advisor/core/engine"
	"plan-advisor/core/pricing/pricingtest"
	"plan-advisor/core/types"
)

func calculate(req types.Request) *types.PlanResult {
	return engine.NewCalculator(pricingtest.Rates(), catalog.Default()).Calculate(req)
}

func products(lines []Line) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Product)
	}
	return out
}

// TestLinesFullQuote verifies every priced component becomes a line in order
func TestLinesFullQuote(t *testing.T) {
	res := calculate(types.Request{
		CurrentPlan:   types.PlanEnterprise,
		DesktopSeats:  25,
		Selections:    map[string]int{"CRM": 12, "Bank Connector": 17},
		WebSelections: map[string]int{"CRM": 4},
		POSCounts:     []int{1, 3},
	})
	q := New(res)

	want := []string{
		"Plano Ultimate",
		"5 Full Users (6 a 10)",
		"5 Full Users (11 a 50)",
		"CRM",
		"CRM (7 Utilizadores Adicionais Desktop)",
		"CRM (3 Utilizadores Adicionais Web)",
		"1º Ponto de Venda (POS/Restauração)",
		"1º Ponto de Venda (POS/Restauração)",
		"Ponto de Venda (POS/Restauração) - (2 Postos Adicionais - Escalão de 2 a 10)",
		"Bank Connector",
		"Bank Connector 5",
		"Bank Connector 10",
	}
	if got := products(q.Lines); !slices.Equal(got, want) {
		t.Fatalf("lines = %q\nwant %q", got, want)
	}

	pricingtest.AssertDec(t, "1469", q.Total)
	pricingtest.AssertDec(t, res.Total.String(), q.Total)
	if q.Lines[0].Detail || !q.Lines[1].Detail {
		t.Error("only component breakdown lines are marked as detail")
	}
}

// TestLinesFlatSeatOverage verifies a single overage line below the top tier
func TestLinesFlatSeatOverage(t *testing.T) {
	q := New(calculate(types.Request{CurrentPlan: types.PlanAdvanced, DesktopSeats: 5, WebSeats: 3}))

	if len(q.Lines) != 2 {
		t.Fatalf("lines = %q, want 2", products(q.Lines))
	}
	if q.Lines[1].Product != "2 Full Users adicional" {
		t.Errorf("product = %q", q.Lines[1].Product)
	}
	if q.Lines[1].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", q.Lines[1].Quantity)
	}
	pricingtest.AssertDec(t, "25", q.Lines[1].UnitPrice)
	pricingtest.AssertDec(t, "50", q.Lines[1].Total)
}

// TestLinesPerSeatModule verifies plain per-seat extras carry no pool label
func TestLinesPerSeatModule(t *testing.T) {
	q := New(calculate(types.Request{CurrentPlan: types.PlanAdvanced, Selections: map[string]int{"OKR": 2}}))

	want := []string{"Plano Advanced", "OKR", "OKR (1 Utilizador Adicional)"}
	if got := products(q.Lines); !slices.Equal(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

// TestSimulate covers discount, markup and no proposal
func TestSimulate(t *testing.T) {
	q := New(calculate(types.Request{CurrentPlan: types.PlanAdvanced, DesktopSeats: 5, WebSeats: 3}))

	tests := []struct {
		name     string
		value    string
		discount string
		percent  string
		lines    []string
		total    string
	}{
		{"discount", "223.2", "0.2", "20", []string{"183.2", "40"}, "223.2"},
		{"markup", "558", "-1", "-100", []string{"458", "100"}, "558"},
		{"no proposal", "0", "0", "0", []string{"229", "50"}, "279"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := q.Simulate(decimal.RequireFromString(tt.value))

			pricingtest.AssertDec(t, tt.discount, p.Discount)
			pricingtest.AssertDec(t, tt.percent, p.DiscountPercent())
			if len(p.Lines) != len(tt.lines) {
				t.Fatalf("proposal lines = %d, want %d", len(p.Lines), len(tt.lines))
			}
			for i, want := range tt.lines {
				pricingtest.AssertDec(t, want, p.Lines[i].Total, q.Lines[i].Product)
			}
			pricingtest.AssertDec(t, tt.total, p.Total)
			if q.Proposal != p {
				t.Error("Simulate did not attach the proposal to the quote")
			}
		})
	}
}
