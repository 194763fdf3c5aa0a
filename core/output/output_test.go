// Package output - Report formatter tests
package output

import (
	"bytes"
	"encoding/json"
	"slices"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"plan-advisor/core/catalog"
	"plan-advisor/core/engine"
	"plan-advisor/core/pricing/pricingtest"
	"plan-advisor/core/types"
)

func report(t *testing.T, req types.Request) *Report {
	t.Helper()
	cat := catalog.Default()
	res := engine.NewCalculator(pricingtest.Rates(), cat).Calculate(req)
	reg, _ := cat.Region(req.Region)
	return NewReport(res, reg)
}

func render(t *testing.T, f Formatter, rep *Report) string {
	t.Helper()
	var buf bytes.Buffer
	if err := f.Render(&buf, rep); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	return buf.String()
}

func checkContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q:\n%s", w, out)
		}
	}
}

// TestFormatMoney verifies currency rendering
func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency types.Currency
		want     string
	}{
		{"1234", types.CurrencyEUR, "1.234 €"},
		{"1234.5", types.CurrencyEUR, "1.234 €"},
		{"1235.5", types.CurrencyEUR, "1.236 €"},
		{"0", "", "0 €"},
		{"262500", types.CurrencyAOA, "262.500 AOA"},
		{"1125", types.CurrencyMZN, "1.125 MZN"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatMoney(decimal.RequireFromString(tt.amount), tt.currency); got != tt.want {
				t.Errorf("FormatMoney(%s, %q) = %q", tt.amount, tt.currency, got)
			}
		})
	}
	if got := FormatPercent(decimal.RequireFromString("0.2")); got != "20%" {
		t.Errorf("FormatPercent(0.2) = %q, want 20%%", got)
	}
}

// TestParseFormat verifies format names and aliases
func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{
		"cli": FormatCLI, "": FormatCLI, "JSON": FormatJSON, "yml": FormatYAML, "md": FormatMarkdown,
	} {
		got, err := ParseFormat(name)
		if err != nil {
			t.Errorf("ParseFormat(%q) failed: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("ParseFormat(%q) = %s, want %s", name, got, want)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("ParseFormat accepted pdf")
	}
}

// TestRegistry verifies every format has a formatter
func TestRegistry(t *testing.T) {
	r := DefaultRegistry()
	want := []Format{FormatCLI, FormatJSON, FormatMarkdown, FormatYAML}
	if got := r.Formats(); !slices.Equal(got, want) {
		t.Errorf("formats = %v, want %v", got, want)
	}
	if err := r.Register(NewJSONFormatter()); err == nil {
		t.Error("duplicate formatter registered")
	}
	if err := r.Render(&bytes.Buffer{}, "pdf", &Report{}); err == nil {
		t.Error("Render accepted an unknown format")
	}
}

// TestJSONFormatter verifies the JSON document carries result and quote
func TestJSONFormatter(t *testing.T) {
	rep := report(t, types.Request{
		CurrentPlan: types.PlanEnterprise,
		Selections:  map[string]int{"CRM": 3},
	})

	out := render(t, NewJSONFormatter(), rep)

	var decoded struct {
		Result struct {
			Tier    int    `json:"tier"`
			Total   string `json:"total"`
			Modules []struct {
				Module string `json:"module"`
				Shape  string `json:"shape"`
			} `json:"modules"`
		} `json:"result"`
		Quote struct {
			Lines []struct {
				Product string `json:"product"`
			} `json:"lines"`
		} `json:"quote"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Result.Tier != 6 || decoded.Result.Total != "817" {
		t.Errorf("tier/total = %d/%s, want 6/817", decoded.Result.Tier, decoded.Result.Total)
	}
	if len(decoded.Result.Modules) != 1 || decoded.Result.Modules[0].Shape != "per_seat_web_aware" {
		t.Errorf("modules = %+v", decoded.Result.Modules)
	}
	if len(decoded.Quote.Lines) == 0 || decoded.Quote.Lines[0].Product != "Plano Ultimate" {
		t.Errorf("quote lines = %+v", decoded.Quote.Lines)
	}
}

// TestYAMLFormatter verifies the YAML document decodes
func TestYAMLFormatter(t *testing.T) {
	rep := report(t, types.Request{CurrentPlan: types.PlanAdvanced})

	out := render(t, NewYAMLFormatter(), rep)

	var decoded map[string]any
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	result, ok := decoded["result"].(map[string]any)
	if !ok {
		t.Fatalf("result section missing:\n%s", out)
	}
	if result["tier"] != 4 || result["tier_name"] != "Advanced" {
		t.Errorf("tier = %v (%v), want 4 (Advanced)", result["tier"], result["tier_name"])
	}
}

// TestMarkdownFormatter verifies the markdown table layout
func TestMarkdownFormatter(t *testing.T) {
	rep := report(t, types.Request{
		CurrentPlan:  types.PlanAdvanced,
		DesktopSeats: 5,
		WebSeats:     3,
		Selections:   map[string]int{"Xpto": 1},
	})
	rep.Quote.Simulate(decimal.RequireFromString("223.2"))

	checkContains(t, render(t, NewMarkdownFormatter(), rep),
		"# Plano Advanced",
		"| Plano Advanced | 1 | 229 € | 229 € |",
		"| ↳ 2 Full Users adicional | 2 | 25 € | 50 € |",
		"| **Total** | | | **279 €** |",
		"- Plano Advanced: 229 € → 183 €",
		"O desconto calculado é de 20%.",
		"- Módulo não reconhecido: Xpto",
	)
}

// TestCLIFormatter verifies the terminal report
func TestCLIFormatter(t *testing.T) {
	rep := report(t, types.Request{
		CurrentPlan:  types.PlanCorporate,
		DesktopSeats: 1,
		Selections:   map[string]int{"Vencimento": 2},
		Region:       "AO",
	})

	checkContains(t, render(t, NewCLIFormatter(), rep),
		"Plano Professional (3)",
		"Vencimento",
		"165 €",
		"Total AO",
		"216.300 AOA",
		rep.Result.RateTableID,
	)
}
