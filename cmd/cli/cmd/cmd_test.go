package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-advisor/adapters/ratesfile"
	"plan-advisor/core/pricing/pricingtest"
	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
)

// TestParseQuantities verifies NAME=QTY flag parsing
func TestParseQuantities(t *testing.T) {
	got, err := parseQuantities([]string{"CRM=12", "OKR", " Frota = 2 ", "CRM=1"}, 1)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"CRM": 13, "OKR": 1, "Frota": 2}, got)

	_, err = parseQuantities([]string{"CRM=x"}, 1)
	assert.True(t, errors.IsType(err, errors.TypeInput))
	_, err = parseQuantities([]string{"=3"}, 1)
	assert.True(t, errors.IsType(err, errors.TypeInput))
}

// TestParsePlanAndSubtype verifies plan and subtype flag parsing
func TestParsePlanAndSubtype(t *testing.T) {
	plan, err := parsePlan("enterprise")
	require.NoError(t, err)
	assert.Equal(t, types.PlanEnterprise, plan)
	_, err = parsePlan("Gold")
	assert.Error(t, err)

	tests := map[string]types.ManagementSubtype{
		"Gestão Completo":  types.SubtypeCompleto,
		"gestao terceiros": types.SubtypeTerceiros,
		"Clientes":         types.SubtypeClientes,
		"":                 "",
	}
	for in, want := range tests {
		got, err := parseSubtype(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err = parseSubtype("Parcial")
	assert.Error(t, err)
}

// TestRequestFlagsOverrideFile verifies flags win over a request file
func TestRequestFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cliente.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
current_plan: Corporate
management_subtype: Gestão Terceiros
desktop_seats: 2
selections:
  CRM: 3
legacy_extras: [sms]
`), 0644))

	var f requestFlags
	c := &cobra.Command{Use: "t"}
	f.bind(c)
	require.NoError(t, c.ParseFlags([]string{
		"--request", path, "--desktop", "4", "--module", "OKR=2", "--web-module", "CRM=1", "--pos", "1,3", "--extra-floor", "sms=2",
	}))

	req, err := f.build(c)
	require.NoError(t, err)
	assert.Equal(t, types.PlanCorporate, req.CurrentPlan)
	assert.Equal(t, types.SubtypeTerceiros, req.ManagementSubtype)
	assert.Equal(t, 4, req.DesktopSeats)
	assert.Equal(t, map[string]int{"CRM": 3, "OKR": 2}, req.Selections)
	assert.Equal(t, map[string]int{"CRM": 1}, req.WebSelections)
	assert.Equal(t, []int{1, 3}, req.POSCounts)
	assert.Equal(t, []string{"sms"}, req.LegacyExtras)
	assert.Equal(t, types.TierID(2), req.LegacyExtraFloors["sms"])
}

// TestReadRequestFileErrors verifies unreadable request files are reported
func TestReadRequestFileErrors(t *testing.T) {
	_, err := readRequestFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.True(t, errors.IsType(err, errors.TypeNotFound))

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"current_plan":"Advanced","seats":3}`), 0644))
	_, err = readRequestFile(path)
	assert.True(t, errors.IsType(err, errors.TypeParsing))
}

// writeConfig points the CLI at CSV rate files generated from the test rate table
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	plansPath := filepath.Join(dir, "planos.csv")
	modulesPath := filepath.Join(dir, "produtos.csv")

	plans, err := os.Create(plansPath)
	require.NoError(t, err)
	modules, err := os.Create(modulesPath)
	require.NoError(t, err)
	require.NoError(t, ratesfile.WriteCSV(pricingtest.Rates(), plans, modules))
	plans.Close()
	modules.Close()

	cfgPath := filepath.Join(dir, "plan-advisor.yaml")
	cfg := "rates:\n" +
		"  source: csv\n" +
		"  plans_csv: " + plansPath + "\n" +
		"  modules_csv: " + modulesPath + "\n" +
		"  database: " + filepath.Join(dir, "precos.db") + "\n" +
		"logging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))
	return cfgPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// TestEstimateCommand verifies the estimate command end to end
func TestEstimateCommand(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "estimate", "--config", cfg, "--plan", "Advanced", "--desktop", "5", "--web", "3", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "# Plano Advanced")
	assert.Contains(t, out, "279 €")
}

// TestQuoteCommand verifies the quote command end to end
func TestQuoteCommand(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "quote", "--config", cfg, "--plan", "Advanced", "--desktop", "5", "--web", "3", "--proposal", "223.2", "--format", "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "O desconto calculado é de 20%.")
}

// TestRatesCommands verifies the rates verify, import and history commands
func TestRatesCommands(t *testing.T) {
	cfg := writeConfig(t)

	out, err := run(t, "rates", "verify", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, string(pricingtest.Rates().ID))

	out, err = run(t, "rates", "import", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported rate table "+string(pricingtest.Rates().ID))

	out, err = run(t, "rates", "history", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, string(pricingtest.Rates().ID))
}

// TestCatalogValidateCommand verifies catalog validation from the CLI
func TestCatalogValidateCommand(t *testing.T) {
	cfg := writeConfig(t)
	out, err := run(t, "catalog", "validate", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Catalog OK")
}
