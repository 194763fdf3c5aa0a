package hclcatalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plan-advisor/core/catalog"
	"plan-advisor/core/pricing/pricingtest"
	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
)

const overlay = `
module "CRM" {
  min_tier = 4
}

module "Assinaturas Digitais" {
  area     = "Outros"
  min_tier = 2
  billing  = "per_seat"
  aliases  = ["Assinaturas"]
}

legacy_extra "faturacao eletronica" {
  min_tier = 3
  notice   = "Faturação eletrónica passa a módulo."
}

connector "EDI Broker" {
  included   = { "5" = 2, "6" = 4 }
  pack_sizes = [5]
  unit       = "parceiro"
}

rule "OKR" {
  requires = "Equipa"
}

region "CV" {
  name          = "Cabo Verde"
  currency      = "cve"
  factor        = 1.15
  exchange_rate = 110.265
  excluded_areas = ["Connected Services"]
}
`

// TestParseOverlay verifies overlay blocks replace and add modules
func TestParseOverlay(t *testing.T) {
	cat, err := Parse([]byte(overlay), "overlay.hcl", nil)
	require.NoError(t, err)

	crm, ok := cat.Lookup("crm")
	require.True(t, ok)
	assert.Equal(t, types.TierID(4), crm.MinTier)
	assert.Equal(t, types.ShapePerSeatWebAware, crm.Shape, "unset attributes keep the built-in value")
	assert.Equal(t, catalog.AreaCore, crm.Area)

	sig, ok := cat.Lookup("assinaturas")
	require.True(t, ok)
	assert.Equal(t, "Assinaturas Digitais", sig.Name)
	assert.Equal(t, types.ShapePerSeat, sig.Shape)

	extra, ok := cat.LegacyExtra("Faturação Eletrónica")
	require.True(t, ok)
	assert.Equal(t, types.TierID(3), extra.MinTier)

	edi, ok := cat.Lookup("EDI Broker")
	require.True(t, ok)
	require.NotNil(t, edi.Connector)
	assert.Equal(t, 4, edi.Connector.IncludedAt(6))
	assert.Equal(t, 0, edi.Connector.IncludedAt(4))
	assert.Equal(t, []int{5}, edi.Connector.PackSizes)

	rules := cat.Rules()
	last := rules[len(rules)-1]
	assert.Equal(t, "O módulo OKR requer Equipa", last.Message)

	cv, ok := cat.Region("cabo verde")
	require.True(t, ok)
	assert.Equal(t, types.Currency("CVE"), cv.Currency)
	pricingtest.AssertDec(t, "1.15", cv.Factor)
	pricingtest.AssertDec(t, "110.265", cv.ExchangeRate)

	_, ok = cat.Region("AO")
	assert.True(t, ok, "built-in regions survive an overlay")
}

// TestParseDoesNotMutateBase verifies the base catalog is left untouched
func TestParseDoesNotMutateBase(t *testing.T) {
	base := catalog.Default()
	_, err := Parse([]byte(overlay), "overlay.hcl", base)
	require.NoError(t, err)

	crm, _ := base.Lookup("CRM")
	assert.Equal(t, types.TierID(3), crm.MinTier)
	_, ok := base.Region("CV")
	assert.False(t, ok)
}

// TestWriteRoundTrip verifies a written catalog parses back identically
func TestWriteRoundTrip(t *testing.T) {
	want := catalog.Default()

	var buf bytes.Buffer
	require.NoError(t, Write(want, &buf))
	assert.Contains(t, buf.String(), `replace_builtin = true`)

	got, err := Parse(buf.Bytes(), "export.hcl", catalog.NewCatalog())
	require.NoError(t, err)
	assert.Equal(t, want.Stats(), got.Stats())

	for _, def := range want.Modules() {
		g, ok := got.Lookup(def.Name)
		require.True(t, ok, def.Name)
		assert.Equal(t, def.MinTier, g.MinTier, def.Name)
		assert.Equal(t, def.Shape, g.Shape, def.Name)
		assert.Equal(t, def.WebOnly, g.WebOnly, def.Name)
		assert.ElementsMatch(t, def.Aliases, g.Aliases, def.Name)
	}

	bank, _ := got.Lookup(catalog.ModuleBankConnector)
	require.NotNil(t, bank.Connector)
	assert.Equal(t, 3, bank.Connector.IncludedAt(5))
	assert.Equal(t, "bancos", bank.Connector.UnitLabel(2))

	ao, ok := got.Region("Angola")
	require.True(t, ok)
	pricingtest.AssertDec(t, "1.25", ao.Factor)
	pricingtest.AssertDec(t, "1050", ao.ExchangeRate)
	assert.True(t, ao.DesktopOnly(&catalog.ModuleDefinition{Name: catalog.ModuleVencimento}))

	genai, ok := got.LegacyExtra("genai")
	require.True(t, ok)
	assert.NotEmpty(t, genai.Notice)
}

// TestParseErrors verifies invalid HCL is a catalog error
func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		errType errors.Type
		message string
	}{
		{"syntax", `module "CRM" {`, errors.TypeParsing, "invalid HCL"},
		{"unknown block", `plan "x" {}`, errors.TypeParsing, "invalid catalog"},
		{"missing required", `legacy_extra "sms" {}`, errors.TypeParsing, "min_tier"},
		{"bad billing", "module \"CRM\" {\n  billing = \"monthly\"\n}", errors.TypeCatalog, "unknown billing shape"},
		{"unknown connector", "connector \"Nope\" {\n  included = {}\n  pack_sizes = [5]\n}", errors.TypeCatalog, "unknown module"},
		{"bad included key", "connector \"Bank Connector\" {\n  included = { \"x\" = 1 }\n  pack_sizes = [5]\n}", errors.TypeCatalog, "is not a tier"},
		{"tier out of range", "module \"CRM\" {\n  min_tier = 9\n}", errors.TypeCatalog, "failed validation"},
		{"rule to nowhere", "rule \"CRM\" {\n  requires = \"Nada\"\n}", errors.TypeCatalog, "unknown module"},
		{"bad factor", "region \"XX\" {\n  currency = \"EUR\"\n  factor = true\n  exchange_rate = 1\n}", errors.TypeCatalog, "factor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl", nil)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, tt.errType), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.hcl")
	require.NoError(t, os.WriteFile(path, []byte(overlay), 0644))

	cat, err := Load(path, nil)
	require.NoError(t, err)
	_, ok := cat.Lookup("Assinaturas Digitais")
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "none.hcl"), nil)
	assert.True(t, errors.IsType(err, errors.TypeNotFound))
}

// TestLoadBundledCatalog verifies the shipped catalog file is valid
func TestLoadBundledCatalog(t *testing.T) {
	cat, err := Load(filepath.Join("..", "..", "data", "catalog.hcl"), nil)
	require.NoError(t, err)

	def, ok := cat.Lookup("assinatura digital")
	require.True(t, ok)
	assert.Equal(t, "Assinaturas Digitais", def.Name)

	_, ok = cat.Region("CV")
	assert.True(t, ok)
	assert.Equal(t, catalog.Default().Stats().Modules+1, cat.Stats().Modules)
}
