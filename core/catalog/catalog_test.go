// Package catalog - Module catalog tests
package catalog

import (
	"slices"
	"testing"

	"plan-advisor/core/types"
)

func panics(f func()) (did bool) {
	defer func() {
		if recover() != nil {
			did = true
		}
	}()
	f()
	return false
}

func mustLookup(t *testing.T, c *Catalog, name string) *ModuleDefinition {
	t.Helper()
	def, ok := c.Lookup(name)
	if !ok {
		t.Fatalf("module %s not found", name)
	}
	return def
}

// TestDefaultCatalogIsValid ensures the built-in catalog passes all rules
func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	if errs := c.Validate(DefaultValidationRules()); len(errs) != 0 {
		t.Fatalf("default catalog has errors: %v", errs)
	}
	if panics(c.MustValidate) {
		t.Error("MustValidate panicked on the default catalog")
	}
}

// TestLookupIgnoresCaseAndAccents verifies name normalization
func TestLookupIgnoresCaseAndAccents(t *testing.T) {
	c := Default()

	tests := []struct {
		query string
		want  string
	}{
		{"CRM", "CRM"},
		{"crm", "CRM"},
		{"logistica", "Logística"},
		{"  Orçamentação   +  Medição ", "Orçamentação + Medição"},
		{"DENUNCIAS", ModuleDenuncias},
		{"Imobilizado", "Ativos"},
		{"pos", ModulePOS},
		{"restauracao", ModulePOS},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if def := mustLookup(t, c, tt.query); def.Name != tt.want {
				t.Errorf("Lookup(%q) = %s, want %s", tt.query, def.Name, tt.want)
			}
		})
	}

	if _, ok := c.Lookup("Contabilidade Analítica Quântica"); ok {
		t.Error("unknown module resolved")
	}
}

// TestNormalize covers the lookup key derivation
func TestNormalize(t *testing.T) {
	tests := map[string]string{
		"Gestão  Completo": "gestao completo",
		"FORMAÇÃO":         "formacao",
		"   ":              "",
	}
	for in, want := range tests {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

// TestBuiltinShapes checks the billing shape of representative modules
func TestBuiltinShapes(t *testing.T) {
	c := Default()

	shapes := []struct {
		module string
		want   types.BillingShape
	}{
		{"CRM", types.ShapePerSeatWebAware},
		{"Ativos", types.ShapePerSeatWebAware},
		{"OKR", types.ShapePerSeat},
		{"Frota", types.ShapeFlat},
		{ModulePOS, types.ShapePOSBanded},
	}
	for _, s := range shapes {
		if got := mustLookup(t, c, s.module).Shape; got != s.want {
			t.Errorf("%s shape = %s, want %s", s.module, got, s.want)
		}
	}

	if !mustLookup(t, c, ModuleColaborador).WebOnly {
		t.Errorf("%s must be web-only", ModuleColaborador)
	}

	bank := mustLookup(t, c, ModuleBankConnector)
	if bank.Connector == nil {
		t.Fatal("bank connector has no pack settings")
	}
	for tier, want := range map[types.TierID]int{3: 0, 4: 1, 5: 3, 6: 5} {
		if got := bank.Connector.IncludedAt(tier); got != want {
			t.Errorf("IncludedAt(%d) = %d, want %d", tier, got, want)
		}
	}
}

// TestRegisterRejectsDuplicates verifies names and aliases stay unique
func TestRegisterRejectsDuplicates(t *testing.T) {
	c := NewCatalog()
	if err := c.Register(ModuleDefinition{Name: "Ativos", Aliases: []string{"Imobilizado"}}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	dups := []ModuleDefinition{
		{Name: "ativos"},
		{Name: "Imobilizado"},
		{Name: "Outro", Aliases: []string{"imobilizado"}},
		{Name: " "},
	}
	for _, def := range dups {
		if err := c.Register(def); err == nil {
			t.Errorf("Register(%q, aliases %v) accepted", def.Name, def.Aliases)
		}
	}
}

// TestPutReplacesModule verifies replacement keeps order and refreshes aliases
func TestPutReplacesModule(t *testing.T) {
	c := NewCatalog()
	c.Put(ModuleDefinition{Name: "A", Aliases: []string{"alpha"}})
	c.Put(ModuleDefinition{Name: "B"})
	c.Put(ModuleDefinition{Name: "a", MinTier: 4, Aliases: []string{"first"}})

	mods := c.Modules()
	if len(mods) != 2 {
		t.Fatalf("modules = %d, want 2", len(mods))
	}
	if mods[0].MinTier != 4 {
		t.Errorf("replaced module min tier = %d, want 4", mods[0].MinTier)
	}

	if _, ok := c.Lookup("alpha"); ok {
		t.Error("stale alias still resolves")
	}
	if _, ok := c.Lookup("first"); !ok {
		t.Error("new alias does not resolve")
	}
}

// TestValidationCatchesBadEntries verifies each rule fires
func TestValidationCatchesBadEntries(t *testing.T) {
	c := NewCatalog()
	c.Put(ModuleDefinition{Name: "TooHigh", MinTier: 9})
	c.Put(ModuleDefinition{Name: "WebOnlyFlat", WebOnly: true, Shape: types.ShapeFlat})
	c.Put(ModuleDefinition{Name: "NoPacks", Connector: &ConnectorSpec{}})
	c.Put(ModuleDefinition{Name: "DupPacks", Connector: &ConnectorSpec{PackSizes: []int{5, 5}}})
	c.AddRule(Rule{Module: "TooHigh", Requires: "Ghost"})
	c.RegisterLegacyExtra(LegacyExtra{Name: "x", MinTier: 0})

	if errs := c.Validate(DefaultValidationRules()); len(errs) != 7 {
		t.Errorf("validation errors = %d, want 7: %v", len(errs), errs)
	}
	if !panics(c.MustValidate) {
		t.Error("MustValidate did not panic on an invalid catalog")
	}
}

// TestAreasAndStats verifies grouping helpers
func TestAreasAndStats(t *testing.T) {
	c := Default()

	wantAreas := []string{AreaCore, AreaFinanceHR, AreaOther, AreaProject, AreaConnected}
	if got := c.Areas(); !slices.Equal(got, wantAreas) {
		t.Errorf("areas = %v, want %v", got, wantAreas)
	}
	if n := len(c.ByArea(AreaConnected)); n != 2 {
		t.Errorf("connected modules = %d, want 2", n)
	}

	stats := c.Stats()
	checks := []struct {
		label     string
		got, want int
	}{
		{"modules", stats.Modules, len(c.Modules())},
		{"connectors", stats.Connectors, 1},
		{"POS banded", stats.ByShape[types.ShapePOSBanded], 1},
		{"legacy extras", stats.LegacyExtras, 6},
		{"regions", stats.Regions, 2},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("stats %s = %d, want %d", ch.label, ch.got, ch.want)
		}
	}
}

// TestRegions verifies regional exclusions
func TestRegions(t *testing.T) {
	c := Default()

	ao, ok := c.Region("angola")
	if !ok {
		t.Fatal("angola not found")
	}
	if ao.Code != "AO" {
		t.Errorf("code = %s, want AO", ao.Code)
	}
	mz, ok := c.Region("mz")
	if !ok {
		t.Fatal("mz not found")
	}

	bank := mustLookup(t, c, ModuleBankConnector)
	den := mustLookup(t, c, ModuleDenuncias)
	crm := mustLookup(t, c, "CRM")
	venc := mustLookup(t, c, ModuleVencimento)

	if !ao.Excludes(bank) || !mz.Excludes(den) {
		t.Error("regional exclusions not applied")
	}
	if ao.Excludes(crm) {
		t.Error("CRM excluded in Angola")
	}
	if !ao.DesktopOnly(venc) || mz.DesktopOnly(venc) {
		t.Error("Vencimento should be desktop-only in Angola alone")
	}

	var none *Region
	if none.Excludes(crm) {
		t.Error("nil region excludes modules")
	}
}

// TestCloneIsIndependent verifies clones do not share state
func TestCloneIsIndependent(t *testing.T) {
	c := Default()
	clone := c.Clone()
	clone.Put(ModuleDefinition{Name: "Extra"})
	clone.RegisterLegacyExtra(LegacyExtra{Name: "novo", MinTier: 5})

	if _, ok := c.Lookup("Extra"); ok {
		t.Error("module added to the clone leaked into the original")
	}
	if _, ok := c.LegacyExtra("novo"); ok {
		t.Error("legacy extra added to the clone leaked into the original")
	}
	if len(clone.Modules()) != len(c.Modules())+1 {
		t.Errorf("clone modules = %d, want %d", len(clone.Modules()), len(c.Modules())+1)
	}
}
