// Package catalog - Built-in module catalog
// This is the default catalog used when no catalog file is configured.
package catalog

import (
	"github.com/shopspring/decimal"

	"plan-advisor/core/types"
)

// Areas of the built-in catalog
const (
	AreaCore      = "Core e Transversais"
	AreaFinanceHR = "Área Financeira e Recursos Humanos"
	AreaOther     = "Outros"
	AreaProject   = "Projeto"
	AreaConnected = "Connected Services"
)

// Modules referenced by code
const (
	ModulePOS           = "Ponto de Venda (POS/Restauração)"
	ModuleBankConnector = "Bank Connector"
	ModuleColaborador   = "Colaborador"
	ModuleVencimento    = "Vencimento"
	ModuleGenAI         = "GenAI"
	ModuleDenuncias     = "Denúncias"
)

// Default returns a new catalog populated with the built-in modules
func Default() *Catalog {
	c := NewCatalog()
	RegisterDefaults(c)
	return c
}

// RegisterDefaults populates the catalog with the built-in modules, legacy
// features, dependency rules and regional variants
func RegisterDefaults(c *Catalog) {
	flat, seat, web, pos := types.ShapeFlat, types.ShapePerSeat, types.ShapePerSeatWebAware, types.ShapePOSBanded

	// Core
	c.Put(ModuleDefinition{Name: "Inventário Avançado", Area: AreaCore, MinTier: 3, Shape: flat})
	c.Put(ModuleDefinition{Name: "Frota", Area: AreaCore, MinTier: 3, Shape: flat})
	c.Put(ModuleDefinition{Name: "Logística", Area: AreaCore, MinTier: 5, Shape: flat})
	c.Put(ModuleDefinition{Name: ModuleDenuncias, Area: AreaCore, MinTier: 5, Shape: flat})
	c.Put(ModuleDefinition{Name: "Documentos", Area: AreaCore, MinTier: 3, Shape: flat})
	c.Put(ModuleDefinition{Name: ModuleGenAI, Area: AreaCore, MinTier: 2, Shape: flat})
	c.Put(ModuleDefinition{Name: "CRM", Area: AreaCore, MinTier: 3, Shape: web})
	c.Put(ModuleDefinition{Name: "BPM", Area: AreaCore, MinTier: 5, Shape: flat})
	c.Put(ModuleDefinition{Name: ModulePOS, Area: AreaCore, MinTier: 1, Shape: pos,
		Aliases: []string{"POS", "Restauração", "Ponto de Venda", "Pontos de Venda"}})

	// Finance and HR
	c.Put(ModuleDefinition{Name: "Contabilidade", Area: AreaFinanceHR, MinTier: 3, Shape: web})
	c.Put(ModuleDefinition{Name: "Ativos", Area: AreaFinanceHR, MinTier: 3, Shape: web, Aliases: []string{"Imobilizado"}})
	c.Put(ModuleDefinition{Name: ModuleVencimento, Area: AreaFinanceHR, MinTier: 3, Shape: web})
	c.Put(ModuleDefinition{Name: ModuleColaborador, Area: AreaFinanceHR, MinTier: 5, Shape: web, WebOnly: true})
	c.Put(ModuleDefinition{Name: "Careers c/ Recrutamento", Area: AreaFinanceHR, MinTier: 5, Shape: web})
	c.Put(ModuleDefinition{Name: "OKR", Area: AreaFinanceHR, MinTier: 4, Shape: seat})
	c.Put(ModuleDefinition{Name: "Equipa", Area: AreaFinanceHR, MinTier: 3, Shape: web})
	c.Put(ModuleDefinition{Name: "Formação", Area: AreaFinanceHR, MinTier: 3, Shape: flat})
	c.Put(ModuleDefinition{Name: "Imóveis", Area: AreaFinanceHR, MinTier: 3, Shape: flat})

	// Other
	c.Put(ModuleDefinition{Name: "Suporte", Area: AreaOther, MinTier: 2, Shape: web})
	c.Put(ModuleDefinition{Name: "Ecommerce B2B", Area: AreaOther, MinTier: 3, Shape: flat})

	// Project
	c.Put(ModuleDefinition{Name: "Orçamentação", Area: AreaProject, MinTier: 3, Shape: seat})
	c.Put(ModuleDefinition{Name: "Orçamentação + Medição", Area: AreaProject, MinTier: 3, Shape: seat})
	c.Put(ModuleDefinition{Name: "Orçamentação + Medição + Controlo", Area: AreaProject, MinTier: 3, Shape: seat})
	c.Put(ModuleDefinition{Name: "Full Project - Controlo + Medição + Orçamentação + Planeamento + Revisão de Preços", Area: AreaProject, MinTier: 3, Shape: seat})

	// Connected services
	c.Put(ModuleDefinition{Name: ModuleBankConnector, Area: AreaConnected, MinTier: 4, Shape: flat,
		Connector: &ConnectorSpec{
			Included:   map[types.TierID]int{4: 1, 5: 3, 6: 5},
			PackSizes:  []int{5, 10},
			Unit:       "banco",
			UnitPlural: "bancos",
		}})
	c.Put(ModuleDefinition{Name: "EDI Broker", Area: AreaConnected, MinTier: 1, Shape: flat})

	// Legacy features carried over from the old product
	c.RegisterLegacyExtra(LegacyExtra{Name: "intrastat", MinTier: 4})
	c.RegisterLegacyExtra(LegacyExtra{Name: "rgpd", MinTier: 3})
	c.RegisterLegacyExtra(LegacyExtra{Name: "documentos", MinTier: 3})
	c.RegisterLegacyExtra(LegacyExtra{Name: "genai", MinTier: 2, Notice: "O cliente tinha GenAI e vai evoluir para Cegid Pulse."})
	c.RegisterLegacyExtra(LegacyExtra{Name: "sms", MinTier: 3})
	c.RegisterLegacyExtra(LegacyExtra{Name: "multilingua", MinTier: 2})

	c.AddRule(Rule{Module: ModuleColaborador, Requires: ModuleVencimento, Message: "O módulo Colaborador requer Vencimento"})

	c.RegisterRegion(Region{
		Code:               "AO",
		Name:               "Angola",
		Currency:           types.CurrencyAOA,
		Factor:             decimal.RequireFromString("1.25"),
		ExchangeRate:       decimal.NewFromInt(1050),
		ExcludedModules:    []string{ModuleDenuncias},
		ExcludedAreas:      []string{AreaConnected},
		DesktopOnlyModules: []string{ModuleVencimento},
	})
	c.RegisterRegion(Region{
		Code:            "MZ",
		Name:            "Moçambique",
		Currency:        types.CurrencyMZN,
		Factor:          decimal.RequireFromString("1.20"),
		ExchangeRate:    decimal.NewFromInt(75),
		ExcludedModules: []string{ModuleDenuncias},
		ExcludedAreas:   []string{AreaConnected},
	})
}
