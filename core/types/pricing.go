// Package types - Rate table rows
package types

import "github.com/shopspring/decimal"

// PlanRate is one row of the plan rate table
type PlanRate struct {
	Tier          TierID          `json:"plano_id" yaml:"plano_id"`
	Name          string          `json:"nome" yaml:"nome"`
	BasePrice     decimal.Decimal `json:"preco_base" yaml:"preco_base"`
	IncludedSeats int             `json:"utilizadores_incluidos" yaml:"utilizadores_incluidos"`

	// SeatLimit is nil when the tier has no seat ceiling
	SeatLimit *int `json:"limite_utilizadores,omitempty" yaml:"limite_utilizadores,omitempty"`

	// BandPrices are the extra seat prices up to 10, up to 50 and above 50
	BandPrices [SeatBandCount]decimal.Decimal `json:"band_prices" yaml:"band_prices"`
}

// ModuleRate is one row of the module rate table
type ModuleRate struct {
	Product   string          `json:"produto" yaml:"produto"`
	Tier      TierID          `json:"plano_id" yaml:"plano_id"`
	BasePrice decimal.Decimal `json:"preco_base" yaml:"preco_base"`
	UnitPrice decimal.Decimal `json:"preco_unidade" yaml:"preco_unidade"`
}

// ModuleRateKey identifies a module rate row
type ModuleRateKey struct {
	Product string
	Tier    TierID
}

// String returns a deterministic string representation
func (k ModuleRateKey) String() string {
	return k.Product + "/" + k.Tier.String()
}

// Synthetic products priced in the module table
const (
	ProductPOSFirst = "POS (1º)"
	ProductPOSMid   = "POS (2 a 10)"
	ProductPOSHigh  = "POS (>10)"
)
