// Package types - Calculation result types
package types

import "github.com/shopspring/decimal"

// Currency represents a currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyAOA Currency = "AOA"
	CurrencyMZN Currency = "MZN"
)

// String returns the string representation
func (c Currency) String() string {
	return string(c)
}

// SeatBandCount is the number of seat overage bands
const SeatBandCount = 3

// SeatCharge is the seat overage portion of a plan price
type SeatCharge struct {
	// Included is the tier's included seat allowance
	Included int `json:"included"`

	// Extras is the number of seats beyond the allowance
	Extras int `json:"extras"`

	// Bands holds how many extras fall in each band
	Bands [SeatBandCount]int `json:"bands"`

	// BandPrices holds the unit price of each band
	BandPrices [SeatBandCount]decimal.Decimal `json:"band_prices"`

	// Cost is the total overage cost
	Cost decimal.Decimal `json:"cost"`
}

// POSBreakdown details the pricing of a POS_BANDED module
type POSBreakdown struct {
	// Groups is the number of license groups charged a first unit
	Groups int `json:"groups"`

	// FirstUnitPrice is the price of each group's first terminal
	FirstUnitPrice decimal.Decimal `json:"first_unit_price"`

	// MidQuantity is the number of terminals in the 2-10 band
	MidQuantity int `json:"mid_quantity"`

	// MidPrice is the unit price of the 2-10 band
	MidPrice decimal.Decimal `json:"mid_price"`

	// HighQuantity is the number of terminals above the 2-10 band
	HighQuantity int `json:"high_quantity"`

	// HighPrice is the unit price above the 2-10 band
	HighPrice decimal.Decimal `json:"high_price"`
}

// ModuleCharge is the priced detail of one selected module
type ModuleCharge struct {
	Module   string       `json:"module"`
	Area     string       `json:"area,omitempty"`
	Shape    BillingShape `json:"shape"`
	Quantity int          `json:"quantity"`

	// DesktopQuantity and WebQuantity are the pool sizes for web-aware modules
	DesktopQuantity int `json:"desktop_quantity,omitempty"`
	WebQuantity     int `json:"web_quantity,omitempty"`

	// DesktopExtraQuantity and WebExtraQuantity are the billed seats after the free first seat
	DesktopExtraQuantity int `json:"desktop_extra_quantity,omitempty"`
	WebExtraQuantity     int `json:"web_extra_quantity,omitempty"`

	UnitPrice    decimal.Decimal `json:"unit_price"`
	Base         decimal.Decimal `json:"base"`
	DesktopExtra decimal.Decimal `json:"desktop_extra"`
	WebExtra     decimal.Decimal `json:"web_extra"`

	// Priced is false when no rate row exists for the module at the tier
	Priced bool `json:"priced"`

	POS *POSBreakdown `json:"pos,omitempty"`
}

// Total returns base plus both extras
func (m ModuleCharge) Total() decimal.Decimal {
	return m.Base.Add(m.DesktopExtra).Add(m.WebExtra)
}

// PackCount is a number of connector packs of one size
type PackCount struct {
	Product   string          `json:"product"`
	Size      int             `json:"size"`
	Count     int             `json:"count"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Cost      decimal.Decimal `json:"cost"`
}

// ConnectorCharge is the add-on pack cost of a connector module
type ConnectorCharge struct {
	Module    string          `json:"module"`
	Requested int             `json:"requested"`
	Included  int             `json:"included"`
	Extra     int             `json:"extra"`
	Covered   int             `json:"covered"`
	Packs     []PackCount     `json:"packs,omitempty"`
	Cost      decimal.Decimal `json:"cost"`
}

// SignalSource names where a tier requirement came from
type SignalSource string

const (
	SourceDefault     SignalSource = "default"
	SourceLegacyPlan  SignalSource = "legacy_plan"
	SourceSeatLimit   SignalSource = "seat_limit"
	SourceModule      SignalSource = "module"
	SourcePOS         SignalSource = "pos"
	SourceLegacyExtra SignalSource = "legacy_extra"
)

// Signal is a lower bound on the tier with its provenance
type Signal struct {
	Source  SignalSource `json:"source"`
	Subject string       `json:"subject"`
	Tier    TierID       `json:"tier"`
}

// RegionalTotal is the plan total converted to a regional currency
type RegionalTotal struct {
	Region       string          `json:"region"`
	Currency     Currency        `json:"currency"`
	Factor       decimal.Decimal `json:"factor"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	Total        decimal.Decimal `json:"total"`
}

// PlanResult is the itemised output of a plan calculation
type PlanResult struct {
	Tier      TierID          `json:"tier"`
	TierName  string          `json:"tier_name"`
	BasePrice decimal.Decimal `json:"base_price"`

	Seats      SeatCharge        `json:"seats"`
	Modules    []ModuleCharge    `json:"modules"`
	Connectors []ConnectorCharge `json:"connectors,omitempty"`

	ModulesCost    decimal.Decimal `json:"modules_cost"`
	ConnectorsCost decimal.Decimal `json:"connectors_cost"`
	Total          decimal.Decimal `json:"total"`

	Warnings []string `json:"warnings"`
	Notices  []string `json:"notices,omitempty"`

	Signals []Signal `json:"signals"`
	Binding []Signal `json:"binding"`

	RateTableID string         `json:"rate_table_id,omitempty"`
	Regional    *RegionalTotal `json:"regional,omitempty"`
}

// Module returns the charge for a module by its catalog name
func (r *PlanResult) Module(name string) (ModuleCharge, bool) {
	for _, m := range r.Modules {
		if m.Module == name {
			return m, true
		}
	}
	return ModuleCharge{}, false
}
