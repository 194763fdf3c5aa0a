// Package types - Calculation request
package types

// Request is the input contract of a plan calculation.
// Module names in Selections and WebSelections are matched against the
// catalog ignoring case and accents.
type Request struct {
	// CurrentPlan is the customer's legacy plan
	CurrentPlan LegacyPlan `json:"current_plan" yaml:"current_plan" validate:"required,oneof=Corporate Advanced Enterprise"`

	// ManagementSubtype refines a Corporate plan
	ManagementSubtype ManagementSubtype `json:"management_subtype,omitempty" yaml:"management_subtype,omitempty" validate:"omitempty,oneof='Gestão Clientes' 'Gestão Terceiros' 'Gestão Completo'"`

	// DesktopSeats is the number of full desktop users
	DesktopSeats int `json:"desktop_seats" yaml:"desktop_seats" validate:"gte=0"`

	// WebSeats is the number of web users
	WebSeats int `json:"web_seats" yaml:"web_seats" validate:"gte=0"`

	// Selections maps module name to requested quantity
	Selections map[string]int `json:"selections,omitempty" yaml:"selections,omitempty" validate:"omitempty,dive,keys,required,endkeys,gte=0"`

	// WebSelections maps web-aware module name to its web seat sub-count
	WebSelections map[string]int `json:"web_selections,omitempty" yaml:"web_selections,omitempty" validate:"omitempty,dive,keys,required,endkeys,gte=0"`

	// POSCounts lists POS terminals per license group
	POSCounts []int `json:"pos_counts,omitempty" yaml:"pos_counts,omitempty" validate:"omitempty,dive,gte=0"`

	// LegacyExtras lists legacy features the customer already owns
	LegacyExtras []string `json:"legacy_extras,omitempty" yaml:"legacy_extras,omitempty"`

	// LegacyExtraFloors overrides the catalog's legacy feature floors
	LegacyExtraFloors map[string]TierID `json:"legacy_extra_floors,omitempty" yaml:"legacy_extra_floors,omitempty" validate:"omitempty,dive,gte=1,lte=6"`

	// Region selects a regional price variant (empty = base pricing)
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}
