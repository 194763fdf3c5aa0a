// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions.
package types

import (
	"fmt"
	"strings"
)

// TierID identifies a subscription tier (1 = lowest, 6 = highest)
type TierID int

const (
	// MinTier is the lowest tier and the default resolution
	MinTier TierID = 1

	// MaxTier is the highest tier
	MaxTier TierID = 6
)

// Valid reports whether the tier is within the known range
func (t TierID) Valid() bool {
	return t >= MinTier && t <= MaxTier
}

// String returns the numeric form of the tier
func (t TierID) String() string {
	return fmt.Sprintf("%d", int(t))
}

// AllTiers returns every tier in ascending order
func AllTiers() []TierID {
	tiers := make([]TierID, 0, int(MaxTier))
	for t := MinTier; t <= MaxTier; t++ {
		tiers = append(tiers, t)
	}
	return tiers
}

// LegacyPlan is the plan the customer holds on the legacy product
type LegacyPlan string

const (
	PlanCorporate  LegacyPlan = "Corporate"
	PlanAdvanced   LegacyPlan = "Advanced"
	PlanEnterprise LegacyPlan = "Enterprise"
)

// IsValid checks if the plan is a known legacy plan
func (p LegacyPlan) IsValid() bool {
	switch p {
	case PlanCorporate, PlanAdvanced, PlanEnterprise:
		return true
	default:
		return false
	}
}

// ManagementSubtype refines a Corporate legacy plan
type ManagementSubtype string

const (
	SubtypeClientes  ManagementSubtype = "Gestão Clientes"
	SubtypeTerceiros ManagementSubtype = "Gestão Terceiros"
	SubtypeCompleto  ManagementSubtype = "Gestão Completo"
)

// IsValid checks if the sub-type is known. The empty sub-type is valid.
func (s ManagementSubtype) IsValid() bool {
	switch s {
	case "", SubtypeClientes, SubtypeTerceiros, SubtypeCompleto:
		return true
	default:
		return false
	}
}

// BillingShape is the closed set of ways a module is priced
type BillingShape int

const (
	// ShapeFlat charges the base price once when selected
	ShapeFlat BillingShape = iota
	// ShapePerSeat charges base plus unit price for every seat after the first
	ShapePerSeat
	// ShapePerSeatWebAware splits seats into desktop and web pools, each with a free first seat
	ShapePerSeatWebAware
	// ShapePOSBanded prices terminals per license group with volume bands
	ShapePOSBanded
)

// String returns the canonical name of the shape
func (s BillingShape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapePerSeat:
		return "per_seat"
	case ShapePerSeatWebAware:
		return "per_seat_web_aware"
	case ShapePOSBanded:
		return "pos_banded"
	default:
		return "unknown"
	}
}

// WebAware reports whether the shape keeps a separate web seat pool
func (s BillingShape) WebAware() bool {
	return s == ShapePerSeatWebAware
}

// MarshalText implements encoding.TextMarshaler
func (s BillingShape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *BillingShape) UnmarshalText(text []byte) error {
	shape, err := ParseBillingShape(string(text))
	if err != nil {
		return err
	}
	*s = shape
	return nil
}

// ParseBillingShape parses a shape name
func ParseBillingShape(name string) (BillingShape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "flat":
		return ShapeFlat, nil
	case "per_seat":
		return ShapePerSeat, nil
	case "per_seat_web_aware":
		return ShapePerSeatWebAware, nil
	case "pos_banded":
		return ShapePOSBanded, nil
	default:
		return ShapeFlat, fmt.Errorf("unknown billing shape %q", name)
	}
}
