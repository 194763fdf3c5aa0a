// Package api - HTTP contract for plan calculations
// Requests carry a calculation input; responses wrap the engine result
// with the request id and a hash of the normalized input.
package api

import (
	"github.com/shopspring/decimal"

	"plan-advisor/core/catalog"
	"plan-advisor/core/quote"
	"plan-advisor/core/types"
	"plan-advisor/internal/validator"
)

// QuoteRequest is the input to POST /v1/quotes
type QuoteRequest struct {
	types.Request

	// Proposal is the value offered to the customer; omitted or zero skips the simulation
	Proposal *decimal.Decimal `json:"proposal,omitempty"`
}

// Response is returned by the calculation endpoints
type Response struct {
	RequestID string `json:"request_id"`

	// InputHash identifies the normalized request
	InputHash string `json:"input_hash"`

	Result *types.PlanResult `json:"result"`
	Quote  *quote.Quote      `json:"quote,omitempty"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	RequestID string      `json:"request_id,omitempty"`
	Error     ErrorDetail `json:"error"`
}

// ErrorDetail describes a failure
type ErrorDetail struct {
	Code    string                     `json:"code"`
	Message string                     `json:"message"`
	Fields  []validator.ValidationError `json:"fields,omitempty"`
}

// Error codes
const (
	CodeInvalidJSON     = "INVALID_JSON"
	CodeValidation      = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeRequestTooLarge = "REQUEST_TOO_LARGE"
	CodeInternal        = "INTERNAL_ERROR"
)

// CatalogResponse is returned by GET /v1/catalog
type CatalogResponse struct {
	Modules      []*catalog.ModuleDefinition `json:"modules"`
	LegacyExtras []*catalog.LegacyExtra      `json:"legacy_extras"`
	Rules        []catalog.Rule              `json:"rules"`
	Regions      []*catalog.Region           `json:"regions"`
	Stats        catalog.Stats               `json:"stats"`
}

// TiersResponse is returned by GET /v1/tiers
type TiersResponse struct {
	RateTableID string           `json:"rate_table_id"`
	ContentHash string           `json:"content_hash"`
	Source      string           `json:"source"`
	Tiers       []types.PlanRate `json:"tiers"`
}
