// Package api - HTTP handlers
// Handlers decode, validate and delegate to the calculator. They hold no
// pricing logic.
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"plan-advisor/core/determinism"
	"plan-advisor/core/quote"
	"plan-advisor/core/types"
	"plan-advisor/internal/errors"
	"plan-advisor/internal/validator"
)

// handleCalculate handles POST /v1/plans/calculate
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req types.Request
	if !s.decode(w, r, &req) {
		return
	}
	if !s.check(w, r, &req) {
		return
	}

	res := s.calc.Calculate(req)
	s.metrics.observe(res)
	s.writeJSON(w, &Response{
		RequestID: RequestID(r.Context()),
		InputHash: inputHash(req),
		Result:    res,
	}, http.StatusOK)
}

// handleQuote handles POST /v1/quotes
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !s.check(w, r, &req.Request) {
		return
	}
	if req.Proposal != nil && req.Proposal.IsNegative() {
		s.writeValidation(w, r, validator.ValidationErrors{
			{Field: "proposal", Message: "must be at least 0"},
		})
		return
	}

	res := s.calc.Calculate(req.Request)
	s.metrics.observe(res)
	q := quote.New(res)
	if req.Proposal != nil && req.Proposal.GreaterThan(decimal.Zero) {
		q.Simulate(*req.Proposal)
	}

	s.writeJSON(w, &Response{
		RequestID: RequestID(r.Context()),
		InputHash: inputHash(req.Request),
		Result:    res,
		Quote:     q,
	}, http.StatusOK)
}

// handleCatalog handles GET /v1/catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.calc.Catalog()
	s.writeJSON(w, &CatalogResponse{
		Modules:      cat.Modules(),
		LegacyExtras: cat.LegacyExtras(),
		Rules:        cat.Rules(),
		Regions:      cat.Regions(),
		Stats:        cat.Stats(),
	}, http.StatusOK)
}

// handleTiers handles GET /v1/tiers
func (s *Server) handleTiers(w http.ResponseWriter, r *http.Request) {
	rates := s.calc.Rates()
	s.writeJSON(w, &TiersResponse{
		RateTableID: string(rates.ID),
		ContentHash: rates.ContentHash.Hex(),
		Source:      rates.Source.String(),
		Tiers:       rates.Plans(),
	}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if !s.calc.Rates().Verify() {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	s.writeJSON(w, map[string]string{
		"status":     status,
		"rate_table": string(s.calc.Rates().ID),
	}, code)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "plan-advisor",
		"api_version": "v1",
	}, http.StatusOK)
}

// decode reads a JSON body, rejecting unknown fields and trailing data
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = stderrors.New("unexpected data after JSON body")
	}
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		s.writeError(w, r, CodeRequestTooLarge, "request body too large", http.StatusRequestEntityTooLarge)
		return false
	}
	s.writeError(w, r, CodeInvalidJSON, err.Error(), http.StatusBadRequest)
	return false
}

// check validates a request, writing a 400 on failure
func (s *Server) check(w http.ResponseWriter, r *http.Request, req *types.Request) bool {
	err := s.validate.Validate(req)
	if err == nil {
		return true
	}
	var fields validator.ValidationErrors
	if stderrors.As(err, &fields) {
		s.writeValidation(w, r, fields)
		return false
	}
	s.fail(w, r, errors.Internal("request validation failed", err))
	return false
}

func (s *Server) writeValidation(w http.ResponseWriter, r *http.Request, fields validator.ValidationErrors) {
	s.writeJSON(w, &ErrorResponse{
		RequestID: RequestID(r.Context()),
		Error: ErrorDetail{
			Code:    CodeValidation,
			Message: fields.Error(),
			Fields:  fields,
		},
	}, http.StatusBadRequest)
}

// fail maps a typed error to a status code
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch errors.TypeOf(err) {
	case errors.TypeInput:
		s.writeError(w, r, CodeValidation, err.Error(), http.StatusBadRequest)
	case errors.TypeNotFound:
		s.writeError(w, r, CodeNotFound, err.Error(), http.StatusNotFound)
	default:
		s.logger.Error("request failed",
			zap.String("request_id", RequestID(r.Context())),
			zap.Error(err),
		)
		s.writeError(w, r, CodeInternal, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	s.writeJSON(w, &ErrorResponse{
		RequestID: RequestID(r.Context()),
		Error:     ErrorDetail{Code: code, Message: message},
	}, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

// inputHash hashes the request's JSON form; map keys marshal sorted
func inputHash(req types.Request) string {
	data, _ := json.Marshal(req)
	return determinism.ComputeHash(data).Hex()
}
