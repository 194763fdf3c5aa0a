package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"plan-advisor/core/catalog"
	"plan-advisor/core/engine"
	"plan-advisor/core/pricing/pricingtest"
	"plan-advisor/core/quote"
	"plan-advisor/internal/errors"
)

type calcBody struct {
	RequestID string `json:"request_id"`
	InputHash string `json:"input_hash"`
	Result    struct {
		Tier     int             `json:"tier"`
		TierName string          `json:"tier_name"`
		Total    decimal.Decimal `json:"total"`
		Warnings []string        `json:"warnings"`
	} `json:"result"`
	Quote *quote.Quote `json:"quote"`
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	calc := engine.NewCalculator(pricingtest.Rates(), catalog.Default())
	opts = append([]Option{WithLogger(zaptest.NewLogger(t)), WithVersion("1.2.3")}, opts...)
	return NewServer(calc, opts...)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(dst))
}

// TestCalculate verifies a plan calculation round trip over HTTP
func TestCalculate(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/plans/calculate",
		`{"current_plan":"Advanced","desktop_seats":5,"web_seats":3}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var body calcBody
	decodeBody(t, rec, &body)
	assert.Equal(t, 4, body.Result.Tier)
	assert.Equal(t, "Advanced", body.Result.TierName)
	pricingtest.AssertDec(t, "279", body.Result.Total)
	assert.Equal(t, rec.Header().Get(RequestIDHeader), body.RequestID)
	assert.Len(t, body.InputHash, 64)
	assert.Nil(t, body.Quote)
}

// TestCalculateInputHashIsStable verifies identical bodies yield the same input hash
func TestCalculateInputHashIsStable(t *testing.T) {
	s := newTestServer(t)
	a := `{"current_plan":"Enterprise","selections":{"CRM":2,"OKR":1}}`
	b := `{"selections":{"OKR":1,"CRM":2},"current_plan":"Enterprise"}`

	var first, second calcBody
	decodeBody(t, do(t, s, http.MethodPost, "/v1/plans/calculate", a), &first)
	decodeBody(t, do(t, s, http.MethodPost, "/v1/plans/calculate", b), &second)
	assert.Equal(t, first.InputHash, second.InputHash)
	assert.NotEqual(t, first.RequestID, second.RequestID)
}

// TestRequestIDPassthrough verifies a caller request ID is echoed back
func TestRequestIDPassthrough(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

// TestCalculateRejectsBadInput verifies malformed requests map to 400
func TestCalculateRejectsBadInput(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		code   string
		fields []string
	}{
		{"malformed", `{"current_plan":`, CodeInvalidJSON, nil},
		{"unknown field", `{"current_plan":"Advanced","seats":3}`, CodeInvalidJSON, nil},
		{"trailing data", `{"current_plan":"Advanced"} {}`, CodeInvalidJSON, nil},
		{"bad plan", `{"current_plan":"Gold"}`, CodeValidation, []string{"current_plan"}},
		{"missing plan", `{"desktop_seats":1}`, CodeValidation, []string{"current_plan"}},
		{"negative seats", `{"current_plan":"Advanced","desktop_seats":-1,"web_seats":-2}`, CodeValidation, []string{"desktop_seats", "web_seats"}},
		{"negative quantity", `{"current_plan":"Advanced","selections":{"CRM":-1}}`, CodeValidation, []string{"selections[CRM]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, newTestServer(t), http.MethodPost, "/v1/plans/calculate", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var body ErrorResponse
			decodeBody(t, rec, &body)
			assert.Equal(t, tt.code, body.Error.Code)
			var fields []string
			for _, f := range body.Error.Fields {
				fields = append(fields, f.Field)
			}
			assert.ElementsMatch(t, tt.fields, fields)
		})
	}
}

// TestBodyLimit verifies oversized bodies are refused
func TestBodyLimit(t *testing.T) {
	s := newTestServer(t, WithMaxBodyBytes(16))
	rec := do(t, s, http.MethodPost, "/v1/plans/calculate", `{"current_plan":"Advanced","desktop_seats":5}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// TestQuoteWithProposal verifies discount figures for a proposed amount
func TestQuoteWithProposal(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/quotes",
		`{"current_plan":"Advanced","desktop_seats":5,"web_seats":3,"proposal":"223.2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body calcBody
	decodeBody(t, rec, &body)
	require.NotNil(t, body.Quote)
	pricingtest.AssertDec(t, "279", body.Quote.Total)
	require.Len(t, body.Quote.Lines, 2)
	assert.Equal(t, "Plano Advanced", body.Quote.Lines[0].Product)

	require.NotNil(t, body.Quote.Proposal)
	pricingtest.AssertDec(t, "0.2", body.Quote.Proposal.Discount)
	pricingtest.AssertDec(t, "223.2", body.Quote.Proposal.Total)
}

// TestQuoteWithoutProposal verifies a quote without a proposal carries no discount
func TestQuoteWithoutProposal(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/quotes", `{"current_plan":"Corporate"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body calcBody
	decodeBody(t, rec, &body)
	require.NotNil(t, body.Quote)
	assert.Nil(t, body.Quote.Proposal)
}

// TestQuoteRejectsNegativeProposal verifies negative proposals are input errors
func TestQuoteRejectsNegativeProposal(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/quotes", `{"current_plan":"Corporate","proposal":-5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	decodeBody(t, rec, &body)
	require.Len(t, body.Error.Fields, 1)
	assert.Equal(t, "proposal", body.Error.Fields[0].Field)
}

// TestCatalogAndTiers verifies the catalog and tier listings
func TestCatalogAndTiers(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/catalog", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cat struct {
		Modules []struct {
			Name string `json:"name"`
		} `json:"modules"`
		Regions []struct {
			Code string `json:"code"`
		} `json:"regions"`
	}
	decodeBody(t, rec, &cat)
	assert.Len(t, cat.Modules, catalog.Default().Stats().Modules)
	require.Len(t, cat.Regions, 2)
	assert.Equal(t, "AO", cat.Regions[0].Code)

	rec = do(t, s, http.MethodGet, "/v1/tiers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var tiers struct {
		RateTableID string `json:"rate_table_id"`
		Tiers       []struct {
			Tier int    `json:"plano_id"`
			Name string `json:"nome"`
		} `json:"tiers"`
	}
	decodeBody(t, rec, &tiers)
	assert.Equal(t, string(pricingtest.Rates().ID), tiers.RateTableID)
	require.Len(t, tiers.Tiers, 6)
	assert.Equal(t, "Ultimate", tiers.Tiers[5].Name)
}

// TestHealthAndVersion verifies the liveness and version endpoints
func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)

	rec = do(t, s, http.MethodGet, "/version", "")
	var v map[string]string
	decodeBody(t, rec, &v)
	assert.Equal(t, "1.2.3", v["version"])
}

// TestMetrics verifies request counters are exported
func TestMetrics(t *testing.T) {
	s := newTestServer(t)
	do(t, s, http.MethodPost, "/v1/plans/calculate", `{"current_plan":"Advanced"}`)

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `plan_calculations_total{tier="4"} 1`)
	assert.Contains(t, body, `http_requests_total{method="POST",path="/v1/plans/calculate",status="200"} 1`)
}

// TestNotFound verifies unknown routes return the error envelope
func TestNotFound(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	decodeBody(t, rec, &body)
	assert.Equal(t, CodeNotFound, body.Error.Code)
}

// TestFailMapsErrorTypes verifies error types map to status codes
func TestFailMapsErrorTypes(t *testing.T) {
	s := newTestServer(t)
	tests := []struct {
		err    error
		status int
	}{
		{errors.Input("bad seats"), http.StatusBadRequest},
		{errors.NotFound("rate table", "x"), http.StatusNotFound},
		{errors.Storage("db down", nil), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		s.fail(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
		assert.NotContains(t, rec.Body.String(), "db down")
	}
}

// TestConcurrentRequests verifies the handler is safe under parallel load
func TestConcurrentRequests(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s)
	defer srv.Close()

	done := make(chan decimal.Decimal, 8)
	for i := 0; i < 8; i++ {
		go func() {
			resp, err := http.Post(srv.URL+"/v1/plans/calculate", "application/json",
				bytes.NewBufferString(`{"current_plan":"Enterprise","desktop_seats":5,"selections":{"CRM":12},"web_selections":{"CRM":4}}`))
			if err != nil {
				done <- decimal.Zero
				return
			}
			defer resp.Body.Close()
			var body calcBody
			_ = json.NewDecoder(resp.Body).Decode(&body)
			done <- body.Result.Total
		}()
	}
	for i := 0; i < 8; i++ {
		pricingtest.AssertDec(t, "889", <-done)
	}
}
