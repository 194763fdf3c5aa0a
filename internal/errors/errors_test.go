// Package errors - Typed error tests
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

// TestErrorMessage verifies type, sorted context and cause are rendered
func TestErrorMessage(t *testing.T) {
	err := Rates("failed to read plan file", fmt.Errorf("no such file")).
		WithContext("path", "precos_planos.csv").
		WithContext("line", 3)

	want := "[RATES_ERROR] failed to read plan file (line=3, path=precos_planos.csv): no such file"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	if got := NotFound("module", "Frota").Error(); got != "[NOT_FOUND] module not found: Frota" {
		t.Errorf("NotFound message = %q", got)
	}
}

// TestIsTypeFollowsWrapping verifies type checks see through fmt wrapping
func TestIsTypeFollowsWrapping(t *testing.T) {
	outer := fmt.Errorf("loading: %w", Catalog("catalog failed validation", nil))

	if !IsType(outer, TypeCatalog) {
		t.Error("wrapped catalog error not recognised")
	}
	if IsType(outer, TypeRates) {
		t.Error("catalog error reported as a rates error")
	}
	if got := TypeOf(outer); got != TypeCatalog {
		t.Errorf("TypeOf = %s, want %s", got, TypeCatalog)
	}
	if got := TypeOf(fmt.Errorf("plain")); got != TypeInternal {
		t.Errorf("plain errors should map to %s, got %s", TypeInternal, got)
	}
	if IsType(nil, TypeInput) {
		t.Error("nil error matched a type")
	}
}

// TestUnwrap verifies the cause stays reachable
func TestUnwrap(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Storage("import failed", cause)

	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable through errors.Is")
	}
	if !err.Is(TypeStorage) {
		t.Errorf("type = %s, want %s", err.Type, TypeStorage)
	}
}
