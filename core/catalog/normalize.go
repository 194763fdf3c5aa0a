// Package catalog - Name normalization
package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize reduces a module or feature name to its lookup key.
// Accents and case are dropped and inner whitespace is collapsed, so
// "Gestão", "gestao" and " GESTAO " share a key.
func Normalize(name string) string {
	// Transformers carry state; build a fresh chain per call.
	t := transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	folded := cases.Fold().String(stripped)
	return strings.Join(strings.Fields(folded), " ")
}
