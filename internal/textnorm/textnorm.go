// Package textnorm provides text normalization for pattern matching.
//
// All keyword, FAQ, and service matching in the funnel runs on
// normalized text so that matching is accent- and case-insensitive.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes to NFD, drops combining marks, and recomposes.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize returns text lower-cased, diacritic-stripped, and with
// whitespace trimmed and collapsed. It is a pure function.
func Normalize(raw string) string {
	out, _, err := transform.String(stripAccents, raw)
	if err != nil {
		// Transform failures leave the input usable as-is.
		out = raw
	}
	out = strings.ToLower(out)
	return strings.Join(strings.Fields(out), " ")
}
