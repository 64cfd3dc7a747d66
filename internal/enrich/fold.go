package enrich

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldChain = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName lowercases a company name and strips diacritics so extracted
// values can be compared against registry spellings ("Škoda" vs "skoda").
func foldName(s string) string {
	folded, _, err := transform.String(foldChain, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// namesMatch compares two company names after folding, tolerating a legal
// form suffix on either side ("Acme s.r.o." matches "Acme").
func namesMatch(a, b string) bool {
	fa, fb := foldName(a), foldName(b)
	if fa == "" || fb == "" {
		return false
	}
	if fa == fb {
		return true
	}
	return strings.HasPrefix(fa, fb) || strings.HasPrefix(fb, fa)
}
