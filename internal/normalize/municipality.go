package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents decomposes to NFD, drops combining marks, recomposes.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var titleCaser = cases.Title(language.BrazilianPortuguese)

// MunicipalitySlug is the canonical join key for municipality names:
// lowercase, accent-stripped, spaces replaced by underscores.
// "Santa Quitéria" -> "santa_quiteria".
func MunicipalitySlug(name string) string {
	s := strings.TrimSpace(name)
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	return strings.ReplaceAll(strings.ToLower(s), " ", "_")
}

// Fold lowercases and strips accents without touching spacing. Used for
// substring matching against free-text fields.
func Fold(s string) string {
	if out, _, err := transform.String(stripAccents, s); err == nil {
		s = out
	}
	return strings.ToLower(s)
}

// MunicipalityTitle keeps the display form of a municipality name,
// title-cased the way the source spreadsheets mix cases.
func MunicipalityTitle(name string) string {
	return titleCaser.String(strings.ToLower(strings.TrimSpace(name)))
}
