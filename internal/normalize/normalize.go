// Package normalize turns raw heterogeneous text from cadastral extracts
// into typed values. Every function tolerates garbage: unparsable input
// yields nil and a warning, never a panic.
package normalize

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
)

var nullTokens = map[string]struct{}{
	"":     {},
	"null": {},
	"none": {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
}

// IsNullish reports whether the value represents an absent field. The source
// extracts use several literal null markers interchangeably.
func IsNullish(v string) bool {
	_, ok := nullTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// numericClean strips whitespace and resolves the locale separator
// convention: with both "," and "." present, "." is a thousands separator
// and "," the decimal mark; with only ",", it is the decimal mark.
func numericClean(v string) string {
	s := strings.ReplaceAll(strings.TrimSpace(v), " ", "")
	if strings.Contains(s, ",") && strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	} else if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

// Float parses a locale-tolerant decimal. Returns nil for null-ish or
// unparsable input.
func Float(v string) *float64 {
	if IsNullish(v) {
		return nil
	}
	f, err := strconv.ParseFloat(numericClean(v), 64)
	if err != nil {
		slog.Warn("invalid float value", "value", v)
		return nil
	}
	return &f
}

// Int parses an integer, accepting decimal renditions like "10,0" by
// truncating through float conversion.
func Int(v string) *int64 {
	if IsNullish(v) {
		return nil
	}
	f, err := strconv.ParseFloat(numericClean(v), 64)
	if err != nil {
		slog.Warn("invalid integer value", "value", v)
		return nil
	}
	n := int64(f)
	return &n
}

// timestampLayouts are tried in order; first match wins.
var timestampLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"02-01-2006 15:04:05",
}

// Timestamp parses the date/datetime formats seen across the source
// extracts. Fractional seconds beyond microseconds are truncated before
// matching, since the registry emits nanosecond-padded stamps.
func Timestamp(v string) *time.Time {
	if IsNullish(v) {
		return nil
	}
	s := strings.TrimSpace(v)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac := s[i+1:]
		if len(frac) > 6 {
			frac = frac[:6]
		}
		layout := "2006-01-02 15:04:05." + strings.Repeat("0", len(frac))
		if t, err := time.Parse(layout, s[:i+1]+frac); err == nil {
			return &t
		}
		s = s[:i]
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	slog.Warn("invalid timestamp value", "value", v)
	return nil
}

var trueTokens = map[string]struct{}{
	"t": {}, "true": {}, "1": {}, "y": {}, "yes": {}, "s": {}, "sim": {},
}

// Bool returns nil for null-ish input; otherwise true iff the trimmed
// lowercase value is an affirmative token. Callers decide whether absent
// means nil or false.
func Bool(v string) *bool {
	if IsNullish(v) {
		return nil
	}
	_, b := trueTokens[strings.ToLower(strings.TrimSpace(v))]
	return &b
}

// String trims the value; an empty result normalizes to nil.
func String(v string) *string {
	s := strings.TrimSpace(v)
	if s == "" {
		return nil
	}
	return &s
}
