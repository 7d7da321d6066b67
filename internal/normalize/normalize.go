// Package normalize canonicalizes free-text place names so lookups do not
// depend on accents, case, or surrounding whitespace.
package normalize

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// canonical decomposes to NFD, drops nonspacing marks, then applies full
// Unicode uppercasing, so "ß" becomes "SS". Transformers carry state, so
// each call builds its own chain.
func canonical() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), cases.Upper(language.Und))
}

// Name returns s without combining diacritics, uppercased and trimmed.
// "  Sangolquí " and "SANGOLQUI" both become "SANGOLQUI".
func Name(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(canonical(), s)
	if err != nil {
		out = strings.ToUpper(s)
	}
	return strings.TrimSpace(out)
}

// Value normalizes an arbitrary attribute value. Missing values (nil, NaN)
// yield the empty string.
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Name(t)
	case float64:
		if math.IsNaN(t) {
			return ""
		}
		return Name(FormatNumber(t))
	default:
		return Name(fmt.Sprint(t))
	}
}

// FormatNumber renders integral floats without a fractional part, so a
// numeric parish code 170150 reads "170150" rather than "170150.0".
func FormatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprint(f)
}
