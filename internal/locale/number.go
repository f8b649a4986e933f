// Package locale holds the pt-BR helpers shared by the extraction pipeline:
// number and date parsing, date formatting, text folding and CNPJ formatting.
package locale

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber parses a pt-BR formatted number such as "1.234,56".
// Every character other than digits, ',' and '.' is dropped, '.' is treated as a
// thousands separator and the final ',' as the decimal separator.
// It returns NaN on failure; callers must check with IsValid.
func ParseNumber(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}

	cleaned := strings.ReplaceAll(b.String(), ".", "")
	if i := strings.LastIndex(cleaned, ","); i >= 0 {
		cleaned = cleaned[:i] + "." + cleaned[i+1:]
	}
	if cleaned == "" || cleaned == "." {
		return math.NaN()
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// IsValid reports whether v is a finite number
func IsValid(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsPositive reports whether v is finite and greater than zero
func IsPositive(v float64) bool {
	return IsValid(v) && v > 0
}

// Round rounds v half away from zero to the given number of decimal places
func Round(v float64, places int) float64 {
	if !IsValid(v) {
		return v
	}
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// FormatNumber renders v the pt-BR way with the given number of decimals,
// e.g. 1234.5 -> "1.234,50"
func FormatNumber(v float64, places int) string {
	if !IsValid(v) {
		return ""
	}

	s := strconv.FormatFloat(math.Abs(v), 'f', places, 64)
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	if v < 0 {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
