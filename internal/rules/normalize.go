// Package rules holds the deterministic SMS understanding path: numeric and
// date normalization, keyword classification, regex field extraction and
// summary generation.
package rules

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CleanNumeric strips thousands separators and whitespace from raw and
// collapses malformed decimal points. Extra dots after the first are treated
// as formatting noise. Empty input yields "".
func CleanNumeric(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	s = strings.TrimSuffix(s, ".")

	if strings.Count(s, ".") > 1 {
		first := strings.Index(s, ".")
		s = s[:first+1] + strings.ReplaceAll(s[first+1:], ".", "")
	}

	return s
}

// parseAmount cleans raw and converts it to float64.
func parseAmount(raw string) (float64, bool) {
	cleaned := CleanNumeric(raw)
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
