package rules

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/domain"
	"github.com/ATHARVaDataeaze2272/SMS-Parsing/internal/logger"
)

var idFields = map[string]bool{
	domain.FieldAccountNumber: true,
	domain.FieldCardNumber:    true,
	domain.FieldFolioNumber:   true,
	domain.FieldPolicyNumber:  true,
	domain.FieldLoanReference: true,
}

var numericFields = map[string]bool{
	domain.FieldAmount:           true,
	domain.FieldAvailableBalance: true,
	domain.FieldTotalOutstanding: true,
	domain.FieldNAVValue:         true,
	domain.FieldSumInsured:       true,
}

// IsNumericField reports whether name is always stored as a float.
func IsNumericField(name string) bool {
	return numericFields[name]
}

// Sanitize coerces loosely typed fields, usually decoded from model output, into
// their canonical shape. Numeric fields become float64, identifiers become trimmed
// strings, other strings are trimmed. Null and empty values are dropped, and a
// numeric field that cannot be converted is dropped with a warning.
func Sanitize(ctx context.Context, raw map[string]any) domain.Fields {
	log := logger.FromContext(ctx)
	out := make(domain.Fields, len(raw))

	for key, value := range raw {
		if value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}

		switch {
		case idFields[key]:
			out[key] = idString(value)

		case numericFields[key]:
			f, ok := toFloat(value)
			if !ok {
				log.Warn().Str("field", key).Interface("value", value).Msg("dropping non-numeric value")
				continue
			}
			out[key] = f

		default:
			switch t := value.(type) {
			case string:
				out[key] = strings.TrimSpace(t)
			case json.Number:
				if f, err := t.Float64(); err == nil {
					out[key] = f
				} else {
					out[key] = t.String()
				}
			default:
				out[key] = value
			}
		}
	}

	return out
}

// idString renders an identifier without exponent notation, so a long account
// number sent as a JSON number keeps every digit.
func idString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		return parseAmount(t)
	}
	return 0, false
}
